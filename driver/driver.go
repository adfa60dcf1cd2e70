// Package driver wires the MHT engine to an auxiliary-tracker ensemble and
// to optional CSV export and metrics, without ever reaching into the
// engine's internal forest state.
package driver

import (
	"context"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"golang.org/x/term"

	"github.com/trackforest/mht-go/auxtracker"
	"github.com/trackforest/mht-go/csvexport"
	"github.com/trackforest/mht-go/geom"
	"github.com/trackforest/mht-go/mht"
	"github.com/trackforest/mht-go/mhtmetrics"
)

// AuxTrackerFactory builds the three-slot auxiliary-tracker ensemble (KCF,
// MedianFlow, MIL order) used to seed a newly (re)born track.
type AuxTrackerFactory func() [3]auxtracker.Tracker

// Driver orchestrates one MHT engine plus its auxiliary-tracker ensemble
// across a frame stream.
type Driver struct {
	engine  *mht.Engine
	factory AuxTrackerFactory
	logger  *zap.SugaredLogger
	metrics *mhtmetrics.Metrics
	csv     *csvexport.Writer

	ensembles map[int][3]auxtracker.Tracker
	bar       *progressbar.ProgressBar
}

// New builds a Driver around an already-constructed Engine.
func New(engine *mht.Engine, factory AuxTrackerFactory, logger *zap.SugaredLogger, metrics *mhtmetrics.Metrics) *Driver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Driver{
		engine:    engine,
		factory:   factory,
		logger:    logger,
		metrics:   metrics,
		ensembles: make(map[int][3]auxtracker.Tracker),
	}
}

// EnableCSVExport attaches a csvexport.Writer that accumulates every
// processed frame's solution in memory; call FlushCSV to persist it.
func (d *Driver) EnableCSVExport() {
	d.csv = csvexport.NewWriter()
}

// FlushCSV writes the accumulated CSV artifact to path. A no-op if
// EnableCSVExport was never called.
func (d *Driver) FlushCSV(path string) error {
	if d.csv == nil {
		return nil
	}
	return d.csv.WriteCSV(path)
}

// EnableProgress renders a progress bar across totalFrames, sized to the
// current terminal width.
func (d *Driver) EnableProgress(totalFrames int) {
	width, _, err := term.GetSize(0)
	if err != nil || width <= 0 {
		width = 80
	}
	description := "tracking"
	if len(description) > width/2 {
		description = description[:width/2]
	}
	d.bar = progressbar.NewOptions(totalFrames, progressbar.OptionSetDescription(description))
}

// Init feeds the first frame's detections to the engine and seeds the
// auxiliary-tracker ensemble for every resulting reseed request.
func (d *Driver) Init(frame gocv.Mat, detections map[string]geom.Rectangle) (mht.StepResult, error) {
	result, err := d.engine.Init(frame, detections)
	if err != nil {
		return result, errors.Wrap(err, "driver: engine init failed")
	}
	d.applyReseeds(frame, result.ReseedRequests)
	d.recordFrame(result)
	return result, nil
}

// Step feeds one subsequent frame's detections through the engine,
// collects auxiliary-tracker observations for every currently live track,
// applies reseed requests, and optionally records the CSV row and progress
// tick. The only metric the driver itself updates is InputShapeErrors, on
// an auxiliary-tracker update failure; the per-frame gauges and counters are
// updated by the engine when it was built with metrics.
func (d *Driver) Step(ctx context.Context, frame gocv.Mat, detections map[string]geom.Rectangle) (mht.StepResult, error) {
	aux := d.pollAuxTrackers(frame)
	result, err := d.engine.Step(ctx, frame, detections, aux)
	if err != nil {
		return result, errors.Wrap(err, "driver: engine step failed")
	}
	d.applyReseeds(frame, result.ReseedRequests)
	d.recordFrame(result)
	if d.bar != nil {
		_ = d.bar.Add(1)
	}
	return result, nil
}

func (d *Driver) pollAuxTrackers(frame gocv.Mat) map[int][3]geom.Rectangle {
	out := make(map[int][3]geom.Rectangle, len(d.ensembles))
	for trackID, ensemble := range d.ensembles {
		var boxes [3]geom.Rectangle
		for i, t := range ensemble {
			box, ok := t.Update(frame)
			if !ok {
				d.logger.Warnw("auxiliary tracker failed to update", "trackID", trackID, "slot", i)
				if d.metrics != nil {
					d.metrics.InputShapeErrors.Inc()
				}
				continue
			}
			boxes[i] = box
		}
		out[trackID] = boxes
	}
	return out
}

func (d *Driver) applyReseeds(frame gocv.Mat, reseeds map[int]geom.Rectangle) {
	for trackID, box := range reseeds {
		ensemble := d.factory()
		for i, t := range ensemble {
			if err := t.Init(frame, box); err != nil {
				d.logger.Warnw("auxiliary tracker init failed", "trackID", trackID, "slot", i, "error", err)
			}
		}
		d.ensembles[trackID] = ensemble
	}
}

func (d *Driver) recordFrame(result mht.StepResult) {
	if d.csv != nil {
		d.csv.AppendFrame(result.SolutionTrackIDs, lastBoxes(result.SolutionCoordinates))
	}
}

func lastBoxes(coords [][]*geom.Rectangle) []*geom.Rectangle {
	out := make([]*geom.Rectangle, len(coords))
	for i, trace := range coords {
		if len(trace) == 0 {
			continue
		}
		out[i] = trace[len(trace)-1]
	}
	return out
}

// DefaultKalmanFactory returns an AuxTrackerFactory producing the
// reference Kalman-filter stand-in ensemble: a BBoxKalman for the KCF and
// MIL slots, and a CentroidKalman for the MedianFlow slot.
func DefaultKalmanFactory(dt float64) AuxTrackerFactory {
	return func() [3]auxtracker.Tracker {
		return [3]auxtracker.Tracker{
			auxtracker.NewBBoxKalman(dt),
			auxtracker.NewCentroidKalman(dt),
			auxtracker.NewBBoxKalman(dt),
		}
	}
}

// Package mht implements the Multiple Hypothesis Tracking engine: the
// per-frame branch expansion, gating, appearance-based re-identification,
// conflict-graph construction, MWIS selection and N-scan pruning that
// together maintain the hypothesis forest.
package mht

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"github.com/trackforest/mht-go/config"
	"github.com/trackforest/mht-go/geom"
	"github.com/trackforest/mht-go/graph"
	"github.com/trackforest/mht-go/histogram"
	"github.com/trackforest/mht-go/mhtmetrics"
	"github.com/trackforest/mht-go/track"
)

// traceElem is one frame's contribution to a hypothesis' detection trace:
// either a real observation (valid=true, carrying the detection id used
// for conflict comparison and its box for solution reconstruction) or a
// missed (dummy) frame.
type traceElem struct {
	detID string
	box   geom.Rectangle
	valid bool
}

// StepResult is the per-frame output of Engine.Init / Engine.Step.
type StepResult struct {
	// SolutionCoordinates holds, per selected hypothesis, the sequence of
	// boxes observed across its whole life so far; nil entries mark a
	// missed frame.
	SolutionCoordinates [][]*geom.Rectangle
	// SolutionTrackIDs is parallel to SolutionCoordinates.
	SolutionTrackIDs []int
	// ReseedRequests lists track ids whose auxiliary trackers must be
	// (re)initialized at the given box: newly born tracks, and tracks
	// whose trackers were all declared lost on this frame's live update.
	ReseedRequests map[int]geom.Rectangle
}

// Engine owns the hypothesis forest exclusively; callers interact with it
// only through Init/Step and the StepResult values they return.
type Engine struct {
	cfg     config.Config
	logger  *zap.SugaredLogger
	metrics *mhtmetrics.Metrics

	nextTrackID int
	frameIdx    int // -1 before Init
	forest      []*track.Track
	traces      [][]traceElem

	loggedInputShapeFrames map[int]bool
}

// New constructs an Engine from a validated Config. logger and metrics may
// be nil; a no-op logger is substituted and metrics updates are skipped.
func New(cfg config.Config, logger *zap.SugaredLogger, metrics *mhtmetrics.Metrics) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{
		cfg:                    cfg,
		logger:                 logger,
		metrics:                metrics,
		frameIdx:               -1,
		loggedInputShapeFrames: make(map[int]bool),
	}, nil
}

// Init seeds one hypothesis per detection at frame 0.
func (e *Engine) Init(frame gocv.Mat, detections map[string]geom.Rectangle) (StepResult, error) {
	if e.frameIdx != -1 {
		return StepResult{}, errors.New("mht: Init called more than once")
	}
	ids := e.filterValidDetections(frame, detections, 0)
	hists, err := e.computeHistograms(frame, ids, detections)
	if err != nil {
		return StepResult{}, err
	}

	result := StepResult{ReseedRequests: make(map[int]geom.Rectangle)}
	for i, id := range ids {
		box := detections[id]
		tr := track.New(e.nextTrackID, box, hists[i])
		e.nextTrackID++
		e.forest = append(e.forest, tr)
		e.traces = append(e.traces, []traceElem{{detID: id, box: box, valid: true}})

		boxCopy := box
		result.SolutionCoordinates = append(result.SolutionCoordinates, []*geom.Rectangle{&boxCopy})
		result.SolutionTrackIDs = append(result.SolutionTrackIDs, tr.TrackID())
		result.ReseedRequests[tr.TrackID()] = box
	}
	e.frameIdx = 0

	if e.metrics != nil {
		e.metrics.ForestSize.Set(float64(len(e.forest)))
		e.metrics.SolutionSize.Set(float64(len(e.forest)))
		e.metrics.FramesProcessed.Inc()
		e.metrics.ReseedsRequested.Add(float64(len(result.ReseedRequests)))
	}
	return result, nil
}

// Step advances the forest by one frame: expanding every hypothesis
// against the current detections, seeding fresh hypotheses, selecting the
// global solution via MWIS and applying N-scan pruning.
func (e *Engine) Step(ctx context.Context, frame gocv.Mat, detections map[string]geom.Rectangle, auxTrackers map[int][3]geom.Rectangle) (StepResult, error) {
	if e.frameIdx < 0 {
		return StepResult{}, errors.New("mht: Step called before Init")
	}
	k := e.frameIdx + 1

	ids := e.filterValidDetections(frame, detections, k)
	hists, err := e.computeHistograms(frame, ids, detections)
	if err != nil {
		return StepResult{}, err
	}

	select {
	case <-ctx.Done():
		return StepResult{}, ctx.Err()
	default:
	}

	var scratchForest []*track.Track
	var scratchTraces [][]traceElem

	weights := [3]float64{e.cfg.TrackerWeights.KCF, e.cfg.TrackerWeights.MedianFlow, e.cfg.TrackerWeights.MIL}

	for i, h := range e.forest {
		parentTrace := e.traces[i]
		if h.Lost() {
			for di, id := range ids {
				box := detections[id]
				hist := hists[di]
				stack := h.HistStack()
				dists := make([]float64, len(stack))
				for si, s := range stack {
					dists[si] = histogram.Bhattacharyya(hist, s)
				}
				meanDist := stat.Mean(dists, nil)
				if meanDist >= e.cfg.ColorScoreThreshold {
					continue
				}
				scoreDelta := (1-meanDist*(0.99/e.cfg.ColorScoreThreshold))*e.cfg.ColorScoreWeight +
					math.Exp((math.Log(0.01)/e.cfg.LostTimeThreshold)*h.LostTime())*e.cfg.LostTimeWeight
				clone := h.Clone()
				clone.ExtendLive(box, hist, scoreDelta, false, e.cfg.HistUpdateEveryFrames(), e.cfg.HistStackSize)
				scratchForest = append(scratchForest, clone)
				scratchTraces = append(scratchTraces, appendTrace(parentTrace, id, box, true))
			}
			continue
		}

		auxBoxes, ok := auxTrackers[h.TrackID()]
		if !ok {
			e.logInputShapeOnce(k, fmt.Sprintf("missing auxiliary-tracker entry for track %d", h.TrackID()))
			continue
		}
		for di, id := range ids {
			box := detections[id]
			hist := hists[di]
			center := box.Center()
			var inside bool
			var scoreDelta float64
			lostCount := 0
			for ti := 0; ti < 3; ti++ {
				d := geom.EuclideanDistance(auxBoxes[ti].Center(), center)
				isInside := d < e.cfg.DistanceThreshold
				isLost := d >= e.cfg.DistanceThreshold2 || !isInside
				if isInside {
					inside = true
					scoreDelta += (1.0 / (e.cfg.DistanceThreshold * e.cfg.DistanceThreshold)) *
						math.Pow(d-e.cfg.DistanceThreshold, 2) * weights[ti]
				}
				if isLost {
					lostCount++
				}
			}
			if !inside {
				continue
			}
			trackersLost := lostCount == 3
			clone := h.Clone()
			clone.ExtendLive(box, hist, scoreDelta, trackersLost, e.cfg.HistUpdateEveryFrames(), e.cfg.HistStackSize)
			scratchForest = append(scratchForest, clone)
			scratchTraces = append(scratchTraces, appendTrace(parentTrace, id, box, true))
		}
	}

	for di, id := range ids {
		box := detections[id]
		hist := hists[di]
		tr := track.New(e.nextTrackID, box, hist)
		e.nextTrackID++
		trace := make([]traceElem, k+1)
		trace[k] = traceElem{detID: id, box: box, valid: true}
		scratchForest = append(scratchForest, tr)
		scratchTraces = append(scratchTraces, trace)
	}

	for i, h := range e.forest {
		h.ExtendDummy(e.cfg.FPS)
		e.traces[i] = append(e.traces[i], traceElem{})
		scratchForest = append(scratchForest, h)
		scratchTraces = append(scratchTraces, e.traces[i])
	}

	g := graph.NewWeightedGraph()
	for _, h := range scratchForest {
		g.AddVertex(h.Score())
	}
	frameGroups := make(map[int]map[string][]int)
	for vi, trace := range scratchTraces {
		for f, elem := range trace {
			if !elem.valid {
				continue
			}
			byDet := frameGroups[f]
			if byDet == nil {
				byDet = make(map[string][]int)
				frameGroups[f] = byDet
			}
			byDet[elem.detID] = append(byDet[elem.detID], vi)
		}
	}
	for _, byDet := range frameGroups {
		for _, vs := range byDet {
			for a := 0; a < len(vs); a++ {
				for b := a + 1; b < len(vs); b++ {
					g.AddEdge(vs[a], vs[b])
				}
			}
		}
	}
	selected, _ := g.MWIS()
	sort.Ints(selected)
	selectedSet := make(map[int]bool, len(selected))
	for _, s := range selected {
		selectedSet[s] = true
	}

	p := k - e.cfg.NPruning
	if p < 0 {
		p = 0
	}

	var survivorsForest []*track.Track
	var survivorsTraces [][]traceElem
	if e.cfg.NPruning == 0 {
		for _, s := range selected {
			survivorsForest = append(survivorsForest, scratchForest[s])
			survivorsTraces = append(survivorsTraces, scratchTraces[s])
		}
	} else {
		solutionDetAtP := make(map[string]bool)
		for _, s := range selected {
			if p < len(scratchTraces[s]) && scratchTraces[s][p].valid {
				solutionDetAtP[scratchTraces[s][p].detID] = true
			}
		}
		for vi := range scratchForest {
			if selectedSet[vi] {
				survivorsForest = append(survivorsForest, scratchForest[vi])
				survivorsTraces = append(survivorsTraces, scratchTraces[vi])
				continue
			}
			trace := scratchTraces[vi]
			if p < len(trace) && trace[p].valid && solutionDetAtP[trace[p].detID] {
				continue
			}
			survivorsForest = append(survivorsForest, scratchForest[vi])
			survivorsTraces = append(survivorsTraces, scratchTraces[vi])
		}
	}
	prunedCount := len(scratchForest) - len(survivorsForest)

	e.forest = survivorsForest
	e.traces = survivorsTraces
	e.frameIdx = k

	result := StepResult{ReseedRequests: make(map[int]geom.Rectangle)}
	for _, vi := range selected {
		trace := scratchTraces[vi]
		coords := make([]*geom.Rectangle, len(trace))
		for f, elem := range trace {
			if elem.valid {
				box := elem.box
				coords[f] = &box
			}
		}
		result.SolutionCoordinates = append(result.SolutionCoordinates, coords)
		result.SolutionTrackIDs = append(result.SolutionTrackIDs, scratchForest[vi].TrackID())
	}

	for vi, tr := range survivorsForest {
		trace := survivorsTraces[vi]
		last := trace[len(trace)-1]
		if !last.valid {
			continue
		}
		newlyAlive := len(trace) < 2 || !trace[len(trace)-2].valid
		if newlyAlive || tr.TrackersLost() {
			result.ReseedRequests[tr.TrackID()] = tr.LastDetection()
		}
	}

	if e.metrics != nil {
		e.metrics.ForestSize.Set(float64(len(e.forest)))
		e.metrics.SolutionSize.Set(float64(len(selected)))
		e.metrics.FramesProcessed.Inc()
		e.metrics.BranchesPruned.Add(float64(prunedCount))
		e.metrics.ReseedsRequested.Add(float64(len(result.ReseedRequests)))
	}

	return result, nil
}

// ForestSize returns the current number of live hypotheses.
func (e *Engine) ForestSize() int { return len(e.forest) }

func appendTrace(parent []traceElem, detID string, box geom.Rectangle, valid bool) []traceElem {
	out := make([]traceElem, len(parent)+1)
	copy(out, parent)
	out[len(parent)] = traceElem{detID: detID, box: box, valid: valid}
	return out
}

func (e *Engine) filterValidDetections(frame gocv.Mat, detections map[string]geom.Rectangle, frameIdx int) []string {
	keys := make([]string, 0, len(detections))
	for k := range detections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if frame.Empty() {
		return keys
	}
	width, height := frame.Cols(), frame.Rows()
	valid := make([]string, 0, len(keys))
	for _, id := range keys {
		if _, ok := detections[id].Clip(width, height); !ok {
			e.logInputShapeOnce(frameIdx, fmt.Sprintf("detection %q bbox outside frame bounds", id))
			continue
		}
		valid = append(valid, id)
	}
	return valid
}

func (e *Engine) computeHistograms(frame gocv.Mat, ids []string, detections map[string]geom.Rectangle) ([]histogram.Histogram, error) {
	hists := make([]histogram.Histogram, len(ids))
	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			h, err := histogram.Compute(frame, detections[id], e.cfg.ColorHistBins)
			hists[i] = h
			errs[i] = err
		}(i, id)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return hists, nil
}

func (e *Engine) logInputShapeOnce(frame int, detail string) {
	if e.loggedInputShapeFrames[frame] {
		return
	}
	e.loggedInputShapeFrames[frame] = true
	err := newInputShapeError(frame, detail)
	e.logger.Warnw("input shape error", "frame", frame, "error", err)
	if e.metrics != nil {
		e.metrics.InputShapeErrors.Inc()
	}
}

package driver

import (
	"context"
	"testing"

	"gocv.io/x/gocv"

	"github.com/trackforest/mht-go/auxtracker"
	"github.com/trackforest/mht-go/config"
	"github.com/trackforest/mht-go/geom"
	"github.com/trackforest/mht-go/mht"
)

type fakeTracker struct {
	box geom.Rectangle
}

func (f *fakeTracker) Init(_ gocv.Mat, box geom.Rectangle) error {
	f.box = box
	return nil
}

func (f *fakeTracker) Update(_ gocv.Mat) (geom.Rectangle, bool) {
	return f.box, true
}

func fakeFactory() [3]auxtracker.Tracker {
	return [3]auxtracker.Tracker{&fakeTracker{}, &fakeTracker{}, &fakeTracker{}}
}

func newDriver(t *testing.T) (*Driver, gocv.Mat) {
	t.Helper()
	cfg := config.Default()
	engine, err := mht.New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("mht.New failed: %v", err)
	}
	frame := gocv.NewMatWithSize(200, 200, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return New(engine, fakeFactory, nil, nil), frame
}

func TestDriverInitSeedsEnsembles(t *testing.T) {
	d, frame := newDriver(t)
	detections := map[string]geom.Rectangle{"d0": geom.NewRect(10, 10, 20, 20)}
	result, err := d.Init(frame, detections)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if len(d.ensembles) != 1 {
		t.Fatalf("expected 1 seeded ensemble, got %d", len(d.ensembles))
	}
	if len(result.SolutionTrackIDs) != 1 {
		t.Fatalf("expected 1 solution track, got %d", len(result.SolutionTrackIDs))
	}
}

func TestDriverStepPollsEnsemblesAndFeedsEngine(t *testing.T) {
	d, frame := newDriver(t)
	detections0 := map[string]geom.Rectangle{"d0": geom.NewRect(10, 10, 20, 20)}
	if _, err := d.Init(frame, detections0); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	detections1 := map[string]geom.Rectangle{"d0": geom.NewRect(10, 10, 20, 20)}
	result, err := d.Step(context.Background(), frame, detections1)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if len(result.SolutionTrackIDs) == 0 {
		t.Fatal("expected at least one solution track after step")
	}
}

func TestDriverCSVExportFlush(t *testing.T) {
	d, frame := newDriver(t)
	d.EnableCSVExport()
	detections := map[string]geom.Rectangle{"d0": geom.NewRect(10, 10, 20, 20)}
	if _, err := d.Init(frame, detections); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	path := t.TempDir() + "/out.csv"
	if err := d.FlushCSV(path); err != nil {
		t.Fatalf("FlushCSV failed: %v", err)
	}
}

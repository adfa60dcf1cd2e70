package histogram

import (
	"math"
	"testing"

	"gocv.io/x/gocv"

	"github.com/trackforest/mht-go/geom"
)

func TestBhattacharyyaIdentical(t *testing.T) {
	h := Histogram{Bins: 2, Values: []float64{0.1, 0.2, 0.3, 0.05, 0.05, 0.1, 0.1, 0.1}}
	if got := Bhattacharyya(h, h); got > 1e-9 {
		t.Errorf("distance to self = %v, want ~0", got)
	}
}

func TestBhattacharyyaDisjointSupport(t *testing.T) {
	a := Histogram{Bins: 2, Values: []float64{1, 0, 0, 0, 0, 0, 0, 0}}
	b := Histogram{Bins: 2, Values: []float64{0, 0, 0, 0, 0, 0, 0, 1}}
	if got := Bhattacharyya(a, b); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("distance between disjoint-support histograms = %v, want 1.0", got)
	}
}

func TestBhattacharyyaZeroHistogram(t *testing.T) {
	a := Zero(4)
	b := Zero(4)
	if got := Bhattacharyya(a, b); got != 1.0 {
		t.Errorf("distance involving zero histogram = %v, want 1.0", got)
	}
}

func TestBhattacharyyaMismatchedBins(t *testing.T) {
	a := Zero(2)
	b := Zero(4)
	if got := Bhattacharyya(a, b); got != 1.0 {
		t.Errorf("mismatched bin counts should report 1.0, got %v", got)
	}
}

func TestComputeDegenerateCropReturnsZeroHistogram(t *testing.T) {
	frame := gocv.NewMatWithSize(100, 100, gocv.MatTypeCV8UC3)
	defer frame.Close()

	h, err := Compute(frame, geom.NewRect(-50, -50, 5, 5), DefaultBins)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if h.Bins != DefaultBins {
		t.Fatalf("expected bins %d, got %d", DefaultBins, h.Bins)
	}
	for _, v := range h.Values {
		if v != 0 {
			t.Fatalf("expected all-zero histogram for degenerate crop, got %v", h.Values)
		}
	}
}

func TestComputeUniformCropSumsToOne(t *testing.T) {
	frame := gocv.NewMatWithSize(50, 50, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetTo(gocv.NewScalar(10, 200, 30, 0))

	h, err := Compute(frame, geom.NewRect(0, 0, 50, 50), DefaultBins)
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	var sum float64
	for _, v := range h.Values {
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("histogram does not sum to 1: %v", sum)
	}
}

func TestComputeInvalidBins(t *testing.T) {
	frame := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC3)
	defer frame.Close()
	if _, err := Compute(frame, geom.NewRect(0, 0, 10, 10), 0); err == nil {
		t.Error("expected error for bins < 1")
	}
}

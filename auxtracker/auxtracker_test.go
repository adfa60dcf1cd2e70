package auxtracker

import (
	"math"
	"testing"

	"gocv.io/x/gocv"

	"github.com/trackforest/mht-go/geom"
)

func TestCentroidKalmanFreezesExtent(t *testing.T) {
	frame := gocv.NewMat()
	defer frame.Close()

	tr := NewCentroidKalman(1.0 / 25.0)
	box := geom.NewRect(10, 20, 30, 40)
	if err := tr.Init(frame, box); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	got, ok := tr.Update(frame)
	if !ok {
		t.Fatal("Update should report ok after Init")
	}
	if math.Abs(got.Width-30) > 1e-6 || math.Abs(got.Height-40) > 1e-6 {
		t.Errorf("extent should stay frozen, got %+v", got)
	}
}

func TestCentroidKalmanUpdateBeforeInit(t *testing.T) {
	frame := gocv.NewMat()
	defer frame.Close()
	tr := NewCentroidKalman(0.04)
	if _, ok := tr.Update(frame); ok {
		t.Error("Update before Init should report not-ok")
	}
}

func TestBBoxKalmanTracksSize(t *testing.T) {
	frame := gocv.NewMat()
	defer frame.Close()

	tr := NewBBoxKalman(1.0 / 25.0)
	box := geom.NewRect(0, 0, 100, 100)
	if err := tr.Init(frame, box); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		tr.Update(frame)
		grown := geom.NewRect(0, 0, 100+float64(i+1)*2, 100+float64(i+1)*2)
		if err := tr.Correct(grown); err != nil {
			t.Fatalf("Correct failed: %v", err)
		}
	}
	_, _, vw, vh := tr.Velocity()
	if vw <= 0 || vh <= 0 {
		t.Errorf("expected positive growth velocity, got vw=%v vh=%v", vw, vh)
	}
}

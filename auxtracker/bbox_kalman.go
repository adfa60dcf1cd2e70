package auxtracker

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/trackforest/mht-go/geom"
)

// BBoxKalman is a stand-in auxiliary tracker backed by an 8D Kalman filter
// over center position, size and their velocities: the stand-in used for
// both KCF and MIL slots, which track full bounding-box dynamics.
type BBoxKalman struct {
	dt      float64
	tracker *kalman_filter.KalmanBBox
}

// NewBBoxKalman returns a BBoxKalman sampling at the given time step.
func NewBBoxKalman(dt float64) *BBoxKalman {
	return &BBoxKalman{dt: dt}
}

// Init seeds the filter state from box.
func (b *BBoxKalman) Init(_ gocv.Mat, box geom.Rectangle) error {
	center := box.Center()
	uCx, uCy, uW, uH := 1.0, 1.0, 0.0, 0.0
	stdDevA := 2.0
	stdDevMCx, stdDevMCy, stdDevMW, stdDevMH := 0.1, 0.1, 0.1, 0.1
	b.tracker = kalman_filter.NewKalmanBBox(
		b.dt, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(center.X, center.Y, box.Width, box.Height),
	)
	return nil
}

// Update runs the filter's predict step and reports the resulting box.
func (b *BBoxKalman) Update(_ gocv.Mat) (geom.Rectangle, bool) {
	if b.tracker == nil {
		return geom.Rectangle{}, false
	}
	b.tracker.Predict()
	cx, cy, w, h := b.tracker.GetState()
	return geom.Rectangle{X: cx - w/2.0, Y: cy - h/2.0, Width: w, Height: h}, true
}

// Correct folds a fresh measurement into the filter.
func (b *BBoxKalman) Correct(box geom.Rectangle) error {
	if b.tracker == nil {
		return errors.New("auxtracker: Correct called before Init")
	}
	center := box.Center()
	if err := b.tracker.Update(center.X, center.Y, box.Width, box.Height); err != nil {
		return errors.Wrap(err, "auxtracker: bbox update failed")
	}
	return nil
}

// Velocity exposes the filter's (vx, vy, vw, vh) estimate.
func (b *BBoxKalman) Velocity() (vx, vy, vw, vh float64) {
	return b.tracker.GetVelocity()
}

// MahalanobisDistance returns the filter's distance to a candidate box.
func (b *BBoxKalman) MahalanobisDistance(box geom.Rectangle) (float64, error) {
	center := box.Center()
	return b.tracker.MahalanobisDistance(center.X, center.Y, box.Width, box.Height)
}

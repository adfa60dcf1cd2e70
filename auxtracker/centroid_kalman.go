package auxtracker

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/trackforest/mht-go/geom"
)

// CentroidKalman is a stand-in auxiliary tracker backed by a 2D centroid
// Kalman filter: it smooths the center position only; box extent is not
// filtered and stays at the size last given to Init or Correct. The
// stand-in for MedianFlow.
type CentroidKalman struct {
	dt      float64
	size    geom.Point // width, height from the last Init or Correct
	tracker *kalman_filter.Kalman2D
}

// NewCentroidKalman returns a CentroidKalman sampling at the given time
// step (seconds between frames).
func NewCentroidKalman(dt float64) *CentroidKalman {
	return &CentroidKalman{dt: dt}
}

// Init seeds the filter state at box's center and takes box's extent.
func (c *CentroidKalman) Init(_ gocv.Mat, box geom.Rectangle) error {
	center := box.Center()
	ux, uy := 1.0, 1.0
	stdDevA := 2.0
	stdDevMx, stdDevMy := 0.1, 0.1
	c.tracker = kalman_filter.NewKalman2D(c.dt, ux, uy, stdDevA, stdDevMx, stdDevMy,
		kalman_filter.WithState2D(center.X, center.Y))
	c.size = geom.Point{X: box.Width, Y: box.Height}
	return nil
}

// Update runs the filter's predict step and reports the resulting box. A
// CentroidKalman never rejects its own prediction: ok is always true once
// Init has been called.
func (c *CentroidKalman) Update(_ gocv.Mat) (geom.Rectangle, bool) {
	if c.tracker == nil {
		return geom.Rectangle{}, false
	}
	c.tracker.Predict()
	x, y := c.tracker.GetState()
	return geom.Rectangle{
		X:      x - c.size.X/2.0,
		Y:      y - c.size.Y/2.0,
		Width:  c.size.X,
		Height: c.size.Y,
	}, true
}

// Correct folds a fresh measurement's center into the filter and takes the
// measured box's extent. The driver package does not call it: a reseed
// builds a fresh ensemble and calls Init instead.
func (c *CentroidKalman) Correct(box geom.Rectangle) error {
	if c.tracker == nil {
		return errors.New("auxtracker: Correct called before Init")
	}
	center := box.Center()
	if err := c.tracker.Update(center.X, center.Y); err != nil {
		return errors.Wrap(err, "auxtracker: centroid update failed")
	}
	c.size = geom.Point{X: box.Width, Y: box.Height}
	return nil
}

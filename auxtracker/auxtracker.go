// Package auxtracker defines the external auxiliary short-term tracker
// contract consumed by the MHT engine, plus a deterministic Kalman-filter
// stand-in implementation for local testing and demoing. A production
// deployment supplies real KCF/MedianFlow/MIL trackers behind the same
// interface; those are out of scope here.
package auxtracker

import (
	"gocv.io/x/gocv"

	"github.com/trackforest/mht-go/geom"
)

// Tracker is the contract an auxiliary short-term tracker must satisfy.
type Tracker interface {
	// Init (re)seeds the tracker at box on frame.
	Init(frame gocv.Mat, box geom.Rectangle) error
	// Update advances the tracker by one frame, returning its estimate of
	// the current box and whether the estimate is still considered valid.
	Update(frame gocv.Mat) (box geom.Rectangle, ok bool)
}

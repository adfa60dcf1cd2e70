// Package track implements the hypothesis node (Track) at the heart of the
// hypothesis forest: a candidate identity history carrying its own score,
// appearance stack and lost-time bookkeeping.
package track

import (
	"github.com/google/uuid"

	"github.com/trackforest/mht-go/geom"
	"github.com/trackforest/mht-go/histogram"
)

// StackSize is the maximum number of appearance descriptors retained per
// track (S_max in the hypothesis scoring model).
const StackSize = 25

// InitialScore is the score assigned to a freshly seeded hypothesis.
const InitialScore = 0.001

// DummyScoreDelta is added to a hypothesis' score on a missed (dummy)
// extension; it keeps the score strictly monotone even through gaps.
const DummyScoreDelta = 0.001

// Track is one node of the hypothesis forest.
type Track struct {
	trackID               int
	branchID              uuid.UUID
	lastDetection         geom.Rectangle
	histStack             []histogram.Histogram
	score                 float64
	framesSinceHistUpdate int
	lost                  bool
	lostTime              float64
	trackersLost          bool
}

// New seeds a fresh hypothesis from a detection.
func New(trackID int, box geom.Rectangle, hist histogram.Histogram) *Track {
	return &Track{
		trackID:       trackID,
		branchID:      uuid.New(),
		lastDetection: box,
		histStack:     []histogram.Histogram{hist},
		score:         InitialScore,
	}
}

// TrackID returns the identity this hypothesis carries; stable across clones.
func (t *Track) TrackID() int { return t.trackID }

// BranchID returns the clone-local correlation identifier, for log
// correlation only; it carries no tracking semantics.
func (t *Track) BranchID() uuid.UUID { return t.branchID }

// LastDetection returns the last non-dummy observation.
func (t *Track) LastDetection() geom.Rectangle { return t.lastDetection }

// HistStack returns the appearance descriptor history, oldest first.
func (t *Track) HistStack() []histogram.Histogram { return t.histStack }

// Score returns the current hypothesis weight.
func (t *Track) Score() float64 { return t.score }

// Lost reports whether the last extension was a dummy (missed) observation.
func (t *Track) Lost() bool { return t.lost }

// LostTime returns accumulated seconds since the last live observation.
func (t *Track) LostTime() float64 { return t.lostTime }

// TrackersLost reports whether every auxiliary tracker exceeded the hard
// distance gate on the last extension; it is false after a dummy extension.
func (t *Track) TrackersLost() bool { return t.trackersLost }

// Clone deep-copies the hypothesis for branch expansion. The clone keeps
// the parent's track_id and mints a fresh branchID.
func (t *Track) Clone() *Track {
	stack := make([]histogram.Histogram, len(t.histStack))
	copy(stack, t.histStack)
	clone := *t
	clone.branchID = uuid.New()
	clone.histStack = stack
	return &clone
}

// ExtendLive extends the hypothesis with a live observation: resets lost
// state, accumulates score and, on the configured cadence, pushes a fresh
// appearance descriptor onto the stack, evicting the oldest once the stack
// exceeds stackSize (StackSize if stackSize <= 0).
func (t *Track) ExtendLive(box geom.Rectangle, hist histogram.Histogram, scoreDelta float64, trackersLost bool, histUpdateEveryFrames, stackSize int) {
	t.lost = false
	t.lostTime = 0
	t.trackersLost = trackersLost
	t.lastDetection = box
	t.score += scoreDelta
	t.framesSinceHistUpdate++
	if histUpdateEveryFrames <= 0 {
		histUpdateEveryFrames = 1
	}
	if stackSize <= 0 {
		stackSize = StackSize
	}
	if t.framesSinceHistUpdate >= histUpdateEveryFrames {
		t.histStack = append(t.histStack, hist)
		if len(t.histStack) > stackSize {
			t.histStack = t.histStack[1:]
		}
		t.framesSinceHistUpdate = 0
	}
}

// ExtendDummy extends the hypothesis with a missed observation: marks it
// lost, accumulates lost time and the fixed dummy score delta.
func (t *Track) ExtendDummy(fps float64) {
	t.lost = true
	t.trackersLost = false
	t.score += DummyScoreDelta
	if fps <= 0 {
		fps = 1
	}
	t.lostTime += 1.0 / fps
}

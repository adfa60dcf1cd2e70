package geom

import (
	"math"
	"testing"
)

const eps = 0.00001

func TestEuclideanDistance(t *testing.T) {
	p1 := Point{X: 341, Y: 264}
	p2 := Point{X: 421, Y: 427}
	want := 181.57367
	got := EuclideanDistance(p1, p2)
	if math.Abs(got-want) > eps {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIoUIdentical(t *testing.T) {
	r := NewRect(10, 10, 20, 20)
	if got := IoU(r, r); math.Abs(got-1.0) > eps {
		t.Errorf("IoU of identical rects = %v, want 1.0", got)
	}
}

func TestIoUDisjoint(t *testing.T) {
	r1 := NewRect(0, 0, 10, 10)
	r2 := NewRect(100, 100, 10, 10)
	if got := IoU(r1, r2); got != 0 {
		t.Errorf("IoU of disjoint rects = %v, want 0", got)
	}
}

func TestClipOutOfBounds(t *testing.T) {
	r := NewRect(-5, -5, 3, 3)
	_, ok := r.Clip(1920, 1080)
	if ok {
		t.Error("expected clip to report no surviving area")
	}
}

func TestClipPartial(t *testing.T) {
	r := NewRect(-5, 5, 10, 10)
	clipped, ok := r.Clip(1920, 1080)
	if !ok {
		t.Fatal("expected surviving area")
	}
	if clipped.X != 0 || clipped.Width != 5 {
		t.Errorf("unexpected clip result: %+v", clipped)
	}
}

func TestCenter(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	c := r.Center()
	if c.X != 25 || c.Y != 40 {
		t.Errorf("unexpected center %+v", c)
	}
}

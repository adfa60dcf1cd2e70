// Package geom holds the shared bounding-box and point primitives used
// across the forest, the appearance descriptor and the conflict graph.
package geom

import (
	"image"
	"math"
)

// Rectangle is an axis-aligned box in image coordinates, origin + extent.
type Rectangle struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRect builds a Rectangle from origin and extent.
func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{X: x, Y: y, Width: width, Height: height}
}

// NewRectFrom converts an image.Rectangle (corner form) into a Rectangle.
func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// Corners returns the (x1,y1,x2,y2) corner form used by the wire contract
// and the CSV artifact.
func (r Rectangle) Corners() (x1, y1, x2, y2 float64) {
	return r.X, r.Y, r.X + r.Width, r.Y + r.Height
}

// ToImageRectangle rounds the box to an integer-pixel image.Rectangle,
// suitable for cropping a gocv.Mat.
func (r Rectangle) ToImageRectangle() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)),
		int(math.Round(r.Y+r.Height)),
	)
}

// Area returns width * height; degenerate boxes (non-positive extent)
// report zero rather than a negative number.
func (r Rectangle) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Center returns the box's centroid.
func (r Rectangle) Center() Point {
	return Point{X: r.X + r.Width/2.0, Y: r.Y + r.Height/2.0}
}

// Point is a 2D coordinate.
type Point struct {
	X float64
	Y float64
}

// NewPoint builds a Point.
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// NewPointFrom converts an image.Point into a Point.
func NewPointFrom(pt image.Point) Point {
	return Point{X: float64(pt.X), Y: float64(pt.Y)}
}

// EuclideanDistance returns the straight-line distance between two points.
func EuclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}

// IoU computes Intersection over Union between two rectangles.
func IoU(r1, r2 Rectangle) float64 {
	xA := math.Max(r1.X, r2.X)
	yA := math.Max(r1.Y, r2.Y)
	xB := math.Min(r1.X+r1.Width, r2.X+r2.Width)
	yB := math.Min(r1.Y+r1.Height, r2.Y+r2.Height)

	interArea := math.Max(0, xB-xA) * math.Max(0, yB-yA)
	if interArea == 0 {
		return 0
	}

	union := r1.Area() + r2.Area() - interArea
	if union <= 0 {
		return 0
	}
	return interArea / union
}

// Clip intersects r with the image bounds [0,width) x [0,height), returning
// the clipped rectangle and whether any area survived.
func (r Rectangle) Clip(width, height int) (Rectangle, bool) {
	x1 := math.Max(r.X, 0)
	y1 := math.Max(r.Y, 0)
	x2 := math.Min(r.X+r.Width, float64(width))
	y2 := math.Min(r.Y+r.Height, float64(height))
	if x2 <= x1 || y2 <= y1 {
		return Rectangle{}, false
	}
	return Rectangle{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// Package histogram implements the 3D joint RGB color descriptor used for
// appearance-based re-identification of lost branches, and the
// Bhattacharyya distance used to compare two descriptors.
package histogram

import (
	"math"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/trackforest/mht-go/geom"
)

// DefaultBins is the number of bins per channel when none is configured.
const DefaultBins = 4

// Histogram is a flattened B^3 joint RGB histogram, L1-normalized to sum 1.
// An all-zero Histogram (see Zero) represents "no usable crop"; it, like the
// zero value (Bins == 0), compares as maximally distant to everything.
type Histogram struct {
	Bins   int
	Values []float64
}

// Zero returns the zero histogram for the given bin count: all-zero values,
// used when a detection's crop has no surviving area.
func Zero(bins int) Histogram {
	return Histogram{Bins: bins, Values: make([]float64, bins*bins*bins)}
}

// Compute crops frame to box, converts BGR to RGB and accumulates a joint
// histogram over the three channels with bins bins per channel. frame must
// be a 3-channel 8-bit BGR Mat, the native order gocv decodes video into.
func Compute(frame gocv.Mat, box geom.Rectangle, bins int) (Histogram, error) {
	if bins < 1 {
		return Histogram{}, errors.New("histogram: bins must be >= 1")
	}
	if frame.Empty() {
		return Zero(bins), nil
	}
	clipped, ok := box.Clip(frame.Cols(), frame.Rows())
	if !ok {
		return Zero(bins), nil
	}
	region := frame.Region(clipped.ToImageRectangle())
	defer region.Close()
	if region.Empty() {
		return Zero(bins), nil
	}

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(region, &rgb, gocv.ColorBGRToRGB)

	values := make([]float64, bins*bins*bins)
	scale := float64(bins) / 256.0
	rows, cols := rgb.Rows(), rgb.Cols()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			px := rgb.GetVecbAt(y, x)
			rBin := binIndex(px[0], scale, bins)
			gBin := binIndex(px[1], scale, bins)
			bBin := binIndex(px[2], scale, bins)
			values[(rBin*bins+gBin)*bins+bBin]++
		}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	if sum > 0 {
		for i := range values {
			values[i] /= sum
		}
	}
	return Histogram{Bins: bins, Values: values}, nil
}

func binIndex(channel uint8, scale float64, bins int) int {
	idx := int(float64(channel) * scale)
	if idx >= bins {
		idx = bins - 1
	}
	return idx
}

// Bhattacharyya returns the Bhattacharyya distance between two histograms,
// matching OpenCV's cv2.HISTCMP_BHATTACHARYYA definition. Histograms of
// mismatched bin count, or either being the zero histogram (no surviving
// crop), are treated as maximally distant (1.0).
func Bhattacharyya(a, b Histogram) float64 {
	if a.Bins == 0 || b.Bins == 0 || a.Bins != b.Bins || len(a.Values) != len(b.Values) {
		return 1.0
	}
	var meanA, meanB, bc float64
	n := len(a.Values)
	for i := 0; i < n; i++ {
		meanA += a.Values[i]
		meanB += b.Values[i]
		bc += math.Sqrt(a.Values[i] * b.Values[i])
	}
	if meanA == 0 || meanB == 0 {
		return 1.0
	}
	meanA /= float64(n)
	meanB /= float64(n)
	denom := math.Sqrt(meanA * meanB * float64(n) * float64(n))
	if denom == 0 {
		return 1.0
	}
	arg := 1.0 - (1.0/denom)*bc
	if arg < 0 {
		arg = 0
	}
	if arg > 1 {
		arg = 1
	}
	return math.Sqrt(arg)
}

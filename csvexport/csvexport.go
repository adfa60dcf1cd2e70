// Package csvexport writes a persisted CSV artifact of MHT solutions: one
// row per frame, four columns per track holding its (x1,y1,x2,y2) corner
// box, with (-1,-1,-1,-1) for a missed observation.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trackforest/mht-go/geom"
)

// MissingValue is written for a track with no observation at a frame.
const MissingValue = -1

type frameRecord struct {
	trackIDs []int
	coords   map[int]geom.Rectangle
}

// Writer accumulates per-frame solutions and flushes them as a single CSV
// artifact once the stream is complete; the final frame's track ordering
// determines the column layout, since earlier, shorter frames are padded.
type Writer struct {
	frames []frameRecord
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// AppendFrame records one frame's solution: trackIDs is the ordered list of
// chosen track ids, coords is the parallel list of boxes (nil entries are
// missed observations for that track at this frame).
func (w *Writer) AppendFrame(trackIDs []int, coords []*geom.Rectangle) {
	rec := frameRecord{trackIDs: append([]int(nil), trackIDs...), coords: make(map[int]geom.Rectangle, len(trackIDs))}
	for i, id := range trackIDs {
		if i < len(coords) && coords[i] != nil {
			rec.coords[id] = *coords[i]
		}
	}
	w.frames = append(w.frames, rec)
}

// WriteCSV flushes the accumulated frames to path, using the final frame's
// track ordering for columns.
func (w *Writer) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "csvexport: create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	var order []int
	if len(w.frames) > 0 {
		order = w.frames[len(w.frames)-1].trackIDs
	}

	header := []string{"frame"}
	for _, id := range order {
		header = append(header,
			fmt.Sprintf("track_%d_x1", id),
			fmt.Sprintf("track_%d_y1", id),
			fmt.Sprintf("track_%d_x2", id),
			fmt.Sprintf("track_%d_y2", id),
		)
	}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "csvexport: write header")
	}

	for idx, rec := range w.frames {
		row := []string{fmt.Sprintf("%d", idx)}
		for _, id := range order {
			box, ok := rec.coords[id]
			if !ok {
				row = append(row,
					fmt.Sprintf("%d", MissingValue),
					fmt.Sprintf("%d", MissingValue),
					fmt.Sprintf("%d", MissingValue),
					fmt.Sprintf("%d", MissingValue),
				)
				continue
			}
			x1, y1, x2, y2 := box.Corners()
			row = append(row,
				fmt.Sprintf("%f", x1),
				fmt.Sprintf("%f", y1),
				fmt.Sprintf("%f", x2),
				fmt.Sprintf("%f", y2),
			)
		}
		if err := writer.Write(row); err != nil {
			return errors.Wrap(err, "csvexport: write row")
		}
	}
	return nil
}

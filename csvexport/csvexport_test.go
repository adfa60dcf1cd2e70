package csvexport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/trackforest/mht-go/geom"
)

func TestWriteCSVRoundTripIdempotence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	build := func() *Writer {
		w := NewWriter()
		b0 := geom.NewRect(0, 0, 10, 10)
		b1 := geom.NewRect(5, 5, 10, 10)
		w.AppendFrame([]int{0}, []*geom.Rectangle{&b0})
		w.AppendFrame([]int{0, 1}, []*geom.Rectangle{&b1, nil})
		return w
	}

	if err := build().WriteCSV(path); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	path2 := filepath.Join(dir, "out2.csv")
	if err := build().WriteCSV(path2); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	second, err := os.ReadFile(path2)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if string(first) != string(second) {
		t.Error("expected identical CSV output for identical input streams")
	}
}

func TestWriteCSVPadsEarlierFramesWithMissingValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	w := NewWriter()
	b0 := geom.NewRect(0, 0, 10, 10)
	w.AppendFrame([]int{0}, []*geom.Rectangle{&b0})
	b1 := geom.NewRect(1, 1, 10, 10)
	w.AppendFrame([]int{0, 1}, []*geom.Rectangle{&b1, &b1})

	if err := w.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	firstDataRow := lines[1]
	if !strings.Contains(firstDataRow, "-1") {
		t.Errorf("expected missing-value padding in first row: %q", firstDataRow)
	}
}

func TestWriteCSVEmptyWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := NewWriter().WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV on empty writer failed: %v", err)
	}
}

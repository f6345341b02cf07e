package dataset

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"path/filepath"
	"sort"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/pixelforge/textsynth/internal/annotation"
)

var fixtureTexts = []string{"天", "地", "人", "和", "文"}

// buildInputDir writes n small PNG samples and a matching annotations
// file into a fresh directory, mimicking the output of a generation
// run. Sample i sits at position (10+i, 12) with size 20x16 inside a
// 64x48 image.
func buildInputDir(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	records := make([]annotation.Record, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%06d.png", i))
		img := imaging.New(64, 48, color.NRGBA{R: uint8(i * 20), G: 120, B: 200, A: 255})
		if err := imaging.Save(img, path); err != nil {
			t.Fatalf("failed to save fixture image: %v", err)
		}
		records = append(records, annotation.Record{
			Text:      fixtureTexts[i%len(fixtureTexts)],
			Position:  annotation.Point{X: 10 + i, Y: 12},
			Size:      annotation.Size{W: 20, H: 16},
			ImagePath: path,
		})
	}
	if err := annotation.Save(records, filepath.Join(dir, annotation.FileName)); err != nil {
		t.Fatalf("failed to save fixture annotations: %v", err)
	}
	return dir
}

func newTestExporter(t *testing.T, n int) (*Exporter, string) {
	t.Helper()
	dir := buildInputDir(t, n)
	e, err := NewExporterWithRand(dir, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("failed to build exporter: %v", err)
	}
	return e, dir
}

func TestNewExporter_MissingAnnotations(t *testing.T) {
	_, err := NewExporter(t.TempDir())
	if !errors.Is(err, ErrAnnotationsMissing) {
		t.Fatalf("got %v, want ErrAnnotationsMissing", err)
	}
}

func TestNewExporter_CountsRecords(t *testing.T) {
	e, _ := newTestExporter(t, 4)
	if got := e.Count(); got != 4 {
		t.Fatalf("got %d records, want 4", got)
	}
}

func TestSplitDataset(t *testing.T) {
	e, _ := newTestExporter(t, 100)
	part, err := e.SplitDataset(0.7, 0.2, 0.1)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(part.Train) != 70 || len(part.Val) != 20 || len(part.Test) != 10 {
		t.Fatalf("got %d/%d/%d, want 70/20/10",
			len(part.Train), len(part.Val), len(part.Test))
	}

	// Every record index lands in exactly one subset.
	var all []int
	all = append(all, part.Train...)
	all = append(all, part.Val...)
	all = append(all, part.Test...)
	sort.Ints(all)
	for i, idx := range all {
		if idx != i {
			t.Fatalf("partition does not cover records: got %v", all)
		}
	}
}

func TestSplitDataset_InvalidRatios(t *testing.T) {
	e, _ := newTestExporter(t, 10)
	tests := []struct {
		name             string
		train, val, test float64
		wantErr          bool
	}{
		{"sums low", 0.7, 0.2, 0.05, true},
		{"sums high", 0.4, 0.4, 0.4, true},
		{"exact", 0.7, 0.2, 0.1, false},
		{"within tolerance", 0.7, 0.2, 0.095, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.SplitDataset(tt.train, tt.val, tt.test)
			if tt.wantErr && !errors.Is(err, ErrInvalidRatioSum) {
				t.Fatalf("got %v, want ErrInvalidRatioSum", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("split failed: %v", err)
			}
		})
	}
}

// Ratios can stray outside [0, 1] and still pass the sum tolerance;
// the split must stay inside the index range.
func TestSplitDataset_ClampsOutOfRangeRatios(t *testing.T) {
	tests := []struct {
		name                         string
		n                            int
		train, val, test             float64
		wantTrain, wantVal, wantTest int
	}{
		// 400 * 1.005 floors to 401, one past the last index.
		{"overshoot within tolerance", 400, 1.005, 0, 0, 400, 0, 0},
		{"negative with compensating sum", 10, -0.5, 1.5, 0, 0, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestExporter(t, tt.n)
			part, err := e.SplitDataset(tt.train, tt.val, tt.test)
			if err != nil {
				t.Fatalf("split failed: %v", err)
			}
			if len(part.Train) != tt.wantTrain || len(part.Val) != tt.wantVal || len(part.Test) != tt.wantTest {
				t.Errorf("got %d/%d/%d, want %d/%d/%d",
					len(part.Train), len(part.Val), len(part.Test),
					tt.wantTrain, tt.wantVal, tt.wantTest)
			}
		})
	}
}

func TestSplitDataset_Reproducible(t *testing.T) {
	dir := buildInputDir(t, 20)
	a, err := NewExporterWithRand(dir, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("failed to build exporter: %v", err)
	}
	b, err := NewExporterWithRand(dir, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("failed to build exporter: %v", err)
	}

	pa, err := a.SplitDataset(0.7, 0.2, 0.1)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	pb, err := b.SplitDataset(0.7, 0.2, 0.1)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}

	for i := range pa.Train {
		if pa.Train[i] != pb.Train[i] {
			t.Fatalf("same seed produced different partitions: %v vs %v", pa.Train, pb.Train)
		}
	}
}

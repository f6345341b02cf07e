package dataset

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	// Exported images are copied as-is, but label math needs their
	// pixel dimensions, read via DecodeConfig.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/pixelforge/textsynth/internal/annotation"
)

var (
	// ErrAnnotationsMissing is returned when the input directory has no
	// annotations file to export from.
	ErrAnnotationsMissing = errors.New("annotations file missing")

	// ErrInvalidRatioSum is returned when split ratios do not sum to 1.0
	// within a 0.01 tolerance.
	ErrInvalidRatioSum = errors.New("split ratios must sum to 1.0")
)

// Options control how a dataset is exported.
type Options struct {
	// Split partitions the records into train, val and test subsets
	// before writing. When false the whole dataset is written flat.
	Split bool

	// TrainRatio, ValRatio and TestRatio set the subset proportions
	// applied when Split is true. Their sum must be 1.0 within a 0.01
	// tolerance.
	TrainRatio float64
	ValRatio   float64
	TestRatio  float64
}

// Partition groups record indices by subset after a split.
type Partition struct {
	Train []int
	Val   []int
	Test  []int
}

// Exporter re-emits a generated sample set in detection dataset
// formats. Records are loaded once from the annotations file produced
// during generation.
type Exporter struct {
	records []annotation.Record
	rng     *rand.Rand
}

// NewExporter loads the annotations file from inputDir and returns an
// Exporter over its records. The split shuffle is seeded from the
// current time; use NewExporterWithRand for reproducible partitions.
//
// Returns ErrAnnotationsMissing when inputDir holds no annotations
// file.
func NewExporter(inputDir string) (*Exporter, error) {
	return NewExporterWithRand(inputDir, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewExporterWithRand is NewExporter with a caller-supplied random
// source driving the split shuffle.
func NewExporterWithRand(inputDir string, rng *rand.Rand) (*Exporter, error) {
	path := filepath.Join(inputDir, annotation.FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAnnotationsMissing, path)
	}
	records, err := annotation.Load(path)
	if err != nil {
		return nil, err
	}
	return &Exporter{records: records, rng: rng}, nil
}

// Count reports the number of loaded records.
func (e *Exporter) Count() int {
	return len(e.records)
}

// SplitDataset shuffles the record indices and partitions them by the
// given ratios. Subset sizes truncate rather than round: train takes
// int(n*trainRatio) records, val the next int(n*valRatio), and test
// whatever remains, so every record lands in exactly one subset.
// Boundaries are clamped to the index range, so a ratio straying
// outside [0, 1] that still passes the sum tolerance yields empty or
// truncated subsets rather than an out-of-range slice.
func (e *Exporter) SplitDataset(trainRatio, valRatio, testRatio float64) (Partition, error) {
	if err := validateRatios(trainRatio, valRatio, testRatio); err != nil {
		return Partition{}, err
	}
	n := len(e.records)
	perm := e.rng.Perm(n)
	trainEnd := clampIndex(int(float64(n)*trainRatio), 0, n)
	valEnd := clampIndex(trainEnd+int(float64(n)*valRatio), trainEnd, n)
	return Partition{
		Train: perm[:trainEnd],
		Val:   perm[trainEnd:valEnd],
		Test:  perm[valEnd:],
	}, nil
}

// clampIndex bounds v to [lo, hi].
func clampIndex(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func validateRatios(train, val, test float64) error {
	sum := train + val + test
	if sum <= 0.99 || sum >= 1.01 {
		return fmt.Errorf("%w: got %.2f + %.2f + %.2f = %.2f", ErrInvalidRatioSum, train, val, test, sum)
	}
	return nil
}

// subsetWriter is the per-format half of an export. begin prepares the
// output tree once; writeSubset writes one group of records into it. An
// empty subset name means the whole dataset, written without a split.
type subsetWriter interface {
	begin(root string, split bool) error
	writeSubset(records []annotation.Record, root, subset string) error
}

func (e *Exporter) export(w subsetWriter, outputDir string, opts Options) error {
	// An invalid split must not leave a partial output tree.
	if opts.Split {
		if err := validateRatios(opts.TrainRatio, opts.ValRatio, opts.TestRatio); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := w.begin(outputDir, opts.Split); err != nil {
		return err
	}
	if !opts.Split {
		return w.writeSubset(e.records, outputDir, "")
	}
	part, err := e.SplitDataset(opts.TrainRatio, opts.ValRatio, opts.TestRatio)
	if err != nil {
		return err
	}
	groups := []struct {
		name    string
		indices []int
	}{
		{"train", part.Train},
		{"val", part.Val},
		{"test", part.Test},
	}
	for _, g := range groups {
		if err := w.writeSubset(e.pick(g.indices), outputDir, g.name); err != nil {
			return err
		}
	}
	return nil
}

// pick materializes the records selected by a partition.
func (e *Exporter) pick(indices []int) []annotation.Record {
	out := make([]annotation.Record, 0, len(indices))
	for _, i := range indices {
		out = append(out, e.records[i])
	}
	return out
}

// copyFile duplicates src at dst byte for byte.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// imageSize reads the pixel dimensions of an image file without
// decoding the full raster.
func imageSize(path string) (w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Package pipeline wires backgrounds, glyph rendering and dataset
// export into the two operations the command line exposes: generating
// a labeled sample set and exporting it as a detection dataset.
package pipeline

import (
	"bufio"
	"fmt"
	"image/color"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pixelforge/textsynth/internal/annotation"
	"github.com/pixelforge/textsynth/internal/background"
	"github.com/pixelforge/textsynth/internal/dataset"
	"github.com/pixelforge/textsynth/internal/glyph"
	"github.com/pixelforge/textsynth/internal/synth"
)

// GenerateOptions configure a generation run.
type GenerateOptions struct {
	// FontPath names the TTF or OTF file used to render text.
	FontPath string
	// FontSize is the initial font size in pixels.
	FontSize int
	// TextColor is a #RRGGBB fill for the rendered glyphs; empty means
	// black.
	TextColor string

	// BackgroundDir supplies backgrounds from the raster images found
	// in a directory. When empty a synthetic background is generated
	// per BackgroundMode.
	BackgroundDir string
	// BackgroundMode selects the synthetic background, "solid" or
	// "noise"; empty means solid.
	BackgroundMode string
	// BackgroundWidth and BackgroundHeight size the synthetic
	// background; zero falls back to the glyph canvas size.
	BackgroundWidth  int
	BackgroundHeight int
	// BackgroundColor is the #RRGGBB fill used in solid mode; empty
	// means white.
	BackgroundColor string

	// OutputDir receives the composite images and the annotations
	// file.
	OutputDir string
	// Count is the number of samples to generate. With a texts file it
	// caps the lines taken; zero takes them all.
	Count int
	// TextsFile supplies one text per line. When empty, texts come
	// from the common hanzi set.
	TextsFile string

	// Seed fixes the random source; zero seeds from the current time.
	Seed int64
	// Stats logs process memory and throughput after the run.
	Stats bool
}

// Generate renders labeled samples into opts.OutputDir and writes the
// matching annotations file next to them.
func Generate(opts GenerateOptions) error {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	source, err := buildBackgrounds(opts, rng)
	if err != nil {
		return err
	}

	renderer := glyph.NewRenderer()
	if err := renderer.LoadFont(opts.FontPath, opts.FontSize); err != nil {
		return err
	}
	if opts.TextColor != "" {
		c, err := ParseHexColor(opts.TextColor)
		if err != nil {
			return fmt.Errorf("invalid text color: %w", err)
		}
		renderer.SetColor(c)
	}

	texts, err := buildTexts(opts)
	if err != nil {
		return err
	}

	start := time.Now()
	s := synth.NewWithRand(source, renderer, rng)
	records, err := s.BatchSynthesize(texts, opts.OutputDir, 0)
	if err != nil {
		return err
	}
	if err := annotation.Save(records, filepath.Join(opts.OutputDir, annotation.FileName)); err != nil {
		return err
	}

	log.Printf("Generated %d samples in %s", len(records), opts.OutputDir)
	if opts.Stats {
		logStats(len(records), time.Since(start))
	}
	return nil
}

// buildBackgrounds prepares the background source: a directory of real
// images when configured, otherwise a synthetic canvas.
func buildBackgrounds(opts GenerateOptions, rng *rand.Rand) (*background.Source, error) {
	source := background.NewSourceWithRand(rng)
	if opts.BackgroundDir != "" {
		if err := source.LoadDirectory(opts.BackgroundDir); err != nil {
			return nil, err
		}
		return source, nil
	}

	w, h := opts.BackgroundWidth, opts.BackgroundHeight
	if w <= 0 {
		w = glyph.DefaultCanvasSize
	}
	if h <= 0 {
		h = glyph.DefaultCanvasSize
	}
	switch opts.BackgroundMode {
	case "", "solid":
		fill := color.Color(color.White)
		if opts.BackgroundColor != "" {
			c, err := ParseHexColor(opts.BackgroundColor)
			if err != nil {
				return nil, fmt.Errorf("invalid background color: %w", err)
			}
			fill = c
		}
		source.GenerateSolid(w, h, fill)
	case "noise":
		source.GenerateNoise(w, h)
	default:
		return nil, fmt.Errorf("unknown background mode %q", opts.BackgroundMode)
	}
	return source, nil
}

// buildTexts returns the texts to render, one sample each.
func buildTexts(opts GenerateOptions) ([]string, error) {
	if opts.TextsFile == "" {
		return CommonHanzi(opts.Count), nil
	}

	f, err := os.Open(opts.TextsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open texts file: %w", err)
	}
	defer f.Close()

	var texts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		texts = append(texts, line)
		if opts.Count > 0 && len(texts) == opts.Count {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read texts file: %w", err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts file %s has no usable lines", opts.TextsFile)
	}
	return texts, nil
}

// ExportOptions configure an export run.
type ExportOptions struct {
	// InputDir is a generation output directory holding the images and
	// their annotations file.
	InputDir string
	// OutputDir receives the exported dataset.
	OutputDir string
	// Format selects the layout: coco, yolo or createml.
	Format string

	// Split and the ratios pass through to the exporter.
	Split      bool
	TrainRatio float64
	ValRatio   float64
	TestRatio  float64
}

// Export re-emits a generated sample set in the configured dataset
// format.
func Export(opts ExportOptions) error {
	e, err := dataset.NewExporter(opts.InputDir)
	if err != nil {
		return err
	}

	dopts := dataset.Options{
		Split:      opts.Split,
		TrainRatio: opts.TrainRatio,
		ValRatio:   opts.ValRatio,
		TestRatio:  opts.TestRatio,
	}
	format := strings.ToLower(opts.Format)
	switch format {
	case "coco":
		err = e.ExportCOCO(opts.OutputDir, dopts)
	case "yolo":
		err = e.ExportYOLO(opts.OutputDir, dopts)
	case "createml":
		err = e.ExportCreateML(opts.OutputDir, dopts)
	default:
		return fmt.Errorf("unknown export format %q", opts.Format)
	}
	if err != nil {
		return err
	}

	log.Printf("Exported %d samples to %s in %s format", e.Count(), opts.OutputDir, format)
	return nil
}

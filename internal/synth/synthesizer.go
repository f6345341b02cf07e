// Package synth composes rendered glyphs onto backgrounds and produces
// the per-sample annotation records.
package synth

import (
	"fmt"
	"image"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/pixelforge/textsynth/internal/annotation"
	"github.com/pixelforge/textsynth/internal/background"
	"github.com/pixelforge/textsynth/internal/glyph"
)

// rotationRange bounds the random rotation jitter in degrees. Small angles
// keep the text legible.
const rotationRange = 2.0

// insetPx is the per-side correction between the pasted glyph bounds and
// the reported text box: the glyph canvas keeps a padding margin around
// the drawn text, so the stored box pulls in this many pixels on every
// side.
const insetPx = 10

// Synthesizer picks a background, renders and transforms one glyph,
// places it at a random in-bounds position, and records the resulting
// bounding box.
//
// Synthesizer is not safe for concurrent use: it shares one random source
// across components and the renderer's font size is stateful across
// renders.
type Synthesizer struct {
	backgrounds *background.Source
	renderer    *glyph.Renderer
	rng         *rand.Rand
}

// New creates a Synthesizer seeded from the current time.
func New(backgrounds *background.Source, renderer *glyph.Renderer) *Synthesizer {
	return NewWithRand(backgrounds, renderer, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates a Synthesizer drawing placement and transform
// randomness from rng.
func NewWithRand(backgrounds *background.Source, renderer *glyph.Renderer, rng *rand.Rand) *Synthesizer {
	return &Synthesizer{
		backgrounds: backgrounds,
		renderer:    renderer,
		rng:         rng,
	}
}

// RandomPosition picks a uniformly random paste offset that keeps a
// glyphW x glyphH surface inside a bgW x bgH background. Oversized glyph
// extents are clamped to the background extent for the draw, which pins
// that axis to zero; the glyph content itself is never resized.
// Bounds are inclusive on both ends.
func (s *Synthesizer) RandomPosition(glyphW, glyphH, bgW, bgH int) (int, int) {
	if glyphW > bgW {
		glyphW = bgW
	}
	if glyphH > bgH {
		glyphH = bgH
	}
	x := s.rng.Intn(bgW - glyphW + 1)
	y := s.rng.Intn(bgH - glyphH + 1)
	return x, y
}

// RandomTransform produces the per-sample jitter: a rotation uniform in
// [-2, 2) degrees. Perspective is never generated here; callers that want
// a warp set Transform.Perspective explicitly.
func (s *Synthesizer) RandomTransform() annotation.Transform {
	deg := s.rng.Float64()*2*rotationRange - rotationRange
	return annotation.Transform{Rotation: &deg}
}

// Synthesize renders text, applies t, composites the glyph onto a
// randomly chosen background, and returns the composite with its
// annotation record. The record's ImagePath is left empty; BatchSynthesize
// fills it after saving.
func (s *Synthesizer) Synthesize(text string, t annotation.Transform) (*image.NRGBA, annotation.Record, error) {
	bg, err := s.backgrounds.Background()
	if err != nil {
		return nil, annotation.Record{}, err
	}

	surface, err := s.renderer.RenderText(text, glyph.DefaultCanvasSize, glyph.DefaultCanvasSize)
	if err != nil {
		return nil, annotation.Record{}, err
	}
	transformed := glyph.ApplyTransform(surface, t)

	glyphW := transformed.Bounds().Dx()
	glyphH := transformed.Bounds().Dy()
	x, y := s.RandomPosition(glyphW, glyphH, bg.Bounds().Dx(), bg.Bounds().Dy())

	// Overlay works on a copy of the background and honors the glyph's
	// alpha channel, so transparent canvas regions never overwrite it.
	composite := imaging.Overlay(bg, transformed, image.Pt(x, y), 1.0)

	record := annotation.Record{
		Text:      text,
		Position:  annotation.Point{X: x + insetPx, Y: y + insetPx},
		Size:      annotation.Size{W: glyphW - 2*insetPx, H: glyphH - 2*insetPx},
		Transform: t,
	}
	return composite, record, nil
}

// BatchSynthesize generates one sample per text, in input order, saving
// composites as zero-padded PNGs (startIndex+i formatted to six digits)
// under outputDir. Each sample gets a fresh random transform. The returned
// records carry the saved paths and match the input ordering; the caller
// persists them, which lets several batches accumulate into one
// annotations file.
//
// A single failed sample aborts the whole batch. An index past 999999
// widens to more digits rather than wrapping, breaking the fixed-width
// naming; keep startIndex plus the batch length within six digits.
func (s *Synthesizer) BatchSynthesize(texts []string, outputDir string, startIndex int) ([]annotation.Record, error) {
	records := make([]annotation.Record, 0, len(texts))
	for i, text := range texts {
		index := startIndex + i
		composite, record, err := s.Synthesize(text, s.RandomTransform())
		if err != nil {
			return nil, fmt.Errorf("sample %d (%q): %w", index, text, err)
		}

		path := filepath.Join(outputDir, fmt.Sprintf("%06d.png", index))
		if err := imaging.Save(composite, path); err != nil {
			return nil, fmt.Errorf("failed to save sample %d: %w", index, err)
		}
		record.ImagePath = path
		records = append(records, record)
	}
	return records, nil
}

package glyph

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// ErrFontNotLoaded is returned by RenderText before a font has been
// loaded.
var ErrFontNotLoaded = errors.New("no font loaded")

// DefaultCanvasSize is the square glyph canvas edge used by the synthesis
// pipeline.
const DefaultCanvasSize = 200

// fillRatio is the fraction of the canvas the rendered text may occupy;
// the remaining margin is the padding the annotation inset compensates
// for.
const fillRatio = 0.9

// Renderer rasterizes text strings onto transparent canvases.
//
// The renderer holds one parsed font and a current pixel size. RenderText
// rescales the font so the text fits the canvas and keeps the fitted size,
// so each call re-derives its scale from the previous call's result rather
// than from the size passed to LoadFont. Callers that need identical
// sizing across renders must reload the font between calls; FontSize
// exposes the current value.
//
// Renderer is not safe for concurrent use.
type Renderer struct {
	font  *sfnt.Font
	path  string
	size  int
	color color.Color
}

// NewRenderer creates a Renderer with no font and an opaque black fill.
func NewRenderer() *Renderer {
	return &Renderer{color: color.Black}
}

// LoadFont reads and parses a TTF/OTF font file and sets the render size
// in pixels. A failed load leaves any previously loaded font in place.
func (r *Renderer) LoadFont(path string, size int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	r.font = f
	r.path = path
	r.size = size
	return nil
}

// SetColor sets the text fill color.
func (r *Renderer) SetColor(c color.Color) {
	r.color = c
}

// FontSize returns the current font pixel size, including any adjustment
// made by previous RenderText calls.
func (r *Renderer) FontSize() int {
	return r.size
}

// RenderText draws text centered on a transparent canvasW x canvasH
// canvas and returns the glyph surface.
//
// The text's tight bounding box is measured at the current font size and
// the font is rescaled so the box fills at most 90% of the canvas in each
// dimension; the fitted size persists on the renderer. A degenerate
// measurement (empty string, zero-extent box) keeps the current size.
// Placement uses center anchoring at the canvas midpoint, independent of
// the measured box offsets.
func (r *Renderer) RenderText(text string, canvasW, canvasH int) (image.Image, error) {
	if r.font == nil {
		return nil, ErrFontNotLoaded
	}

	face, err := r.newFace(r.size)
	if err != nil {
		return nil, err
	}

	w, h := textExtent(face, text)
	if w > 0 && h > 0 {
		targetW := float64(canvasW) * fillRatio
		targetH := float64(canvasH) * fillRatio
		scale := math.Min(targetW/float64(w), targetH/float64(h))
		r.size = int(math.Round(float64(r.size) * scale))
		face, err = r.newFace(r.size)
		if err != nil {
			return nil, err
		}
	}

	dc := gg.NewContext(canvasW, canvasH)
	dc.SetFontFace(face)
	dc.SetColor(r.color)
	dc.DrawStringAnchored(text, float64(canvasW)/2, float64(canvasH)/2, 0.5, 0.5)
	return dc.Image(), nil
}

// newFace builds a font.Face at the given pixel size. DPI 72 makes point
// size equal pixel size.
func (r *Renderer) newFace(size int) (font.Face, error) {
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build %dpx face for %s: %w", size, r.path, err)
	}
	return face, nil
}

// textExtent measures the tight bounding box of text under face, in
// pixels rounded outward.
func textExtent(face font.Face, text string) (int, int) {
	bounds, _ := font.BoundString(face, text)
	return (bounds.Max.X - bounds.Min.X).Ceil(), (bounds.Max.Y - bounds.Min.Y).Ceil()
}

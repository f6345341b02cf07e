package glyph

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/pixelforge/textsynth/internal/annotation"
)

// Rotate turns the surface about its center by angle degrees,
// counter-clockwise for positive angles. The canvas expands to fully
// contain the rotated content and uncovered regions stay transparent.
func Rotate(img image.Image, angle float64) *image.NRGBA {
	return imaging.Rotate(img, angle, color.NRGBA{})
}

// ApplyTransform applies the steps present in t in their declared order:
// rotation first, then perspective. With no steps set the input is
// returned unchanged.
func ApplyTransform(img image.Image, t annotation.Transform) image.Image {
	out := img
	if t.Rotation != nil {
		out = Rotate(out, *t.Rotation)
	}
	if t.Perspective != nil {
		out = Perspective(out, *t.Perspective)
	}
	return out
}

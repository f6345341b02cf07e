// Package glyph rasterizes text into transparent glyph surfaces and
// applies geometric transforms to them.
//
// A Renderer owns one loaded font plus a fill color and produces
// fixed-size, center-anchored glyph canvases. Free functions implement the
// transform steps: Rotate (canvas-expanding rotation) and Perspective
// (corner warp with soft-clamped displacements). ApplyTransform runs the
// steps of an annotation.Transform in their declared order.
//
// # Font Sizing
//
// RenderText auto-scales the font so the measured text box fills 90% of
// the canvas, and the fitted size persists on the Renderer. Successive
// calls therefore derive their scale from the previous call's result, not
// from the size passed to LoadFont; see Renderer for the contract.
//
// # Surfaces
//
// All functions use 0-based pixel coordinates with (0,0) at the top-left
// corner. Glyph surfaces are straight-alpha RGBA rasters; regions a
// transform uncovers stay fully transparent so composition can use the
// glyph's own alpha as its paste mask.
package glyph

package glyph

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/pixelforge/textsynth/internal/annotation"
)

// maxWarpRatio bounds how far each corner may travel during a perspective
// warp, as a fraction of the smaller surface dimension.
const maxWarpRatio = 0.05

// Perspective warps the surface so its four corners land on dst, after
// soft-clamping each corner's displacement (see clampQuad). The output
// keeps the input dimensions; pixels whose preimage falls outside the
// source are transparent. A degenerate destination quad returns the
// source unchanged.
func Perspective(img image.Image, dst annotation.Quad) *image.NRGBA {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	clamped := clampQuad(dst, w, h)

	// Solve the dst->src mapping directly so each output pixel samples its
	// preimage.
	m, ok := solveHomography(clamped, cornerQuad(w, h))
	if !ok {
		return src
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u, v := m.apply(float64(x), float64(y))
			out.SetNRGBA(x, y, sampleBicubic(src, u, v))
		}
	}
	return out
}

// cornerQuad returns the corner points of a w x h surface in top-left,
// top-right, bottom-right, bottom-left order.
func cornerQuad(w, h int) annotation.Quad {
	fw, fh := float64(w-1), float64(h-1)
	return annotation.Quad{
		{X: 0, Y: 0},
		{X: fw, Y: 0},
		{X: fw, Y: fh},
		{X: 0, Y: fh},
	}
}

// clampQuad soft-limits each corner's requested displacement. The limit is
// maxWarpRatio times the smaller dimension; each axis offset d becomes
// limit*tanh(d/limit), a smooth saturation that is monotonic in the
// request and strictly below the limit in magnitude.
func clampQuad(dst annotation.Quad, w, h int) annotation.Quad {
	corners := cornerQuad(w, h)
	maxOffset := maxWarpRatio * math.Min(float64(w), float64(h))
	if maxOffset <= 0 {
		return corners
	}

	var out annotation.Quad
	for i, c := range corners {
		out[i].X = c.X + maxOffset*math.Tanh((dst[i].X-c.X)/maxOffset)
		out[i].Y = c.Y + maxOffset*math.Tanh((dst[i].Y-c.Y)/maxOffset)
	}
	return out
}

// homography is a 3x3 projective transform with the bottom-right element
// fixed at 1, stored row-major.
type homography [8]float64

// apply maps (x, y) through the transform. A point on the horizon line
// (zero denominator) maps to infinity, which samples as transparent.
func (m homography) apply(x, y float64) (float64, float64) {
	d := m[6]*x + m[7]*y + 1
	if math.Abs(d) < 1e-12 {
		return math.Inf(1), math.Inf(1)
	}
	return (m[0]*x + m[1]*y + m[2]) / d, (m[3]*x + m[4]*y + m[5]) / d
}

// solveHomography finds the projective transform taking each from[i] to
// to[i], via Gauss-Jordan elimination with partial pivoting on the
// standard 8x8 system. ok is false for degenerate quads (collinear or
// coincident corners).
func solveHomography(from, to annotation.Quad) (homography, bool) {
	var a [8][9]float64
	for i := 0; i < 4; i++ {
		x, y := from[i].X, from[i].Y
		u, v := to[i].X, to[i].Y
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}

	for col := 0; col < 8; col++ {
		pivot := col
		for row := col + 1; row < 8; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-9 {
			return homography{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]

		for row := 0; row < 8; row++ {
			if row == col {
				continue
			}
			factor := a[row][col] / a[col][col]
			for k := col; k < 9; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}

	var m homography
	for i := 0; i < 8; i++ {
		m[i] = a[i][8] / a[i][i]
	}
	return m, true
}

// sampleBicubic reads src at the sub-pixel position (u, v) using
// Catmull-Rom interpolation over a 4x4 neighborhood. Taps outside the
// source contribute transparent black.
func sampleBicubic(src *image.NRGBA, u, v float64) color.NRGBA {
	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	if u < -2 || v < -2 || u > float64(w)+1 || v > float64(h)+1 {
		return color.NRGBA{}
	}

	x0 := int(math.Floor(u))
	y0 := int(math.Floor(v))
	fx := u - math.Floor(u)
	fy := v - math.Floor(v)

	var r, g, b, a float64
	for j := -1; j <= 2; j++ {
		wy := cubicWeight(float64(j) - fy)
		if wy == 0 {
			continue
		}
		py := y0 + j
		for i := -1; i <= 2; i++ {
			wx := cubicWeight(float64(i) - fx)
			if wx == 0 {
				continue
			}
			px := x0 + i
			if px < 0 || py < 0 || px >= w || py >= h {
				continue
			}
			c := src.NRGBAAt(px, py)
			wt := wx * wy
			r += wt * float64(c.R)
			g += wt * float64(c.G)
			b += wt * float64(c.B)
			a += wt * float64(c.A)
		}
	}

	return color.NRGBA{R: clampByte(r), G: clampByte(g), B: clampByte(b), A: clampByte(a)}
}

// cubicWeight is the Catmull-Rom kernel (a = -0.5).
func cubicWeight(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t < 1:
		return 1.5*t*t*t - 2.5*t*t + 1
	case t < 2:
		return -0.5*t*t*t + 2.5*t*t - 4*t + 2
	default:
		return 0
	}
}

// clampByte rounds a float channel value into [0, 255]. Cubic kernels can
// overshoot, so saturate instead of wrapping.
func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

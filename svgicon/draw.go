package svgicon

import (
	"math"

	"github.com/srwiley/rasterx"
)

// ViewBoxTransform returns the matrix mapping viewBox coordinates
// onto the intrinsic size, following the preserveAspectRatio setting.
// Without viewBox, user units are scene units and the identity is returned.
func (d *Document) ViewBoxTransform() rasterx.Matrix2D {
	if !d.HasViewBox || d.Width <= 0 || d.Height <= 0 {
		return rasterx.Identity
	}
	vb := d.ViewBox
	sx, sy := d.Width/vb.W, d.Height/vb.H
	if !d.AspectRatio.None {
		s := math.Min(sx, sy)
		if d.AspectRatio.Slice {
			s = math.Max(sx, sy)
		}
		sx, sy = s, s
	}
	tx := -vb.X*sx + d.AspectRatio.X.offset(d.Width-vb.W*sx)
	ty := -vb.Y*sy + d.AspectRatio.Y.offset(d.Height-vb.H*sy)
	return rasterx.Matrix2D{A: sx, D: sy, E: tx, F: ty}
}

// Draw renders the document into the dasher.
// `m` maps scene units to pixels; the viewBox mapping is applied before it.
func (d *Document) Draw(dasher *rasterx.Dasher, m rasterx.Matrix2D, opacity float64) {
	d.icon.Transform = m.Mult(d.ViewBoxTransform())
	d.icon.Draw(dasher, opacity)
}

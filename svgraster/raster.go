// Implements a raster backend to render SVG documents,
// by wrapping rasterx.
package svgraster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/benoitkugler/svg2png/svgerr"
	"github.com/benoitkugler/svg2png/svgicon"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// Limits bounds the size of the pixel buffers a conversion may allocate.
// A zero field disables the corresponding check.
type Limits struct {
	MaxWidth  int
	MaxHeight int
	MaxPixels int64
}

// DefaultLimits accepts images up to 32768 pixels per side
// and 64 megapixels in total (256 MiB of RGBA data).
var DefaultLimits = Limits{
	MaxWidth:  32768,
	MaxHeight: 32768,
	MaxPixels: 64 * 1024 * 1024,
}

// Check returns an ALLOCATION_ERROR if a width x height buffer
// is empty or exceeds the limits.
func (l Limits) Check(width, height int) error {
	if width <= 0 || height <= 0 {
		return svgerr.New(svgerr.CodeAllocation, "invalid image size %dx%d", width, height)
	}
	if l.MaxWidth > 0 && width > l.MaxWidth {
		return svgerr.New(svgerr.CodeAllocation, "image width %d exceeds maximum %d", width, l.MaxWidth)
	}
	if l.MaxHeight > 0 && height > l.MaxHeight {
		return svgerr.New(svgerr.CodeAllocation, "image height %d exceeds maximum %d", height, l.MaxHeight)
	}
	if l.MaxPixels > 0 && int64(width)*int64(height) > l.MaxPixels {
		return svgerr.New(svgerr.CodeAllocation, "image size %dx%d exceeds maximum of %d pixels", width, height, l.MaxPixels)
	}
	return nil
}

// NewImage allocates a transparent width x height buffer,
// after checking the size against `lim`.
func NewImage(width, height int, lim Limits) (*image.RGBA, error) {
	if err := lim.Check(width, height); err != nil {
		return nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

// Fill paints the whole image with `c`, replacing its content.
func Fill(img draw.Image, c color.Color) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Transform maps scene units to pixels. It has no translation component.
type Transform struct {
	ScaleX, ScaleY float64
}

// Scale returns a transform stretching each axis independently.
func Scale(sx, sy float64) Transform { return Transform{ScaleX: sx, ScaleY: sy} }

// Uniform returns a transform applying the same factor on both axis.
func Uniform(s float64) Transform { return Transform{ScaleX: s, ScaleY: s} }

func (t Transform) String() string { return fmt.Sprintf("scale(%g, %g)", t.ScaleX, t.ScaleY) }

// Matrix returns the equivalent rasterx matrix.
func (t Transform) Matrix() rasterx.Matrix2D {
	return rasterx.Identity.Scale(t.ScaleX, t.ScaleY)
}

// Renderer draws documents into an RGBA image.
type Renderer struct {
	dasher *rasterx.Dasher // fills and strokes share the same scanner
	bounds image.Rectangle
}

// NewRenderer returns a renderer targeting `img`, using
// the default rasterx.ScannerGV scanner.
func NewRenderer(img *image.RGBA) *Renderer {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	scanner := rasterx.NewScannerGV(w, h, img, b)
	return &Renderer{dasher: rasterx.NewDasher(w, h, scanner), bounds: b}
}

// Clear resets the path state of the renderer, so that it may be reused.
func (rd *Renderer) Clear() {
	rd.dasher.Clear()
}

// Draw renders the document with the transform `t`.
// Failures of the underlying rasterizer are reported
// as RENDER_ERROR instead of crashing the caller.
func (rd *Renderer) Draw(doc *svgicon.Document, t Transform) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = svgerr.New(svgerr.CodeRender, "rasterizer failed on %dx%d image: %v", rd.bounds.Dx(), rd.bounds.Dy(), r)
		}
	}()
	rd.Clear()
	doc.Draw(rd.dasher, t.Matrix(), 1.0)
	return nil
}

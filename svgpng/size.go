package svgpng

import (
	"math"
	"strconv"

	"github.com/benoitkugler/svg2png/svgerr"
	"github.com/benoitkugler/svg2png/svgicon"
)

// maxSide is far above any sensible limit, and only protects
// the float to int conversions.
const maxSide = math.MaxInt32

func formatDimension(v *int) string {
	if v == nil {
		return "auto"
	}
	return strconv.Itoa(*v)
}

func checkDimension(name string, v *int) error {
	if v != nil && *v <= 0 {
		return svgerr.New(svgerr.CodeInvalidArgument, "%s must be positive, got %d", name, *v)
	}
	return nil
}

func checkScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return svgerr.New(svgerr.CodeInvalidArgument, "scale must be a positive number, got %g", scale)
	}
	return nil
}

// intrinsicSize returns the document size, which must be positive
// to derive a scale factor from it.
func intrinsicSize(doc *svgicon.Document) (w, h float64, err error) {
	w, h = doc.Size()
	if w <= 0 || h <= 0 {
		return 0, 0, svgerr.New(svgerr.CodeInvalidArgument,
			"SVG has no usable intrinsic size (%gx%g): set width and height, or a viewBox", w, h)
	}
	return w, h, nil
}

// toPixels rounds a derived size. Sizes rounding to zero are left
// to the allocation check.
func toPixels(v float64) (int, error) {
	v = math.Round(v)
	if v > maxSide {
		return 0, svgerr.New(svgerr.CodeAllocation, "image size %g is too large", v)
	}
	return int(v), nil
}

// resolveDimensions completes the explicit dimensions with the intrinsic ones.
func resolveDimensions(iw, ih float64, width, height *int) (w, h int, err error) {
	if width != nil {
		w = *width
	} else if w, err = toPixels(iw); err != nil {
		return 0, 0, err
	}
	if height != nil {
		h = *height
	} else if h, err = toPixels(ih); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func scaledDimensions(iw, ih, scale float64) (w, h int, err error) {
	if w, err = toPixels(iw * scale); err != nil {
		return 0, 0, err
	}
	if h, err = toPixels(ih * scale); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

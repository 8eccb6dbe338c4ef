// Package svgpng converts SVG documents to PNG images.
//
// It chains the three external stages of a conversion: parsing
// (svgicon, backed by oksvg), rasterization (svgraster, backed by
// rasterx) and PNG encoding. Each call is independent: the parsed
// document and the pixel buffer live for the duration of the call only,
// so a Converter may be used from several goroutines.
//
// Errors are *svgerr.Error values; use svgerr.GetCode to branch on
// the failure kind.
package svgpng

import (
	"image/color"
	"image/png"
	"io"
	"time"

	"github.com/benoitkugler/svg2png/svgerr"
	"github.com/benoitkugler/svg2png/svgicon"
	"github.com/benoitkugler/svg2png/svgraster"
	"github.com/charmbracelet/log"
)

// Dimensions is the intrinsic size of a document, in CSS pixels.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Options configures a Converter. The zero value is ready to use.
type Options struct {
	// Logger receives the diagnostic lines, at debug level.
	// Nil discards them.
	Logger *log.Logger

	// ErrorMode is the policy for unsupported SVG elements.
	ErrorMode svgicon.ErrorMode

	// Limits bounds the output size. The zero value selects
	// svgraster.DefaultLimits.
	Limits svgraster.Limits

	Compression png.CompressionLevel

	// Background, if not nil, is painted below the drawing.
	// Otherwise the output keeps its transparency.
	Background color.Color
}

// Converter performs SVG to PNG conversions with fixed options.
type Converter struct {
	opts Options
}

// New returns a converter using `opts`.
func New(opts Options) *Converter {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Limits == (svgraster.Limits{}) {
		opts.Limits = svgraster.DefaultLimits
	}
	return &Converter{opts: opts}
}

// Px returns a pointer to n, to be used as an explicit dimension.
func Px(n int) *int { return &n }

// ConvertWithDimensions renders the SVG at the given pixel size.
// A nil width or height defaults to the rounded intrinsic one; when only
// one of them is given, the image is stretched along that axis only.
// An explicit width or height that is not positive fails with
// svgerr.CodeInvalidArgument before the document is parsed. A size
// exceeding the limits is an svgerr.CodeAllocation error.
func (c *Converter) ConvertWithDimensions(svg string, width, height *int) ([]byte, error) {
	logger := c.opts.Logger
	logger.Debug("Converting SVG with dimensions", "width", formatDimension(width), "height", formatDimension(height))
	start := time.Now()

	if err := checkDimension("width", width); err != nil {
		return nil, err
	}
	if err := checkDimension("height", height); err != nil {
		return nil, err
	}
	doc, err := c.parse(svg)
	if err != nil {
		return nil, err
	}
	iw, ih, err := intrinsicSize(doc)
	if err != nil {
		return nil, err
	}
	w, h, err := resolveDimensions(iw, ih, width, height)
	if err != nil {
		return nil, err
	}

	out, err := c.render(doc, w, h, svgraster.Scale(float64(w)/iw, float64(h)/ih))
	if err != nil {
		return nil, err
	}
	logger.Debugf("Converted SVG to %dx%d PNG: %d bytes (%s)", w, h, len(out), time.Since(start).Round(time.Millisecond))
	return out, nil
}

// ConvertWithScale renders the SVG at its intrinsic size multiplied by `scale`,
// which must be a finite positive number.
func (c *Converter) ConvertWithScale(svg string, scale float64) ([]byte, error) {
	logger := c.opts.Logger
	logger.Debug("Converting SVG with scale", "scale", scale)
	start := time.Now()

	if err := checkScale(scale); err != nil {
		return nil, err
	}
	doc, err := c.parse(svg)
	if err != nil {
		return nil, err
	}
	iw, ih, err := intrinsicSize(doc)
	if err != nil {
		return nil, err
	}
	w, h, err := scaledDimensions(iw, ih, scale)
	if err != nil {
		return nil, err
	}

	out, err := c.render(doc, w, h, svgraster.Uniform(scale))
	if err != nil {
		return nil, err
	}
	logger.Debugf("Converted SVG to %dx%d PNG: %d bytes (%s)", w, h, len(out), time.Since(start).Round(time.Millisecond))
	return out, nil
}

// GetDimensions parses the SVG and returns its intrinsic size,
// which may be zero. Nothing is rendered.
func (c *Converter) GetDimensions(svg string) (Dimensions, error) {
	doc, err := c.parse(svg)
	if err != nil {
		return Dimensions{}, err
	}
	w, h := doc.Size()
	c.opts.Logger.Debug("Read SVG dimensions", "width", w, "height", h)
	return Dimensions{Width: w, Height: h}, nil
}

// Convert renders the SVG at its intrinsic size.
func (c *Converter) Convert(svg string) ([]byte, error) {
	return c.ConvertWithDimensions(svg, nil, nil)
}

func (c *Converter) parse(svg string) (*svgicon.Document, error) {
	return svgicon.Parse(svg, c.opts.ErrorMode)
}

func (c *Converter) render(doc *svgicon.Document, width, height int, t svgraster.Transform) ([]byte, error) {
	img, err := svgraster.NewImage(width, height, c.opts.Limits)
	if err != nil {
		return nil, err
	}
	if c.opts.Background != nil {
		svgraster.Fill(img, c.opts.Background)
	}
	c.opts.Logger.Debug("Rendering", "size", img.Bounds().Size(), "transform", t)
	if err := svgraster.NewRenderer(img).Draw(doc, t); err != nil {
		return nil, err
	}
	return encode(img, c.opts.Compression)
}

// ConvertWithDimensions is a shortcut for New(Options{}).ConvertWithDimensions.
func ConvertWithDimensions(svg string, width, height *int) ([]byte, error) {
	return New(Options{}).ConvertWithDimensions(svg, width, height)
}

// ConvertWithScale is a shortcut for New(Options{}).ConvertWithScale.
func ConvertWithScale(svg string, scale float64) ([]byte, error) {
	return New(Options{}).ConvertWithScale(svg, scale)
}

// GetDimensions is a shortcut for New(Options{}).GetDimensions.
func GetDimensions(svg string) (Dimensions, error) {
	return New(Options{}).GetDimensions(svg)
}

// Convert is a shortcut for New(Options{}).Convert.
func Convert(svg string) ([]byte, error) {
	return New(Options{}).Convert(svg)
}

// IsParseError reports whether err comes from malformed SVG input.
func IsParseError(err error) bool { return svgerr.Is(err, svgerr.CodeParse) }

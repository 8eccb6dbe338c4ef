// Provides parsing of SVG documents into a scene
// which can then be rasterized.
// The scene graph itself is built by github.com/srwiley/oksvg;
// this package adds the intrinsic size resolution of the
// root element and the mapping of the viewBox onto it.
// See svgraster for the rendering side.
package svgicon

import (
	"bytes"
	"io"
	"os"

	"github.com/benoitkugler/svg2png/svgerr"
	"github.com/srwiley/oksvg"
)

// Bounds defines a bounding box, such as a viewport.
type Bounds struct{ X, Y, W, H float64 }

// Document holds data from a parsed SVG.
// It is meant to be used for one conversion only:
// drawing mutates the underlying scene transform.
type Document struct {
	// Width and Height are the intrinsic size, in scene units (CSS pixels).
	// They may be zero when the document declares no usable size.
	Width, Height float64

	ViewBox     Bounds
	HasViewBox  bool
	AspectRatio AspectRatio

	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here

	icon *oksvg.SvgIcon
}

// Size returns the intrinsic size of the document.
func (d *Document) Size() (w, h float64) { return d.Width, d.Height }

// Parse parses the SVG source text.
// errMode determines if the parser ignores, errors out, or logs a warning
// when it does not handle an element found in the document.
// All errors are tagged with svgerr.CodeParse.
func Parse(src string, errMode ErrorMode) (*Document, error) {
	return parse([]byte(src), errMode)
}

// ReadDocument reads the document from the given io.Reader.
func ReadDocument(stream io.Reader, errMode ErrorMode) (*Document, error) {
	src, err := io.ReadAll(stream)
	if err != nil {
		return nil, svgerr.Wrap(svgerr.CodeParse, err, "failed to read SVG")
	}
	return parse(src, errMode)
}

// ReadFile reads the document from the named file.
func ReadFile(path string, errMode ErrorMode) (*Document, error) {
	fin, err := os.Open(path)
	if err != nil {
		return nil, svgerr.Wrap(svgerr.CodeParse, err, "failed to open SVG")
	}
	defer fin.Close()
	return ReadDocument(fin, errMode)
}

func parse(src []byte, errMode ErrorMode) (*Document, error) {
	root, err := readRootElement(bytes.NewReader(src))
	if err != nil {
		return nil, svgerr.Wrap(svgerr.CodeParse, err, "failed to parse SVG")
	}
	doc, err := root.document()
	if err != nil {
		return nil, svgerr.Wrap(svgerr.CodeParse, err, "failed to parse SVG")
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(src), errMode.oksvg())
	if err != nil {
		return nil, svgerr.Wrap(svgerr.CodeParse, err, "failed to parse SVG")
	}
	doc.icon = icon
	doc.Titles = icon.Titles
	doc.Descriptions = icon.Descriptions
	return doc, nil
}

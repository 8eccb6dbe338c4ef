package svgicon

import (
	"fmt"
	"strings"
)

// Alignment positions the viewBox inside the viewport along one axis.
type Alignment uint8

const (
	AlignMid Alignment = iota // default value
	AlignMin
	AlignMax
)

func (a Alignment) String() string {
	switch a {
	case AlignMid:
		return "Mid"
	case AlignMin:
		return "Min"
	case AlignMax:
		return "Max"
	default:
		return "<unknown Alignment>"
	}
}

// offset returns the translation to apply given the free space along the axis.
func (a Alignment) offset(free float64) float64 {
	switch a {
	case AlignMin:
		return 0
	case AlignMax:
		return free
	default:
		return free / 2
	}
}

// AspectRatio is the parsed preserveAspectRatio attribute.
// The zero value is the SVG default, "xMidYMid meet".
type AspectRatio struct {
	None  bool // stretch the viewBox non uniformly
	X, Y  Alignment
	Slice bool // cover the viewport instead of fitting in it
}

var alignments = map[string]Alignment{
	"min": AlignMin,
	"mid": AlignMid,
	"max": AlignMax,
}

// parseAspectRatio parses a preserveAspectRatio value.
// Invalid values fall back to the default, as browsers do.
func parseAspectRatio(v string) AspectRatio {
	fields := strings.Fields(v)
	if len(fields) > 0 && fields[0] == "defer" {
		fields = fields[1:]
	}
	if len(fields) == 0 || len(fields) > 2 {
		return AspectRatio{}
	}
	var ar AspectRatio
	align := fields[0]
	if align == "none" {
		ar.None = true
	} else {
		// xMinYMin, xMidYMax, ...
		if len(align) != 8 || align[0] != 'x' || align[4] != 'Y' {
			return AspectRatio{}
		}
		x, okX := alignments[strings.ToLower(align[1:4])]
		y, okY := alignments[strings.ToLower(align[5:8])]
		if !okX || !okY {
			return AspectRatio{}
		}
		ar.X, ar.Y = x, y
	}
	if len(fields) == 2 {
		switch fields[1] {
		case "meet":
		case "slice":
			ar.Slice = true
		default:
			return AspectRatio{}
		}
	}
	return ar
}

// document resolves the intrinsic size of the root element:
// width and height attributes when present, completed
// or replaced by the viewBox otherwise.
func (r rootElement) document() (*Document, error) {
	doc := &Document{AspectRatio: parseAspectRatio(r.aspectRatio)}

	if r.viewBox != "" {
		vb, err := parseViewBox(r.viewBox)
		if err != nil {
			return nil, err
		}
		// a degenerated viewBox disables the mapping, not the document
		if vb.W > 0 && vb.H > 0 {
			doc.ViewBox, doc.HasViewBox = vb, true
		}
	}

	var (
		width, height       float64
		hasWidth, hasHeight bool
	)
	if r.width != "" {
		px, isPercent, err := parseLength(r.width)
		if err != nil {
			return nil, fmt.Errorf("width: %w", err)
		}
		if px < 0 {
			return nil, fmt.Errorf("negative width %q", r.width)
		}
		width, hasWidth = px, !isPercent
	}
	if r.height != "" {
		px, isPercent, err := parseLength(r.height)
		if err != nil {
			return nil, fmt.Errorf("height: %w", err)
		}
		if px < 0 {
			return nil, fmt.Errorf("negative height %q", r.height)
		}
		height, hasHeight = px, !isPercent
	}

	vb := doc.ViewBox
	switch {
	case hasWidth && hasHeight:
	case hasWidth && doc.HasViewBox:
		height = width * vb.H / vb.W
	case hasHeight && doc.HasViewBox:
		width = height * vb.W / vb.H
	case !hasWidth && !hasHeight && doc.HasViewBox:
		width, height = vb.W, vb.H
	}
	doc.Width, doc.Height = width, height
	return doc, nil
}

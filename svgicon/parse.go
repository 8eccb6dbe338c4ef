package svgicon

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/srwiley/oksvg"
	"golang.org/x/net/html/charset"
)

// ErrorMode is the policy applied to SVG elements the parser
// does not support.
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unsupported elements.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode skips unsupported elements and logs them.
	WarnErrorMode
	// StrictErrorMode fails on the first unsupported element.
	StrictErrorMode
)

func (m ErrorMode) String() string {
	switch m {
	case IgnoreErrorMode:
		return "ignore"
	case WarnErrorMode:
		return "warn"
	case StrictErrorMode:
		return "strict"
	default:
		return "<unknown ErrorMode>"
	}
}

// ParseErrorMode returns the mode named s ("ignore", "warn" or "strict").
// The empty string selects IgnoreErrorMode.
func ParseErrorMode(s string) (ErrorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return IgnoreErrorMode, nil
	case "warn":
		return WarnErrorMode, nil
	case "strict":
		return StrictErrorMode, nil
	}
	return IgnoreErrorMode, fmt.Errorf("unknown error mode %q (expected ignore, warn or strict)", s)
}

func (m ErrorMode) oksvg() oksvg.ErrorMode {
	switch m {
	case WarnErrorMode:
		return oksvg.WarnErrorMode
	case StrictErrorMode:
		return oksvg.StrictErrorMode
	default:
		return oksvg.IgnoreErrorMode
	}
}

var (
	errNoRoot        = errors.New("invalid svg xml icon")
	errParamMismatch = errors.New("param mismatch")
)

// rootElement stores the attributes of the top level svg element
// which decide the intrinsic size.
type rootElement struct {
	width, height string
	viewBox       string
	aspectRatio   string
}

// readRootElement scans the stream up to the first start element,
// which must be an svg element.
func readRootElement(stream io.Reader) (rootElement, error) {
	var root rootElement
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return root, errNoRoot
			}
			return root, err
		}
		se, ok := t.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "svg" {
			return root, fmt.Errorf("root element is <%s>, not <svg>", se.Name.Local)
		}
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "width":
				root.width = attr.Value
			case "height":
				root.height = attr.Value
			case "viewBox":
				root.viewBox = attr.Value
			case "preserveAspectRatio":
				root.aspectRatio = attr.Value
			}
		}
		return root, nil
	}
}

// unitFactors converts absolute length units to CSS pixels (96 DPI).
var unitFactors = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 4. / 3.,
	"pc": 16,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
}

// parseLength parses an absolute length, returning its value in pixels.
// Percentages are reported with isPercent and a zero value, since they
// have no meaning for the outermost element.
func parseLength(v string) (px float64, isPercent bool, err error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		_, err = strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "%")), 64)
		return 0, true, err
	}
	i := len(v)
	for i > 0 && unicode.IsLetter(rune(v[i-1])) {
		i--
	}
	num, unit := strings.TrimSpace(v[:i]), strings.ToLower(v[i:])
	factor, ok := unitFactors[unit]
	if !ok {
		return 0, false, fmt.Errorf("unsupported length unit %q", unit)
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false, err
	}
	return f * factor, false, nil
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
}

func parseViewBox(v string) (Bounds, error) {
	fields := splitOnCommaOrSpace(v)
	if len(fields) != 4 {
		return Bounds{}, fmt.Errorf("viewBox: %w", errParamMismatch)
	}
	var points [4]float64
	for i, f := range fields {
		p, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("viewBox: %w", err)
		}
		points[i] = p
	}
	return Bounds{X: points[0], Y: points[1], W: points[2], H: points[3]}, nil
}

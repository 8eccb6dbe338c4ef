package svgpng

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/benoitkugler/svg2png/svgerr"
)

func encode(img image.Image, level png.CompressionLevel) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: level}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, svgerr.Wrap(svgerr.CodeEncoding, err, "failed to encode PNG")
	}
	return buf.Bytes(), nil
}

// ParseCompression returns the PNG compression level named s:
// "default" (or empty), "none", "fast" or "best".
func ParseCompression(s string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "fast":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	}
	return png.DefaultCompression, fmt.Errorf("unknown compression level %q (expected default, none, fast or best)", s)
}

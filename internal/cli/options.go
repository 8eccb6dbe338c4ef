package cli

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/benoitkugler/svg2png/internal/config"
	"github.com/benoitkugler/svg2png/svgicon"
	"github.com/benoitkugler/svg2png/svgpng"
)

// parseColor accepts "#rgb" and "#rrggbb" colors.
// The empty string, "none" and "transparent" return nil.
func parseColor(s string) (color.Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "transparent":
		return nil, nil
	}
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// converterOptions translates the render section of the configuration.
func converterOptions(r config.Render, logger *log.Logger) (svgpng.Options, error) {
	mode, err := svgicon.ParseErrorMode(r.ErrorMode)
	if err != nil {
		return svgpng.Options{}, err
	}
	level, err := svgpng.ParseCompression(r.Compression)
	if err != nil {
		return svgpng.Options{}, err
	}
	bg, err := parseColor(r.Background)
	if err != nil {
		return svgpng.Options{}, err
	}
	return svgpng.Options{
		Logger:      logger,
		ErrorMode:   mode,
		Limits:      r.Limits(),
		Compression: level,
		Background:  bg,
	}, nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/benoitkugler/svg2png/svgerr"
	"github.com/benoitkugler/svg2png/svgpng"
)

type convertOpts struct {
	output      string
	width       int
	height      int
	scale       float64
	background  string
	compression string
	strict      bool
}

func newConvertCmd(a *app) *cobra.Command {
	var opts convertOpts
	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Render SVG files to PNG",
		Long: `Render SVG files to PNG.

With a single input, -o names the output file ("-" for stdout); it defaults
to the input path with a .png extension. With several inputs, -o names the
output directory. "-" as input reads the SVG from stdin.

By default the image has the intrinsic size of the document. --width and
--height override one or both dimensions (stretching the drawing), while
--scale multiplies the intrinsic size.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, a, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or directory for several inputs")
	cmd.Flags().IntVar(&opts.width, "width", 0, "output width in pixels (default: intrinsic)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "output height in pixels (default: intrinsic)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "scale factor applied to the intrinsic size")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color (#rgb or #rrggbb), transparent by default")
	cmd.Flags().StringVar(&opts.compression, "compression", "", "PNG compression: default, none, fast or best")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on unsupported SVG elements")
	return cmd
}

// job converts one document.
type job func(svg string) ([]byte, error)

func (o convertOpts) job(conv *svgpng.Converter, cmd *cobra.Command) (job, error) {
	scaleSet := cmd.Flags().Changed("scale")
	if scaleSet && (cmd.Flags().Changed("width") || cmd.Flags().Changed("height")) {
		return nil, fmt.Errorf("--scale cannot be combined with --width or --height")
	}
	if scaleSet {
		return func(svg string) ([]byte, error) { return conv.ConvertWithScale(svg, o.scale) }, nil
	}
	var width, height *int
	if cmd.Flags().Changed("width") {
		width = svgpng.Px(o.width)
	}
	if cmd.Flags().Changed("height") {
		height = svgpng.Px(o.height)
	}
	return func(svg string) ([]byte, error) { return conv.ConvertWithDimensions(svg, width, height) }, nil
}

func runConvert(cmd *cobra.Command, a *app, inputs []string, opts convertOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	render := a.cfg.Render
	if opts.background != "" {
		render.Background = opts.background
	}
	if opts.compression != "" {
		render.Compression = opts.compression
	}
	if opts.strict {
		render.ErrorMode = "strict"
	}
	convOpts, err := converterOptions(render, logger)
	if err != nil {
		return err
	}
	do, err := opts.job(svgpng.New(convOpts), cmd)
	if err != nil {
		return err
	}

	if len(inputs) == 1 {
		output := opts.output
		if output == "" {
			output = defaultOutput(inputs[0])
		}
		prog := newProgress(logger)
		if err := convertFile(cmd, do, inputs[0], output); err != nil {
			return err
		}
		if output != "-" {
			prog.done(fmt.Sprintf("Generated %s", output))
		}
		return nil
	}
	return convertBatch(ctx, cmd, do, inputs, opts.output)
}

// defaultOutput replaces the extension of the input by .png.
func defaultOutput(input string) string {
	if input == "-" {
		return "-"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
}

func readInput(cmd *cobra.Command, input string) (string, error) {
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func convertFile(cmd *cobra.Command, do job, input, output string) error {
	svg, err := readInput(cmd, input)
	if err != nil {
		return err
	}
	data, err := do(svg)
	if err != nil {
		return fmt.Errorf("%s: %s (%s)", input, svgerr.UserMessage(err), svgerr.GetCode(err))
	}
	if output == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

// convertBatch converts every input into dir, or next to the input
// when dir is empty. Failures are reported at the end.
func convertBatch(ctx context.Context, cmd *cobra.Command, do job, inputs []string, dir string) error {
	logger := loggerFromContext(ctx)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	prog := newProgress(logger)
	bar := progressbar.NewOptions(
		len(inputs),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	var failed []string
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if input == "-" {
			return fmt.Errorf("stdin can't be used with several inputs")
		}
		output := defaultOutput(input)
		if dir != "" {
			output = filepath.Join(dir, filepath.Base(output))
		}
		if err := convertFile(cmd, do, input, output); err != nil {
			logger.Error(err.Error())
			failed = append(failed, input)
		} else {
			logger.Debugf("Generated %s", output)
		}
		_ = bar.Add(1)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), summary(len(inputs), failed))
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), len(inputs))
	}
	prog.done(fmt.Sprintf("Converted %d files", len(inputs)))
	return nil
}

func summary(total int, failed []string) string {
	if len(failed) == 0 {
		return styleSuccess.Render(iconSuccess) + " " + fmt.Sprintf("%s files converted", styleNumber.Render(fmt.Sprint(total)))
	}
	return styleError.Render(iconError) + " " + fmt.Sprintf("%s of %d files failed: %s",
		styleNumber.Render(fmt.Sprint(len(failed))), total, styleDim.Render(strings.Join(failed, ", ")))
}

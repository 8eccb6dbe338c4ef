package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/benoitkugler/svg2png/svgerr"
	"github.com/benoitkugler/svg2png/svgpng"
)

func newDimsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dims FILE",
		Short: "Print the intrinsic size of an SVG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svg, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			opts, err := converterOptions(a.cfg.Render, loggerFromContext(cmd.Context()))
			if err != nil {
				return err
			}
			dims, err := svgpng.New(opts).GetDimensions(svg)
			if err != nil {
				return fmt.Errorf("%s: %s (%s)", args[0], svgerr.UserMessage(err), svgerr.GetCode(err))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				return enc.Encode(dims)
			}
			fmt.Fprintf(out, "%s %s %s %s\n",
				styleTitle.Render(args[0]),
				styleNumber.Render(formatFloat(dims.Width)),
				styleDim.Render("x"),
				styleNumber.Render(formatFloat(dims.Height)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the size as JSON")
	return cmd
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

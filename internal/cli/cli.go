// Package cli implements the svg2png command-line interface.
//
// # Commands
//
//   - convert: render SVG files to PNG
//   - dims: print the intrinsic size of an SVG file
//   - serve: run the HTTP conversion API
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which
// includes the diagnostic lines of the converter. Loggers are passed
// through context.Context. Messages written to the standard library
// logger are forwarded at warn level.
//
// # Configuration
//
// --config points to a TOML file (see internal/config). Command flags
// override the values of the file.
package cli

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/benoitkugler/svg2png/internal/config"
)

var version = "dev"

// SetVersion sets the version displayed by --version.
func SetVersion(v string) { version = v }

// app holds the state shared by the commands, filled before they run.
type app struct {
	configPath string
	verbose    bool
	cfg        config.Config
}

// Execute runs the CLI with the process arguments.
func Execute(ctx context.Context) error {
	return newRootCmd(os.Stderr).ExecuteContext(ctx)
}

// newRootCmd builds the command tree. Logs go to `logOut`.
func newRootCmd(logOut io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "svg2png",
		Short:         "svg2png renders SVG documents to PNG images",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			level := cfg.Log.LogLevel()
			if a.verbose {
				level = log.DebugLevel
			}
			logger := newLogger(logOut, level)
			// the renderer reports unsupported elements through the standard logger
			stdlog.SetFlags(0)
			stdlog.SetOutput(logger.StandardLog(log.StandardLogOptions{ForceLevel: log.WarnLevel}).Writer())
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("svg2png %s\n", version))
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "TOML configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newDimsCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}

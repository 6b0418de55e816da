package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/scfetch/internal/logging"
	"github.com/ZebulonRouseFrantzich/scfetch/internal/platform"
)

// app carries state shared by every subcommand.
type app struct {
	out       io.Writer
	errOut    io.Writer
	logLevel  string
	logFormat string
	detector  platform.Detector
}

// logger builds the run's logger. The json format writes one zerolog
// object per line, for CI logs.
func (a *app) logger() logging.Logger {
	if a.logFormat == "json" {
		zl := zerolog.New(a.errOut).Level(logging.ParseLevel(a.logLevel)).With().Timestamp().Logger()
		return logging.FromZerolog(zl)
	}
	return logging.New(a.errOut, a.logLevel)
}

// detectHost runs platform detection and logs what it found. Failure is not
// fatal: the caller falls back to runtime values.
func (a *app) detectHost(ctx context.Context, log logging.Logger) *platform.Info {
	info, err := a.detector.Detect(ctx)
	if err != nil {
		log.Warn("host detection failed", "error", err)
		return nil
	}
	log.Debug("detected host",
		"os", info.OS,
		"arch", info.Arch,
		"arch_raw", info.ArchRaw,
		"distro", info.Distro,
		"distro_version", info.Version,
	)
	return info
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{
		out:      out,
		errOut:   errOut,
		detector: platform.NewDetector(),
	}

	cmd := &cobra.Command{
		Use:   "scfetch",
		Short: "Download and install ShellCheck",
		Long: `scfetch downloads a prebuilt ShellCheck release for a platform and
architecture, extracts the executable and installs it at a path you choose.

Settings are taken from flags first, then from scfetch.lua, then from the
built-in release table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.logFormat {
			case "console", "json":
				return nil
			default:
				return fmt.Errorf("--log-format: unknown format %q (want console or json)", a.logFormat)
			}
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "console", "log format (console, json)")

	cmd.AddCommand(
		newInstallCmd(a),
		newResolveCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/scfetch/internal/binary"
	"github.com/ZebulonRouseFrantzich/scfetch/internal/config"
	"github.com/ZebulonRouseFrantzich/scfetch/internal/logging"
	"github.com/ZebulonRouseFrantzich/scfetch/internal/release"
)

// installFlags holds the raw flag values of `scfetch install`.
type installFlags struct {
	url        string
	platform   string
	arch       string
	version    string
	sha256     string
	mode       string
	tempDir    string
	configPath string
}

// installPlan is the merged result of flags, settings file and defaults.
type installPlan struct {
	request binary.Request
	version string
	mode    os.FileMode
	tempDir string
}

func newInstallCmd(a *app) *cobra.Command {
	var f installFlags

	cmd := &cobra.Command{
		Use:   "install [DEST]",
		Short: "Install ShellCheck at DEST",
		Long: `Download the ShellCheck release for the target platform, extract the
executable, set its mode and move it to DEST.

DEST may also come from the destination field of scfetch.lua. Nothing is
written to DEST unless every step succeeds.`,
		Example: `  scfetch install bin/shellcheck
  scfetch install --platform linux --arch arm64 /opt/tools/shellcheck
  scfetch install --url https://mirror.example.com/sc.tar.xz --sha256 <digest> bin/shellcheck`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dest string
			if len(args) == 1 {
				dest = args[0]
			}
			return runInstall(cmd.Context(), a, f, dest, cmd.Flags().Changed)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.url, "url", "", "download URL, used verbatim instead of the release table")
	flags.StringVar(&f.platform, "platform", "", "target platform (linux, darwin, windows, win32, ...)")
	flags.StringVar(&f.arch, "arch", "", "target architecture (amd64, arm64, x64, aarch64, ...)")
	flags.StringVar(&f.version, "version", "", "ShellCheck version (default from the release table)")
	flags.StringVar(&f.sha256, "sha256", "", "expected SHA-256 of the downloaded archive")
	flags.StringVar(&f.mode, "mode", "", "file mode of the installed executable, in octal")
	flags.StringVar(&f.tempDir, "temp-dir", "", "parent directory for the working directory")
	flags.StringVar(&f.configPath, "config", "", "settings file (default ./"+config.DefaultFileName+" if present)")

	return cmd
}

func runInstall(ctx context.Context, a *app, f installFlags, dest string, changed func(string) bool) error {
	log := a.logger()
	info := a.detectHost(ctx, log)

	settings, err := loadSettings(ctx, a, f.configPath, log)
	if err != nil {
		return err
	}

	plan, err := mergeInstall(f, dest, settings, changed)
	if err != nil {
		return err
	}
	if plan.request.Platform == "" && info != nil {
		plan.request.Platform = info.OS
	}
	if plan.request.Architecture == "" && info != nil {
		plan.request.Architecture = info.Arch
	}

	inst, err := binary.NewInstaller(binary.Options{
		Logger:  log,
		TempDir: plan.tempDir,
		Version: plan.version,
		Mode:    plan.mode,
	})
	if err != nil {
		return err
	}

	res, err := inst.Install(ctx, plan.request)
	if err != nil {
		return err
	}

	verified := ""
	if res.Verified {
		verified = ", checksum verified"
	}
	fmt.Fprintf(a.out, "Installed %s (%s/%s%s) in %s\n",
		res.Path, res.Platform, res.Architecture, verified, res.Duration.Round(time.Millisecond))
	return nil
}

// loadSettings parses the settings file. An explicit path must exist; the
// default ./scfetch.lua is optional.
func loadSettings(ctx context.Context, a *app, path string, log logging.Logger) (*config.Settings, error) {
	explicit := path != ""
	if !explicit {
		path = config.DefaultFileName
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return &config.Settings{}, nil
		}
	}

	log.Debug("loading settings", "path", path)
	s, err := config.NewParser(a.detector).WithLogger(log).ParseFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %s", path, config.FormatError(err, false))
	}
	return s, nil
}

// mergeInstall applies flag > settings file > default precedence. A flag
// counts as set when changed reports it, even if set to "".
func mergeInstall(f installFlags, dest string, s *config.Settings, changed func(string) bool) (installPlan, error) {
	pick := func(flag, flagVal, fileVal string) string {
		if changed(flag) {
			return flagVal
		}
		return fileVal
	}

	plan := installPlan{
		request: binary.Request{
			Destination:  dest,
			URL:          pick("url", f.url, s.URL),
			Platform:     pick("platform", f.platform, s.Platform),
			Architecture: pick("arch", f.arch, s.Arch),
			SHA256:       pick("sha256", f.sha256, s.SHA256),
		},
		version: pick("version", f.version, s.Version),
		mode:    s.Mode,
		tempDir: f.tempDir,
	}

	if plan.request.Destination == "" {
		plan.request.Destination = s.Destination
	}
	if plan.request.Destination == "" {
		return installPlan{}, errors.New("destination is required: pass DEST or set shellcheck.destination in " + config.DefaultFileName)
	}

	if changed("mode") {
		m, err := release.ParseMode(f.mode)
		if err != nil {
			return installPlan{}, fmt.Errorf("--mode: %w", err)
		}
		plan.mode = m
	}

	return plan, nil
}

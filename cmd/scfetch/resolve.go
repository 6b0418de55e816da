package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/scfetch/internal/binary"
	"github.com/ZebulonRouseFrantzich/scfetch/internal/platform"
	"github.com/ZebulonRouseFrantzich/scfetch/internal/release"
)

func newResolveCmd(a *app) *cobra.Command {
	var goos, goarch, version string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the release archive for a platform",
		Long: `Print the vendor architecture token and the default download URL that
install would use. No network access is made.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := a.logger()
			if info := a.detectHost(cmd.Context(), log); info != nil {
				if goos == "" {
					goos = info.OS
				}
				if goarch == "" {
					goarch = info.Arch
				}
			}

			table, err := release.Load()
			if err != nil {
				return err
			}

			vendor, err := binary.ResolveArchitecture(table, goos, goarch)
			if err != nil {
				return err
			}
			url, err := table.DownloadURL(version, goos, vendor)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "platform: %s\n", platform.NormalizeOS(goos))
			fmt.Fprintf(a.out, "arch:     %s\n", platform.NormalizeArch(goarch))
			fmt.Fprintf(a.out, "vendor:   %s\n", vendor)
			fmt.Fprintf(a.out, "url:      %s\n", url)
			return nil
		},
	}

	cmd.Flags().StringVar(&goos, "platform", "", "target platform (default: this host)")
	cmd.Flags().StringVar(&goarch, "arch", "", "target architecture (default: this host)")
	cmd.Flags().StringVar(&version, "version", "", "ShellCheck version (default from the release table)")
	return cmd
}

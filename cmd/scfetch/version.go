package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/scfetch/internal/release"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := release.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "scfetch %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(a.out, "default ShellCheck %s\n", table.Version())
			return nil
		},
	}
}

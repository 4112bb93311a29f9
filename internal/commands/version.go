package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func (a *App) newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the current version",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if short, _ := cmd.Flags().GetBool("short"); short {
				fmt.Fprintln(w, a.GitSHA)
				return nil
			}
			fmt.Fprintf(w, "Git SHA: %s\n", a.GitSHA)
			if a.GitDirty != "" {
				fmt.Fprintf(w, "Git Dirty: true\n")
			}
			fmt.Fprintf(w, "Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
	cmd.Flags().Bool("short", false, "Print only the git SHA")
	return cmd
}

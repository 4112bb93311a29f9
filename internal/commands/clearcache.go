package commands

import (
	"fmt"

	"emperror.dev/errors"
	"github.com/spf13/cobra"
)

func (a *App) newClearCacheCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clearcache",
		Short: "Clear the fetch cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.Cache.Flush()
			if err := a.Cache.SaveToFile(a.Config.CacheFile); err != nil {
				return errors.Wrap(err, "saving cache")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
}

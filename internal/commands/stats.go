package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stahnma/gh-trending/internal/format"
)

func (a *App) newStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the size and freshness of the stored datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.Pipeline(cmd.Context())
			if err != nil {
				return err
			}
			stats := p.Stats(cmd.Context())
			w := cmd.OutOrStdout()

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return format.WriteJSON(w, stats, a.Config.SlackMode)
			}

			for _, s := range stats {
				switch {
				case !s.Exists:
					warnColor.Fprintf(w, "%s: does not exist\n", s.Name)
				case s.Error != "":
					failColor.Fprintf(w, "%s: unreadable: %s\n", s.Name, s.Error)
				case a.Config.SlackMode:
					fmt.Fprintf(w, ":bar_chart: `%s` has %d repositories, last updated %s\n", s.Name, s.ItemCount, s.LastUpdated)
				default:
					fmt.Fprintf(w, "%s: %d repositories, last updated %s\n", s.Name, s.ItemCount, s.LastUpdated)
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the statistics as JSON")
	return cmd
}

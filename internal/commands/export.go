package commands

import (
	"context"
	"io"

	"emperror.dev/errors"
	"github.com/spf13/cobra"

	"github.com/stahnma/gh-trending/internal/format"
	"github.com/stahnma/gh-trending/internal/store"
	"github.com/stahnma/gh-trending/internal/trending"
)

func (a *App) newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [flags]",
		Short: "Export a stored dataset in JSON format",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetBool("raw")
			return a.ExportJSON(cmd.Context(), cmd.OutOrStdout(), raw)
		},
	}
	cmd.Flags().BoolP("raw", "r", false, "Export the raw dataset instead of the processed one")
	return cmd
}

// ExportJSON writes the processed dataset, or the raw one when raw is set,
// to w.
func (a *App) ExportJSON(ctx context.Context, w io.Writer, raw bool) error {
	if err := a.ensureStore(ctx); err != nil {
		return err
	}
	name := store.ProcessedName
	if raw {
		name = store.RawName
	}

	data, err := a.Store.Read(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "reading %s", name)
	}
	doc, err := trending.DecodeDocument(data)
	if err != nil {
		return err
	}
	return format.WriteJSON(w, doc, a.Config.SlackMode)
}

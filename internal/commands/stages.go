package commands

import (
	"fmt"
	"io"

	"emperror.dev/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stahnma/gh-trending/internal/pipeline"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
)

// printResult writes one status line for a stage result.
func printResult(w io.Writer, r pipeline.Result) {
	switch {
	case r.OK && r.Missing():
		warnColor.Fprint(w, "SKIP")
	case r.OK:
		okColor.Fprint(w, "OK  ")
	default:
		failColor.Fprint(w, "FAIL")
	}
	fmt.Fprintf(w, " %-17s %s\n", r.Stage, r.Summary)
}

func (a *App) newFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch trending repositories and merge them into the raw dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.Pipeline(cmd.Context())
			if err != nil {
				return err
			}
			r := p.Fetch(cmd.Context())
			printResult(cmd.OutOrStdout(), r)
			if !r.OK {
				return errors.Wrap(r.Err, "fetch failed")
			}
			return nil
		},
	}
}

func (a *App) newProcessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Rebuild the processed dataset from the raw dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.Pipeline(cmd.Context())
			if err != nil {
				return err
			}
			r := p.Process(cmd.Context())
			printResult(cmd.OutOrStdout(), r)
			if !r.OK {
				return errors.Wrap(r.Err, "process failed")
			}
			return nil
		},
	}
}

func (a *App) newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Apply the retention policy to both datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.Pipeline(cmd.Context())
			if err != nil {
				return err
			}
			var failed error
			for _, r := range p.Cleanup(cmd.Context()) {
				printResult(cmd.OutOrStdout(), r)
				if !r.OK {
					failed = errors.Append(failed, r.Err)
				}
			}
			if failed != nil {
				return errors.Wrap(failed, "cleanup failed")
			}
			return nil
		},
	}
}

func (a *App) newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run a full update: fetch, process and cleanup",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.Pipeline(cmd.Context())
			if err != nil {
				return err
			}
			report := p.FullUpdate(cmd.Context())
			w := cmd.OutOrStdout()
			for _, r := range report.Results {
				printResult(w, r)
			}
			if !report.OK {
				return errors.Errorf("full update %s failed", report.RunID)
			}
			return nil
		},
	}
}

package commands

import (
	"context"
	"os/signal"
	"syscall"

	"emperror.dev/errors"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/stahnma/gh-trending/internal/pipeline"
)

func (a *App) newScheduleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run full updates and cleanups on a schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, err := a.Pipeline(ctx)
			if err != nil {
				return err
			}
			c, err := a.newScheduler(ctx, p)
			if err != nil {
				return err
			}

			if skip, _ := cmd.Flags().GetBool("no-initial"); !skip {
				a.fullUpdate(ctx, p)
			}

			c.Start()
			a.Log.WithField("entries", len(c.Entries())).Info("scheduler started")
			<-ctx.Done()

			a.Log.Info("stopping scheduler")
			<-c.Stop().Done()
			return nil
		},
	}
	cmd.Flags().Bool("no-initial", false, "Do not run a full update on start")
	return cmd
}

// newScheduler registers the full update and cleanup jobs.
func (a *App) newScheduler(ctx context.Context, p *pipeline.Pipeline) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(a.Config.FullUpdateSchedule, func() { a.fullUpdate(ctx, p) }); err != nil {
		return nil, errors.Wrapf(err, "invalid FULL_UPDATE_SCHEDULE %q", a.Config.FullUpdateSchedule)
	}
	if _, err := c.AddFunc(a.Config.CleanupSchedule, func() {
		for _, r := range p.Cleanup(ctx) {
			if !r.OK {
				a.Log.WithError(r.Err).WithField("stage", r.Stage).Error("scheduled cleanup failed")
			}
		}
	}); err != nil {
		return nil, errors.Wrapf(err, "invalid CLEANUP_SCHEDULE %q", a.Config.CleanupSchedule)
	}
	return c, nil
}

func (a *App) fullUpdate(ctx context.Context, p *pipeline.Pipeline) {
	report := p.FullUpdate(ctx)
	if !report.OK {
		a.Log.WithField("run_id", report.RunID).Error("scheduled full update failed")
	}
	if err := a.SaveCache(); err != nil {
		a.Log.WithError(err).Warn("failed to save cache")
	}
}

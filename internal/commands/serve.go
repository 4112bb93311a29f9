package commands

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"emperror.dev/errors"
	"github.com/spf13/cobra"

	"github.com/stahnma/gh-trending/internal/server"
	"github.com/stahnma/gh-trending/internal/store"
)

func (a *App) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the processed dataset over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := a.ensureStore(ctx); err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("addr")

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(a.Store, store.ProcessedName, a.Log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				a.Log.Infof("starting API server on %s", addr)
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrap(err, "API server")
				}
				return nil
			case <-ctx.Done():
			}

			a.Log.Info("shutting down API server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().String("addr", a.Config.ListenAddr, "Listen address")
	return cmd
}

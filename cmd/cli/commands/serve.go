package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/volunteer-hub/pkg/notify"
	"github.com/jakechorley/volunteer-hub/pkg/server"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the signup API and live notification streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hub := notify.NewHub(app.Logger, notify.DefaultBufferSize)

			api := server.New(server.Deps{
				Store:     app.Database,
				Approver:  app.NewApprover(hub),
				Evaluator: app.Evaluator,
				Hub:       hub,
				Logger:    app.Logger,
				Now:       app.Now,
			})

			httpServer := &http.Server{
				Addr:              app.Cfg.ListenAddr,
				Handler:           api,
				ReadHeaderTimeout: readHeaderTimeout,
			}

			g, ctx := errgroup.WithContext(app.Ctx)

			// Stopping the hub closes every open stream so Shutdown is not held up by them
			g.Go(func() error {
				hub.Run(ctx)
				return nil
			})

			g.Go(func() error {
				app.Logger.Info("Listening",
					zap.String("addr", httpServer.Addr),
					zap.Bool("auto_accept", app.Cfg.AutoAccept.Enabled))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server failed: %w", err)
				}
				return nil
			})

			g.Go(func() error {
				<-ctx.Done()
				app.Logger.Info("Shutting down")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("failed to shut down http server: %w", err)
				}
				return nil
			})

			return g.Wait()
		},
	}
}

package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the propagation scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.close()

			if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
				rt.cfg.ListenAddr = addr
			}

			if err := rt.app.Scheduler.Start(); err != nil {
				return err
			}
			defer rt.app.Scheduler.Stop()

			server := &http.Server{
				Addr:              rt.cfg.ListenAddr,
				Handler:           rt.app.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("http api listening", "addr", rt.cfg.ListenAddr)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				rt.logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().String("listen", "", "listen address (overrides LISTEN_ADDR)")
	return cmd
}

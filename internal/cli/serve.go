package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xraph/hookbridge/api"
)

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook and admin HTTP API",
	Long: "Serves POST /webhook for inbound workflow-engine actions and the admin\n" +
		"routes for settings, triggers, workflows and the delivery log. Admin routes\n" +
		"require server.admin_token as a bearer token; with no token they are closed.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, s, err := newBridge(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := []api.Option{
		api.WithLogger(logger),
		api.WithRateLimit(cfg.Server.RateLimit),
	}
	if cfg.Server.AdminToken != "" {
		opts = append(opts, api.WithAuthorizer(api.BearerToken(cfg.Server.AdminToken)))
	} else {
		logger.Warn("server.admin_token is not set; admin routes are disabled")
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewHandler(b, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("hookbridge listening", "addr", addr, "store", cfg.Store.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

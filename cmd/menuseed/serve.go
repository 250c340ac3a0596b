package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/johnwards/menuseed/internal/app"
	"github.com/johnwards/menuseed/internal/reseed"
	"github.com/johnwards/menuseed/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	var addr string
	var reseedOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the row store, file store and menu API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.Addr = addr
			}
			ln, err := net.Listen("tcp", c.cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return c.serve(cmd.Context(), ln, reseedOnStart)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides MENUSEED_ADDR)")
	cmd.Flags().BoolVar(&reseedOnStart, "reseed", false, "run a reseed before accepting requests")
	return cmd
}

// serve runs the HTTP API on ln until ctx is cancelled.
func (c *cli) serve(ctx context.Context, ln net.Listener, reseedOnStart bool) error {
	defer func() { _ = ln.Close() }()

	st, err := app.Open(ctx, c.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ds, err := app.LoadDataset(c.cfg)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orch := app.NewOrchestrator(c.cfg, st, ds, c.log, reseed.NewPromRecorder(reg))

	if reseedOnStart {
		if _, err := orch.Run(ctx); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Handler: server.New(server.Deps{
			Rows:        st.Rows,
			Blobs:       st.Blobs,
			Tables:      c.cfg.Tables,
			Reseeder:    orch,
			Gatherer:    reg,
			AuthToken:   c.cfg.AuthToken,
			CORSOrigins: c.cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.log.Info("starting menuseed server", "addr", ln.Addr().String(), "db_driver", c.cfg.DBDriver, "blob_driver", c.cfg.BlobDriver)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	c.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/pch/internal/dashboard"
	"github.com/rileyhilliard/pch/internal/history"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the browser dashboard",
		Long: `Serve the dashboard: check and analyze from the browser, browse and
clear history. Saves made by 'pch analyze' in another terminal show up
in open dashboards straight away.

Examples:
  pch serve
  pch serve --addr 0.0.0.0:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.loadApp()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Dashboard.Addr
			}

			dopts := dashboard.Options{
				Collector:    a.collector,
				Analyzer:     a.client,
				Store:        a.store,
				Thresholds:   a.thresholds,
				HistoryLimit: a.cfg.HistoryLimit,
				Backend:      a.cfg.Backend.URL,
				Version:      formatVersion(version),
				Logger:       a.log,
			}

			if watcher, err := startWatcher(a); err != nil {
				a.log.Warn("history watcher unavailable, dashboards won't live-refresh: %v", err)
			} else {
				defer watcher.Close()
				dopts.Events = watcher
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Dashboard running at http://%s (Ctrl+C to stop)\n", addr)
			return dashboard.New(dopts).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: dashboard.addr)")
	return cmd
}

func startWatcher(a *app) (*history.Watcher, error) {
	watcher, err := history.NewWatcher(a.store.Path(), a.log)
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

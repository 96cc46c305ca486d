package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/observability"
	"github.com/shriya-methkupally/metro-2025-clusters/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the loaded snapshot over a read-only JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := openEngine()
		if err != nil {
			return err
		}
		addr := cfg.HTTPAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}

		metrics := observability.NewMetrics()
		metrics.SnapshotMetros.Set(float64(snap.engine.Table().Len()))
		metrics.SnapshotSummaries.Set(float64(len(snap.engine.Summaries())))
		metrics.CoercedValues.Set(float64(snap.report.Coerced))
		metrics.LoadDuration.Set(snap.elapsed.Seconds())

		id := uuid.New()
		logger.Info("snapshot ready",
			"snapshot", id.String(),
			"metros", snap.engine.Table().Len(),
			"load_duration", snap.elapsed,
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(server.Config{
			Addr:            addr,
			Engine:          snap.engine,
			SnapshotID:      id,
			Metrics:         metrics,
			Logger:          logger,
			ShutdownTimeout: time.Duration(cfg.ShutdownTimeoutSec) * time.Second,
		})
		return srv.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides http_addr)")
}

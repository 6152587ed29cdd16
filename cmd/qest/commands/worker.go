package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dyluth/qest/internal/config"
	"github.com/dyluth/qest/internal/printer"
	"github.com/dyluth/qest/pkg/backend/redisq"
	"github.com/dyluth/qest/pkg/backend/sim"
)

var workerConfigPath string

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Execute queued circuit batches on the local simulator",
	Long: `Start a worker that pops circuit batches off a Redis queue, executes
them on the in-process statevector simulator, and pushes the histograms
back for waiting clients.

Workers decouple estimation from execution: 'qest run' submits batches to
the queue, and any number of workers that can reach Redis race to execute
them.

Prerequisites:
  • A qest.yml with backend.kind "redis"
  • A reachable Redis instance

Examples:
  # Serve the instance qest.yml names
  qest worker -c qest.yml`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().StringVarP(&workerConfigPath, "config", "c", "", "Path to qest.yml (required)")
	workerCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(workerConfigPath)
	if err != nil {
		return printer.Error("invalid configuration", err.Error(), nil)
	}
	if cfg.Backend.Kind != "redis" {
		return printer.Error(
			"worker requires a Redis backend",
			"A worker serves the queue that 'qest run' submits to; backend.kind must be 'redis'.",
			[]string{"Set backend.kind to 'redis' and configure backend.redis.addr in " + workerConfigPath},
		)
	}

	delegate := sim.New(sim.Options{})
	rc := cfg.Backend.Redis
	worker, err := redisq.NewWorker(&redis.Options{Addr: rc.Addr}, rc.Instance, delegate, cfg.Worker.Concurrency)
	if err != nil {
		return printer.Error("failed to create worker", err.Error(), nil)
	}
	defer worker.Close()

	if err := worker.Ping(ctx); err != nil {
		return printer.ErrorWithContext(
			"Redis not accessible",
			err.Error(),
			map[string]string{"Address": rc.Addr},
			[]string{"Start Redis or fix backend.redis.addr in " + workerConfigPath},
		)
	}

	printer.Success("Worker ready on instance '%s' (delegate: %s, concurrency: %d)\n",
		rc.Instance, delegate.Name(), cfg.Worker.Concurrency)
	printer.Info("Waiting for batches. Press Ctrl+C to stop.\n")

	// Graceful shutdown on SIGINT/SIGTERM
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- worker.Run(runCtx)
	}()

	select {
	case sig := <-sigCh:
		printer.Info("Received signal %v, shutting down gracefully...\n", sig)
		cancel()
		<-errCh
	case runErr := <-errCh:
		if runErr != nil {
			return printer.Error("worker stopped unexpectedly", runErr.Error(), nil)
		}
	}

	printer.Info("Worker stopped\n")
	return nil
}

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/qest/internal/jobfile"
	"github.com/dyluth/qest/internal/printer"
	"github.com/dyluth/qest/internal/report"
	"github.com/dyluth/qest/pkg/estimator"
)

var (
	runJobPath    string
	runConfigPath string
	runPrecision  float64
	runJSON       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an estimation job from a YAML job file",
	Long: `Run an estimation job: load circuits, observables, and parameter
bindings from a YAML job file, estimate every requested expectation value
on the configured backend, and print the estimates with their propagated
standard errors.

Precision resolves per pub: its own precision if set, otherwise the
--precision flag (or the job file's run-level precision), otherwise the
estimator default. Each measurement configuration runs ceil(1/precision^2)
shots.

Examples:
  # Run on the in-process simulator
  qest run -f job.yml

  # Run against a Redis-queued worker pool
  qest run -f job.yml -c qest.yml

  # Machine-readable output
  qest run -f job.yml --json`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runJobPath, "file", "f", "", "Job file to run (required)")
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Path to qest.yml (omit for the in-process simulator)")
	runCmd.Flags().Float64VarP(&runPrecision, "precision", "p", 0, "Run-level target precision (overrides the job file's)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Emit the result as JSON")
	runCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	job, err := jobfile.Load(runJobPath)
	if err != nil {
		return printer.Error(
			"invalid job file",
			err.Error(),
			[]string{"Check the gate list and observable labels:\n  qest run --help"},
		)
	}

	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return printer.Error("invalid configuration", err.Error(), nil)
	}

	b, cleanup, err := buildBackend(ctx, cfg)
	if err != nil {
		return printer.Error(
			"failed to initialize backend",
			err.Error(),
			[]string{
				"Start Redis and check backend.redis.addr in qest.yml",
				"Run on the local simulator instead:\n  qest run -f " + runJobPath,
			},
		)
	}
	defer cleanup()

	est, err := estimator.New(b, estimatorOptions(cfg))
	if err != nil {
		return printer.Error("invalid estimator configuration", err.Error(), nil)
	}

	pubs, err := job.EstimatorPubs()
	if err != nil {
		return printer.Error("invalid job file", err.Error(), nil)
	}

	// The flag wins over the job file's run-level precision.
	precision := runPrecision
	if precision == 0 && job.Precision != nil {
		precision = *job.Precision
	}

	j, err := est.Run(pubs, precision)
	if err != nil {
		return printer.Error("job rejected", err.Error(), nil)
	}

	if !runJSON {
		printer.Info("Submitted job %s: %d pub(s) on backend '%s'\n", j.ID(), len(pubs), b.Name())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-j.Done():
	case sig := <-sigCh:
		printer.Warning("Received signal %v, cancelling job %s\n", sig, j.ID())
		j.Cancel()
		<-j.Done()
	}

	result, err := j.Result(ctx)
	if err != nil {
		return printer.ErrorWithContext(
			"estimation failed",
			err.Error(),
			map[string]string{
				"Job ID":  j.ID(),
				"Backend": b.Name(),
			},
			nil,
		)
	}

	if runJSON {
		return report.FormatJSON(os.Stdout, result)
	}
	report.FormatTable(os.Stdout, result)
	return nil
}

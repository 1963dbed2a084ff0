// Package main runs the running-balance consistency job.
// Usage: reconcile run        check on every interval until stopped
//        reconcile once       check once and exit
//        reconcile history N  print the last N stored runs
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/yemzchef-ui/superchefs/internal/config"
	appctx "github.com/yemzchef-ui/superchefs/internal/core/context"
	"github.com/yemzchef-ui/superchefs/internal/core/tx"
	"github.com/yemzchef-ui/superchefs/internal/domain/reports"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/storage/postgres"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/storage/postgres/ledger_repo"
	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

func main() {
	command := "run"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if command == "help" || command == "--help" || command == "-h" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Service:     cfg.App.Name + "-reconcile",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	poolCfg := postgres.ConfigFor(postgres.RoleReconcile, cfg.Database.DSN, cfg.App.Name)
	if cfg.Database.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	driftLog, err := postgres.NewDriftLog(txManager)
	if err != nil {
		log.Fatalw("failed to create drift log", "error", err)
	}
	defer func() { _ = driftLog.Close() }()

	service, err := reports.NewService(ledger_repo.NewLedgerRepo(txManager), nil, reports.Config{
		Location:       cfg.Ledger.Location,
		Basis:          cfg.Ledger.Basis,
		RatioThreshold: cfg.Ledger.RatioThreshold,
		RatioRule:      cfg.Ledger.RatioRule,
	})
	if err != nil {
		log.Fatalw("failed to create report service", "error", err)
	}

	job := &Job{
		service:   service,
		txManager: txManager,
		driftLog:  driftLog,
		lookback:  time.Duration(cfg.Reconcile.LookbackDays) * 24 * time.Hour,
		log:       log.WithComponent("reconcile"),
	}

	switch command {
	case "run":
		job.Run(ctx, cfg.Reconcile.Interval)
	case "once":
		if _, err := job.RunOnce(ctx); err != nil {
			log.Errorw("reconcile failed", "error", err)
			os.Exit(1)
		}
	case "history":
		limit := 10
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
				limit = n
			}
		}
		if err := printHistory(ctx, driftLog, limit); err != nil {
			log.Errorw("failed to read drift log", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`superchefs reconcile

Usage:
  reconcile <command> [options]

Commands:
  run          Reconcile on every reconcile.interval until stopped (default)
  once         Reconcile once and exit
  history [N]  Show the last N runs (default 10)
  help         Show this help`)
}

// Job recomputes running balances and records drifts.
type Job struct {
	service   *reports.Service
	txManager tx.ReadOnlyManager
	driftLog  *postgres.DriftLog
	lookback  time.Duration
	log       *logger.Logger
}

// Run reconciles immediately and then on every tick until ctx is done.
func (j *Job) Run(ctx context.Context, interval time.Duration) {
	j.log.Infow("reconcile job started", "interval", interval, "lookback", j.lookback)

	if _, err := j.RunOnce(ctx); err != nil {
		j.log.Errorw("reconcile failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.log.Info("reconcile job stopped")
			return
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil {
				j.log.Errorw("reconcile failed", "error", err)
			}
		}
	}
}

// RunOnce reads every movement table from one snapshot and stores the run.
func (j *Job) RunOnce(ctx context.Context) (postgres.DriftRun, error) {
	ctx = appctx.ForJob(ctx, "reconcile")
	log := j.log.WithContext(ctx)
	started := time.Now().UTC()
	var since time.Time
	if j.lookback > 0 {
		since = started.Add(-j.lookback)
	}

	var result *reports.ReconcileResult
	err := j.txManager.ReadOnly(ctx, func(ctx context.Context) (err error) {
		result, err = j.service.Reconcile(ctx, since)
		return err
	})
	if err != nil {
		return postgres.DriftRun{}, err
	}

	run, err := j.driftLog.NewRun(started, time.Now().UTC(), result.RowsChecked, result.Drifts)
	if err != nil {
		return postgres.DriftRun{}, err
	}
	if err := j.driftLog.Save(ctx, run); err != nil {
		return postgres.DriftRun{}, err
	}

	log.Infow("reconcile finished",
		"drift_run_id", run.ID,
		"rows_checked", run.RowsChecked,
		"drifts", run.DriftCount,
		"compression", run.CompressionAlgo,
		"duration_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	)
	for _, d := range result.Drifts {
		log.Warnw("drift",
			"kind", d.Kind,
			"category", d.Category,
			"entity_id", d.EntityID,
			"branch_id", d.BranchID,
			"row_id", d.RowID,
			"stored", d.Stored.String(),
			"expected", d.Expected.String(),
		)
	}
	return run, nil
}

func printHistory(ctx context.Context, driftLog *postgres.DriftLog, limit int) error {
	runs, err := driftLog.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No reconcile runs recorded.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %8s  %6s\n", "RUN", "STARTED", "ROWS", "DRIFTS")
	for _, run := range runs {
		fmt.Printf("%-36s  %-20s  %8d  %6d\n",
			run.ID, run.StartedAt.Format(time.DateTime), run.RowsChecked, run.DriftCount)
		drifts, err := run.Drifts()
		if err != nil {
			return fmt.Errorf("decode run %s: %w", run.ID, err)
		}
		for _, d := range drifts {
			fmt.Printf("    %s %s %s@%s stored=%s expected=%s delta=%s\n",
				d.CreatedAt.Format(time.DateTime), d.Category, d.EntityID, d.BranchID,
				d.Stored, d.Expected, d.Delta())
		}
	}
	return nil
}

// Package main prepares a database for the ledger service.
// Usage: seed schema   create the drift log and change-notification triggers
//        seed demo     create development tables and load a generated bakery history
//
// demo reads SEED_DAYS (default 14), SEED_RESET=true to truncate first and
// SEED_INJECT_DRIFT=true to miscount one closing row.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/yemzchef-ui/superchefs/internal/config"
	"github.com/yemzchef-ui/superchefs/internal/infrastructure/storage/postgres"
	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

func main() {
	command := "schema"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	if command != "schema" && command != "demo" {
		fmt.Println("usage: seed [schema|demo]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: true,
		Service:     cfg.App.Name + "-seed",
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.ConfigFor(postgres.RoleSeed, cfg.Database.DSN, cfg.App.Name))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	s := &seeder{
		txManager: txManager,
		executor:  postgres.NewBatchExecutor(txManager),
		inserter:  postgres.NewBatchInserter(txManager),
		log:       log,
	}

	switch command {
	case "schema":
		err = s.schema(ctx)
	case "demo":
		err = s.demo(ctx, demoOptions{
			days:        envInt("SEED_DAYS", 14),
			reset:       os.Getenv("SEED_RESET") == "true",
			injectDrift: os.Getenv("SEED_INJECT_DRIFT") == "true",
			location:    cfg.Ledger.Location,
		})
	}
	if err != nil {
		log.Fatalw("seeding failed", "command", command, "error", err)
	}
	log.Info("seeding completed successfully")
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

type seeder struct {
	txManager *postgres.TxManager
	executor  *postgres.BatchExecutor
	inserter  *postgres.BatchInserter
	log       *logger.Logger
}

type demoOptions struct {
	days        int
	reset       bool
	injectDrift bool
	location    *time.Location
}

func (s *seeder) schema(ctx context.Context) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.executor.ExecuteBatch(ctx, ledgerSchema()); err != nil {
			return fmt.Errorf("ledger schema: %w", err)
		}
		s.log.Infow("ledger schema ready", "triggers", len(notifyTables()))
		return nil
	})
}

func (s *seeder) demo(ctx context.Context, opts demoOptions) error {
	loc := opts.location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -opts.days)

	data := generate(start, opts.days, uint64(start.Unix()))
	if opts.injectDrift {
		row, err := data.injectDrift(3)
		if err != nil {
			return err
		}
		s.log.Infow("injected closing drift",
			"branch_id", row.BranchID,
			"material_id", row.MaterialID,
			"created_at", row.CreatedAt,
		)
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.executor.ExecuteBatch(ctx, devTables()); err != nil {
			return fmt.Errorf("dev tables: %w", err)
		}
		if err := s.executor.ExecuteBatch(ctx, ledgerSchema()); err != nil {
			return fmt.Errorf("ledger schema: %w", err)
		}
		if opts.reset {
			tables := append(notifyTables(), "ledger_drift_log")
			if err := s.executor.ExecuteBatch(ctx, postgres.TruncateQueries(tables...)); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			s.log.Infow("tables truncated", "count", len(tables))
		}

		var total int64
		for _, l := range data.loads() {
			n, err := s.inserter.CopyFromSlice(ctx, l.table, l.columns, l.rows)
			if err != nil {
				return err
			}
			total += n
			s.log.Debugw("table loaded", "table", l.table, "rows", n)
		}
		s.log.Infow("demo data loaded",
			"from", start.Format(time.DateOnly),
			"days", opts.days,
			"rows", total,
		)
		return nil
	})
}

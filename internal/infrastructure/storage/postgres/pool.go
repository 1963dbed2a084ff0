// Package postgres provides the PostgreSQL plumbing of the ledger service:
// connection pool, transaction manager, COPY loader and drift log.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yemzchef-ui/superchefs/pkg/logger"
)

// PoolConfig sizes the pgx pool of one ledger process.
type PoolConfig struct {
	DSN               string
	AppName           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// Role names the process a pool serves. It suffixes application_name so
// pg_stat_activity tells the report API from the batch jobs.
type Role string

const (
	RoleReports   Role = "reports"
	RoleReconcile Role = "reconcile"
	RoleSeed      Role = "seed"
)

// ConfigFor returns the pool sizing for role. The report API holds one
// connection per movement table while a report fans out, so it gets room
// for several reports at once; the jobs read or write serially.
func ConfigFor(role Role, dsn, appName string) PoolConfig {
	if appName == "" {
		appName = "superchefs"
	}
	cfg := PoolConfig{
		DSN:               dsn,
		AppName:           appName,
		MaxConns:          2,
		MinConns:          1,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,
	}
	if role == RoleReports {
		cfg.MaxConns, cfg.MinConns = 25, 5
	} else {
		cfg.AppName = appName + "-" + string(role)
	}
	return cfg
}

// Pool is the shared pgx pool the repositories and the transaction
// manager run on.
type Pool struct {
	*pgxpool.Pool
}

// Close closes all connections in the pool.
func (p *Pool) Close() {
	if p.Pool != nil {
		p.Pool.Close()
	}
}

// NewPool opens the pool and pings it. Zero durations and sizes keep the
// pgx defaults.
func NewPool(ctx context.Context, cfg PoolConfig) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	}

	appName := cfg.AppName
	if appName == "" {
		appName = ConfigFor(RoleReports, "", "").AppName
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SELECT set_config('application_name', $1, false)", appName)
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// PoolStats is a snapshot of pool usage.
type PoolStats struct {
	TotalConns      int32
	AcquiredConns   int32
	IdleConns       int32
	MaxConns        int32
	AcquireCount    int64
	EmptyAcquires   int64
	AcquireDuration time.Duration
}

// Saturated reports whether every connection is checked out. Report
// fan-outs started in this state queue behind each other.
func (s PoolStats) Saturated() bool {
	return s.MaxConns > 0 && s.AcquiredConns >= s.MaxConns
}

// GetPoolStats reads the pool counters.
func GetPoolStats(pool *pgxpool.Pool) PoolStats {
	stat := pool.Stat()
	return PoolStats{
		TotalConns:      stat.TotalConns(),
		AcquiredConns:   stat.AcquiredConns(),
		IdleConns:       stat.IdleConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		EmptyAcquires:   stat.EmptyAcquireCount(),
		AcquireDuration: stat.AcquireDuration(),
	}
}

// LogPoolStats logs pool usage, at warn level while the pool is saturated.
func LogPoolStats(ctx context.Context, pool *pgxpool.Pool) {
	stats := GetPoolStats(pool)
	log := logger.Info
	if stats.Saturated() {
		log = logger.Warn
	}
	log(ctx, "ledger pool stats",
		"total", stats.TotalConns,
		"acquired", stats.AcquiredConns,
		"idle", stats.IdleConns,
		"max", stats.MaxConns,
		"empty_acquires", stats.EmptyAcquires,
		"acquire_wait", stats.AcquireDuration,
		"saturated", stats.Saturated(),
	)
}

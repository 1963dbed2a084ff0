package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"github.com/yemzchef-ui/superchefs/internal/core/id"
	"github.com/yemzchef-ui/superchefs/internal/domain/ledger"
)

const driftLogTable = "ledger_drift_log"

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DriftRun is one persisted reconciliation run.
type DriftRun struct {
	ID              id.ID           `db:"id"`
	StartedAt       time.Time       `db:"started_at"`
	FinishedAt      time.Time       `db:"finished_at"`
	RowsChecked     int             `db:"rows_checked"`
	DriftCount      int             `db:"drift_count"`
	Payload         json.RawMessage `db:"payload"`
	Compressed      []byte          `db:"payload_compressed"`
	CompressionAlgo CompressionAlgo `db:"compression_algo"`
}

// Drifts decodes the run payload.
func (r DriftRun) Drifts() ([]ledger.Drift, error) {
	if len(r.Payload) == 0 {
		return nil, nil
	}
	var out []ledger.Drift
	if err := json.Unmarshal(r.Payload, &out); err != nil {
		return nil, fmt.Errorf("decode drift payload: %w", err)
	}
	return out, nil
}

// DriftLog persists reconciliation findings. Payloads above
// compressThreshold are stored zstd-compressed.
type DriftLog struct {
	txManager         *TxManager
	builder           squirrel.StatementBuilderType
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewDriftLog creates a drift log writing through txManager.
func NewDriftLog(txManager *TxManager) (*DriftLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &DriftLog{
		txManager:         txManager,
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024, // 10KB
	}, nil
}

// Close releases the zstd codec resources.
func (l *DriftLog) Close() error {
	l.decoder.Close()
	return l.encoder.Close()
}

// NewRun builds a run entry from the drifts found between started and finished.
func (l *DriftLog) NewRun(started, finished time.Time, rowsChecked int, drifts []ledger.Drift) (DriftRun, error) {
	if drifts == nil {
		drifts = []ledger.Drift{}
	}
	payload, err := json.Marshal(drifts)
	if err != nil {
		return DriftRun{}, fmt.Errorf("encode drift payload: %w", err)
	}

	run := DriftRun{
		ID:              id.New(),
		StartedAt:       started.UTC(),
		FinishedAt:      finished.UTC(),
		RowsChecked:     rowsChecked,
		DriftCount:      len(drifts),
		Payload:         payload,
		CompressionAlgo: CompressionNone,
	}
	if len(payload) > l.compressThreshold {
		run.Compressed = l.encoder.EncodeAll(payload, nil)
		run.Payload = nil
		run.CompressionAlgo = CompressionZstd
	}
	return run, nil
}

func (l *DriftLog) insertQuery(run DriftRun) squirrel.InsertBuilder {
	return l.builder.Insert(driftLogTable).
		Columns("id", "started_at", "finished_at", "rows_checked", "drift_count",
			"payload", "payload_compressed", "compression_algo").
		Values(run.ID, run.StartedAt, run.FinishedAt, run.RowsChecked, run.DriftCount,
			run.Payload, run.Compressed, run.CompressionAlgo)
}

// Save inserts run. It runs in its own read-write transaction.
func (l *DriftLog) Save(ctx context.Context, run DriftRun) error {
	sql, args, err := l.insertQuery(run).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	return l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := l.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert drift run: %w", err)
		}
		return nil
	})
}

func (l *DriftLog) recentQuery(limit uint64) squirrel.SelectBuilder {
	return l.builder.Select("id", "started_at", "finished_at", "rows_checked", "drift_count",
		"payload", "payload_compressed", "compression_algo").
		From(driftLogTable).
		OrderBy("started_at DESC").
		Limit(limit)
}

// Recent returns the latest runs, newest first, with payloads decompressed.
func (l *DriftLog) Recent(ctx context.Context, limit int) ([]DriftRun, error) {
	if limit <= 0 {
		limit = 10
	}
	sql, args, err := l.recentQuery(uint64(limit)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var runs []DriftRun
	if err := pgxscan.Select(ctx, l.txManager.GetQuerier(ctx), &runs, sql, args...); err != nil {
		return nil, fmt.Errorf("query drift runs: %w", err)
	}
	for i := range runs {
		if err := l.inflate(&runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (l *DriftLog) inflate(run *DriftRun) error {
	if run.CompressionAlgo != CompressionZstd || len(run.Compressed) == 0 {
		return nil
	}
	payload, err := l.decoder.DecodeAll(run.Compressed, nil)
	if err != nil {
		return fmt.Errorf("decompress drift payload: %w", err)
	}
	run.Payload = payload
	run.Compressed = nil
	return nil
}

package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appctx "github.com/yemzchef-ui/superchefs/internal/core/context"
)

func TestFromContext_AddsTraceFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{zap.New(core).Sugar()}

	ctx := WithLogger(context.Background(), l.WithComponent("reports"))
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1", Origin: appctx.OriginHTTP})

	Warn(ctx, "missing reference price", "entity_id", "m-1")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "reports", fields["component"])
		assert.Equal(t, "t-1", fields["trace_id"])
		assert.Equal(t, "r-1", fields["request_id"])
		assert.Equal(t, "m-1", fields["entity_id"])
	}
}

func TestFromContext_JobTrace(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := WithLogger(context.Background(), &Logger{zap.New(core).Sugar()})
	ctx = appctx.ForJob(ctx, "reconcile")

	Info(ctx, "reconcile finished")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "reconcile", fields["job"])
		assert.NotEmpty(t, fields["run_id"])
		assert.NotEmpty(t, fields["trace_id"])
		assert.NotContains(t, fields, "request_id")
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
	assert.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zap.InfoLevel))
}

func TestWithFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := WithLogger(context.Background(), &Logger{zap.New(core).Sugar()})
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1", Origin: appctx.OriginHTTP})
	ctx = WithFields(ctx, "report", "StockSummary", "branch", "all")

	Info(ctx, "pairs without opening stock omitted from summary")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "StockSummary", fields["report"])
		assert.Equal(t, "all", fields["branch"])
		assert.Equal(t, "r-1", fields["request_id"])
		assert.Len(t, entries[0].Context, 4)
	}
}

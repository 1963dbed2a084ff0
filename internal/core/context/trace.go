// Package context carries correlation identifiers for HTTP requests and
// background runs so their log lines can be joined.
package context

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Origins of a TraceContext.
const (
	OriginHTTP = "http"
	OriginJob  = "job"
)

// TraceContext identifies one unit of work.
type TraceContext struct {
	TraceID   string
	RequestID string
	// Origin is OriginHTTP or OriginJob.
	Origin string
	// Job names the background job; empty for requests.
	Job string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, tc *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// ForRequest builds the trace of an incoming request. Blank ids are filled
// from the active otel span when there is one, otherwise generated.
func ForRequest(ctx context.Context, requestID, traceID string) *TraceContext {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	if traceID == "" {
		traceID = spanTraceID(ctx)
	}
	return &TraceContext{TraceID: traceID, RequestID: requestID, Origin: OriginHTTP}
}

// ForJob returns ctx tagged with a fresh trace for one run of job.
func ForJob(ctx context.Context, job string) context.Context {
	run := uuid.New().String()
	return WithTrace(ctx, &TraceContext{
		TraceID:   spanTraceID(ctx),
		RequestID: run,
		Origin:    OriginJob,
		Job:       job,
	})
}

func spanTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return uuid.New().String()
}

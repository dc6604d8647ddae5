package core

import (
	"context"
	"time"
)

// MetricsRecorder receives per-operation timing and result outcomes from the
// ledger service.
type MetricsRecorder interface {
	RecordOperation(operation string, duration time.Duration, err error)
}

// TraceSpan ends a single traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around ledger operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

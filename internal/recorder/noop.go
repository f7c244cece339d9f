package recorder

import "context"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordLedgerEvent(context.Context, *LedgerEvent) error     { return nil }
func (n *NoopRecorder) RecordPerformance(context.Context, *PerformanceEvent) error { return nil }

func (n *NoopRecorder) ListEvents(context.Context, int) ([]LedgerEvent, error) {
	return []LedgerEvent{}, nil
}

func (n *NoopRecorder) Close() error { return nil }

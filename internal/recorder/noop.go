package recorder

import (
	"context"

	"SignalSage/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(context.Context, *model.Signal) error { return nil }
func (n *NoopRecorder) RecordChat(context.Context, *ChatEvent) error      { return nil }
func (n *NoopRecorder) RecentSignals(context.Context, string, int) ([]SignalRecord, error) {
	return nil, nil
}
func (n *NoopRecorder) Ping(context.Context) error { return nil }
func (n *NoopRecorder) Close() error               { return nil }

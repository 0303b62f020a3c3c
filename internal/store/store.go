package store

import (
	"context"

	"github.com/okairos/llm-bridge-api/internal/store/model"
)

// Repository is the contract for the usage-log data layer. Chat history is
// never persisted; only per-request usage accounting lives here.
type Repository interface {
	Requests() RequestRepository

	Close() error
}

type RequestRepository interface {
	// Log stores a completed request.
	Log(ctx context.Context, log *model.RequestLog) error
	// GetRecent returns the last N logs.
	GetRecent(ctx context.Context, limit int) ([]model.RequestLog, error)
	// GetDailyStats returns aggregated stats grouped by day.
	GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error)
}

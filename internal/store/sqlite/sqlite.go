package sqlite

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/okairos/llm-bridge-api/internal/store"
	"github.com/okairos/llm-bridge-api/internal/store/model"
)

// DB is the executor seam satisfied by *sqlx.DB and *sqlx.Tx.
type DB interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db *sqlx.DB
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{db: db}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) Requests() store.RequestRepository {
	return &requestRepo{db: r.db}
}

type requestRepo struct {
	db DB
}

func (r *requestRepo) Log(ctx context.Context, log *model.RequestLog) error {
	query := `
	INSERT INTO request_logs (
		id, provider_id, model_id, upstream_id, finish_reason,
		input_tokens, output_tokens, search_queries,
		latency_ms, is_streamed, created_at
	) VALUES (
		:id, :provider_id, :model_id, :upstream_id, :finish_reason,
		:input_tokens, :output_tokens, :search_queries,
		:latency_ms, :is_streamed, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, log)
	return err
}

func (r *requestRepo) GetRecent(ctx context.Context, limit int) ([]model.RequestLog, error) {
	var logs []model.RequestLog
	query := `SELECT * FROM request_logs ORDER BY created_at DESC LIMIT ?`
	err := r.db.SelectContext(ctx, &logs, query, limit)
	return logs, err
}

func (r *requestRepo) GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error) {
	var stats []model.DailyStats
	query := `
		SELECT
			DATE(created_at) as date,
			COUNT(*) as total_requests,
			COALESCE(SUM(input_tokens + output_tokens), 0) as total_tokens,
			COALESCE(CAST(AVG(latency_ms) AS INTEGER), 0) as avg_latency_ms
		FROM request_logs
		WHERE created_at >= DATE('now', '-' || ? || ' days')
		GROUP BY DATE(created_at)
		ORDER BY date DESC`
	err := r.db.SelectContext(ctx, &stats, query, days)
	return stats, err
}

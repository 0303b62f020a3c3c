package model

import "time"

// RequestLog captures the usage accounting of one completed request.
type RequestLog struct {
	ID            string    `db:"id" json:"id"`
	ProviderID    string    `db:"provider_id" json:"provider_id"`
	ModelID       string    `db:"model_id" json:"model_id"`
	UpstreamID    string    `db:"upstream_id" json:"upstream_id"`
	FinishReason  string    `db:"finish_reason" json:"finish_reason"`
	InputTokens   int       `db:"input_tokens" json:"input_tokens"`
	OutputTokens  int       `db:"output_tokens" json:"output_tokens"`
	SearchQueries int       `db:"search_queries" json:"search_queries"`
	LatencyMS     int64     `db:"latency_ms" json:"latency_ms"`
	IsStreamed    bool      `db:"is_streamed" json:"is_streamed"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// DailyStats is an aggregated view over request logs.
type DailyStats struct {
	Date          string `db:"date" json:"date"`
	TotalRequests int64  `db:"total_requests" json:"total_requests"`
	TotalTokens   int64  `db:"total_tokens" json:"total_tokens"`
	AvgLatencyMS  int64  `db:"avg_latency_ms" json:"avg_latency_ms"`
}

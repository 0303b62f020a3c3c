package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/okairos/llm-bridge-api/internal/store/model"
	"github.com/okairos/llm-bridge-api/internal/store/sqlite"
)

// Seeds the usage database with synthetic request logs so the analytics
// endpoints have data to serve during local development.
func main() {
	dsn := flag.String("dsn", "bridge.db", "SQLite database path")
	count := flag.Int("count", 200, "Number of request logs to insert")
	days := flag.Int("days", 14, "Spread logs across this many days")
	flag.Parse()

	repo, err := sqlite.NewSQLiteStorage(*dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = repo.Close()
	}()

	ctx := context.Background()

	models := []struct {
		provider string
		model    string
		upstream string
	}{
		{"openai-main", "gpt-4o-mini", "gpt-4o-mini"},
		{"openai-main", "gpt-4o", "gpt-4o"},
		{"perplexity-main", "sonar-pro", "sonar-pro"},
		{"local-ollama", "llama3.2", "llama3.2:latest"},
	}
	finishReasons := []string{"stop", "stop", "stop", "length"}

	now := time.Now()
	for i := 0; i < *count; i++ {
		m := models[rand.Intn(len(models))]

		entry := &model.RequestLog{
			ID:           "chatcmpl-" + uuid.New().String(),
			ProviderID:   m.provider,
			ModelID:      m.model,
			UpstreamID:   m.upstream,
			FinishReason: finishReasons[rand.Intn(len(finishReasons))],
			InputTokens:  50 + rand.Intn(2000),
			OutputTokens: 20 + rand.Intn(1000),
			LatencyMS:    int64(200 + rand.Intn(4000)),
			IsStreamed:   rand.Intn(2) == 0,
			CreatedAt:    now.Add(-time.Duration(rand.Intn(*days*24)) * time.Hour),
		}
		if m.provider == "perplexity-main" {
			entry.SearchQueries = rand.Intn(4)
		}

		if err := repo.Requests().Log(ctx, entry); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Printf("Seeded %d request logs into %s\n", *count, *dsn)
}

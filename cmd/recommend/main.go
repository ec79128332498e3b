// Command recommend prints recommendations for a user, for local debugging
// against a running Postgres and OpenSearch.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/recommendation/internal/config"
	"example.com/recommendation/internal/persistence/postgres"
	"example.com/recommendation/internal/recommend"
	"example.com/recommendation/internal/search"
)

func main() {
	userID := flag.String("user", "", "user id to recommend for")
	flag.Parse()
	queryText := strings.Join(flag.Args(), " ")

	if *userID == "" {
		log.Fatal("missing required -user flag")
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	client, err := search.NewOpenSearchClient(cfg.OpenSearchAddresses)
	if err != nil {
		log.Fatalf("failed to connect to opensearch: %v", err)
	}

	engine := recommend.NewEngine(postgres.NewStore(pool), client, cfg.WorkoutIndex)

	results, err := engine.Recommend(ctx, *userID, queryText)
	if err != nil {
		log.Fatalf("recommend: %v", err)
	}
	for _, id := range results {
		fmt.Println(id)
	}
}

package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/okian/leaderboard/internal/adapters/repository"
	"github.com/okian/leaderboard/internal/adapters/repository/postgres"
	"github.com/okian/leaderboard/internal/adapters/repository/storetest"
)

// Set LEADERBOARD_TEST_POSTGRES_DSN to run against a disposable database.
func TestPostgresStoreContract(t *testing.T) {
	dsn := os.Getenv("LEADERBOARD_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEADERBOARD_TEST_POSTGRES_DSN not set")
	}

	storetest.Run(t, func(t *testing.T) repository.Store {
		ctx := context.Background()
		s, err := postgres.Open(ctx, dsn, postgres.WithMaxConns(4))
		if err != nil {
			t.Fatalf("open postgres: %v", err)
		}
		if err := s.Truncate(ctx); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return s
	})
}

func TestPostgresOpenRejectsBadDSN(t *testing.T) {
	if _, err := postgres.Open(context.Background(), "postgres://%zz"); err == nil {
		t.Fatal("expected parse error")
	}
}

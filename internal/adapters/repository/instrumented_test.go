package repository_test

import (
	"context"
	"testing"

	"github.com/okian/leaderboard/internal/adapters/repository"
	"github.com/okian/leaderboard/internal/adapters/repository/storetest"
)

func TestInstrumentedStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return repository.Instrument(repository.NewMemoryStore(context.Background()))
	})
}

package store_test

import (
	"context"
	"testing"

	"github.com/Beerzinss/DatKomp/internal/store/storetest"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	require.NoError(t, s.Migrate(ctx))

	status, err := s.MigrationStatus(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, status)
	for _, st := range status {
		assert.Equal(t, goose.StateApplied, st.State, "migration %s", st.Source.Path)
	}

	statuses, err := s.GetOrderStatuses(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 5)
}

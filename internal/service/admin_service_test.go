package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stats, err := env.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalUsers)
	assert.Equal(t, 8, stats.ActiveLabs)
	assert.Zero(t, stats.CompletionRate)
	assert.Zero(t, stats.AverageMinutes)

	ana := env.register(t, "ana@example.com").User
	env.register(t, "bob@example.com")

	// bash-1 is 15 minutes, bash-2 is 20
	_, err = env.labs.RecordCompletion(ctx, ana.ID, "bash-1")
	require.NoError(t, err)
	_, err = env.labs.RecordCompletion(ctx, ana.ID, "bash-2")
	require.NoError(t, err)

	stats, err = env.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.InDelta(t, 2.0/16.0*100, stats.CompletionRate, 0.001)
	assert.InDelta(t, 17.5, stats.AverageMinutes, 0.001)

	users, err := env.admin.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	counts := map[string]int{}
	for _, u := range users {
		counts[u.Email] = u.CompletedLabs
	}
	assert.Equal(t, map[string]int{"ana@example.com": 2, "bob@example.com": 0}, counts)
}

package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opscurator/internal/domain"
)

func TestProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ana@example.com").User

	p, err := env.progress.Progress(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CompletedCount)
	assert.Equal(t, 8, p.TotalLabs)
	assert.Zero(t, p.EarnedCount)

	_, err = env.labs.RecordCompletion(ctx, user.ID, "bash-1")
	require.NoError(t, err)
	_, err = env.labs.RecordCompletion(ctx, user.ID, "bash-2")
	require.NoError(t, err)

	p, err = env.progress.Progress(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.CompletedCount)
	assert.InDelta(t, 25.0, p.Percentage, 0.001)

	earned := map[string]bool{}
	for _, a := range p.Achievements {
		earned[a.ID] = a.Earned
	}
	assert.True(t, earned["first-steps"])
	assert.True(t, earned["bash-master"])
	assert.False(t, earned["python-master"])
	assert.False(t, earned["devops-champion"])
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ana@example.com").User

	updated, err := env.progress.UpdateProfile(ctx, user.ID, domain.Profile{
		Name:            " Ana Lima ",
		WorkTitle:       "Platform Engineer",
		ExperienceLevel: "intermediate",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", updated.Name)
	assert.Equal(t, "Platform Engineer", updated.WorkTitle)
	assert.Equal(t, "Platform Engineer", env.mirror.last().WorkTitle)

	_, err = env.progress.UpdateProfile(ctx, user.ID, domain.Profile{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = env.progress.UpdateProfile(ctx, "ghost", domain.Profile{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMirrorFailureDoesNotFailWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.mirror.err = domain.ErrUnavailable

	sess := env.register(t, "ana@example.com")
	_, err := env.progress.UpdateProfile(ctx, sess.User.ID, domain.Profile{Name: "Ana"})
	assert.NoError(t, err)
}

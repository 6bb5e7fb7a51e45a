package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opscurator/internal/domain"
)

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ana@example.com").User

	_, err := env.community.AddComment(ctx, user.ID, "bash-1", "great lab", 5)
	require.NoError(t, err)
	_, err = env.community.AddComment(ctx, user.ID, "bash-1", "bit easy", 3)
	require.NoError(t, err)

	_, err = env.community.AddComment(ctx, user.ID, "bash-1", "   ", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = env.community.AddComment(ctx, user.ID, "bash-1", "too good", 6)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = env.community.AddComment(ctx, user.ID, "ghost", "hm", 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	fb, err := env.community.LabFeedback(ctx, "bash-1")
	require.NoError(t, err)
	assert.Len(t, fb.Comments, 2)
	assert.InDelta(t, 4.0, fb.AverageRating, 0.001)

	empty, err := env.community.LabFeedback(ctx, "python-1")
	require.NoError(t, err)
	assert.Empty(t, empty.Comments)
	assert.Zero(t, empty.AverageRating)

	_, err = env.community.LabFeedback(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDailyChallenges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ana@example.com").User

	_, err := env.community.TodayChallenge(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	today, err := env.community.CreateChallenge(ctx, &domain.DailyChallenge{
		Title:       "Rotate logs",
		Description: "configure logrotate",
		Category:    domain.CategoryLinux,
		Difficulty:  domain.DifficultyIntermediate,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format(domain.ChallengeDateLayout), today.Date)

	_, err = env.community.CreateChallenge(ctx, &domain.DailyChallenge{
		Title:      "Duplicate day",
		Category:   domain.CategoryBash,
		Difficulty: domain.DifficultyBeginner,
		Date:       today.Date,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.community.CreateChallenge(ctx, &domain.DailyChallenge{
		Title:      "Bad date",
		Category:   domain.CategoryBash,
		Difficulty: domain.DifficultyBeginner,
		Date:       "tomorrow",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := env.community.TodayChallenge(ctx)
	require.NoError(t, err)
	assert.Equal(t, today.ID, got.ID)

	done, err := env.community.CompleteChallenge(ctx, user.ID, today.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{user.ID}, done.CompletedBy)

	done, err = env.community.CompleteChallenge(ctx, user.ID, today.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{user.ID}, done.CompletedBy)

	_, err = env.community.CompleteChallenge(ctx, user.ID, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := env.community.ListChallenges(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

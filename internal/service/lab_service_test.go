package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opscurator/internal/domain"
)

func TestListLabs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	all, err := env.labs.ListLabs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 8)

	python, err := env.labs.ListLabs(ctx, "Python")
	require.NoError(t, err)
	require.Len(t, python, 2)
	for _, l := range python {
		assert.Equal(t, domain.CategoryPython, l.Category)
	}

	_, err = env.labs.ListLabs(ctx, "cobol")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	groups, err := env.labs.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 4)
	assert.Equal(t, domain.CategoryBash, groups[0].Category)
	assert.Equal(t, domain.CategoryLinux, groups[3].Category)
}

func TestGetLabDetails_CreatesWorkspace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ana@example.com").User

	lab, ws, err := env.labs.GetLabDetails(ctx, user.ID, "bash-1")
	require.NoError(t, err)
	assert.Equal(t, "bash-1", lab.ID)
	assert.Equal(t, lab.StarterCode, ws.UserCode)
	assert.Equal(t, domain.WorkspaceStatusInProgress, ws.Status)

	_, _, err = env.labs.GetLabDetails(ctx, user.ID, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveAndResetWorkspace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ana@example.com").User

	ws, err := env.labs.SaveWorkspace(ctx, user.ID, "bash-1", "echo draft")
	require.NoError(t, err)
	assert.Equal(t, "echo draft", ws.UserCode)

	_, ws, err = env.labs.GetLabDetails(ctx, user.ID, "bash-1")
	require.NoError(t, err)
	assert.Equal(t, "echo draft", ws.UserCode)

	ws, err = env.labs.ResetWorkspace(ctx, user.ID, "bash-1")
	require.NoError(t, err)
	assert.Contains(t, ws.UserCode, "# Your code here")
}

func TestSubmitLab(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ana@example.com").User

	res, err := env.labs.SubmitLab(ctx, user.ID, "bash-1", "echo hi")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.False(t, res.NewlyCompleted)
	assert.Contains(t, res.Output, "Task not completed")

	res, err = env.labs.SubmitLab(ctx, user.ID, "bash-1", bash1Solution)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.NewlyCompleted)
	assert.Contains(t, res.Output, "hello.txt contains: Hello DevOps!")
	assert.Equal(t, []string{"bash-1"}, env.mirror.last().CompletedLabs)

	// a second pass does not count twice
	res, err = env.labs.SubmitLab(ctx, user.ID, "bash-1", bash1Solution)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.NewlyCompleted)

	_, ws, err := env.labs.GetLabDetails(ctx, user.ID, "bash-1")
	require.NoError(t, err)
	assert.Equal(t, domain.WorkspaceStatusCompleted, ws.Status)
	assert.Equal(t, bash1Solution, ws.UserCode)

	got, err := env.auth.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"bash-1"}, got.CompletedLabs)
}

func TestStreamLab(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "ana@example.com").User

	logs, final, wsID, err := env.labs.StreamLab(ctx, user.ID, "bash-1", bash1Solution)
	require.NoError(t, err)
	assert.NotEmpty(t, wsID)

	var lines []string
	for l := range logs {
		lines = append(lines, l.Line)
	}
	assert.Equal(t, []string{"File created successfully!", "✅ hello.txt contains: Hello DevOps!"}, lines)

	state := <-final
	assert.Equal(t, wsID, state.WorkspaceID)

	res, err := env.labs.FinishRun(ctx, user.ID, "bash-1", state)
	require.NoError(t, err)
	assert.True(t, res.NewlyCompleted)
}

func TestSubmitLab_UnknownLab(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.labs.SubmitLab(context.Background(), "u1", "ghost", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminLabCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lab := &domain.Lab{
		Title:        "Disk usage",
		Category:     domain.CategoryLinux,
		Difficulty:   domain.DifficultyBeginner,
		Instructions: "show disk usage",
		StarterCode:  "# here",
		Checks:       []domain.Check{{AllOf: []string{"df -h"}}},
	}
	created, err := env.labs.CreateLab(ctx, lab)
	require.NoError(t, err)
	assert.Regexp(t, `^linux-[0-9a-f]{8}$`, created.ID)

	created.Title = "Disk usage (human)"
	updated, err := env.labs.UpdateLab(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "Disk usage (human)", updated.Title)

	_, err = env.labs.CreateLab(ctx, &domain.Lab{Title: "broken", Category: "cobol"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// reseeding the catalog keeps admin labs
	all, err := env.labs.ListLabs(ctx, "")
	require.NoError(t, err)
	require.NoError(t, env.labs.SeedCatalog(ctx, all[:1]))
	again, err := env.labs.ListLabs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, again, 9)

	require.NoError(t, env.labs.DeleteLab(ctx, created.ID))
	assert.ErrorIs(t, env.labs.DeleteLab(ctx, created.ID), domain.ErrNotFound)

	_, err = env.labs.GetSolution(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sol, err := env.labs.GetSolution(ctx, "bash-1")
	require.NoError(t, err)
	assert.Equal(t, bash1Solution, sol)
}

package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"opscurator/internal/domain"
)

func newTestRepo(t *testing.T) *sqlRepository {
	t.Helper()
	repo, err := openSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testLab(id string, category domain.Category, minutes int) *domain.Lab {
	return &domain.Lab{
		ID:               id,
		Title:            "Lab " + id,
		Category:         category,
		Difficulty:       domain.DifficultyBeginner,
		EstimatedMinutes: minutes,
		Instructions:     "do the thing",
		StarterCode:      "# start",
		Solution:         "echo done",
		Validation:       domain.Validation{Type: domain.ValidationOutput, Expected: "done"},
		Checks:           []domain.Check{{AllOf: []string{"echo", "done"}}},
		SuccessOutput:    "ok",
	}
}

func testUser(id, email string) *domain.User {
	return &domain.User{
		ID:           id,
		Email:        email,
		Role:         domain.RoleUser,
		PasswordHash: "hash",
		Profile:      domain.Profile{Name: "User " + id},
	}
}

func TestNewSQLiteRepository_AppliesSchemaTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")

	first, err := NewSQLiteRepository(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewSQLiteRepository(path, zap.NewNop())
	require.NoError(t, err)
	defer second.Close()
	assert.NoError(t, second.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateUser(ctx, testUser("u1", "ana@example.com")))

	err := repo.CreateUser(ctx, testUser("u2", "ana@example.com"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	got, err := repo.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, domain.RoleUser, got.Role)
	assert.Equal(t, "User u1", got.Name)
	assert.Empty(t, got.CompletedLabs)

	missing, err := repo.GetUserByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	profile := domain.Profile{Name: "Ana", WorkTitle: "SRE", Company: "Acme", ExperienceLevel: "senior"}
	require.NoError(t, repo.UpdateProfile(ctx, "u1", profile))
	got, err = repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, profile, got.Profile)

	assert.ErrorIs(t, repo.UpdateProfile(ctx, "nope", profile), domain.ErrNotFound)

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestLabs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateLab(ctx, testLab("bash-1", domain.CategoryBash, 15)))
	require.NoError(t, repo.CreateLab(ctx, testLab("linux-1", domain.CategoryLinux, 10)))
	assert.ErrorIs(t, repo.CreateLab(ctx, testLab("bash-1", domain.CategoryBash, 15)), domain.ErrConflict)

	lab, err := repo.GetLabByID(ctx, "bash-1")
	require.NoError(t, err)
	require.NotNil(t, lab)
	assert.Equal(t, []domain.Check{{AllOf: []string{"echo", "done"}}}, lab.Checks)
	assert.Equal(t, domain.ValidationOutput, lab.Validation.Type)
	assert.Equal(t, "echo done", lab.Solution)

	all, err := repo.ListLabs(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	linux, err := repo.ListLabsByCategory(ctx, domain.CategoryLinux)
	require.NoError(t, err)
	require.Len(t, linux, 1)
	assert.Equal(t, "linux-1", linux[0].ID)

	none, err := repo.ListLabsByCategory(ctx, domain.CategoryPython)
	require.NoError(t, err)
	assert.Empty(t, none)

	updated := testLab("bash-1", domain.CategoryBash, 30)
	updated.Title = "Renamed"
	require.NoError(t, repo.UpdateLab(ctx, updated))
	lab, err = repo.GetLabByID(ctx, "bash-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", lab.Title)
	assert.Equal(t, 30, lab.EstimatedMinutes)

	assert.ErrorIs(t, repo.UpdateLab(ctx, testLab("ghost", domain.CategoryBash, 1)), domain.ErrNotFound)

	require.NoError(t, repo.DeleteLab(ctx, "linux-1"))
	assert.ErrorIs(t, repo.DeleteLab(ctx, "linux-1"), domain.ErrNotFound)
	lab, err = repo.GetLabByID(ctx, "linux-1")
	require.NoError(t, err)
	assert.Nil(t, lab)
}

func TestUpsertLab_KeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	original := testLab("python-1", domain.CategoryPython, 20)
	original.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.UpsertLab(ctx, original))

	refreshed := testLab("python-1", domain.CategoryPython, 25)
	refreshed.Title = "Refreshed"
	require.NoError(t, repo.UpsertLab(ctx, refreshed))

	lab, err := repo.GetLabByID(ctx, "python-1")
	require.NoError(t, err)
	assert.Equal(t, "Refreshed", lab.Title)
	assert.Equal(t, 25, lab.EstimatedMinutes)
	assert.True(t, original.CreatedAt.Equal(lab.CreatedAt), "created_at changed to %s", lab.CreatedAt)
}

func TestWorkspaces(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	lab := testLab("bash-1", domain.CategoryBash, 15)
	require.NoError(t, repo.CreateLab(ctx, lab))

	ws, err := repo.GetWorkspace(ctx, "u1", "bash-1")
	require.NoError(t, err)
	assert.Nil(t, ws)

	ws, err = repo.CreateWorkspace(ctx, "u1", lab)
	require.NoError(t, err)
	assert.Equal(t, "# start", ws.UserCode)
	assert.Equal(t, domain.WorkspaceStatusInProgress, ws.Status)

	require.NoError(t, repo.UpdateWorkspaceCode(ctx, ws.ID, "echo done"))

	again, err := repo.CreateWorkspace(ctx, "u1", lab)
	require.NoError(t, err)
	assert.Equal(t, ws.ID, again.ID)
	assert.Equal(t, "echo done", again.UserCode)

	other, err := repo.CreateWorkspace(ctx, "u2", lab)
	require.NoError(t, err)
	assert.NotEqual(t, ws.ID, other.ID)

	require.NoError(t, repo.UpdateWorkspaceStatus(ctx, ws.ID, domain.WorkspaceStatusCompleted))
	ws, err = repo.GetWorkspace(ctx, "u1", "bash-1")
	require.NoError(t, err)
	assert.Equal(t, domain.WorkspaceStatusCompleted, ws.Status)

	assert.ErrorIs(t, repo.UpdateWorkspaceCode(ctx, "missing", "x"), domain.ErrNotFound)
}

func TestCompletions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.CreateLab(ctx, testLab("bash-1", domain.CategoryBash, 15)))
	require.NoError(t, repo.CreateLab(ctx, testLab("linux-1", domain.CategoryLinux, 10)))
	require.NoError(t, repo.CreateUser(ctx, testUser("u1", "a@example.com")))
	require.NoError(t, repo.CreateUser(ctx, testUser("u2", "b@example.com")))

	added, err := repo.AddCompletion(ctx, "u1", "bash-1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddCompletion(ctx, "u1", "bash-1")
	require.NoError(t, err)
	assert.False(t, added, "completions are a set")

	_, err = repo.AddCompletion(ctx, "u1", "linux-1")
	require.NoError(t, err)
	_, err = repo.AddCompletion(ctx, "u2", "linux-1")
	require.NoError(t, err)

	ids, err := repo.ListCompletedLabIDs(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bash-1", "linux-1"}, ids)

	user, err := repo.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bash-1", "linux-1"}, user.CompletedLabs)

	count, err := repo.CountCompletions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	minutes, err := repo.SumCompletedMinutes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 35, minutes)

	summaries, err := repo.ListUserSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	byID := map[string]int{}
	for _, s := range summaries {
		byID[s.ID] = s.CompletedLabs
	}
	assert.Equal(t, map[string]int{"u1": 2, "u2": 1}, byID)

	// deleted labs drop out of the aggregates
	require.NoError(t, repo.DeleteLab(ctx, "linux-1"))
	count, err = repo.CountCompletions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	avg, err := repo.AverageRating(ctx, "bash-1")
	require.NoError(t, err)
	assert.Zero(t, avg)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AddComment(ctx, &domain.LabComment{ID: "c1", LabID: "bash-1", UserID: "u1", Comment: "nice", Rating: 5, CreatedAt: base}))
	require.NoError(t, repo.AddComment(ctx, &domain.LabComment{ID: "c2", LabID: "bash-1", UserID: "u2", Comment: "hard", Rating: 2, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.AddComment(ctx, &domain.LabComment{ID: "c3", LabID: "linux-1", UserID: "u2", Comment: "ok", Rating: 4}))

	assert.Error(t, repo.AddComment(ctx, &domain.LabComment{ID: "c4", LabID: "bash-1", UserID: "u2", Comment: "bad", Rating: 9}))

	comments, err := repo.ListComments(ctx, "bash-1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "c2", comments[0].ID)
	assert.Equal(t, "c1", comments[1].ID)

	avg, err = repo.AverageRating(ctx, "bash-1")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, avg, 0.001)
}

func TestChallenges(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	mk := func(id, date string) *domain.DailyChallenge {
		return &domain.DailyChallenge{
			ID:          id,
			Title:       "Challenge " + id,
			Description: "solve it",
			Category:    domain.CategoryBash,
			Difficulty:  domain.DifficultyIntermediate,
			Date:        date,
		}
	}
	require.NoError(t, repo.CreateChallenge(ctx, mk("ch1", "2025-03-01")))
	require.NoError(t, repo.CreateChallenge(ctx, mk("ch2", "2025-03-02")))
	assert.ErrorIs(t, repo.CreateChallenge(ctx, mk("ch3", "2025-03-02")), domain.ErrConflict)

	added, err := repo.AddChallengeCompletion(ctx, "ch1", "u1")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = repo.AddChallengeCompletion(ctx, "ch1", "u1")
	require.NoError(t, err)
	assert.False(t, added)

	today, err := repo.GetChallengeByDate(ctx, "2025-03-01")
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, "ch1", today.ID)
	assert.Equal(t, []string{"u1"}, today.CompletedBy)

	missing, err := repo.GetChallengeByDate(ctx, "1999-01-01")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := repo.ListChallenges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ch2", list[0].ID)
	assert.Empty(t, list[0].CompletedBy)
	assert.Equal(t, []string{"u1"}, list[1].CompletedBy)

	byID, err := repo.GetChallengeByID(ctx, "ch2")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", byID.Date)
}

package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogFixture() []*Lab {
	return []*Lab{
		{ID: "bash-1", Category: CategoryBash, EstimatedMinutes: 15},
		{ID: "bash-2", Category: CategoryBash, EstimatedMinutes: 20},
		{ID: "python-1", Category: CategoryPython, EstimatedMinutes: 10},
		{ID: "ansible-1", Category: CategoryAnsible, EstimatedMinutes: 25},
	}
}

func earned(p Progress) map[string]bool {
	out := make(map[string]bool)
	for _, a := range p.Achievements {
		out[a.ID] = a.Earned
	}
	return out
}

func TestComputeProgress_Empty(t *testing.T) {
	p := ComputeProgress(catalogFixture(), nil)

	assert.Equal(t, 0, p.CompletedCount)
	assert.Equal(t, 4, p.TotalLabs)
	assert.Zero(t, p.Percentage)
	assert.Zero(t, p.EarnedCount)
	assert.Empty(t, p.CompletedLabs)
}

func TestComputeProgress_CategoryMastery(t *testing.T) {
	p := ComputeProgress(catalogFixture(), []string{"bash-1", "bash-2", "python-1"})

	assert.Equal(t, 3, p.CompletedCount)
	assert.Equal(t, 45, p.TotalMinutes)
	assert.InDelta(t, 75.0, p.Percentage, 0.001)

	want := []CategoryProgress{
		{Category: CategoryBash, Completed: 2, Total: 2},
		{Category: CategoryPython, Completed: 1, Total: 1},
		{Category: CategoryAnsible, Completed: 0, Total: 1},
	}
	if diff := cmp.Diff(want, p.Categories); diff != "" {
		t.Errorf("category progress mismatch (-want +got):\n%s", diff)
	}

	got := earned(p)
	assert.True(t, got["first-steps"])
	assert.True(t, got["bash-master"])
	assert.True(t, got["python-master"])
	assert.False(t, got["ansible-master"])
	assert.False(t, got["devops-champion"])
	linux, hasLinux := got["linux-master"]
	assert.True(t, hasLinux, "every category offers a mastery achievement")
	assert.False(t, linux)
	assert.Len(t, p.Achievements, 2+len(Categories))
	assert.Equal(t, 3, p.EarnedCount)
}

func TestComputeProgress_AllDoneAndUnknownIDs(t *testing.T) {
	p := ComputeProgress(catalogFixture(), []string{"bash-1", "bash-2", "python-1", "ansible-1", "deleted-lab", "bash-1"})

	require.Equal(t, 4, p.CompletedCount)
	assert.InDelta(t, 100.0, p.Percentage, 0.001)
	assert.True(t, earned(p)["devops-champion"])
	assert.NotContains(t, p.CompletedLabs, "deleted-lab")
}

func TestComputeProgress_EmptyCatalog(t *testing.T) {
	p := ComputeProgress(nil, []string{"bash-1"})

	assert.Zero(t, p.Percentage)
	assert.False(t, earned(p)["devops-champion"])
	assert.False(t, earned(p)["first-steps"])
	assert.False(t, earned(p)["bash-master"])
	assert.Len(t, p.Achievements, 6)
	assert.Zero(t, p.EarnedCount)
}

func TestGroupByCategory(t *testing.T) {
	labs := []*Lab{
		{ID: "ansible-1", Category: CategoryAnsible},
		{ID: "bash-1", Category: CategoryBash},
		{ID: "bash-2", Category: CategoryBash},
	}

	groups := GroupByCategory(labs)

	require.Len(t, groups, 2)
	assert.Equal(t, CategoryBash, groups[0].Category)
	assert.Len(t, groups[0].Labs, 2)
	assert.Equal(t, CategoryAnsible, groups[1].Category)
}

func TestLabValidate(t *testing.T) {
	valid := func() *Lab {
		return &Lab{
			ID:         "bash-1",
			Title:      "File Manipulation",
			Category:   CategoryBash,
			Difficulty: DifficultyBeginner,
			Checks:     []Check{{AllOf: []string{"echo"}}},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(l *Lab)
	}{
		{"missing id", func(l *Lab) { l.ID = " " }},
		{"missing title", func(l *Lab) { l.Title = "" }},
		{"bad category", func(l *Lab) { l.Category = "cobol" }},
		{"bad difficulty", func(l *Lab) { l.Difficulty = "expert" }},
		{"no checks", func(l *Lab) { l.Checks = nil }},
		{"empty check", func(l *Lab) { l.Checks = []Check{{}} }},
		{"empty pattern", func(l *Lab) { l.Checks = []Check{{AllOf: []string{""}}} }},
		{"negative minutes", func(l *Lab) { l.EstimatedMinutes = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := valid()
			tt.mutate(l)
			assert.ErrorIs(t, l.Validate(), ErrInvalidInput)
		})
	}
}

func TestUserHasCompleted(t *testing.T) {
	u := &User{CompletedLabs: []string{"bash-1"}}
	assert.True(t, u.HasCompleted("bash-1"))
	assert.False(t, u.HasCompleted("bash-2"))
	assert.False(t, u.IsAdmin())
}

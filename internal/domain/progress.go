package domain

type CategoryProgress struct {
	Category  Category `json:"category"`
	Completed int      `json:"completed"`
	Total     int      `json:"total"`
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

type Progress struct {
	CompletedLabs  []string           `json:"completed_labs"`
	CompletedCount int                `json:"completed_count"`
	TotalLabs      int                `json:"total_labs"`
	Percentage     float64            `json:"percentage"`
	TotalMinutes   int                `json:"total_minutes"`
	Categories     []CategoryProgress `json:"categories"`
	Achievements   []Achievement      `json:"achievements"`
	EarnedCount    int                `json:"earned_count"`
}

var masteryTitles = map[Category]string{
	CategoryBash:    "Bash Master",
	CategoryPython:  "Python Pro",
	CategoryAnsible: "Ansible Expert",
	CategoryLinux:   "Linux Guru",
}

var categoryNames = map[Category]string{
	CategoryBash:    "Bash",
	CategoryPython:  "Python",
	CategoryAnsible: "Ansible",
	CategoryLinux:   "Linux",
}

// ComputeProgress ignores completed ids that are no longer in the catalog.
func ComputeProgress(labs []*Lab, completed []string) Progress {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	totals := make(map[Category]int)
	finished := make(map[Category]int)
	p := Progress{
		CompletedLabs: []string{},
		TotalLabs:     len(labs),
	}

	for _, lab := range labs {
		totals[lab.Category]++
		if !done[lab.ID] {
			continue
		}
		finished[lab.Category]++
		p.CompletedLabs = append(p.CompletedLabs, lab.ID)
		p.TotalMinutes += lab.EstimatedMinutes
	}
	p.CompletedCount = len(p.CompletedLabs)
	if p.TotalLabs > 0 {
		p.Percentage = float64(p.CompletedCount) / float64(p.TotalLabs) * 100
	}

	p.Achievements = append(p.Achievements, Achievement{
		ID:          "first-steps",
		Title:       "First Steps",
		Description: "Complete your first lab",
		Earned:      p.CompletedCount >= 1,
	})

	// every category offers a mastery achievement; an empty one cannot be earned
	p.Categories = []CategoryProgress{}
	for _, c := range Categories {
		if totals[c] > 0 {
			p.Categories = append(p.Categories, CategoryProgress{
				Category:  c,
				Completed: finished[c],
				Total:     totals[c],
			})
		}
		p.Achievements = append(p.Achievements, Achievement{
			ID:          string(c) + "-master",
			Title:       masteryTitles[c],
			Description: "Complete all " + categoryNames[c] + " labs",
			Earned:      totals[c] > 0 && finished[c] == totals[c],
		})
	}

	p.Achievements = append(p.Achievements, Achievement{
		ID:          "devops-champion",
		Title:       "DevOps Champion",
		Description: "Complete all available labs",
		Earned:      p.TotalLabs > 0 && p.CompletedCount == p.TotalLabs,
	})

	for _, a := range p.Achievements {
		if a.Earned {
			p.EarnedCount++
		}
	}
	return p
}

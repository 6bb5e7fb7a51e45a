package domain

type Category string

const (
	CategoryBash    Category = "bash"
	CategoryPython  Category = "python"
	CategoryAnsible Category = "ansible"
	CategoryLinux   Category = "linux"
)

// Categories is the display order used everywhere labs are grouped.
var Categories = []Category{CategoryBash, CategoryPython, CategoryAnsible, CategoryLinux}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type CategoryGroup struct {
	Category Category `json:"category"`
	Labs     []*Lab   `json:"labs"`
}

// GroupByCategory keeps only categories that have labs, in Categories order.
func GroupByCategory(labs []*Lab) []CategoryGroup {
	byCategory := make(map[Category][]*Lab)
	for _, lab := range labs {
		byCategory[lab.Category] = append(byCategory[lab.Category], lab)
	}

	groups := make([]CategoryGroup, 0, len(byCategory))
	for _, c := range Categories {
		if ls, ok := byCategory[c]; ok {
			groups = append(groups, CategoryGroup{Category: c, Labs: ls})
		}
	}
	return groups
}

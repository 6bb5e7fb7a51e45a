package domain

import (
	"fmt"
	"strings"
	"time"
)

type ValidationType string

const (
	ValidationOutput   ValidationType = "output"
	ValidationFile     ValidationType = "file"
	ValidationFunction ValidationType = "function"
)

type Validation struct {
	Type        ValidationType `json:"type"`
	Expected    string         `json:"expected"`
	Description string         `json:"description"`
}

// Check passes when every substring in AllOf appears in the submitted code.
type Check struct {
	AllOf []string `json:"all_of"`
}

type Lab struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Category         Category   `json:"category"`
	Difficulty       Difficulty `json:"difficulty"`
	Description      string     `json:"description"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Instructions     string     `json:"instructions"`
	StarterCode      string     `json:"starter_code"`
	Validation       Validation `json:"validation"`
	CreatedAt        time.Time  `json:"created_at"`

	Solution      string  `json:"-"`
	Checks        []Check `json:"-"`
	SuccessOutput string  `json:"-"`
	FailureOutput string  `json:"-"`
}

func (l *Lab) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("%w: lab id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("%w: lab %s: title is required", ErrInvalidInput, l.ID)
	}
	if !l.Category.Valid() {
		return fmt.Errorf("%w: lab %s: unknown category %q", ErrInvalidInput, l.ID, l.Category)
	}
	if !l.Difficulty.Valid() {
		return fmt.Errorf("%w: lab %s: unknown difficulty %q", ErrInvalidInput, l.ID, l.Difficulty)
	}
	if l.EstimatedMinutes < 0 {
		return fmt.Errorf("%w: lab %s: estimated minutes cannot be negative", ErrInvalidInput, l.ID)
	}
	if len(l.Checks) == 0 {
		return fmt.Errorf("%w: lab %s: at least one check is required", ErrInvalidInput, l.ID)
	}
	for i, c := range l.Checks {
		if len(c.AllOf) == 0 {
			return fmt.Errorf("%w: lab %s: check %d is empty", ErrInvalidInput, l.ID, i)
		}
		for _, s := range c.AllOf {
			if s == "" {
				return fmt.Errorf("%w: lab %s: check %d has an empty pattern", ErrInvalidInput, l.ID, i)
			}
		}
	}
	return nil
}

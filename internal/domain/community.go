package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type LabComment struct {
	ID        string    `json:"id"`
	LabID     string    `json:"lab_id"`
	UserID    string    `json:"user_id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type LabFeedback struct {
	LabID         string        `json:"lab_id"`
	AverageRating float64       `json:"average_rating"`
	Comments      []*LabComment `json:"comments"`
}

// ChallengeDateLayout is the calendar day format of DailyChallenge.Date.
const ChallengeDateLayout = "2006-01-02"

type DailyChallenge struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
	Date        string     `json:"date"`
	CompletedBy []string   `json:"completed_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers     int     `json:"total_users"`
	ActiveLabs     int     `json:"active_labs"`
	CompletionRate float64 `json:"completion_rate"`
	AverageMinutes float64 `json:"average_minutes"`
}

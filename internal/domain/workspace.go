package domain

import "time"

const (
	WorkspaceStatusInProgress = "in_progress"
	WorkspaceStatusCompleted  = "completed"
)

type Workspace struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	LabID     string    `json:"lab_id"`
	UserCode  string    `json:"user_code"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

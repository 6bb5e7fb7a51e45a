package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Profile struct {
	Name            string `json:"name"`
	WorkTitle       string `json:"work_title"`
	MobileNumber    string `json:"mobile_number"`
	Company         string `json:"company"`
	ExperienceLevel string `json:"experience_level"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Profile
	CompletedLabs []string `json:"completed_labs"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HasCompleted(labID string) bool {
	for _, id := range u.CompletedLabs {
		if id == labID {
			return true
		}
	}
	return false
}

// UserSummary is the admin view of a user.
type UserSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	JoinedAt      time.Time `json:"joined_at"`
	CompletedLabs int       `json:"completed_labs"`
}

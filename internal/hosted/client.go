// Package hosted mirrors user profiles into a hosted PostgREST-style table.
package hosted

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"

	"opscurator/internal/domain"
)

type Config struct {
	URL     string
	APIKey  string
	Table   string
	Timeout time.Duration
}

type profileRow struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	WorkTitle       string    `json:"work_title"`
	MobileNumber    string    `json:"mobile_number"`
	Company         string    `json:"company"`
	ExperienceLevel string    `json:"experience_level"`
	CompletedLabs   []string  `json:"completed_labs"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Client struct {
	http   *resty.Client
	table  string
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: hosted url is required", domain.ErrInvalidInput)
	}
	if cfg.Table == "" {
		cfg.Table = "users"
	}

	logger = logger.Named("hosted")
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetHeader("apikey", cfg.APIKey).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetLogger(logger.Sugar())
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	return &Client{http: rc, table: cfg.Table, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.http.Close()
}

// UpsertProfile inserts or merges the user's row, keyed by id.
func (c *Client) UpsertProfile(ctx context.Context, user *domain.User) error {
	completed := user.CompletedLabs
	if completed == nil {
		completed = []string{}
	}
	row := profileRow{
		ID:              user.ID,
		Email:           user.Email,
		Name:            user.Name,
		Role:            string(user.Role),
		WorkTitle:       user.WorkTitle,
		MobileNumber:    user.MobileNumber,
		Company:         user.Company,
		ExperienceLevel: user.ExperienceLevel,
		CompletedLabs:   completed,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody([]profileRow{row}).
		Post("/rest/v1/" + c.table)
	if err != nil {
		return fmt.Errorf("%w: upsert profile %s: %v", domain.ErrUnavailable, user.ID, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: upsert profile %s: status %d: %s",
			domain.ErrUnavailable, user.ID, resp.StatusCode(), resp.String())
	}

	c.logger.Debug("profile mirrored", zap.String("user_id", user.ID))
	return nil
}

// Ping reads a single row to prove the table is reachable with our key.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("select", "id").
		SetQueryParam("limit", "1").
		Get("/rest/v1/" + c.table)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: status %d", domain.ErrUnavailable, resp.StatusCode())
	}
	return nil
}

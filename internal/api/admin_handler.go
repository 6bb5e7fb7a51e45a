package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"opscurator/internal/domain"
)

// LabRequest carries the full lab, including the fields hidden from learners.
type LabRequest struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Category         domain.Category   `json:"category"`
	Difficulty       domain.Difficulty `json:"difficulty"`
	Description      string            `json:"description"`
	EstimatedMinutes int               `json:"estimated_minutes"`
	Instructions     string            `json:"instructions"`
	StarterCode      string            `json:"starter_code"`
	Solution         string            `json:"solution"`
	Validation       domain.Validation `json:"validation"`
	Checks           [][]string        `json:"checks"`
	SuccessOutput    string            `json:"success_output"`
	FailureOutput    string            `json:"failure_output"`
}

func (r *LabRequest) toDomain() *domain.Lab {
	lab := &domain.Lab{
		ID:               r.ID,
		Title:            r.Title,
		Category:         r.Category,
		Difficulty:       r.Difficulty,
		Description:      r.Description,
		EstimatedMinutes: r.EstimatedMinutes,
		Instructions:     r.Instructions,
		StarterCode:      r.StarterCode,
		Solution:         r.Solution,
		Validation:       r.Validation,
		SuccessOutput:    r.SuccessOutput,
		FailureOutput:    r.FailureOutput,
	}
	for _, allOf := range r.Checks {
		lab.Checks = append(lab.Checks, domain.Check{AllOf: allOf})
	}
	return lab
}

type ChallengeRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    domain.Category   `json:"category"`
	Difficulty  domain.Difficulty `json:"difficulty"`
	Date        string            `json:"date"`
}

func (h *Handler) HandleAdminStats(c echo.Context) error {
	stats, err := h.adminService.Stats(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) HandleAdminUsers(c echo.Context) error {
	users, err := h.adminService.ListUsers(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) HandleCreateLab(c echo.Context) error {
	var req LabRequest
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}

	lab, err := h.labService.CreateLab(c.Request().Context(), req.toDomain())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, lab)
}

func (h *Handler) HandleUpdateLab(c echo.Context) error {
	var req LabRequest
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}

	lab := req.toDomain()
	lab.ID = c.Param("labID")
	updated, err := h.labService.UpdateLab(c.Request().Context(), lab)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) HandleDeleteLab(c echo.Context) error {
	if err := h.labService.DeleteLab(c.Request().Context(), c.Param("labID")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "lab deleted"})
}

func (h *Handler) HandleCreateChallenge(c echo.Context) error {
	var req ChallengeRequest
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}

	ch, err := h.communityService.CreateChallenge(c.Request().Context(), &domain.DailyChallenge{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Date:        req.Date,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, ch)
}

package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"opscurator/internal/domain"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/v1/auth/register
func (h *Handler) HandleRegister(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}

	sess, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, sess)
}

// POST /api/v1/auth/login
func (h *Handler) HandleLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}

	sess, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) HandleLogout(c echo.Context) error {
	claims := currentClaims(c)
	if err := h.authService.Logout(c.Request().Context(), claims.TokenID()); err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) HandleMe(c echo.Context) error {
	user, err := h.authService.CurrentUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) HandleProgress(c echo.Context) error {
	progress, err := h.progressService.Progress(c.Request().Context(), currentUserID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, progress)
}

func (h *Handler) HandleUpdateProfile(c echo.Context) error {
	var profile domain.Profile
	if err := c.Bind(&profile); err != nil {
		return badPayload(c)
	}

	user, err := h.progressService.UpdateProfile(c.Request().Context(), currentUserID(c), profile)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

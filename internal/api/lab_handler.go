package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type WorkspaceRequest struct {
	UserCode string `json:"user_code"`
}

func (h *Handler) HandleListLabs(c echo.Context) error {
	labs, err := h.labService.ListLabs(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, labs)
}

func (h *Handler) HandleListCategories(c echo.Context) error {
	groups, err := h.labService.ListCategories(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *Handler) HandleGetLabDetails(c echo.Context) error {
	ctx := c.Request().Context()
	userID := currentUserID(c)

	lab, ws, err := h.labService.GetLabDetails(ctx, userID, c.Param("labID"))
	if err != nil {
		return h.respondError(c, err)
	}
	user, err := h.authService.CurrentUser(ctx, userID)
	if err != nil {
		return h.respondError(c, err)
	}

	response := struct {
		Lab       interface{} `json:"lab"`
		Workspace interface{} `json:"workspace"`
		Completed bool        `json:"completed"`
	}{
		Lab:       lab,
		Workspace: ws,
		Completed: user.HasCompleted(lab.ID),
	}
	return c.JSON(http.StatusOK, response)
}

func (h *Handler) HandleGetSolution(c echo.Context) error {
	labID := c.Param("labID")
	solution, err := h.labService.GetSolution(c.Request().Context(), labID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"lab_id": labID, "solution": solution})
}

func (h *Handler) HandleSaveWorkspace(c echo.Context) error {
	var req WorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}

	ws, err := h.labService.SaveWorkspace(c.Request().Context(), currentUserID(c), c.Param("labID"), req.UserCode)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, ws)
}

func (h *Handler) HandleResetWorkspace(c echo.Context) error {
	ws, err := h.labService.ResetWorkspace(c.Request().Context(), currentUserID(c), c.Param("labID"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, ws)
}

// HandleRunLab is the non-streaming run: it blocks for the simulated delay
// and returns the result.
func (h *Handler) HandleRunLab(c echo.Context) error {
	var req WorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}

	res, err := h.labService.SubmitLab(c.Request().Context(), currentUserID(c), c.Param("labID"), req.UserCode)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

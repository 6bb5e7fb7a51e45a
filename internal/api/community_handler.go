package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type CommentRequest struct {
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

func (h *Handler) HandleListComments(c echo.Context) error {
	fb, err := h.communityService.LabFeedback(c.Request().Context(), c.Param("labID"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, fb)
}

func (h *Handler) HandleAddComment(c echo.Context) error {
	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return badPayload(c)
	}

	comment, err := h.communityService.AddComment(c.Request().Context(), currentUserID(c), c.Param("labID"), req.Comment, req.Rating)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *Handler) HandleListChallenges(c echo.Context) error {
	cs, err := h.communityService.ListChallenges(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *Handler) HandleTodayChallenge(c echo.Context) error {
	ch, err := h.communityService.TodayChallenge(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *Handler) HandleCompleteChallenge(c echo.Context) error {
	ch, err := h.communityService.CompleteChallenge(c.Request().Context(), currentUserID(c), c.Param("challengeID"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, ch)
}

package api

import (
	"github.com/labstack/echo/v4"

	"opscurator/internal/domain"
)

// RegisterRoutes registers every API route under /api/v1.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/v1")

	g.GET("/health", h.HandleHealthCheck)
	g.POST("/auth/register", h.HandleRegister)
	g.POST("/auth/login", h.HandleLogin)

	s := g.Group("", h.RequireSession)
	s.POST("/auth/logout", h.HandleLogout)

	s.GET("/me", h.HandleMe)
	s.GET("/me/progress", h.HandleProgress)
	s.PUT("/me/profile", h.HandleUpdateProfile)

	s.GET("/labs", h.HandleListLabs)
	s.GET("/categories", h.HandleListCategories)
	s.GET("/labs/:labID", h.HandleGetLabDetails)
	s.GET("/labs/:labID/solution", h.HandleGetSolution)
	s.PUT("/labs/:labID/workspace", h.HandleSaveWorkspace)
	s.POST("/labs/:labID/workspace/reset", h.HandleResetWorkspace)
	s.POST("/labs/:labID/run", h.HandleRunLab)
	// websocket: ws://host/api/v1/labs/bash-1/execute?token=...
	s.GET("/labs/:labID/execute", h.HandleLabExecute)

	s.GET("/labs/:labID/comments", h.HandleListComments)
	s.POST("/labs/:labID/comments", h.HandleAddComment)

	s.GET("/challenges", h.HandleListChallenges)
	s.GET("/challenges/today", h.HandleTodayChallenge)
	s.POST("/challenges/:challengeID/complete", h.HandleCompleteChallenge)

	admin := s.Group("/admin", RequireRole(domain.RoleAdmin))
	admin.GET("/stats", h.HandleAdminStats)
	admin.GET("/users", h.HandleAdminUsers)
	admin.POST("/labs", h.HandleCreateLab)
	admin.PUT("/labs/:labID", h.HandleUpdateLab)
	admin.DELETE("/labs/:labID", h.HandleDeleteLab)
	admin.POST("/challenges", h.HandleCreateChallenge)
}

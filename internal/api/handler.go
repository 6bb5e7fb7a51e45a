package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"opscurator/internal/domain"
	"opscurator/internal/service"
)

type Services struct {
	Auth      *service.AuthService
	Labs      *service.LabService
	Progress  *service.ProgressService
	Community *service.CommunityService
	Admin     *service.AdminService
	Health    *service.HealthService
}

type Handler struct {
	authService      *service.AuthService
	labService       *service.LabService
	progressService  *service.ProgressService
	communityService *service.CommunityService
	adminService     *service.AdminService
	healthService    *service.HealthService

	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler builds the HTTP handlers. allowedOrigins limits websocket
// upgrades; "*" accepts any origin.
func NewHandler(svc Services, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		authService:      svc.Auth,
		labService:       svc.Labs,
		progressService:  svc.Progress,
		communityService: svc.Community,
		adminService:     svc.Admin,
		healthService:    svc.Health,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
		logger: logger.Named("handler"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

type ClientMessage struct {
	Action   string `json:"action"`
	UserCode string `json:"user_code"`
}

type ServerMessage struct {
	Type    string `json:"type"`
	Payload string `json:"payload,omitempty"`
}

const (
	msgLog      = "log"
	msgComplete = "complete"
	msgFailed   = "failed"
	msgError    = "error"
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...} with the status of its domain
// error. Unexpected errors are logged and not echoed to the client.
func (h *Handler) respondError(c echo.Context, err error) error {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.JSON(status, map[string]string{"error": "internal server error"})
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func badPayload(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
}

// HandleLabExecute streams a simulated run over a websocket. The client sends
// {"action":"run","user_code":"..."} and receives log lines followed by a
// complete, failed or error message, then a normal close frame.
func (h *Handler) HandleLabExecute(c echo.Context) error {
	labID := c.Param("labID")
	userID := currentUserID(c)

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return nil
	}
	defer ws.Close()

	log := h.logger.With(zap.String("lab_id", labID), zap.String("user_id", userID))
	log.Debug("websocket client connected")

	var msg ClientMessage
	if err := ws.ReadJSON(&msg); err != nil {
		log.Warn("failed to read initial message", zap.Error(err))
		return nil
	}
	if msg.Action != "run" {
		ws.WriteJSON(ServerMessage{Type: msgError, Payload: "unknown action: " + msg.Action})
		closeNormal(ws)
		return nil
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	logStream, finalState, _, err := h.labService.StreamLab(ctx, userID, labID, msg.UserCode)
	if err != nil {
		log.Warn("failed to start run", zap.Error(err))
		ws.WriteJSON(ServerMessage{Type: msgError, Payload: err.Error()})
		closeNormal(ws)
		return nil
	}

	// a client disconnect cancels the run
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				log.Debug("websocket client disconnected", zap.Error(err))
				cancel()
				return
			}
		}
	}()

	h.streamRun(ctx, ws, userID, labID, logStream, finalState, log)

	closeNormal(ws)
	ws.Close()
	<-readDone
	return nil
}

func (h *Handler) streamRun(ctx context.Context, ws *websocket.Conn, userID, labID string, logStream <-chan service.ExecutionResult, finalState <-chan service.ExecutionFinalState, log *zap.Logger) {
	for {
		select {
		case line, ok := <-logStream:
			if !ok {
				logStream = nil
				continue
			}
			if err := ws.WriteJSON(ServerMessage{Type: msgLog, Payload: line.Line}); err != nil {
				log.Warn("failed to write log line", zap.Error(err))
				return
			}

		case state, ok := <-finalState:
			if !ok {
				return
			}
			h.writeRunResult(ctx, ws, userID, labID, state, log)
			return

		case <-ctx.Done():
			return
		}
	}
}

func closeNormal(ws *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

func (h *Handler) writeRunResult(ctx context.Context, ws *websocket.Conn, userID, labID string, state service.ExecutionFinalState, log *zap.Logger) {
	res, err := h.labService.FinishRun(ctx, userID, labID, state)
	if err != nil {
		log.Warn("run did not finish", zap.Error(err))
		ws.WriteJSON(ServerMessage{Type: msgError, Payload: err.Error()})
		return
	}
	if !res.Success {
		ws.WriteJSON(ServerMessage{Type: msgFailed, Payload: res.Output})
		return
	}
	if res.NewlyCompleted {
		log.Info("lab completed over websocket")
	}
	ws.WriteJSON(ServerMessage{Type: msgComplete, Payload: res.Output})
}

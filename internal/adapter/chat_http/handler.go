package chat_http

import (
	"net/http"
	"strings"

	"trail-orchestrator/internal/domain"
	"trail-orchestrator/internal/infra/logger"
	"trail-orchestrator/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// maxMessageLength bounds a single user message. Longer inputs are
// rejected before they reach a prompt.
const maxMessageLength = 2000

type Handler struct {
	chatUsecase usecase.ChatUsecase
	sessions    domain.SessionStore
	catalog     *domain.Catalog
	ready       func() bool
}

func NewHandler(
	chatUsecase usecase.ChatUsecase,
	sessions domain.SessionStore,
	catalog *domain.Catalog,
	ready func() bool,
) *Handler {
	return &Handler{
		chatUsecase: chatUsecase,
		sessions:    sessions,
		catalog:     catalog,
		ready:       ready,
	}
}

// RegisterRoutes binds every route onto the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/chat", h.Chat)
	e.GET("/v1/sessions/:id", h.GetSession)
	e.DELETE("/v1/sessions/:id", h.DeleteSession)
	e.GET("/v1/trails", h.ListTrails)
	e.GET("/healthz", h.Health)
	e.GET("/readyz", h.Ready)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type trailView struct {
	Mountain    string  `json:"mountain"`
	Course      string  `json:"course"`
	Region      string  `json:"region"`
	Difficulty  string  `json:"difficulty"`
	DistanceKm  float64 `json:"distance_km"`
	Duration    string  `json:"duration"`
	AppealScore float64 `json:"appeal_score"`
}

type chatResponse struct {
	SessionID string      `json:"session_id"`
	Intent    string      `json:"intent"`
	Response  string      `json:"response"`
	Degraded  bool        `json:"degraded"`
	Results   []trailView `json:"results"`
}

// Chat handles one conversational turn.
// (POST /v1/chat)
func (h *Handler) Chat(ctx echo.Context) error {
	var req chatRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}
	if len(message) > maxMessageLength {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "message is too long"})
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session := h.sessions.GetOrCreate(sessionID)
	turnID := uuid.New()
	turnCtx := logger.WithSessionID(ctx.Request().Context(), sessionID)
	turnCtx = logger.WithTurnID(turnCtx, turnID.String())

	var output usecase.HandleTurnOutput
	session.WithState(func(state *domain.ConversationState) {
		output = h.chatUsecase.HandleTurn(turnCtx, usecase.HandleTurnInput{
			SessionID: sessionID,
			TurnID:    turnID,
			UserText:  message,
			State:     *state,
		})
		*state = output.State
	})

	return ctx.JSON(http.StatusOK, chatResponse{
		SessionID: sessionID,
		Intent:    string(output.Intent),
		Response:  output.Response,
		Degraded:  output.Degraded,
		Results:   toTrailViews(output.State.LastResults),
	})
}

type sessionResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
	Results   []trailView      `json:"results"`
}

// GetSession returns a read-only transcript snapshot.
// (GET /v1/sessions/:id)
func (h *Handler) GetSession(ctx echo.Context) error {
	session, ok := h.sessions.Get(ctx.Param("id"))
	if !ok {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	state := session.Snapshot()
	return ctx.JSON(http.StatusOK, sessionResponse{
		SessionID: session.ID,
		Messages:  state.Messages,
		Results:   toTrailViews(state.LastResults),
	})
}

// DeleteSession discards a session and its state.
// (DELETE /v1/sessions/:id)
func (h *Handler) DeleteSession(ctx echo.Context) error {
	if !h.sessions.Delete(ctx.Param("id")) {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ListTrails lists the catalog, optionally filtered by mountain.
// (GET /v1/trails)
func (h *Handler) ListTrails(ctx echo.Context) error {
	records := h.catalog.Records()
	if mountain := strings.TrimSpace(ctx.QueryParam("mountain")); mountain != "" {
		records = h.catalog.CoursesFor(mountain)
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"count":  len(records),
		"trails": toTrailViews(records),
	})
}

// Health reports process liveness.
// (GET /healthz)
func (h *Handler) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the service can take chat traffic.
// (GET /readyz)
func (h *Handler) Ready(ctx echo.Context) error {
	if h.ready != nil && !h.ready() {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func toTrailViews(records []domain.TrailRecord) []trailView {
	views := make([]trailView, 0, len(records))
	for _, r := range records {
		views = append(views, trailView{
			Mountain:    r.MountainName,
			Course:      r.CourseName,
			Region:      r.RegionLabel,
			Difficulty:  r.DifficultyDetail,
			DistanceKm:  r.TotalDistanceKm,
			Duration:    r.EstimatedDuration,
			AppealScore: r.OverallAppealScore,
		})
	}
	return views
}

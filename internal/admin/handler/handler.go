// Package handler exposes the admin broadcast endpoint.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/keshavpotewar/SkillSwap/internal/notify"
	"github.com/keshavpotewar/SkillSwap/internal/platform/middleware"
	"github.com/keshavpotewar/SkillSwap/internal/transport/http/shared"
)

// Handler handles platform-wide announcements.
type Handler struct {
	logger     *slog.Logger
	dispatcher notify.Dispatcher
}

// New creates a new admin Handler.
func New(dispatcher notify.Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, dispatcher: dispatcher}
}

// Register registers the admin routes with the chi router. The router is
// expected to already carry the admin-role middleware.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/platform-message", h.handlePlatformMessage)
}

type platformMessageRequest struct {
	Message string `json:"message" validate:"required,min=10,max=500"`
	Type    string `json:"type" validate:"omitempty,oneof=info warning announcement"`
}

type platformMessage struct {
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) handlePlatformMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req platformMessageRequest
	if err := shared.DecodeValid(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid platform message request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	if req.Type == "" {
		req.Type = "info"
	}
	msg := platformMessage{
		Message:   req.Message,
		Type:      req.Type,
		CreatedAt: time.Now().UTC(),
	}
	h.dispatcher.Broadcast(ctx, notify.EventPlatformMessage, msg)

	h.logger.InfoContext(ctx, "platform message broadcast",
		"request_id", middleware.GetRequestID(ctx),
		"type", req.Type,
	)

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"message":         "Platform message added successfully",
		"platformMessage": msg,
	})
}

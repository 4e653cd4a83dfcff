// Package handler exposes direct messaging over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keshavpotewar/SkillSwap/internal/message"
	"github.com/keshavpotewar/SkillSwap/internal/platform/middleware"
	"github.com/keshavpotewar/SkillSwap/internal/transport/http/shared"
	"github.com/keshavpotewar/SkillSwap/pkg/domerr"
)

// Service defines the interface for messaging operations.
type Service interface {
	Send(ctx context.Context, senderID, recipientID, body string) (*message.Message, error)
	GetConversation(ctx context.Context, userID, counterpartID string) ([]message.Message, error)
	GetRecentConversations(ctx context.Context, userID string) ([]message.Conversation, error)
	MarkRead(ctx context.Context, ownerID, counterpartID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// Handler handles messaging endpoints.
type Handler struct {
	logger   *slog.Logger
	messages Service
}

// New creates a new message Handler.
func New(messages Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, messages: messages}
}

// Register registers the message routes with the chi router. The static
// routes register before the parameterised one so "unread" is never taken
// for a user ID.
func (h *Handler) Register(r chi.Router) {
	r.Route("/messages", func(r chi.Router) {
		r.Post("/", h.handleSend)
		r.Get("/", h.handleRecent)
		r.Get("/unread/count", h.handleUnreadCount)
		r.Get("/{userId}", h.handleConversation)
		r.Put("/{userId}/read", h.handleMarkRead)
	})
}

type sendRequest struct {
	To      string `json:"to" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req sendRequest
	if err := shared.DecodeValid(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid send message request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	sent, err := h.messages.Send(ctx, userID, req.To, req.Message)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to send message")
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Message sent successfully",
		"data":    sent,
	})
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	conversations, err := h.messages.GetRecentConversations(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list conversations")
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	count, err := h.messages.UnreadCount(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to count unread messages")
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]int{"unreadCount": count})
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	messages, err := h.messages.GetConversation(ctx, userID, chi.URLParam(r, "userId"))
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to get conversation")
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.messages.MarkRead(ctx, userID, chi.URLParam(r, "userId")); err != nil {
		h.writeServiceError(ctx, w, err, "failed to mark conversation read")
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Messages marked as read",
	})
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if domerr.CodeOf(err) == domerr.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, domerr.New(domerr.CodeInternal, msg))
		return
	}
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
	shared.WriteError(w, err)
}

// Package handler exposes user feedback over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keshavpotewar/SkillSwap/internal/platform/middleware"
	"github.com/keshavpotewar/SkillSwap/internal/rating"
	"github.com/keshavpotewar/SkillSwap/internal/transport/http/shared"
	"github.com/keshavpotewar/SkillSwap/pkg/domerr"
)

// Service defines the interface for rating operations.
type Service interface {
	AddFeedback(ctx context.Context, targetID, raterID string, ratingValue int, message string) (*rating.Result, error)
}

// Handler handles user feedback endpoints.
type Handler struct {
	logger  *slog.Logger
	ratings Service
}

// New creates a new rating Handler.
func New(ratings Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, ratings: ratings}
}

// Register registers the user feedback route with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users/{userId}/feedback", h.handleAddFeedback)
}

type feedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Message string `json:"message" validate:"required,min=10,max=300"`
}

func (h *Handler) handleAddFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raterID := middleware.GetUserID(ctx)

	var req feedbackRequest
	if err := shared.DecodeValid(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid user feedback request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	result, err := h.ratings.AddFeedback(ctx, chi.URLParam(r, "userId"), raterID, req.Rating, req.Message)
	if err != nil {
		if domerr.CodeOf(err) == domerr.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to add user feedback",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
			shared.WriteError(w, domerr.New(domerr.CodeInternal, "failed to add user feedback"))
			return
		}
		h.logger.WarnContext(ctx, "rejected user feedback",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Feedback added successfully",
		"rating":  result.Rating,
		"userId":  result.UserID,
	})
}

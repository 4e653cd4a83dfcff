// Package handler exposes the swap request lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keshavpotewar/SkillSwap/internal/platform/middleware"
	"github.com/keshavpotewar/SkillSwap/internal/swap"
	"github.com/keshavpotewar/SkillSwap/internal/transport/http/shared"
	"github.com/keshavpotewar/SkillSwap/pkg/domerr"
)

// Service defines the interface for swap request operations.
type Service interface {
	Create(ctx context.Context, senderID string, p swap.CreateParams) (*swap.Request, error)
	Accept(ctx context.Context, requestID, actorID string) (*swap.Request, error)
	Reject(ctx context.Context, requestID, actorID string) (*swap.Request, error)
	Delete(ctx context.Context, requestID, actorID string) error
	AddFeedback(ctx context.Context, requestID, actorID string, rating int, message string) (*swap.Request, error)
	Get(ctx context.Context, requestID, actorID string) (*swap.Request, error)
	List(ctx context.Context, actorID string, dir swap.Direction, status swap.Status) ([]swap.WithCounterpart, error)
}

// Handler handles swap request endpoints.
type Handler struct {
	logger *slog.Logger
	swaps  Service
}

// New creates a new swap Handler.
func New(swaps Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, swaps: swaps}
}

// Register registers the swap routes with the chi router. The router is
// expected to already carry the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Route("/swaps", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}/accept", h.handleAccept)
		r.Put("/{id}/reject", h.handleReject)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/feedback", h.handleFeedback)
	})
}

type createRequest struct {
	To           string `json:"to" validate:"required"`
	SkillOffered string `json:"skillOffered" validate:"required,min=1,max=100"`
	SkillWanted  string `json:"skillWanted" validate:"required,min=1,max=100"`
	Message      string `json:"message" validate:"required,min=10,max=500"`
}

type feedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Message string `json:"message" validate:"required,min=10,max=300"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req createRequest
	if err := shared.DecodeValid(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid swap create request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	created, err := h.swaps.Create(ctx, userID, swap.CreateParams{
		RecipientID:  req.To,
		SkillOffered: req.SkillOffered,
		SkillWanted:  req.SkillWanted,
		Message:      req.Message,
	})
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create swap request")
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":     "Swap request sent successfully",
		"swapRequest": created,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	dir := swap.Direction(r.URL.Query().Get("type"))
	if dir == "" {
		dir = swap.DirectionAll
	}
	status := swap.Status(r.URL.Query().Get("status"))

	requests, err := h.swaps.List(ctx, userID, dir, status)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list swap requests")
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"swapRequests": requests})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	req, err := h.swaps.Get(ctx, chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to get swap request")
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"swapRequest": req})
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.swaps.Accept, "Swap request accepted")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.swaps.Reject, "Swap request rejected")
}

func (h *Handler) resolve(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, requestID, actorID string) (*swap.Request, error),
	message string,
) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	req, err := op(ctx, chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to resolve swap request")
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"message":     message,
		"swapRequest": req,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	if err := h.swaps.Delete(ctx, chi.URLParam(r, "id"), userID); err != nil {
		h.writeServiceError(ctx, w, err, "failed to delete swap request")
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Swap request deleted successfully",
	})
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req feedbackRequest
	if err := shared.DecodeValid(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid swap feedback request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	updated, err := h.swaps.AddFeedback(ctx, chi.URLParam(r, "id"), userID, req.Rating, req.Message)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to add swap feedback")
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":     "Feedback added successfully",
		"swapRequest": updated,
	})
}

// writeServiceError logs unexpected failures and lets expected domain errors
// pass through with their own message and status.
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

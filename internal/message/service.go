package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keshavpotewar/SkillSwap/internal/identity"
	"github.com/keshavpotewar/SkillSwap/internal/notify"
	"github.com/keshavpotewar/SkillSwap/internal/platform/metrics"
	"github.com/keshavpotewar/SkillSwap/pkg/domerr"
	"github.com/keshavpotewar/SkillSwap/pkg/sentinel"
)

// UserDirectory is the slice of the identity boundary this service reads.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*identity.User, error)
	Summaries(ctx context.Context, ids []string) (map[string]identity.Summary, error)
}

// Service is the conversation store: it persists messages, answers
// conversation queries, and pushes newMessage events at the recipient.
type Service struct {
	store           Store
	users           UserDirectory
	dispatcher      notify.Dispatcher
	logger          *slog.Logger
	metrics         *metrics.Metrics
	conversationMax int
}

func NewService(store Store, users UserDirectory, dispatcher notify.Dispatcher, logger *slog.Logger, m *metrics.Metrics, conversationMax int) *Service {
	if conversationMax <= 0 {
		conversationMax = 50
	}
	return &Service{
		store:           store,
		users:           users,
		dispatcher:      dispatcher,
		logger:          logger,
		metrics:         m,
		conversationMax: conversationMax,
	}
}

// Send persists a message to the recipient and publishes it to their live
// channels. Unlike swap requests, messaging requires the recipient's profile
// to be public.
func (s *Service) Send(ctx context.Context, senderID, recipientID, body string) (*Message, error) {
	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domerr.New(domerr.CodeNotFound, "target user not found")
		}
		return nil, fmt.Errorf("lookup recipient: %w", err)
	}
	if recipient.IsBanned {
		return nil, domerr.New(domerr.CodeForbidden, "cannot send message to banned user")
	}
	if !recipient.IsPublic {
		return nil, domerr.New(domerr.CodeForbidden, "cannot send message to private profile")
	}
	if senderID == recipientID {
		return nil, domerr.New(domerr.CodeInvalidOperation, "cannot send message to yourself")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domerr.New(domerr.CodeValidation, "message cannot be empty")
	}

	msg := &Message{
		ID:          uuid.NewString(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
		Read:        false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.metrics.MessagesSent.Inc()
	s.logger.InfoContext(ctx, "message sent",
		"message_id", msg.ID,
		"sender_id", senderID,
		"recipient_id", recipientID,
	)
	s.dispatcher.Publish(ctx, recipientID, notify.EventNewMessage, msg)
	return msg, nil
}

// GetConversation returns the most recent window of messages between the
// caller and the counterpart, oldest first for display.
func (s *Service) GetConversation(ctx context.Context, userID, counterpartID string) ([]Message, error) {
	if _, err := s.users.GetByID(ctx, counterpartID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domerr.New(domerr.CodeNotFound, "user not found")
		}
		return nil, fmt.Errorf("lookup counterpart: %w", err)
	}

	msgs, err := s.store.Between(ctx, userID, counterpartID, s.conversationMax)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	// Fetched newest-first to apply the recency window; reversed so the
	// client renders oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// GetRecentConversations returns one entry per distinct counterpart, carrying
// the latest message exchanged with each, newest conversation first.
func (s *Service) GetRecentConversations(ctx context.Context, userID string) ([]Conversation, error) {
	latest, err := s.store.LastPerCounterpart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get recent conversations: %w", err)
	}

	ids := make([]string, 0, len(latest))
	for i := range latest {
		ids = append(ids, latest[i].CounterpartID(userID))
	}
	summaries, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("join counterparts: %w", err)
	}

	out := make([]Conversation, 0, len(latest))
	for i := range latest {
		out = append(out, Conversation{
			Counterpart: summaries[latest[i].CounterpartID(userID)],
			LastMessage: latest[i],
		})
	}
	return out, nil
}

// MarkRead flips every unread message from counterpart to owner to read.
// Idempotent: repeating it is a no-op.
func (s *Service) MarkRead(ctx context.Context, ownerID, counterpartID string) error {
	n, err := s.store.MarkRead(ctx, ownerID, counterpartID)
	if err != nil {
		return fmt.Errorf("mark messages read: %w", err)
	}
	if n > 0 {
		s.logger.DebugContext(ctx, "messages marked read",
			"owner_id", ownerID,
			"counterpart_id", counterpartID,
			"count", n,
		)
	}
	return nil
}

// UnreadCount reports how many messages addressed to userID are unread.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.store.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return count, nil
}

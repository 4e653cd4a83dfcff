package message

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"github.com/keshavpotewar/SkillSwap/internal/identity"
	"github.com/keshavpotewar/SkillSwap/internal/notify"
	"github.com/keshavpotewar/SkillSwap/internal/platform/metrics"
	"github.com/keshavpotewar/SkillSwap/pkg/domerr"
	"github.com/keshavpotewar/SkillSwap/pkg/testutil"
)

type MessageServiceSuite struct {
	suite.Suite
	users    *identity.InMemoryStore
	store    *InMemoryStore
	registry *notify.Registry
	service  *Service

	bobInbox *testutil.CaptureChannel
}

func TestMessageServiceSuite(t *testing.T) {
	suite.Run(t, new(MessageServiceSuite))
}

func (s *MessageServiceSuite) SetupTest() {
	s.users = identity.NewInMemoryStore()
	s.users.Seed(identity.User{ID: "alice", Name: "Alice", IsPublic: true})
	s.users.Seed(identity.User{ID: "bob", Name: "Bob", IsPublic: true})
	s.users.Seed(identity.User{ID: "carol", Name: "Carol", IsPublic: true})
	s.users.Seed(identity.User{ID: "dan", Name: "Dan", IsPublic: false})
	s.users.Seed(identity.User{ID: "mallory", Name: "Mallory", IsPublic: true, IsBanned: true})

	s.store = NewInMemoryStore()
	s.registry = notify.NewRegistry()
	logger := testutil.DiscardLogger()
	m := metrics.New(prometheus.NewRegistry())
	dispatcher := notify.NewLocalDispatcher(s.registry, logger, m)
	s.service = NewService(s.store, s.users, dispatcher, logger, m, 5)

	s.bobInbox = testutil.NewCaptureChannel()
	s.registry.Register("bob", s.bobInbox)
}

func (s *MessageServiceSuite) send(from, to, body string) *Message {
	msg, err := s.service.Send(context.Background(), from, to, body)
	s.Require().NoError(err)
	return msg
}

func (s *MessageServiceSuite) TestSend() {
	ctx := context.Background()

	s.Run("recipient gets the live event", func() {
		msg := s.send("alice", "bob", "hey, fancy a swap?")
		s.False(msg.Read)

		envs := s.bobInbox.Drain()
		s.Require().Len(envs, 1)
		s.Equal(notify.EventNewMessage, envs[0].Event)
		payload, ok := envs[0].Payload.(*Message)
		s.Require().True(ok)
		s.Equal(msg.ID, payload.ID)
	})

	s.Run("dead channel does not fail the send", func() {
		s.bobInbox.FailWith(errors.New("connection reset"))
		msg := s.send("alice", "bob", "still gets stored")

		stored, err := s.service.GetConversation(ctx, "bob", "alice")
		s.Require().NoError(err)
		s.Require().NotEmpty(stored)
		s.Equal(msg.ID, stored[len(stored)-1].ID)
	})

	s.Run("body is trimmed", func() {
		msg := s.send("alice", "bob", "  padded  ")
		s.Equal("padded", msg.Body)
	})

	s.Run("whitespace-only body", func() {
		_, err := s.service.Send(ctx, "alice", "bob", "   \t ")
		s.True(domerr.Is(err, domerr.CodeValidation))
	})

	s.Run("unknown recipient", func() {
		_, err := s.service.Send(ctx, "alice", "nobody", "hello?")
		s.True(domerr.Is(err, domerr.CodeNotFound))
		s.Equal("target user not found", domerr.MessageOf(err))
	})

	s.Run("private profile", func() {
		_, err := s.service.Send(ctx, "alice", "dan", "knock knock")
		s.True(domerr.Is(err, domerr.CodeForbidden))
		s.Equal("cannot send message to private profile", domerr.MessageOf(err))
	})

	s.Run("banned recipient", func() {
		_, err := s.service.Send(ctx, "alice", "mallory", "hello there")
		s.True(domerr.Is(err, domerr.CodeForbidden))
	})

	s.Run("self message", func() {
		_, err := s.service.Send(ctx, "alice", "alice", "note to self")
		s.True(domerr.Is(err, domerr.CodeInvalidOperation))
	})
}

func (s *MessageServiceSuite) TestGetConversation() {
	ctx := context.Background()

	s.Run("oldest first, both directions", func() {
		first := s.send("alice", "bob", "first")
		second := s.send("bob", "alice", "second")
		third := s.send("alice", "bob", "third")

		msgs, err := s.service.GetConversation(ctx, "alice", "bob")
		s.Require().NoError(err)
		s.Require().Len(msgs, 3)
		s.Equal(first.ID, msgs[0].ID)
		s.Equal(second.ID, msgs[1].ID)
		s.Equal(third.ID, msgs[2].ID)
	})

	s.Run("window keeps the most recent messages", func() {
		for i := 0; i < 8; i++ {
			s.send("alice", "carol", fmt.Sprintf("message number %d", i))
		}

		msgs, err := s.service.GetConversation(ctx, "alice", "carol")
		s.Require().NoError(err)
		s.Require().Len(msgs, 5)
		s.Equal("message number 3", msgs[0].Body)
		s.Equal("message number 7", msgs[4].Body)
	})

	s.Run("third parties are excluded", func() {
		s.send("carol", "bob", "unrelated thread")

		msgs, err := s.service.GetConversation(ctx, "alice", "bob")
		s.Require().NoError(err)
		for _, m := range msgs {
			s.NotEqual("carol", m.SenderID)
		}
	})

	s.Run("unknown counterpart", func() {
		_, err := s.service.GetConversation(ctx, "alice", "nobody")
		s.True(domerr.Is(err, domerr.CodeNotFound))
	})

	s.Run("empty conversation", func() {
		msgs, err := s.service.GetConversation(ctx, "carol", "dan")
		s.Require().NoError(err)
		s.Empty(msgs)
	})
}

func (s *MessageServiceSuite) TestGetRecentConversations() {
	ctx := context.Background()

	s.send("alice", "bob", "older thread opener")
	s.send("carol", "alice", "newer thread opener")
	latest := s.send("alice", "bob", "now bob is the most recent again")

	convs, err := s.service.GetRecentConversations(ctx, "alice")
	s.Require().NoError(err)
	s.Require().Len(convs, 2)

	s.Equal("Bob", convs[0].Counterpart.Name)
	s.Equal(latest.ID, convs[0].LastMessage.ID)
	s.Equal("Carol", convs[1].Counterpart.Name)

	s.Run("uninvolved user has none", func() {
		convs, err := s.service.GetRecentConversations(ctx, "dan")
		s.Require().NoError(err)
		s.Empty(convs)
	})
}

func (s *MessageServiceSuite) TestMarkReadAndUnreadCount() {
	ctx := context.Background()

	s.send("alice", "bob", "one for bob")
	s.send("alice", "bob", "two for bob")
	s.send("carol", "bob", "one from carol")
	s.send("bob", "alice", "outbound, never counts for bob")

	count, err := s.service.UnreadCount(ctx, "bob")
	s.Require().NoError(err)
	s.Equal(3, count)

	s.Require().NoError(s.service.MarkRead(ctx, "bob", "alice"))

	s.Run("only the named counterpart is affected", func() {
		count, err := s.service.UnreadCount(ctx, "bob")
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("sender's own unread state is untouched", func() {
		count, err := s.service.UnreadCount(ctx, "alice")
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("repeat is a no-op", func() {
		s.Require().NoError(s.service.MarkRead(ctx, "bob", "alice"))
		count, err := s.service.UnreadCount(ctx, "bob")
		s.Require().NoError(err)
		s.Equal(1, count)
	})
}

//go:build integration

package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/keshavpotewar/SkillSwap/internal/identity"
	"github.com/keshavpotewar/SkillSwap/pkg/sentinel"
	"github.com/keshavpotewar/SkillSwap/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *identity.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = identity.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "user_feedback", "users"))
}

func (s *PostgresStoreSuite) seedUser(ctx context.Context, name string, public, banned bool) string {
	id := uuid.NewString()
	_, err := s.postgres.DB.ExecContext(ctx, `
		INSERT INTO users (id, name, location, is_public, is_banned)
		VALUES ($1, $2, $3, $4, $5)
	`, id, name, "Pune", public, banned)
	s.Require().NoError(err)
	return id
}

func (s *PostgresStoreSuite) TestGetByID() {
	ctx := context.Background()

	s.Run("flags and fields round trip", func() {
		id := s.seedUser(ctx, "Alice", true, false)
		u, err := s.store.GetByID(ctx, id)
		s.Require().NoError(err)
		s.Equal("Alice", u.Name)
		s.Equal("Pune", u.Location)
		s.True(u.IsPublic)
		s.False(u.IsBanned)
		s.Empty(u.Feedback)
	})

	s.Run("missing user", func() {
		_, err := s.store.GetByID(ctx, uuid.NewString())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresStoreSuite) TestSummaries() {
	ctx := context.Background()
	alice := s.seedUser(ctx, "Alice", true, false)
	bob := s.seedUser(ctx, "Bob", true, false)

	got, err := s.store.Summaries(ctx, []string{alice, bob, uuid.NewString()})
	s.Require().NoError(err)
	s.Len(got, 2, "unknown ids are simply absent")
	s.Equal("Alice", got[alice].Name)
	s.Equal("Bob", got[bob].Name)

	s.Run("empty input", func() {
		got, err := s.store.Summaries(ctx, nil)
		s.Require().NoError(err)
		s.Empty(got)
	})
}

func (s *PostgresStoreSuite) TestAppendFeedback() {
	ctx := context.Background()
	target := s.seedUser(ctx, "Target", true, false)
	raters := []string{
		s.seedUser(ctx, "Rater One", true, false),
		s.seedUser(ctx, "Rater Two", true, false),
		s.seedUser(ctx, "Rater Three", true, false),
	}

	entry := func(rater string, rating int) identity.FeedbackEntry {
		return identity.FeedbackEntry{
			RaterID:   rater,
			Rating:    rating,
			Message:   "a ledger entry",
			CreatedAt: time.Now().UTC(),
		}
	}

	s.Run("rating recomputes in the same transaction", func() {
		rating, err := s.store.AppendFeedback(ctx, target, entry(raters[0], 4))
		s.Require().NoError(err)
		s.Equal(4.0, rating)

		rating, err = s.store.AppendFeedback(ctx, target, entry(raters[1], 5))
		s.Require().NoError(err)
		s.Equal(4.5, rating)

		// (4+5+4)/3 rounds to 4.3.
		rating, err = s.store.AppendFeedback(ctx, target, entry(raters[2], 4))
		s.Require().NoError(err)
		s.Equal(4.3, rating)
	})

	s.Run("duplicate rater hits the primary key", func() {
		_, err := s.store.AppendFeedback(ctx, target, entry(raters[0], 1))
		s.ErrorIs(err, sentinel.ErrConflict)

		u, err := s.store.GetByID(ctx, target)
		s.Require().NoError(err)
		s.Len(u.Feedback, 3, "failed append must not change the ledger")
	})

	s.Run("unknown target hits the foreign key", func() {
		_, err := s.store.AppendFeedback(ctx, uuid.NewString(), entry(raters[0], 3))
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

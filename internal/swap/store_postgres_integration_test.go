//go:build integration

package swap_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/keshavpotewar/SkillSwap/internal/swap"
	"github.com/keshavpotewar/SkillSwap/pkg/sentinel"
	"github.com/keshavpotewar/SkillSwap/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *swap.PostgresStore

	alice string
	bob   string
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = swap.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "swap_requests", "users"))

	s.alice = s.seedUser(ctx, "Alice")
	s.bob = s.seedUser(ctx, "Bob")
}

func (s *PostgresStoreSuite) seedUser(ctx context.Context, name string) string {
	id := uuid.NewString()
	_, err := s.postgres.DB.ExecContext(ctx,
		`INSERT INTO users (id, name) VALUES ($1, $2)`, id, name)
	s.Require().NoError(err)
	return id
}

func (s *PostgresStoreSuite) newRequest(sender, recipient string) *swap.Request {
	return &swap.Request{
		ID:           uuid.NewString(),
		SenderID:     sender,
		RecipientID:  recipient,
		SkillOffered: "Go",
		SkillWanted:  "Rust",
		Message:      "an afternoon of pairing",
		Status:       swap.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}
}

func (s *PostgresStoreSuite) TestCreate() {
	ctx := context.Background()

	s.Run("round trip", func() {
		req := s.newRequest(s.alice, s.bob)
		s.Require().NoError(s.store.Create(ctx, req))

		got, err := s.store.GetByID(ctx, req.ID)
		s.Require().NoError(err)
		s.Equal(req.ID, got.ID)
		s.Equal(swap.StatusPending, got.Status)
		s.Nil(got.Feedback)
	})

	s.Run("duplicate pending pair hits the partial index", func() {
		err := s.store.Create(ctx, s.newRequest(s.alice, s.bob))
		s.ErrorIs(err, sentinel.ErrConflict)
	})
}

// TestConcurrentResolve races accept against reject on one pending row.
// The conditional UPDATE guarantees a single winner.
func (s *PostgresStoreSuite) TestConcurrentResolve() {
	ctx := context.Background()
	req := s.newRequest(s.alice, s.bob)
	s.Require().NoError(s.store.Create(ctx, req))

	var wg sync.WaitGroup
	results := make([]error, 2)
	transitions := []swap.Status{swap.StatusAccepted, swap.StatusRejected}
	for i, to := range transitions {
		wg.Add(1)
		go func(i int, to swap.Status) {
			defer wg.Done()
			_, results[i] = s.store.UpdateStatus(ctx, req.ID, swap.StatusPending, to)
		}(i, to)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			s.True(errors.Is(err, sentinel.ErrInvalidState))
		}
	}
	s.Equal(1, winners, "exactly one transition must win")
}

func (s *PostgresStoreSuite) TestUpdateStatus() {
	ctx := context.Background()

	s.Run("missing row is not found", func() {
		_, err := s.store.UpdateStatus(ctx, uuid.NewString(), swap.StatusPending, swap.StatusAccepted)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("stale expected state", func() {
		req := s.newRequest(s.alice, s.bob)
		s.Require().NoError(s.store.Create(ctx, req))
		_, err := s.store.UpdateStatus(ctx, req.ID, swap.StatusPending, swap.StatusAccepted)
		s.Require().NoError(err)

		_, err = s.store.UpdateStatus(ctx, req.ID, swap.StatusPending, swap.StatusRejected)
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})
}

func (s *PostgresStoreSuite) TestDeletePending() {
	ctx := context.Background()

	s.Run("pending row is removed", func() {
		req := s.newRequest(s.alice, s.bob)
		s.Require().NoError(s.store.Create(ctx, req))
		s.Require().NoError(s.store.DeletePending(ctx, req.ID))

		_, err := s.store.GetByID(ctx, req.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("processed row survives", func() {
		req := s.newRequest(s.alice, s.bob)
		s.Require().NoError(s.store.Create(ctx, req))
		_, err := s.store.UpdateStatus(ctx, req.ID, swap.StatusPending, swap.StatusAccepted)
		s.Require().NoError(err)

		s.ErrorIs(s.store.DeletePending(ctx, req.ID), sentinel.ErrInvalidState)
	})
}

func (s *PostgresStoreSuite) TestSetFeedback() {
	ctx := context.Background()
	fb := swap.Feedback{Rating: 5, Message: "great swap", CreatedAt: time.Now().UTC()}

	req := s.newRequest(s.alice, s.bob)
	s.Require().NoError(s.store.Create(ctx, req))

	s.Run("pending row refuses feedback", func() {
		_, err := s.store.SetFeedback(ctx, req.ID, fb)
		s.ErrorIs(err, sentinel.ErrInvalidState)
	})

	s.Run("accepted row takes feedback exactly once", func() {
		_, err := s.store.UpdateStatus(ctx, req.ID, swap.StatusPending, swap.StatusAccepted)
		s.Require().NoError(err)

		updated, err := s.store.SetFeedback(ctx, req.ID, fb)
		s.Require().NoError(err)
		s.Require().NotNil(updated.Feedback)
		s.Equal(5, updated.Feedback.Rating)

		_, err = s.store.SetFeedback(ctx, req.ID, fb)
		s.ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *PostgresStoreSuite) TestListByUser() {
	ctx := context.Background()
	carol := s.seedUser(ctx, "Carol")

	incoming := s.newRequest(s.bob, s.alice)
	outgoing := s.newRequest(s.alice, carol)
	s.Require().NoError(s.store.Create(ctx, incoming))
	s.Require().NoError(s.store.Create(ctx, outgoing))
	_, err := s.store.UpdateStatus(ctx, outgoing.ID, swap.StatusPending, swap.StatusAccepted)
	s.Require().NoError(err)

	s.Run("direction filters", func() {
		got, err := s.store.ListByUser(ctx, s.alice, swap.DirectionIncoming, "")
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(incoming.ID, got[0].ID)

		got, err = s.store.ListByUser(ctx, s.alice, swap.DirectionOutgoing, "")
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(outgoing.ID, got[0].ID)
	})

	s.Run("status filter", func() {
		got, err := s.store.ListByUser(ctx, s.alice, swap.DirectionAll, swap.StatusAccepted)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal(outgoing.ID, got[0].ID)
	})
}

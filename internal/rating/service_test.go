package rating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/keshavpotewar/SkillSwap/internal/identity"
	"github.com/keshavpotewar/SkillSwap/pkg/domerr"
	"github.com/keshavpotewar/SkillSwap/pkg/testutil"
)

type RatingServiceSuite struct {
	suite.Suite
	users   *identity.InMemoryStore
	service *Service
}

func TestRatingServiceSuite(t *testing.T) {
	suite.Run(t, new(RatingServiceSuite))
}

func (s *RatingServiceSuite) SetupTest() {
	s.users = identity.NewInMemoryStore()
	s.users.Seed(identity.User{ID: "alice", Name: "Alice", IsPublic: true})
	s.users.Seed(identity.User{ID: "bob", Name: "Bob", IsPublic: true})
	s.users.Seed(identity.User{ID: "carol", Name: "Carol", IsPublic: true})
	s.users.Seed(identity.User{ID: "dan", Name: "Dan", IsPublic: true})
	s.service = NewService(s.users, testutil.DiscardLogger())
}

func (s *RatingServiceSuite) TestAddFeedback() {
	ctx := context.Background()

	s.Run("first entry sets the rating", func() {
		res, err := s.service.AddFeedback(ctx, "alice", "bob", 4, "patient and well prepared")
		s.Require().NoError(err)
		s.Equal("alice", res.UserID)
		s.Equal(4.0, res.Rating)
		s.Len(res.Feedback, 1)
	})

	s.Run("mean is rounded half-up to one decimal", func() {
		// 4 and 5 average to 4.5.
		res, err := s.service.AddFeedback(ctx, "alice", "carol", 5, "taught me more than a course")
		s.Require().NoError(err)
		s.Equal(4.5, res.Rating)

		// (4+5+4)/3 = 4.333... rounds down to 4.3.
		res, err = s.service.AddFeedback(ctx, "alice", "dan", 4, "solid session, would repeat")
		s.Require().NoError(err)
		s.Equal(4.3, res.Rating)
	})

	s.Run("one entry per rater", func() {
		_, err := s.service.AddFeedback(ctx, "alice", "bob", 1, "changed my mind about alice")
		s.Require().Error(err)
		s.True(domerr.Is(err, domerr.CodeConflict))
		s.Equal("you have already given feedback to this user", domerr.MessageOf(err))

		// The ledger and rating are unchanged.
		alice, err := s.users.GetByID(ctx, "alice")
		s.Require().NoError(err)
		s.Len(alice.Feedback, 3)
	})

	s.Run("self feedback", func() {
		_, err := s.service.AddFeedback(ctx, "alice", "alice", 5, "i am my own biggest fan")
		s.True(domerr.Is(err, domerr.CodeInvalidOperation))
		s.Equal("cannot give feedback to yourself", domerr.MessageOf(err))
	})

	s.Run("unknown target", func() {
		_, err := s.service.AddFeedback(ctx, "nobody", "bob", 3, "rating into the void here")
		s.True(domerr.Is(err, domerr.CodeNotFound))
	})
}

func (s *RatingServiceSuite) TestRoundingBoundary() {
	ctx := context.Background()
	s.users.Seed(identity.User{ID: "erin", Name: "Erin", IsPublic: true})

	// 4+5+4+4 = 17, mean 4.25. Half-up rounds the tenth to 4.3; banker's
	// rounding would yield 4.2.
	entries := []struct {
		rater  string
		rating int
	}{
		{"alice", 4}, {"carol", 5}, {"dan", 4}, {"erin", 4},
	}
	var last *Result
	for _, e := range entries {
		var err error
		last, err = s.service.AddFeedback(ctx, "bob", e.rater, e.rating, "a rating for the boundary")
		s.Require().NoError(err)
	}
	s.Equal(4.3, last.Rating)
}

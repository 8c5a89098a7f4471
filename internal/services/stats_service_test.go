package services

import (
	"testing"

	"github.com/handle-registry/backend/internal/models"
	"github.com/stretchr/testify/suite"
)

type StatsServiceSuite struct {
	registrySuite
}

func (s *StatsServiceSuite) SetupTest() {
	s.registrySuite.SetupTest()
	s.makeModerator(testMod)
	s.register(testAlice, "alice")
}

func (s *StatsServiceSuite) TestUpdateReputation() {
	rep, err := s.stats.UpdateReputation(s.ctx, testMod, testAlice, 10)
	s.Require().NoError(err)
	s.Equal(uint64(10), rep)

	rep, err = s.stats.UpdateReputation(s.ctx, testMod, testAlice, -3)
	s.Require().NoError(err)
	s.Equal(uint64(7), rep)

	// The profile carries the same value.
	profile, err := s.identities.Profile(s.ctx, testAlice)
	s.Require().NoError(err)
	s.Equal(uint64(7), profile.Reputation)
}

func (s *StatsServiceSuite) TestReputationFloorsAtZero() {
	_, err := s.stats.UpdateReputation(s.ctx, testMod, testAlice, 5)
	s.Require().NoError(err)

	rep, err := s.stats.UpdateReputation(s.ctx, testMod, testAlice, -100)
	s.Require().NoError(err)
	s.Zero(rep)
}

func (s *StatsServiceSuite) TestUpdateReputationUnregistered() {
	_, err := s.stats.UpdateReputation(s.ctx, testMod, testBob, 1)
	s.ErrorIs(err, models.ErrUserNotRegistered)
}

func (s *StatsServiceSuite) TestUpdateReputationRequiresModerator() {
	_, err := s.stats.UpdateReputation(s.ctx, testAlice, testAlice, 100)
	s.ErrorIs(err, models.ErrNotModerator)

	// Admins and the owner clear the moderator gate.
	s.makeAdmin(testAdmin)
	_, err = s.stats.UpdateReputation(s.ctx, testAdmin, testAlice, 1)
	s.Require().NoError(err)
	_, err = s.stats.UpdateReputation(s.ctx, testOwner, testAlice, 1)
	s.Require().NoError(err)
}

func (s *StatsServiceSuite) TestUpdateStats() {
	s.Require().NoError(s.stats.UpdateStats(s.ctx, testMod, testAlice, models.StatMessagesSent, 2))
	s.Require().NoError(s.stats.UpdateStats(s.ctx, testMod, testAlice, models.StatMessagesSent, 3))
	s.Require().NoError(s.stats.UpdateStats(s.ctx, testMod, testAlice, models.StatBatchMessagesSent, 1))

	st, err := s.stats.Stats(s.ctx, testAlice)
	s.Require().NoError(err)
	s.Equal(uint64(5), st.MessagesSent)
	s.Equal(uint64(1), st.BatchMessagesSent)
	s.Zero(st.MessagesReceived)
}

func (s *StatsServiceSuite) TestUpdateStatsUnknownKind() {
	// Unknown kinds are accepted and ignored.
	s.Require().NoError(s.stats.UpdateStats(s.ctx, testMod, testAlice, "likes_collected", 9))

	st, err := s.stats.Stats(s.ctx, testAlice)
	s.Require().NoError(err)
	s.Zero(st.MessagesSent)
	s.Zero(st.MessagesReceived)
	s.Zero(st.BatchMessagesSent)
	s.Zero(st.BatchTransactionsExecuted)
}

func (s *StatsServiceSuite) TestUpdateStatsUnregisteredTarget() {
	// Counters may be bumped for addresses without a profile; the row is
	// created on first touch.
	s.Require().NoError(s.stats.UpdateStats(s.ctx, testMod, testBob, models.StatMessagesReceived, 4))

	st, err := s.stats.Stats(s.ctx, testBob)
	s.Require().NoError(err)
	s.Equal(uint64(4), st.MessagesReceived)
}

func (s *StatsServiceSuite) TestStatsUnknownAddress() {
	st, err := s.stats.Stats(s.ctx, testBob)
	s.Require().NoError(err)
	s.Equal(testBob, st.Address)
	s.Zero(st.Reputation)
	s.Zero(st.MessagesSent)
}

func TestStatsServiceSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceSuite))
}

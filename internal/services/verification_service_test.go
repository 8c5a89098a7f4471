package services

import (
	"testing"

	"github.com/handle-registry/backend/internal/events"
	"github.com/handle-registry/backend/internal/models"
	"github.com/stretchr/testify/suite"
)

type VerificationServiceSuite struct {
	registrySuite
}

func (s *VerificationServiceSuite) SetupTest() {
	s.registrySuite.SetupTest()
	s.makeAdmin(testAdmin)
	s.register(testAlice, "alice")
}

func (s *VerificationServiceSuite) submit(memo, payload string) uint64 {
	s.deposit(memo, testAlice, testVerFee)
	id, err := s.verification.Submit(s.ctx, testAlice, memo, payload, "twitter")
	s.Require().NoError(err)
	return id
}

func (s *VerificationServiceSuite) TestSubmitAndApprove() {
	id := s.submit("ver-1", "https://twitter.com/alice")
	s.Equal(uint64(1), id)

	req, err := s.verification.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(testAlice, req.Requestor)
	s.False(req.Processed)

	s.Require().NoError(s.verification.Process(s.ctx, testAdmin, id, true))

	req, err = s.verification.Get(s.ctx, id)
	s.Require().NoError(err)
	s.True(req.Processed)
	s.True(req.Approved)

	profile, err := s.identities.Profile(s.ctx, testAlice)
	s.Require().NoError(err)
	s.True(profile.Verified)

	published := s.pub.byType(events.EventUserVerified)
	s.Require().Len(published, 1)
	s.Equal(testAlice, published[0].Payload["address"])
}

func (s *VerificationServiceSuite) TestRejectionIsSilent() {
	id := s.submit("ver-1", "https://twitter.com/alice")
	s.Require().NoError(s.verification.Process(s.ctx, testAdmin, id, false))

	req, err := s.verification.Get(s.ctx, id)
	s.Require().NoError(err)
	s.True(req.Processed)
	s.False(req.Approved)

	profile, err := s.identities.Profile(s.ctx, testAlice)
	s.Require().NoError(err)
	s.False(profile.Verified)
	s.Empty(s.pub.byType(events.EventUserVerified))
}

func (s *VerificationServiceSuite) TestProcessTwice() {
	id := s.submit("ver-1", "payload")
	s.Require().NoError(s.verification.Process(s.ctx, testAdmin, id, false))

	err := s.verification.Process(s.ctx, testAdmin, id, true)
	s.ErrorIs(err, models.ErrRequestAlreadyProcessed)
}

func (s *VerificationServiceSuite) TestProcessUnknownID() {
	s.ErrorIs(s.verification.Process(s.ctx, testAdmin, 0, true), models.ErrInvalidVerificationID)
	s.ErrorIs(s.verification.Process(s.ctx, testAdmin, 42, true), models.ErrInvalidVerificationID)
}

func (s *VerificationServiceSuite) TestProcessRequiresAdmin() {
	id := s.submit("ver-1", "payload")
	s.ErrorIs(s.verification.Process(s.ctx, testAlice, id, true), models.ErrNotAdmin)
}

func (s *VerificationServiceSuite) TestSubmitEmptyPayload() {
	s.deposit("ver-1", testAlice, testVerFee)
	_, err := s.verification.Submit(s.ctx, testAlice, "ver-1", "", "twitter")
	s.ErrorIs(err, models.ErrEmptyPayload)
}

func (s *VerificationServiceSuite) TestSubmitInsufficientFee() {
	s.deposit("ver-cheap", testAlice, testVerFee-1)
	_, err := s.verification.Submit(s.ctx, testAlice, "ver-cheap", "payload", "twitter")
	s.ErrorIs(err, models.ErrInsufficientFee)

	d, derr := s.store.GetDeposit(s.ctx, "ver-cheap")
	s.Require().NoError(derr)
	s.False(d.Spent)
}

func (s *VerificationServiceSuite) TestSubmitUnregistered() {
	s.deposit("ver-bob", testBob, testVerFee)
	_, err := s.verification.Submit(s.ctx, testBob, "ver-bob", "payload", "twitter")
	s.ErrorIs(err, models.ErrUserNotRegistered)
}

func (s *VerificationServiceSuite) TestSubmitBanned() {
	s.Require().NoError(s.roles.BanUser(s.ctx, testAdmin, testAlice, "spam"))

	s.deposit("ver-1", testAlice, testVerFee)
	_, err := s.verification.Submit(s.ctx, testAlice, "ver-1", "payload", "twitter")
	s.ErrorIs(err, models.ErrUserBanned)
}

func (s *VerificationServiceSuite) TestListByAddress() {
	first := s.submit("ver-1", "first")
	second := s.submit("ver-2", "second")

	list, err := s.verification.ListByAddress(s.ctx, testAlice)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(first, list[0].ID)
	s.Equal(second, list[1].ID)

	list, err = s.verification.ListByAddress(s.ctx, testBob)
	s.Require().NoError(err)
	s.Empty(list)
}

func TestVerificationServiceSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceSuite))
}

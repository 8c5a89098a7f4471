package services

import (
	"context"
	"sync"
	"testing"

	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/events"
	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/repositories"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const (
	testOwner  = "0:owner000000000000000000000000000000000000000000000000000000000"
	testAdmin  = "0:admin000000000000000000000000000000000000000000000000000000000"
	testMod    = "0:moder000000000000000000000000000000000000000000000000000000000"
	testAlice  = "0:alice000000000000000000000000000000000000000000000000000000000"
	testBob    = "0:bob00000000000000000000000000000000000000000000000000000000000"
	testRegFee = uint64(10)
	testVerFee = uint64(50)
)

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (f *fakePublisher) Publish(_ context.Context, _ string, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) byType(t string) []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []events.Event
	for _, e := range f.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// registrySuite wires every service over one Memory store so cross-service
// effects (ban gating profile updates, verification flipping the profile)
// are visible to the tests.
type registrySuite struct {
	suite.Suite

	ctx   context.Context
	store *repositories.Memory
	pub   *fakePublisher
	cfg   *config.Config

	identities   *IdentityService
	roles        *RoleService
	verification *VerificationService
	stats        *StatsService
}

func (s *registrySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = repositories.NewMemory(testRegFee, testVerFee)
	s.pub = &fakePublisher{}
	s.cfg = &config.Config{
		OwnerAddress:        testOwner,
		RegistrationFeeNano: testRegFee,
		VerificationFeeNano: testVerFee,
	}
	log := zap.NewNop()

	s.identities = NewIdentityService(s.store, s.pub, s.cfg, log)
	s.roles = NewRoleService(s.store, s.pub, s.cfg, log)
	s.verification = NewVerificationService(s.store, s.pub, s.cfg, log)
	s.stats = NewStatsService(s.store, s.cfg, log)
}

func (s *registrySuite) deposit(memo, payer string, amount uint64) {
	s.Require().NoError(s.store.SaveDeposit(s.ctx, &models.Deposit{
		Memo:       memo,
		Payer:      payer,
		AmountNano: amount,
	}))
}

func (s *registrySuite) register(address, username string) *models.Identity {
	memo := "reg-" + username
	s.deposit(memo, address, testRegFee)
	id, err := s.identities.Register(s.ctx, address, memo, username, "", "")
	s.Require().NoError(err)
	return id
}

func (s *registrySuite) makeAdmin(address string) {
	s.Require().NoError(s.roles.AddAdmin(s.ctx, testOwner, address))
}

func (s *registrySuite) makeModerator(address string) {
	s.Require().NoError(s.roles.AddModerator(s.ctx, testOwner, address))
}

type LifecycleSuite struct {
	registrySuite
}

// TestLifecycle walks one identity through the full happy path: register,
// update the profile, get verified, earn reputation, then get banned.
func (s *LifecycleSuite) TestLifecycle() {
	s.makeAdmin(testAdmin)
	s.makeModerator(testMod)

	s.register(testAlice, "alice")
	count, err := s.identities.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	err = s.identities.UpdateProfile(s.ctx, testAlice, models.ProfileUpdate{
		Username: "alice",
		Bio:      "hello",
		Twitter:  "alice_ton",
	})
	s.Require().NoError(err)

	s.deposit("ver-alice", testAlice, testVerFee)
	reqID, err := s.verification.Submit(s.ctx, testAlice, "ver-alice", "https://twitter.com/alice_ton", "twitter")
	s.Require().NoError(err)
	s.Require().NoError(s.verification.Process(s.ctx, testAdmin, reqID, true))

	rep, err := s.stats.UpdateReputation(s.ctx, testMod, testAlice, 25)
	s.Require().NoError(err)
	s.Equal(uint64(25), rep)

	profile, err := s.identities.Profile(s.ctx, testAlice)
	s.Require().NoError(err)
	s.True(profile.Verified)
	s.Equal(uint64(25), profile.Reputation)
	s.Equal("hello", profile.Bio)

	s.Require().NoError(s.roles.BanUser(s.ctx, testAdmin, testAlice, "spam"))
	err = s.identities.UpdateProfile(s.ctx, testAlice, models.ProfileUpdate{Username: "alice"})
	s.ErrorIs(err, models.ErrUserBanned)

	// Both fees landed in the treasury.
	balance, err := s.store.TreasuryBalance(s.ctx)
	s.Require().NoError(err)
	s.Equal(testRegFee+testVerFee, balance)
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

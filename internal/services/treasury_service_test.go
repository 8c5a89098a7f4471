package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/repositories"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type transferCall struct {
	to     string
	amount uint64
}

type fakeTransferor struct {
	mu    sync.Mutex
	calls []transferCall
	err   error
}

func (f *fakeTransferor) Transfer(_ context.Context, to string, amount uint64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, transferCall{to: to, amount: amount})
	return nil
}

// blockingTransferor parks the first transfer until released, so a second
// withdrawal can be attempted while one is in flight.
type blockingTransferor struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingTransferor) Transfer(context.Context, string, uint64, string) error {
	close(b.started)
	<-b.release
	return nil
}

type TreasuryServiceSuite struct {
	registrySuite

	transferor *fakeTransferor
	treasury   *TreasuryService
}

func (s *TreasuryServiceSuite) SetupTest() {
	s.registrySuite.SetupTest()
	s.transferor = &fakeTransferor{}
	s.treasury = NewTreasuryService(s.store, s.transferor, s.cfg, zap.NewNop())
}

func (s *TreasuryServiceSuite) TestWithdraw() {
	s.register(testAlice, "alice") // credits testRegFee

	amount, err := s.treasury.Withdraw(s.ctx, testOwner)
	s.Require().NoError(err)
	s.Equal(testRegFee, amount)

	s.Require().Len(s.transferor.calls, 1)
	s.Equal(testOwner, s.transferor.calls[0].to)
	s.Equal(testRegFee, s.transferor.calls[0].amount)

	balance, err := s.treasury.Balance(s.ctx, testOwner)
	s.Require().NoError(err)
	s.Zero(balance)

	_, err = s.treasury.Withdraw(s.ctx, testOwner)
	s.ErrorIs(err, models.ErrEmptyBalance)
}

func (s *TreasuryServiceSuite) TestWithdrawRequiresOwner() {
	s.register(testAlice, "alice")

	_, err := s.treasury.Withdraw(s.ctx, testAlice)
	s.ErrorIs(err, models.ErrNotOwner)
	s.Empty(s.transferor.calls)
}

func (s *TreasuryServiceSuite) TestWithdrawEmptyBalance() {
	_, err := s.treasury.Withdraw(s.ctx, testOwner)
	s.ErrorIs(err, models.ErrEmptyBalance)
}

func (s *TreasuryServiceSuite) TestWithdrawTransferFailureKeepsBalance() {
	s.register(testAlice, "alice")
	s.transferor.err = errors.New("liteserver unreachable")

	_, err := s.treasury.Withdraw(s.ctx, testOwner)
	s.ErrorIs(err, models.ErrWithdrawFailed)

	balance, berr := s.treasury.Balance(s.ctx, testOwner)
	s.Require().NoError(berr)
	s.Equal(testRegFee, balance)

	// The funds stay withdrawable once the transfer path recovers.
	s.transferor.err = nil
	amount, err := s.treasury.Withdraw(s.ctx, testOwner)
	s.Require().NoError(err)
	s.Equal(testRegFee, amount)
}

func (s *TreasuryServiceSuite) TestWithdrawSingleFlight() {
	s.register(testAlice, "alice")

	blocking := &blockingTransferor{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := NewTreasuryService(s.store, blocking, s.cfg, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Withdraw(s.ctx, testOwner)
		done <- err
	}()

	<-blocking.started
	_, err := svc.Withdraw(s.ctx, testOwner)
	s.ErrorIs(err, models.ErrWithdrawInFlight)

	close(blocking.release)
	s.Require().NoError(<-done)
}

func (s *TreasuryServiceSuite) TestBalanceRequiresOwner() {
	_, err := s.treasury.Balance(s.ctx, testAlice)
	s.ErrorIs(err, models.ErrNotOwner)
}

func (s *TreasuryServiceSuite) TestSetFee() {
	s.Require().NoError(s.treasury.SetFee(s.ctx, testOwner, repositories.FeeRegistration, 123))
	s.Require().NoError(s.treasury.SetFee(s.ctx, testOwner, repositories.FeeVerification, 456))

	reg, ver, err := s.treasury.Fees(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(123), reg)
	s.Equal(uint64(456), ver)

	s.ErrorIs(s.treasury.SetFee(s.ctx, testAlice, repositories.FeeRegistration, 1), models.ErrNotOwner)
}

func (s *TreasuryServiceSuite) TestSetFeeUnknownKind() {
	s.register(testAlice, "alice") // credits testRegFee into custody

	// Only the two fee thresholds are settable. The custody balance lives
	// in the same settings table and must not be reachable through here.
	s.ErrorIs(s.treasury.SetFee(s.ctx, testOwner, "treasury_balance", 0), models.ErrInvalidFeeKind)
	s.ErrorIs(s.treasury.SetFee(s.ctx, testOwner, "bogus_fee", 1), models.ErrInvalidFeeKind)

	balance, err := s.treasury.Balance(s.ctx, testOwner)
	s.Require().NoError(err)
	s.Equal(testRegFee, balance)

	reg, ver, err := s.treasury.Fees(s.ctx)
	s.Require().NoError(err)
	s.Equal(testRegFee, reg)
	s.Equal(testVerFee, ver)
}

func TestTreasuryServiceSuite(t *testing.T) {
	suite.Run(t, new(TreasuryServiceSuite))
}

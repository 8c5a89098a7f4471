package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/repositories"
	"github.com/handle-registry/backend/internal/ton"
	"go.uber.org/zap"
)

type TreasuryService struct {
	store      repositories.RegistryStore
	transferor ton.Transferor
	cfg        *config.Config
	log        *zap.Logger

	withdrawing atomic.Bool
}

func NewTreasuryService(
	store repositories.RegistryStore,
	transferor ton.Transferor,
	cfg *config.Config,
	log *zap.Logger,
) *TreasuryService {
	return &TreasuryService{store: store, transferor: transferor, cfg: cfg, log: log}
}

// Withdraw sends the whole accumulated fee balance to the owner wallet.
// Only one withdrawal may be in flight at a time; the balance is debited
// only after the on-chain transfer succeeds, so a failed transfer leaves
// the funds withdrawable.
func (s *TreasuryService) Withdraw(ctx context.Context, caller string) (uint64, error) {
	if err := requireOwner(s.cfg, caller); err != nil {
		return 0, err
	}
	if !s.withdrawing.CompareAndSwap(false, true) {
		return 0, models.ErrWithdrawInFlight
	}
	defer s.withdrawing.Store(false)

	balance, err := s.store.TreasuryBalance(ctx)
	if err != nil {
		return 0, err
	}
	if balance == 0 {
		return 0, models.ErrEmptyBalance
	}

	if err := s.transferor.Transfer(ctx, s.cfg.OwnerAddress, balance, "fee withdrawal"); err != nil {
		s.log.Error("treasury transfer failed",
			zap.Uint64("amount_nano", balance),
			zap.Error(err),
		)
		return 0, fmt.Errorf("%w: %v", models.ErrWithdrawFailed, err)
	}

	// Debit the exact transferred amount, not down to zero: deposits credited
	// between the read and the debit stay on the books.
	if err := s.store.DebitTreasury(ctx, balance); err != nil {
		return 0, err
	}

	_ = s.store.AppendAudit(ctx, models.AuditLog{
		ActorAddress: caller,
		ActorType:    "owner",
		Action:       "fees_withdrawn",
		EntityType:   "treasury",
		EntityID:     s.cfg.OwnerAddress,
		Meta:         map[string]any{"amount_nano": balance},
	})
	s.log.Info("fees withdrawn",
		zap.Uint64("amount_nano", balance),
		zap.String("to", s.cfg.OwnerAddress),
	)
	return balance, nil
}

func (s *TreasuryService) Balance(ctx context.Context, caller string) (uint64, error) {
	if err := requireOwner(s.cfg, caller); err != nil {
		return 0, err
	}
	return s.store.TreasuryBalance(ctx)
}

func (s *TreasuryService) Fees(ctx context.Context) (registration, verification uint64, err error) {
	return s.store.Fees(ctx)
}

// SetFee changes one of the two fee thresholds. The kind is whitelisted:
// the settings table also carries the treasury balance row, which only
// deposit credits and withdraw debits may touch.
func (s *TreasuryService) SetFee(ctx context.Context, caller, kind string, amountNano uint64) error {
	if err := requireOwner(s.cfg, caller); err != nil {
		return err
	}
	if kind != repositories.FeeRegistration && kind != repositories.FeeVerification {
		return models.ErrInvalidFeeKind
	}
	if err := s.store.SetFee(ctx, kind, amountNano); err != nil {
		return err
	}
	_ = s.store.AppendAudit(ctx, models.AuditLog{
		ActorAddress: caller,
		ActorType:    "owner",
		Action:       "fee_updated",
		EntityType:   "treasury",
		EntityID:     kind,
		Meta:         map[string]any{"amount_nano": amountNano},
	})
	s.log.Info("fee updated", zap.String("kind", kind), zap.Uint64("amount_nano", amountNano))
	return nil
}

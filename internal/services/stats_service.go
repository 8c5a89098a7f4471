package services

import (
	"context"
	"errors"

	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/repositories"
	"go.uber.org/zap"
)

type StatsService struct {
	store repositories.RegistryStore
	cfg   *config.Config
	log   *zap.Logger
}

func NewStatsService(store repositories.RegistryStore, cfg *config.Config, log *zap.Logger) *StatsService {
	return &StatsService{store: store, cfg: cfg, log: log}
}

// UpdateReputation applies a signed delta to the target's reputation,
// floored at zero. The profile's denormalized copy is written by the store
// in the same operation.
func (s *StatsService) UpdateReputation(ctx context.Context, caller, target string, delta int64) (uint64, error) {
	if err := requireModerator(ctx, s.store, s.cfg, caller); err != nil {
		return 0, err
	}

	newRep, err := s.store.AdjustReputation(ctx, target, delta)
	if err != nil {
		return 0, err
	}

	_ = s.store.AppendAudit(ctx, models.AuditLog{
		ActorAddress: caller,
		ActorType:    callerTier(ctx, s.store, s.cfg, caller),
		Action:       "reputation_updated",
		EntityType:   "identity",
		EntityID:     target,
		Meta:         map[string]any{"delta": delta, "reputation": newRep},
	})
	return newRep, nil
}

// UpdateStats bumps one activity counter. Unknown kinds are deliberately a
// silent no-op rather than an error; the stats row is created on first touch
// even for unregistered addresses.
func (s *StatsService) UpdateStats(ctx context.Context, caller, target, kind string, increment uint64) error {
	if err := requireModerator(ctx, s.store, s.cfg, caller); err != nil {
		return err
	}
	return s.store.BumpStat(ctx, target, kind, increment)
}

// Stats returns the counters for an address, zero-valued for addresses
// without a stats row.
func (s *StatsService) Stats(ctx context.Context, address string) (*models.Stats, error) {
	st, err := s.store.GetStats(ctx, address)
	if errors.Is(err, models.ErrUserNotRegistered) {
		return &models.Stats{Address: address}, nil
	}
	return st, err
}

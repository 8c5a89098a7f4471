package services

import (
	"context"
	"errors"
	"time"

	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/events"
	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/repositories"
	"go.uber.org/zap"
)

type IdentityService struct {
	store     repositories.RegistryStore
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewIdentityService(
	store repositories.RegistryStore,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *IdentityService {
	return &IdentityService{store: store, publisher: publisher, cfg: cfg, log: log}
}

// Register claims a handle for the caller. The deposit referenced by
// paymentRef is spent, the identity, its username mapping and its stats row
// are created in one atomic store operation; any failed precondition leaves
// the deposit unspent.
func (s *IdentityService) Register(ctx context.Context, caller, paymentRef, username, bio, avatar string) (*models.Identity, error) {
	if err := models.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := models.ValidateBio(bio); err != nil {
		return nil, err
	}

	registrationFee, _, err := s.store.Fees(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	identity := &models.Identity{
		Address:      caller,
		Username:     username,
		Bio:          bio,
		Avatar:       avatar,
		Active:       true,
		RegisteredAt: now,
		LastSeen:     now,
		Permissions:  models.DefaultPermissions(),
	}
	stats := &models.Stats{Address: caller, JoinDate: now}

	if err := s.store.RegisterIdentity(ctx, identity, stats, paymentRef, registrationFee); err != nil {
		return nil, err
	}

	_ = s.store.AppendAudit(ctx, models.AuditLog{
		ActorAddress: caller,
		ActorType:    "user",
		Action:       "user_registered",
		EntityType:   "identity",
		EntityID:     caller,
		Meta:         map[string]any{"username": username},
	})
	_ = s.publisher.Publish(ctx, events.StreamRegistry, events.Event{
		Type: events.EventUserRegistered,
		Payload: map[string]any{
			"address":   caller,
			"username":  username,
			"timestamp": now.Unix(),
		},
	})

	s.log.Info("user registered",
		zap.String("address", caller),
		zap.String("username", username),
	)
	return identity, nil
}

// UpdateProfile rewrites the caller's profile. A username change atomically
// releases the old mapping and claims the new one; no intermediate state
// with both usernames resolving to the caller is ever observable.
func (s *IdentityService) UpdateProfile(ctx context.Context, caller string, upd models.ProfileUpdate) error {
	current, err := requireActiveUser(ctx, s.store, caller)
	if err != nil {
		return err
	}
	if err := models.ValidateBio(upd.Bio); err != nil {
		return err
	}
	if upd.Username != current.Username {
		if err := models.ValidateUsername(upd.Username); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	if err := s.store.UpdateProfile(ctx, caller, upd, now); err != nil {
		return err
	}

	_ = s.store.AppendAudit(ctx, models.AuditLog{
		ActorAddress: caller,
		ActorType:    "user",
		Action:       "profile_updated",
		EntityType:   "identity",
		EntityID:     caller,
		Meta:         map[string]any{"username": upd.Username},
	})
	_ = s.publisher.Publish(ctx, events.StreamRegistry, events.Event{
		Type: events.EventProfileUpdated,
		Payload: map[string]any{
			"address":   caller,
			"username":  upd.Username,
			"timestamp": now.Unix(),
		},
	})
	return nil
}

// Profile returns the identity for an address, or a zero-valued identity for
// unknown addresses rather than failing.
func (s *IdentityService) Profile(ctx context.Context, address string) (*models.Identity, error) {
	id, err := s.store.GetIdentity(ctx, address)
	if errors.Is(err, models.ErrUserNotRegistered) {
		return &models.Identity{}, nil
	}
	return id, err
}

// AddressByUsername resolves a handle, returning "" for unclaimed handles.
func (s *IdentityService) AddressByUsername(ctx context.Context, username string) (string, error) {
	addr, err := s.store.GetAddressByUsername(ctx, username)
	if errors.Is(err, models.ErrUserNotRegistered) {
		return "", nil
	}
	return addr, err
}

func (s *IdentityService) Count(ctx context.Context) (int64, error) {
	return s.store.CountIdentities(ctx)
}

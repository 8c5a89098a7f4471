package services

import (
	"context"

	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/events"
	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/rbac"
	"github.com/handle-registry/backend/internal/repositories"
	"go.uber.org/zap"
)

type RoleService struct {
	store     repositories.RegistryStore
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewRoleService(
	store repositories.RegistryStore,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *RoleService {
	return &RoleService{store: store, publisher: publisher, cfg: cfg, log: log}
}

// Membership is the role read surface for one address.
type Membership struct {
	Owner     bool `json:"owner"`
	Admin     bool `json:"admin"` // true for the owner as well: ownership implies admin
	Moderator bool `json:"moderator"`
}

func (s *RoleService) Roles(ctx context.Context, address string) (Membership, error) {
	m := Membership{Owner: s.cfg.IsOwner(address)}
	admin, err := s.store.IsAdmin(ctx, address)
	if err != nil {
		return m, err
	}
	mod, err := s.store.IsModerator(ctx, address)
	if err != nil {
		return m, err
	}
	m.Admin = m.Owner || admin
	m.Moderator = mod
	return m, nil
}

func (s *RoleService) AddAdmin(ctx context.Context, caller, target string) error {
	return s.setRole(ctx, caller, target, rbac.RoleAdmin, true)
}

func (s *RoleService) RemoveAdmin(ctx context.Context, caller, target string) error {
	return s.setRole(ctx, caller, target, rbac.RoleAdmin, false)
}

func (s *RoleService) AddModerator(ctx context.Context, caller, target string) error {
	return s.setRole(ctx, caller, target, rbac.RoleModerator, true)
}

func (s *RoleService) RemoveModerator(ctx context.Context, caller, target string) error {
	return s.setRole(ctx, caller, target, rbac.RoleModerator, false)
}

func (s *RoleService) setRole(ctx context.Context, caller, target, role string, member bool) error {
	if err := requireOwner(s.cfg, caller); err != nil {
		return err
	}
	if s.cfg.IsOwner(target) {
		// The owner's privileges are implicit and not map-backed: granting is
		// a no-op, revoking is rejected.
		if member {
			return nil
		}
		return models.ErrCannotRemoveOwnerAdmin
	}

	if err := s.store.SetRole(ctx, target, role, member); err != nil {
		return err
	}

	action := "role_granted"
	if !member {
		action = "role_revoked"
	}
	_ = s.store.AppendAudit(ctx, models.AuditLog{
		ActorAddress: caller,
		ActorType:    rbac.RoleOwner,
		Action:       action,
		EntityType:   "identity",
		EntityID:     target,
		Meta:         map[string]any{"role": role},
	})
	s.log.Info(action, zap.String("target", target), zap.String("role", role))
	return nil
}

func (s *RoleService) GrantPermission(ctx context.Context, caller, target, permission string) error {
	return s.setPermission(ctx, caller, target, permission, true)
}

func (s *RoleService) RevokePermission(ctx context.Context, caller, target, permission string) error {
	return s.setPermission(ctx, caller, target, permission, false)
}

func (s *RoleService) setPermission(ctx context.Context, caller, target, permission string, granted bool) error {
	if err := requireAdmin(ctx, s.store, s.cfg, caller); err != nil {
		return err
	}
	if err := s.store.SetPermission(ctx, target, permission, granted); err != nil {
		return err
	}

	action := events.EventPermissionGranted
	if !granted {
		action = events.EventPermissionRevoked
	}
	_ = s.store.AppendAudit(ctx, models.AuditLog{
		ActorAddress: caller,
		ActorType:    callerTier(ctx, s.store, s.cfg, caller),
		Action:       action,
		EntityType:   "identity",
		EntityID:     target,
		Meta:         map[string]any{"permission": permission},
	})
	_ = s.publisher.Publish(ctx, events.StreamRegistry, events.Event{
		Type: action,
		Payload: map[string]any{
			"actor":      caller,
			"address":    target,
			"permission": permission,
		},
	})
	return nil
}

func (s *RoleService) HasPermission(ctx context.Context, address, permission string) (bool, error) {
	return s.store.HasPermission(ctx, address, permission)
}

func (s *RoleService) BanUser(ctx context.Context, caller, target, reason string) error {
	if err := requireAdmin(ctx, s.store, s.cfg, caller); err != nil {
		return err
	}
	if s.cfg.IsOwner(target) {
		return models.ErrCannotBanOwner
	}
	if err := s.store.SetBanned(ctx, target, true); err != nil {
		return err
	}

	_ = s.store.AppendAudit(ctx, models.AuditLog{
		ActorAddress: caller,
		ActorType:    callerTier(ctx, s.store, s.cfg, caller),
		Action:       events.EventUserBanned,
		EntityType:   "identity",
		EntityID:     target,
		Meta:         map[string]any{"reason": reason},
	})
	_ = s.publisher.Publish(ctx, events.StreamRegistry, events.Event{
		Type: events.EventUserBanned,
		Payload: map[string]any{
			"actor":   caller,
			"address": target,
			"reason":  reason,
		},
	})
	s.log.Info("user banned", zap.String("target", target), zap.String("actor", caller))
	return nil
}

func (s *RoleService) UnbanUser(ctx context.Context, caller, target string) error {
	if err := requireAdmin(ctx, s.store, s.cfg, caller); err != nil {
		return err
	}
	if err := s.store.SetBanned(ctx, target, false); err != nil {
		return err
	}

	_ = s.store.AppendAudit(ctx, models.AuditLog{
		ActorAddress: caller,
		ActorType:    callerTier(ctx, s.store, s.cfg, caller),
		Action:       events.EventUserUnbanned,
		EntityType:   "identity",
		EntityID:     target,
	})
	_ = s.publisher.Publish(ctx, events.StreamRegistry, events.Event{
		Type: events.EventUserUnbanned,
		Payload: map[string]any{
			"actor":   caller,
			"address": target,
		},
	})
	s.log.Info("user unbanned", zap.String("target", target), zap.String("actor", caller))
	return nil
}

package services

import (
	"context"

	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/rbac"
	"github.com/handle-registry/backend/internal/repositories"
)

// Tier checks. The owner clears every gate; an admin clears admin and
// moderator gates. Each check resolves the caller's strongest tier from
// the same role set, never a cached copy, and compares it with
// rbac.Satisfies.

func requireOwner(cfg *config.Config, caller string) error {
	if !cfg.IsOwner(caller) {
		return models.ErrNotOwner
	}
	return nil
}

func requireAdmin(ctx context.Context, store repositories.RegistryStore, cfg *config.Config, caller string) error {
	return requireTier(ctx, store, cfg, caller, rbac.RoleAdmin)
}

func requireModerator(ctx context.Context, store repositories.RegistryStore, cfg *config.Config, caller string) error {
	return requireTier(ctx, store, cfg, caller, rbac.RoleModerator)
}

func requireTier(ctx context.Context, store repositories.RegistryStore, cfg *config.Config, caller, required string) error {
	tier, err := resolveTier(ctx, store, cfg, caller)
	if err != nil {
		return err
	}
	if rbac.Satisfies(tier, required) {
		return nil
	}
	switch required {
	case rbac.RoleOwner:
		return models.ErrNotOwner
	case rbac.RoleAdmin:
		return models.ErrNotAdmin
	default:
		return models.ErrNotModerator
	}
}

// resolveTier returns the strongest tier the caller holds. Role lookups
// stop at the first match, so an admin check never touches the
// moderator set.
func resolveTier(ctx context.Context, store repositories.RegistryStore, cfg *config.Config, caller string) (string, error) {
	if cfg.IsOwner(caller) {
		return rbac.RoleOwner, nil
	}
	if ok, err := store.IsAdmin(ctx, caller); err != nil {
		return "", err
	} else if ok {
		return rbac.RoleAdmin, nil
	}
	if ok, err := store.IsModerator(ctx, caller); err != nil {
		return "", err
	} else if ok {
		return rbac.RoleModerator, nil
	}
	return rbac.RoleUser, nil
}

// requireActiveUser loads the caller's identity and enforces the
// registered-active-unbanned gate shared by self-service operations.
func requireActiveUser(ctx context.Context, store repositories.RegistryStore, caller string) (*models.Identity, error) {
	id, err := store.GetIdentity(ctx, caller)
	if err != nil {
		return nil, err
	}
	if id.Banned {
		return nil, models.ErrUserBanned
	}
	if !id.Active {
		return nil, models.ErrUserInactive
	}
	return id, nil
}

// callerTier resolves the strongest tier the caller holds, for audit rows.
// Store errors degrade to the base tier rather than failing the audit.
func callerTier(ctx context.Context, store repositories.RegistryStore, cfg *config.Config, caller string) string {
	tier, err := resolveTier(ctx, store, cfg, caller)
	if err != nil {
		return rbac.RoleUser
	}
	return tier
}

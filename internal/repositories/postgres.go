package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/rbac"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the pgx-backed RegistryStore. Every mutating method runs in a
// single transaction so the cross-index invariants hold under failure.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (r *Postgres) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const identityColumns = `address, username, bio, avatar, email, twitter, github, website,
	       verified, active, banned, registered_at, last_seen, reputation`

func scanIdentity(row pgx.Row) (*models.Identity, error) {
	var id models.Identity
	err := row.Scan(&id.Address, &id.Username, &id.Bio, &id.Avatar, &id.Email, &id.Twitter,
		&id.Github, &id.Website, &id.Verified, &id.Active, &id.Banned,
		&id.RegisteredAt, &id.LastSeen, &id.Reputation)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotRegistered
	}
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (r *Postgres) GetIdentity(ctx context.Context, address string) (*models.Identity, error) {
	id, err := scanIdentity(r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+` FROM identities WHERE address = $1
	`, address))
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT permission FROM identity_permissions WHERE address = $1`, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	id.Permissions = make(map[string]bool)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		id.Permissions[p] = true
	}
	return id, rows.Err()
}

func (r *Postgres) GetAddressByUsername(ctx context.Context, username string) (string, error) {
	var addr string
	err := r.pool.QueryRow(ctx, `SELECT address FROM identities WHERE username = $1`, username).Scan(&addr)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", models.ErrUserNotRegistered
	}
	return addr, err
}

func (r *Postgres) CountIdentities(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM identities`).Scan(&n)
	return n, err
}

func (r *Postgres) HasPermission(ctx context.Context, address, permission string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM identity_permissions WHERE address = $1 AND permission = $2)
	`, address, permission).Scan(&ok)
	return ok, err
}

func (r *Postgres) RegisterIdentity(ctx context.Context, identity *models.Identity, stats *models.Stats, paymentMemo string, minFee uint64) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE address = $1)`, identity.Address).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return models.ErrUserAlreadyRegistered
		}

		if err := spendDeposit(ctx, tx, paymentMemo, identity.Address, minFee); err != nil {
			return err
		}

		var taken bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE username = $1)`, identity.Username).Scan(&taken); err != nil {
			return err
		}
		if taken {
			return models.ErrUsernameTaken
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO identities (`+identityColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, identity.Address, identity.Username, identity.Bio, identity.Avatar, identity.Email,
			identity.Twitter, identity.Github, identity.Website, identity.Verified,
			identity.Active, identity.Banned, identity.RegisteredAt, identity.LastSeen,
			identity.Reputation); err != nil {
			return err
		}

		for perm := range identity.Permissions {
			if _, err := tx.Exec(ctx, `
				INSERT INTO identity_permissions (address, permission) VALUES ($1, $2)
			`, identity.Address, perm); err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO stats (address, join_date, reputation)
			VALUES ($1, $2, $3)
			ON CONFLICT (address) DO UPDATE SET join_date = EXCLUDED.join_date
		`, stats.Address, stats.JoinDate, stats.Reputation)
		return err
	})
}

func (r *Postgres) UpdateProfile(ctx context.Context, address string, upd models.ProfileUpdate, now time.Time) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var current string
		err := tx.QueryRow(ctx, `SELECT username FROM identities WHERE address = $1 FOR UPDATE`, address).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrUserNotRegistered
		}
		if err != nil {
			return err
		}

		if upd.Username != current {
			var taken bool
			if err := tx.QueryRow(ctx, `
				SELECT EXISTS(SELECT 1 FROM identities WHERE username = $1 AND address <> $2)
			`, upd.Username, address).Scan(&taken); err != nil {
				return err
			}
			if taken {
				return models.ErrUsernameTaken
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE identities SET username = $1, bio = $2, avatar = $3, email = $4,
				twitter = $5, github = $6, website = $7, last_seen = $8
			WHERE address = $9
		`, upd.Username, upd.Bio, upd.Avatar, upd.Email, upd.Twitter, upd.Github, upd.Website, now, address)
		return err
	})
}

func (r *Postgres) SetBanned(ctx context.Context, address string, banned bool) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var current bool
		err := tx.QueryRow(ctx, `SELECT banned FROM identities WHERE address = $1 FOR UPDATE`, address).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrUserNotRegistered
		}
		if err != nil {
			return err
		}
		if banned && current {
			return models.ErrUserAlreadyBanned
		}
		if !banned && !current {
			return models.ErrUserNotBanned
		}

		_, err = tx.Exec(ctx, `
			UPDATE identities SET banned = $1, active = $2 WHERE address = $3
		`, banned, !banned, address)
		return err
	})
}

func (r *Postgres) SetPermission(ctx context.Context, address, permission string, granted bool) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE address = $1)`, address).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return models.ErrUserNotRegistered
		}

		if granted {
			_, err := tx.Exec(ctx, `
				INSERT INTO identity_permissions (address, permission)
				VALUES ($1, $2) ON CONFLICT DO NOTHING
			`, address, permission)
			return err
		}
		_, err := tx.Exec(ctx, `
			DELETE FROM identity_permissions WHERE address = $1 AND permission = $2
		`, address, permission)
		return err
	})
}

func (r *Postgres) IsAdmin(ctx context.Context, address string) (bool, error) {
	return r.hasRole(ctx, address, rbac.RoleAdmin)
}

func (r *Postgres) IsModerator(ctx context.Context, address string) (bool, error) {
	return r.hasRole(ctx, address, rbac.RoleModerator)
}

func (r *Postgres) hasRole(ctx context.Context, address, role string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM roles WHERE address = $1 AND role = $2)
	`, address, role).Scan(&ok)
	return ok, err
}

func (r *Postgres) SetRole(ctx context.Context, address, role string, member bool) error {
	if member {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO roles (address, role) VALUES ($1, $2) ON CONFLICT DO NOTHING
		`, address, role)
		return err
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE address = $1 AND role = $2`, address, role)
	return err
}

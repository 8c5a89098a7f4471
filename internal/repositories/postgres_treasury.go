package repositories

import (
	"context"
	"errors"

	"github.com/handle-registry/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

const settingTreasuryBalance = "treasury_balance"

// spendDeposit validates the referenced deposit, marks it spent and credits
// the treasury, all within the caller's transaction.
func spendDeposit(ctx context.Context, tx pgx.Tx, memo, payer string, minFee uint64) error {
	var (
		depositPayer string
		amount       uint64
		spent        bool
	)
	err := tx.QueryRow(ctx, `
		SELECT payer, amount_nano, spent FROM deposits WHERE memo = $1 FOR UPDATE
	`, memo).Scan(&depositPayer, &amount, &spent)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrInvalidPayment
	}
	if err != nil {
		return err
	}
	if spent || depositPayer != payer {
		return models.ErrInvalidPayment
	}
	if amount < minFee {
		return models.ErrInsufficientFee
	}

	if _, err := tx.Exec(ctx, `UPDATE deposits SET spent = TRUE WHERE memo = $1`, memo); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE settings SET value = value + $1 WHERE key = $2
	`, amount, settingTreasuryBalance)
	return err
}

func (r *Postgres) SaveDeposit(ctx context.Context, d *models.Deposit) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO deposits (memo, payer, amount_nano, tx_lt, received_at, spent)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		ON CONFLICT (memo) DO NOTHING
	`, d.Memo, d.Payer, d.AmountNano, d.TxLT, d.ReceivedAt)
	return err
}

func (r *Postgres) GetDeposit(ctx context.Context, memo string) (*models.Deposit, error) {
	var d models.Deposit
	err := r.pool.QueryRow(ctx, `
		SELECT memo, payer, amount_nano, tx_lt, received_at, spent
		FROM deposits WHERE memo = $1
	`, memo).Scan(&d.Memo, &d.Payer, &d.AmountNano, &d.TxLT, &d.ReceivedAt, &d.Spent)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrInvalidPayment
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Postgres) TreasuryBalance(ctx context.Context) (uint64, error) {
	var balance uint64
	err := r.pool.QueryRow(ctx, `
		SELECT value FROM settings WHERE key = $1
	`, settingTreasuryBalance).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (r *Postgres) DebitTreasury(ctx context.Context, amount uint64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE settings SET value = value - $1 WHERE key = $2 AND value >= $1
	`, amount, settingTreasuryBalance)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrEmptyBalance
	}
	return nil
}

func (r *Postgres) Fees(ctx context.Context) (uint64, uint64, error) {
	var registration, verification uint64
	rows, err := r.pool.Query(ctx, `
		SELECT key, value FROM settings WHERE key IN ($1, $2)
	`, FeeRegistration, FeeVerification)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value uint64
		if err := rows.Scan(&key, &value); err != nil {
			return 0, 0, err
		}
		switch key {
		case FeeRegistration:
			registration = value
		case FeeVerification:
			verification = value
		}
	}
	return registration, verification, rows.Err()
}

func (r *Postgres) SetFee(ctx context.Context, kind string, amount uint64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, kind, amount)
	return err
}

// SeedFees installs the configured default fees without overwriting values
// the owner has already changed.
func (r *Postgres) SeedFees(ctx context.Context, registration, verification uint64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES
			($1, $2), ($3, $4), ($5, 0)
		ON CONFLICT (key) DO NOTHING
	`, FeeRegistration, registration, FeeVerification, verification, settingTreasuryBalance)
	return err
}

func (r *Postgres) AppendAudit(ctx context.Context, entry models.AuditLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_log (actor_address, actor_type, action, entity_type, entity_id, meta)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ActorAddress, entry.ActorType, entry.Action, entry.EntityType, entry.EntityID, entry.Meta)
	return err
}

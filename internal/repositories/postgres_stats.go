package repositories

import (
	"context"
	"errors"

	"github.com/handle-registry/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

// statColumns whitelists the kind -> column mapping. Unknown kinds never
// reach SQL.
var statColumns = map[string]string{
	models.StatMessagesSent:              "messages_sent",
	models.StatMessagesReceived:          "messages_received",
	models.StatBatchMessagesSent:         "batch_messages_sent",
	models.StatBatchTransactionsExecuted: "batch_transactions_executed",
}

func (r *Postgres) GetStats(ctx context.Context, address string) (*models.Stats, error) {
	var st models.Stats
	err := r.pool.QueryRow(ctx, `
		SELECT address, messages_sent, messages_received, batch_messages_sent,
		       batch_transactions_executed, reputation, COALESCE(join_date, 'epoch'::timestamptz)
		FROM stats WHERE address = $1
	`, address).Scan(&st.Address, &st.MessagesSent, &st.MessagesReceived, &st.BatchMessagesSent,
		&st.BatchTransactionsExecuted, &st.Reputation, &st.JoinDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotRegistered
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *Postgres) AdjustReputation(ctx context.Context, address string, delta int64) (uint64, error) {
	var newRep uint64
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE address = $1)`, address).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return models.ErrUserNotRegistered
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO stats (address) VALUES ($1) ON CONFLICT (address) DO NOTHING
		`, address); err != nil {
			return err
		}

		var current uint64
		if err := tx.QueryRow(ctx, `SELECT reputation FROM stats WHERE address = $1 FOR UPDATE`, address).Scan(&current); err != nil {
			return err
		}
		newRep = models.ApplyReputationDelta(current, delta)

		if _, err := tx.Exec(ctx, `UPDATE stats SET reputation = $1 WHERE address = $2`, newRep, address); err != nil {
			return err
		}
		// Denormalized copy: written in the same transaction, never diverges.
		_, err := tx.Exec(ctx, `UPDATE identities SET reputation = $1 WHERE address = $2`, newRep, address)
		return err
	})
	if err != nil {
		return 0, err
	}
	return newRep, nil
}

func (r *Postgres) BumpStat(ctx context.Context, address, kind string, increment uint64) error {
	col, ok := statColumns[kind]
	if !ok {
		return nil // unknown kinds are a silent no-op
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO stats (address, `+col+`) VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET `+col+` = stats.`+col+` + EXCLUDED.`+col+`
	`, address, increment)
	return err
}

package repositories

import (
	"context"
	"errors"

	"github.com/handle-registry/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

func (r *Postgres) CreateVerificationRequest(ctx context.Context, req *models.VerificationRequest, paymentMemo string, minFee uint64) (uint64, error) {
	var id uint64
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if err := spendDeposit(ctx, tx, paymentMemo, req.Requestor, minFee); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO verification_requests (requestor, payload, type, submitted_at, processed, approved)
			VALUES ($1, $2, $3, $4, FALSE, FALSE)
			RETURNING id
		`, req.Requestor, req.Payload, req.Type, req.SubmittedAt).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	req.ID = id
	return id, nil
}

func (r *Postgres) ProcessVerificationRequest(ctx context.Context, id uint64, approve bool) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT id, requestor, payload, type, submitted_at, processed, approved
			FROM verification_requests WHERE id = $1 FOR UPDATE
		`, id).Scan(&req.ID, &req.Requestor, &req.Payload, &req.Type, &req.SubmittedAt, &req.Processed, &req.Approved)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrInvalidVerificationID
		}
		if err != nil {
			return err
		}
		if req.Processed {
			return models.ErrRequestAlreadyProcessed
		}

		if _, err := tx.Exec(ctx, `
			UPDATE verification_requests SET processed = TRUE, approved = $1 WHERE id = $2
		`, approve, id); err != nil {
			return err
		}
		req.Processed = true
		req.Approved = approve

		if approve {
			if _, err := tx.Exec(ctx, `
				UPDATE identities SET verified = TRUE WHERE address = $1
			`, req.Requestor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *Postgres) GetVerificationRequest(ctx context.Context, id uint64) (*models.VerificationRequest, error) {
	var req models.VerificationRequest
	err := r.pool.QueryRow(ctx, `
		SELECT id, requestor, payload, type, submitted_at, processed, approved
		FROM verification_requests WHERE id = $1
	`, id).Scan(&req.ID, &req.Requestor, &req.Payload, &req.Type, &req.SubmittedAt, &req.Processed, &req.Approved)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrInvalidVerificationID
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *Postgres) ListVerificationRequests(ctx context.Context, address string) ([]models.VerificationRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, requestor, payload, type, submitted_at, processed, approved
		FROM verification_requests WHERE requestor = $1 ORDER BY id
	`, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.VerificationRequest
	for rows.Next() {
		var req models.VerificationRequest
		if err := rows.Scan(&req.ID, &req.Requestor, &req.Payload, &req.Type, &req.SubmittedAt, &req.Processed, &req.Approved); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

package services

import (
	"context"
	"time"

	"github.com/handle-registry/backend/internal/config"
	"github.com/handle-registry/backend/internal/events"
	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/repositories"
	"go.uber.org/zap"
)

type VerificationService struct {
	store     repositories.RegistryStore
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewVerificationService(
	store repositories.RegistryStore,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *VerificationService {
	return &VerificationService{store: store, publisher: publisher, cfg: cfg, log: log}
}

// Submit files a verification request for the caller and returns its id.
// Multiple unprocessed requests per user are allowed.
func (s *VerificationService) Submit(ctx context.Context, caller, paymentRef, payload, requestType string) (uint64, error) {
	if _, err := requireActiveUser(ctx, s.store, caller); err != nil {
		return 0, err
	}
	if payload == "" {
		return 0, models.ErrEmptyPayload
	}

	_, verificationFee, err := s.store.Fees(ctx)
	if err != nil {
		return 0, err
	}

	req := &models.VerificationRequest{
		Requestor:   caller,
		Payload:     payload,
		Type:        requestType,
		SubmittedAt: time.Now().UTC(),
	}
	id, err := s.store.CreateVerificationRequest(ctx, req, paymentRef, verificationFee)
	if err != nil {
		return 0, err
	}

	_ = s.store.AppendAudit(ctx, models.AuditLog{
		ActorAddress: caller,
		ActorType:    "user",
		Action:       "verification_submitted",
		EntityType:   "verification_request",
		EntityID:     req.Requestor,
		Meta:         map[string]any{"request_id": id, "type": requestType},
	})
	s.log.Info("verification request submitted",
		zap.String("address", caller),
		zap.Uint64("request_id", id),
	)
	return id, nil
}

// Process adjudicates a request exactly once. Approval marks the requestor
// verified and emits a verification notification; rejection only flips the
// processed flag and stays silent.
func (s *VerificationService) Process(ctx context.Context, caller string, id uint64, approve bool) error {
	if err := requireAdmin(ctx, s.store, s.cfg, caller); err != nil {
		return err
	}

	req, err := s.store.ProcessVerificationRequest(ctx, id, approve)
	if err != nil {
		return err
	}

	_ = s.store.AppendAudit(ctx, models.AuditLog{
		ActorAddress: caller,
		ActorType:    callerTier(ctx, s.store, s.cfg, caller),
		Action:       "verification_processed",
		EntityType:   "verification_request",
		EntityID:     req.Requestor,
		Meta:         map[string]any{"request_id": id, "approved": approve},
	})
	if approve {
		_ = s.publisher.Publish(ctx, events.StreamRegistry, events.Event{
			Type: events.EventUserVerified,
			Payload: map[string]any{
				"address":    req.Requestor,
				"request_id": id,
				"verified":   true,
			},
		})
	}
	s.log.Info("verification request processed",
		zap.Uint64("request_id", id),
		zap.Bool("approved", approve),
	)
	return nil
}

func (s *VerificationService) Get(ctx context.Context, id uint64) (*models.VerificationRequest, error) {
	return s.store.GetVerificationRequest(ctx, id)
}

func (s *VerificationService) ListByAddress(ctx context.Context, address string) ([]models.VerificationRequest, error) {
	return s.store.ListVerificationRequests(ctx, address)
}

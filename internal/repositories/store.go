package repositories

import (
	"context"
	"time"

	"github.com/handle-registry/backend/internal/models"
)

// Fee kinds stored in settings.
const (
	FeeRegistration = "registration_fee"
	FeeVerification = "verification_fee"
)

// RegistryStore is the persistence boundary of the registry. Every mutating
// method is a single atomic operation: it either applies completely or leaves
// the store untouched, and it never exposes an intermediate state (a username
// resolving to the wrong address, a spent deposit without its effect, a
// reputation diverging from its profile copy).
//
// Two implementations exist: Memory (mutex-guarded maps) and Postgres (one
// transaction per mutation).
type RegistryStore interface {
	// Identity
	GetIdentity(ctx context.Context, address string) (*models.Identity, error)
	GetAddressByUsername(ctx context.Context, username string) (string, error)
	CountIdentities(ctx context.Context) (int64, error)
	HasPermission(ctx context.Context, address, permission string) (bool, error)

	// RegisterIdentity spends the deposit referenced by paymentMemo (which
	// must belong to identity.Address, be unspent, and carry at least minFee),
	// credits the treasury, and creates the identity, its username index entry
	// and its stats row in one step.
	RegisterIdentity(ctx context.Context, identity *models.Identity, stats *models.Stats, paymentMemo string, minFee uint64) error

	// UpdateProfile writes all profile fields and lastSeen. A username change
	// releases the old index entry and claims the new one in the same step.
	UpdateProfile(ctx context.Context, address string, upd models.ProfileUpdate, now time.Time) error

	SetBanned(ctx context.Context, address string, banned bool) error
	SetPermission(ctx context.Context, address, permission string, granted bool) error

	// Roles. Membership is orthogonal to identity existence; the owner is
	// never stored here.
	IsAdmin(ctx context.Context, address string) (bool, error)
	IsModerator(ctx context.Context, address string) (bool, error)
	SetRole(ctx context.Context, address, role string, member bool) error

	// Verification workflow. Ids are allocated monotonically from 1.
	CreateVerificationRequest(ctx context.Context, req *models.VerificationRequest, paymentMemo string, minFee uint64) (uint64, error)
	ProcessVerificationRequest(ctx context.Context, id uint64, approve bool) (*models.VerificationRequest, error)
	GetVerificationRequest(ctx context.Context, id uint64) (*models.VerificationRequest, error)
	ListVerificationRequests(ctx context.Context, address string) ([]models.VerificationRequest, error)

	// Stats & reputation. AdjustReputation clamps at zero and writes the
	// identity's denormalized copy in the same step. BumpStat silently
	// ignores unknown kinds and creates the stats row on first touch.
	GetStats(ctx context.Context, address string) (*models.Stats, error)
	AdjustReputation(ctx context.Context, address string, delta int64) (uint64, error)
	BumpStat(ctx context.Context, address, kind string, increment uint64) error

	// Deposits & treasury.
	SaveDeposit(ctx context.Context, d *models.Deposit) error
	GetDeposit(ctx context.Context, memo string) (*models.Deposit, error)
	TreasuryBalance(ctx context.Context) (uint64, error)
	DebitTreasury(ctx context.Context, amount uint64) error

	// Fees.
	Fees(ctx context.Context) (registration, verification uint64, err error)
	SetFee(ctx context.Context, kind string, amount uint64) error

	// Audit.
	AppendAudit(ctx context.Context, entry models.AuditLog) error
}

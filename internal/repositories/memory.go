package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/rbac"
)

// Memory is the in-memory RegistryStore. One mutex serializes every
// operation, which matches the registry's execution model: no two mutations
// interleave. Used by unit tests and the standalone (no-postgres) mode.
type Memory struct {
	mu sync.Mutex

	identities    map[string]*models.Identity
	usernameIndex map[string]string
	stats         map[string]*models.Stats
	requests      []*models.VerificationRequest
	requestIndex  map[string][]uint64
	admins        map[string]bool
	moderators    map[string]bool
	deposits      map[string]*models.Deposit
	fees          map[string]uint64
	treasury      uint64
	audit         []models.AuditLog
}

func NewMemory(registrationFee, verificationFee uint64) *Memory {
	return &Memory{
		identities:    make(map[string]*models.Identity),
		usernameIndex: make(map[string]string),
		stats:         make(map[string]*models.Stats),
		requestIndex:  make(map[string][]uint64),
		admins:        make(map[string]bool),
		moderators:    make(map[string]bool),
		deposits:      make(map[string]*models.Deposit),
		fees: map[string]uint64{
			FeeRegistration: registrationFee,
			FeeVerification: verificationFee,
		},
	}
}

func cloneIdentity(id *models.Identity) *models.Identity {
	out := *id
	out.Permissions = make(map[string]bool, len(id.Permissions))
	for k, v := range id.Permissions {
		out.Permissions[k] = v
	}
	return &out
}

func (m *Memory) GetIdentity(_ context.Context, address string) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.identities[address]
	if !ok {
		return nil, models.ErrUserNotRegistered
	}
	return cloneIdentity(id), nil
}

func (m *Memory) GetAddressByUsername(_ context.Context, username string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	addr, ok := m.usernameIndex[username]
	if !ok {
		return "", models.ErrUserNotRegistered
	}
	return addr, nil
}

func (m *Memory) CountIdentities(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.identities)), nil
}

func (m *Memory) HasPermission(_ context.Context, address, permission string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.identities[address]
	if !ok {
		return false, nil
	}
	return id.Permissions[permission], nil
}

// spendDepositLocked validates and marks the deposit, crediting the treasury.
// Callers hold the mutex and must not have mutated anything yet.
func (m *Memory) spendDepositLocked(memo, payer string, minFee uint64) error {
	d, ok := m.deposits[memo]
	if !ok || d.Spent || d.Payer != payer {
		return models.ErrInvalidPayment
	}
	if d.AmountNano < minFee {
		return models.ErrInsufficientFee
	}
	d.Spent = true
	m.treasury += d.AmountNano
	return nil
}

func (m *Memory) RegisterIdentity(_ context.Context, identity *models.Identity, stats *models.Stats, paymentMemo string, minFee uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.identities[identity.Address]; ok {
		return models.ErrUserAlreadyRegistered
	}
	d, ok := m.deposits[paymentMemo]
	if !ok || d.Spent || d.Payer != identity.Address {
		return models.ErrInvalidPayment
	}
	if d.AmountNano < minFee {
		return models.ErrInsufficientFee
	}
	if _, ok := m.usernameIndex[identity.Username]; ok {
		return models.ErrUsernameTaken
	}

	d.Spent = true
	m.treasury += d.AmountNano
	m.identities[identity.Address] = cloneIdentity(identity)
	m.usernameIndex[identity.Username] = identity.Address
	st := *stats
	m.stats[identity.Address] = &st
	return nil
}

func (m *Memory) UpdateProfile(_ context.Context, address string, upd models.ProfileUpdate, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identities[address]
	if !ok {
		return models.ErrUserNotRegistered
	}
	if upd.Username != id.Username {
		if _, taken := m.usernameIndex[upd.Username]; taken {
			return models.ErrUsernameTaken
		}
		delete(m.usernameIndex, id.Username)
		m.usernameIndex[upd.Username] = address
		id.Username = upd.Username
	}
	id.Bio = upd.Bio
	id.Avatar = upd.Avatar
	id.Email = upd.Email
	id.Twitter = upd.Twitter
	id.Github = upd.Github
	id.Website = upd.Website
	id.LastSeen = now
	return nil
}

func (m *Memory) SetBanned(_ context.Context, address string, banned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identities[address]
	if !ok {
		return models.ErrUserNotRegistered
	}
	if banned && id.Banned {
		return models.ErrUserAlreadyBanned
	}
	if !banned && !id.Banned {
		return models.ErrUserNotBanned
	}
	id.Banned = banned
	id.Active = !banned
	return nil
}

func (m *Memory) SetPermission(_ context.Context, address, permission string, granted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identities[address]
	if !ok {
		return models.ErrUserNotRegistered
	}
	if granted {
		id.Permissions[permission] = true
	} else {
		delete(id.Permissions, permission)
	}
	return nil
}

func (m *Memory) IsAdmin(_ context.Context, address string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admins[address], nil
}

func (m *Memory) IsModerator(_ context.Context, address string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moderators[address], nil
}

func (m *Memory) SetRole(_ context.Context, address, role string, member bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.admins
	if role == rbac.RoleModerator {
		set = m.moderators
	}
	if member {
		set[address] = true
	} else {
		delete(set, address)
	}
	return nil
}

func (m *Memory) CreateVerificationRequest(_ context.Context, req *models.VerificationRequest, paymentMemo string, minFee uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.spendDepositLocked(paymentMemo, req.Requestor, minFee); err != nil {
		return 0, err
	}

	stored := *req
	stored.ID = uint64(len(m.requests)) + 1
	m.requests = append(m.requests, &stored)
	m.requestIndex[req.Requestor] = append(m.requestIndex[req.Requestor], stored.ID)
	return stored.ID, nil
}

func (m *Memory) ProcessVerificationRequest(_ context.Context, id uint64, approve bool) (*models.VerificationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == 0 || id > uint64(len(m.requests)) {
		return nil, models.ErrInvalidVerificationID
	}
	req := m.requests[id-1]
	if req.Processed {
		return nil, models.ErrRequestAlreadyProcessed
	}
	req.Processed = true
	req.Approved = approve
	if approve {
		if ident, ok := m.identities[req.Requestor]; ok {
			ident.Verified = true
		}
	}
	out := *req
	return &out, nil
}

func (m *Memory) GetVerificationRequest(_ context.Context, id uint64) (*models.VerificationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == 0 || id > uint64(len(m.requests)) {
		return nil, models.ErrInvalidVerificationID
	}
	out := *m.requests[id-1]
	return &out, nil
}

func (m *Memory) ListVerificationRequests(_ context.Context, address string) ([]models.VerificationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.requestIndex[address]
	out := make([]models.VerificationRequest, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.requests[id-1])
	}
	return out, nil
}

func (m *Memory) GetStats(_ context.Context, address string) (*models.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stats[address]
	if !ok {
		return nil, models.ErrUserNotRegistered
	}
	out := *st
	return &out, nil
}

func (m *Memory) AdjustReputation(_ context.Context, address string, delta int64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.identities[address]
	if !ok {
		return 0, models.ErrUserNotRegistered
	}
	st, ok := m.stats[address]
	if !ok {
		st = &models.Stats{Address: address}
		m.stats[address] = st
	}
	st.Reputation = models.ApplyReputationDelta(st.Reputation, delta)
	id.Reputation = st.Reputation
	return st.Reputation, nil
}

func (m *Memory) BumpStat(_ context.Context, address, kind string, increment uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.stats[address]
	if !ok {
		st = &models.Stats{Address: address}
		m.stats[address] = st
	}
	st.Bump(kind, increment) // unknown kinds are a silent no-op
	return nil
}

func (m *Memory) SaveDeposit(_ context.Context, d *models.Deposit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.deposits[d.Memo]; ok {
		return nil // idempotent re-delivery from the watcher
	}
	stored := *d
	m.deposits[d.Memo] = &stored
	return nil
}

func (m *Memory) GetDeposit(_ context.Context, memo string) (*models.Deposit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.deposits[memo]
	if !ok {
		return nil, models.ErrInvalidPayment
	}
	out := *d
	return &out, nil
}

func (m *Memory) TreasuryBalance(_ context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.treasury, nil
}

func (m *Memory) DebitTreasury(_ context.Context, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if amount > m.treasury {
		return models.ErrEmptyBalance
	}
	m.treasury -= amount
	return nil
}

func (m *Memory) Fees(_ context.Context) (uint64, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fees[FeeRegistration], m.fees[FeeVerification], nil
}

func (m *Memory) SetFee(_ context.Context, kind string, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fees[kind] = amount
	return nil
}

func (m *Memory) AppendAudit(_ context.Context, entry models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/handle-registry/backend/internal/models"
	"github.com/handle-registry/backend/internal/rbac"
	"github.com/stretchr/testify/require"
)

const (
	memAlice = "0:alice"
	memBob   = "0:bob"
)

func newTestMemory(t *testing.T) (*Memory, context.Context) {
	t.Helper()
	return NewMemory(10, 50), context.Background()
}

func seedIdentity(t *testing.T, m *Memory, ctx context.Context, address, username string) {
	t.Helper()
	require.NoError(t, m.SaveDeposit(ctx, &models.Deposit{Memo: "reg-" + username, Payer: address, AmountNano: 10}))
	now := time.Now().UTC()
	id := &models.Identity{
		Address:      address,
		Username:     username,
		Active:       true,
		RegisteredAt: now,
		LastSeen:     now,
		Permissions:  models.DefaultPermissions(),
	}
	st := &models.Stats{Address: address, JoinDate: now}
	require.NoError(t, m.RegisterIdentity(ctx, id, st, "reg-"+username, 10))
}

func TestMemoryRegisterIsAtomic(t *testing.T) {
	m, ctx := newTestMemory(t)
	seedIdentity(t, m, ctx, memAlice, "alice")

	// A rejected registration must not touch any index, and the deposit
	// must stay spendable.
	require.NoError(t, m.SaveDeposit(ctx, &models.Deposit{Memo: "reg-dup", Payer: memBob, AmountNano: 10}))
	err := m.RegisterIdentity(ctx, &models.Identity{
		Address:     memBob,
		Username:    "alice",
		Permissions: models.DefaultPermissions(),
	}, &models.Stats{Address: memBob}, "reg-dup", 10)
	require.ErrorIs(t, err, models.ErrUsernameTaken)

	_, err = m.GetIdentity(ctx, memBob)
	require.ErrorIs(t, err, models.ErrUserNotRegistered)
	_, err = m.GetStats(ctx, memBob)
	require.ErrorIs(t, err, models.ErrUserNotRegistered)

	d, err := m.GetDeposit(ctx, "reg-dup")
	require.NoError(t, err)
	require.False(t, d.Spent)

	count, err := m.CountIdentities(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestMemoryGetIdentityReturnsCopy(t *testing.T) {
	m, ctx := newTestMemory(t)
	seedIdentity(t, m, ctx, memAlice, "alice")

	got, err := m.GetIdentity(ctx, memAlice)
	require.NoError(t, err)
	got.Username = "mallory"
	got.Permissions["stolen"] = true

	again, err := m.GetIdentity(ctx, memAlice)
	require.NoError(t, err)
	require.Equal(t, "alice", again.Username)
	require.False(t, again.Permissions["stolen"])
}

func TestMemoryUpdateProfileUsernameSwap(t *testing.T) {
	m, ctx := newTestMemory(t)
	seedIdentity(t, m, ctx, memAlice, "alice")

	now := time.Now().UTC()
	require.NoError(t, m.UpdateProfile(ctx, memAlice, models.ProfileUpdate{Username: "alice2", Bio: "hi"}, now))

	_, err := m.GetAddressByUsername(ctx, "alice")
	require.ErrorIs(t, err, models.ErrUserNotRegistered)
	addr, err := m.GetAddressByUsername(ctx, "alice2")
	require.NoError(t, err)
	require.Equal(t, memAlice, addr)

	id, err := m.GetIdentity(ctx, memAlice)
	require.NoError(t, err)
	require.Equal(t, now, id.LastSeen)
}

func TestMemorySetBannedTransitions(t *testing.T) {
	m, ctx := newTestMemory(t)
	seedIdentity(t, m, ctx, memAlice, "alice")

	require.ErrorIs(t, m.SetBanned(ctx, memAlice, false), models.ErrUserNotBanned)
	require.NoError(t, m.SetBanned(ctx, memAlice, true))
	require.ErrorIs(t, m.SetBanned(ctx, memAlice, true), models.ErrUserAlreadyBanned)
	require.NoError(t, m.SetBanned(ctx, memAlice, false))

	id, err := m.GetIdentity(ctx, memAlice)
	require.NoError(t, err)
	require.False(t, id.Banned)
	require.True(t, id.Active)
}

func TestMemoryRoles(t *testing.T) {
	m, ctx := newTestMemory(t)

	require.NoError(t, m.SetRole(ctx, memAlice, rbac.RoleAdmin, true))
	ok, err := m.IsAdmin(ctx, memAlice)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = m.IsModerator(ctx, memAlice)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.SetRole(ctx, memAlice, rbac.RoleAdmin, false))
	ok, err = m.IsAdmin(ctx, memAlice)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryVerificationRequestIDs(t *testing.T) {
	m, ctx := newTestMemory(t)
	seedIdentity(t, m, ctx, memAlice, "alice")

	for i, memo := range []string{"ver-1", "ver-2"} {
		require.NoError(t, m.SaveDeposit(ctx, &models.Deposit{Memo: memo, Payer: memAlice, AmountNano: 50}))
		id, err := m.CreateVerificationRequest(ctx, &models.VerificationRequest{
			Requestor:   memAlice,
			Payload:     memo,
			SubmittedAt: time.Now().UTC(),
		}, memo, 50)
		require.NoError(t, err)
		require.Equal(t, uint64(i+1), id)
	}

	list, err := m.ListVerificationRequests(ctx, memAlice)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestMemoryProcessVerificationOnce(t *testing.T) {
	m, ctx := newTestMemory(t)
	seedIdentity(t, m, ctx, memAlice, "alice")

	require.NoError(t, m.SaveDeposit(ctx, &models.Deposit{Memo: "ver", Payer: memAlice, AmountNano: 50}))
	id, err := m.CreateVerificationRequest(ctx, &models.VerificationRequest{Requestor: memAlice, Payload: "p"}, "ver", 50)
	require.NoError(t, err)

	req, err := m.ProcessVerificationRequest(ctx, id, true)
	require.NoError(t, err)
	require.True(t, req.Approved)

	_, err = m.ProcessVerificationRequest(ctx, id, false)
	require.ErrorIs(t, err, models.ErrRequestAlreadyProcessed)

	ident, err := m.GetIdentity(ctx, memAlice)
	require.NoError(t, err)
	require.True(t, ident.Verified)
}

func TestMemorySaveDepositIdempotent(t *testing.T) {
	m, ctx := newTestMemory(t)

	require.NoError(t, m.SaveDeposit(ctx, &models.Deposit{Memo: "m1", Payer: memAlice, AmountNano: 10}))
	// Re-delivery with a different amount must not overwrite the record.
	require.NoError(t, m.SaveDeposit(ctx, &models.Deposit{Memo: "m1", Payer: memAlice, AmountNano: 999}))

	d, err := m.GetDeposit(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, uint64(10), d.AmountNano)
}

func TestMemoryTreasury(t *testing.T) {
	m, ctx := newTestMemory(t)
	seedIdentity(t, m, ctx, memAlice, "alice")

	balance, err := m.TreasuryBalance(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(10), balance)

	require.ErrorIs(t, m.DebitTreasury(ctx, 11), models.ErrEmptyBalance)
	require.NoError(t, m.DebitTreasury(ctx, 10))

	balance, err = m.TreasuryBalance(ctx)
	require.NoError(t, err)
	require.Zero(t, balance)
}

func TestMemoryFees(t *testing.T) {
	m, ctx := newTestMemory(t)

	reg, ver, err := m.Fees(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(10), reg)
	require.Equal(t, uint64(50), ver)

	require.NoError(t, m.SetFee(ctx, FeeRegistration, 77))
	reg, _, err = m.Fees(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(77), reg)
}

package ton

import (
	"context"
	"fmt"
	"math/big"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"
)

// Transferor moves value out of the registry treasury. The withdraw path
// treats a returned error as a rejected settlement: nothing may be deducted.
type Transferor interface {
	Transfer(ctx context.Context, toAddress string, amountNano uint64, comment string) error
}

// TreasuryWallet is the tonutils-go backed Transferor.
type TreasuryWallet struct {
	w *wallet.Wallet
}

func NewTreasuryWallet(api ton.APIClientWrapped, seed []string) (*TreasuryWallet, error) {
	w, err := wallet.FromSeed(api, seed, wallet.V4R2)
	if err != nil {
		return nil, fmt.Errorf("load treasury wallet: %w", err)
	}
	return &TreasuryWallet{w: w}, nil
}

func (t *TreasuryWallet) Address() string {
	return t.w.WalletAddress().String()
}

func (t *TreasuryWallet) Transfer(ctx context.Context, toAddress string, amountNano uint64, comment string) error {
	to, err := address.ParseAddr(toAddress)
	if err != nil {
		return fmt.Errorf("invalid destination address: %w", err)
	}
	amount := tlb.FromNanoTON(new(big.Int).SetUint64(amountNano))
	if err := t.w.Transfer(ctx, to, amount, comment, true); err != nil {
		return fmt.Errorf("treasury transfer: %w", err)
	}
	return nil
}

// DisabledTransferor rejects every transfer. Installed when no treasury
// wallet seed is configured so withdraw fails loudly instead of pretending.
type DisabledTransferor struct{}

func (DisabledTransferor) Transfer(context.Context, string, uint64, string) error {
	return fmt.Errorf("treasury wallet is not configured")
}

package models

import "time"

// Deposit is an incoming treasury transfer recorded by the deposit watcher.
// The memo ties it to the fee-gated operation that will spend it; a deposit
// is spent at most once, atomically with the operation it pays for.
type Deposit struct {
	Memo       string    `json:"memo"`
	Payer      string    `json:"payer"`
	AmountNano uint64    `json:"amount_nano"`
	TxLT       uint64    `json:"tx_lt"`
	ReceivedAt time.Time `json:"received_at"`
	Spent      bool      `json:"spent"`
}

package models

import (
	"math"
	"time"
)

// Stat kinds accepted by the stats update entry point.
const (
	StatMessagesSent              = "messages_sent"
	StatMessagesReceived          = "messages_received"
	StatBatchMessagesSent         = "batch_messages_sent"
	StatBatchTransactionsExecuted = "batch_transactions_executed"
)

// Stats holds the per-address activity counters and the authoritative
// reputation value. Identity.Reputation is a denormalized copy kept in
// sync by the store inside the same reputation-update operation.
type Stats struct {
	Address                   string    `json:"address"`
	MessagesSent              uint64    `json:"messages_sent"`
	MessagesReceived          uint64    `json:"messages_received"`
	BatchMessagesSent         uint64    `json:"batch_messages_sent"`
	BatchTransactionsExecuted uint64    `json:"batch_transactions_executed"`
	Reputation                uint64    `json:"reputation"`
	JoinDate                  time.Time `json:"join_date"`
}

// Bump saturating-adds increment to the counter named by kind.
// Unknown kinds return false and leave the stats untouched; the caller
// treats that as a silent no-op.
func (s *Stats) Bump(kind string, increment uint64) bool {
	switch kind {
	case StatMessagesSent:
		s.MessagesSent = saturatingAdd(s.MessagesSent, increment)
	case StatMessagesReceived:
		s.MessagesReceived = saturatingAdd(s.MessagesReceived, increment)
	case StatBatchMessagesSent:
		s.BatchMessagesSent = saturatingAdd(s.BatchMessagesSent, increment)
	case StatBatchTransactionsExecuted:
		s.BatchTransactionsExecuted = saturatingAdd(s.BatchTransactionsExecuted, increment)
	default:
		return false
	}
	return true
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// ApplyReputationDelta adds a signed delta to an unsigned reputation,
// flooring the result at zero.
func ApplyReputationDelta(reputation uint64, delta int64) uint64 {
	if delta >= 0 {
		return saturatingAdd(reputation, uint64(delta))
	}
	dec := uint64(-delta)
	if reputation < dec {
		return 0
	}
	return reputation - dec
}

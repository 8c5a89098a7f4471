package models

import "time"

// VerificationRequest is a user-submitted claim awaiting a one-time admin
// decision. Ids are allocated monotonically from 1; id 0 is invalid.
// Processing is terminal: processed flips false->true exactly once and the
// request is never deleted, so the full history stays auditable.
type VerificationRequest struct {
	ID          uint64    `json:"id"`
	Requestor   string    `json:"requestor"`
	Payload     string    `json:"payload"`
	Type        string    `json:"type"`
	SubmittedAt time.Time `json:"submitted_at"`
	Processed   bool      `json:"processed"`
	Approved    bool      `json:"approved"`
}

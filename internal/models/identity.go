package models

import "time"

const (
	UsernameMinLen = 3
	UsernameMaxLen = 20
	BioMaxLen      = 500
)

// Permissions granted to every identity at registration.
const (
	PermSendMessage    = "send_message"
	PermReceiveMessage = "receive_message"
	PermCreateBatch    = "create_batch"
)

// Identity is the durable per-address profile record plus its permission set.
// Presence is row/key existence; a missing identity is "unregistered".
type Identity struct {
	Address      string          `json:"address"`
	Username     string          `json:"username"`
	Bio          string          `json:"bio"`
	Avatar       string          `json:"avatar,omitempty"`
	Email        string          `json:"email,omitempty"`
	Twitter      string          `json:"twitter,omitempty"`
	Github       string          `json:"github,omitempty"`
	Website      string          `json:"website,omitempty"`
	Verified     bool            `json:"verified"`
	Active       bool            `json:"active"`
	Banned       bool            `json:"banned"`
	RegisteredAt time.Time       `json:"registered_at"`
	LastSeen     time.Time       `json:"last_seen"`
	Reputation   uint64          `json:"reputation"`
	Permissions  map[string]bool `json:"permissions,omitempty"`
}

// ProfileUpdate carries the full field set of an updateProfile call.
// All fields are written; a username equal to the current one is a no-op
// for the index.
type ProfileUpdate struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
	Email    string `json:"email"`
	Twitter  string `json:"twitter"`
	Github   string `json:"github"`
	Website  string `json:"website"`
}

func DefaultPermissions() map[string]bool {
	return map[string]bool{
		PermSendMessage:    true,
		PermReceiveMessage: true,
		PermCreateBatch:    true,
	}
}

// ValidateUsername enforces the 3-20 byte handle length rule.
func ValidateUsername(username string) error {
	if len(username) < UsernameMinLen {
		return ErrUsernameTooShort
	}
	if len(username) > UsernameMaxLen {
		return ErrUsernameTooLong
	}
	return nil
}

// ValidateBio enforces the 500 byte bio limit.
func ValidateBio(bio string) error {
	if len(bio) > BioMaxLen {
		return ErrBioTooLong
	}
	return nil
}

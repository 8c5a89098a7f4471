package events

import "context"

// StreamRegistry carries every registry notification.
const StreamRegistry = "events:registry"

// Event types
const (
	EventUserRegistered    = "user_registered"
	EventProfileUpdated    = "profile_updated"
	EventUserVerified      = "user_verified"
	EventUserBanned        = "user_banned"
	EventUserUnbanned      = "user_unbanned"
	EventPermissionGranted = "permission_granted"
	EventPermissionRevoked = "permission_revoked"
	EventPaymentReceived   = "payment_received"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

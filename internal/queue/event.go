// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into an activity log.
package queue

// Activity event types.
const (
	EventSignedUp       = "user.signed_up"
	EventSignedIn       = "user.signed_in"
	EventSignedOut      = "user.signed_out"
	EventProfileUpdated = "user.profile_updated"
	EventFavoriteToggle = "favorite.toggled"
)

// ActivityEvent is published after a successful account operation.  It
// carries enough context for downstream consumers to log or analyse visitor
// activity without reading the account store.
type ActivityEvent struct {
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	Email      string `json:"email,omitempty"`
	ItemKind   string `json:"item_kind,omitempty"` // hall | exhibit
	ItemID     string `json:"item_id,omitempty"`
	IsFavorite *bool  `json:"is_favorite,omitempty"`
	OccurredAt string `json:"occurred_at"` // RFC 3339, UTC
}

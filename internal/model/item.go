package model

import "time"

// Item represents one piece of content discovered on an account. Immutable
// once observed; identity is the platform-specific id scoped to the account.
type Item struct {
	ID          string
	Title       string
	URL         string
	PublishedAt time.Time
	IsLive      bool
}

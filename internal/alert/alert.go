package alert

import (
	"time"

	"github.com/google/uuid"
)

// Category identifies the kind of platform occurrence an alert represents.
type Category string

const (
	CategoryFollow    Category = "follow"
	CategorySubscribe Category = "subscribe"
	CategoryDonation  Category = "donation"
	CategoryRaid      Category = "raid"
	CategoryCheer     Category = "cheer"
	CategoryGiftSub   Category = "giftsub"
	CategoryMember    Category = "member"
	CategorySuperChat Category = "superchat"
	CategoryHost      Category = "host"
	CategoryTip       Category = "tip"
)

// DefaultDuration is used when a category has no configured display duration.
const DefaultDuration = 5 * time.Second

// displayDurations maps each category to how long the overlay shows it.
var displayDurations = map[Category]time.Duration{
	CategoryFollow:    4 * time.Second,
	CategorySubscribe: 5 * time.Second,
	CategoryDonation:  6 * time.Second,
	CategoryRaid:      7 * time.Second,
	CategoryCheer:     5 * time.Second,
	CategoryGiftSub:   6 * time.Second,
	CategoryMember:    5 * time.Second,
	CategorySuperChat: 7 * time.Second,
	CategoryHost:      5 * time.Second,
	CategoryTip:       5 * time.Second,
}

// KnownCategory reports whether c is one of the fixed alert categories.
func KnownCategory(c Category) bool {
	_, ok := displayDurations[c]
	return ok
}

// DisplayDuration returns the configured display duration for a category,
// falling back to DefaultDuration for unknown categories.
func DisplayDuration(c Category) time.Duration {
	if d, ok := displayDurations[c]; ok {
		return d
	}
	return DefaultDuration
}

// Categories returns the fixed set of known categories.
func Categories() []Category {
	out := make([]Category, 0, len(displayDurations))
	for c := range displayDurations {
		out = append(out, c)
	}
	return out
}

// Alert is the canonical event flowing through ingestion, broadcast and
// scheduling. The payload is category-specific and treated opaquely by the
// pipeline; only the rendering layer interprets it.
type Alert struct {
	ID         string         `json:"id"`
	Type       Category       `json:"type"`
	Payload    map[string]any `json:"data"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

// New creates an Alert with a generated ID and the current timestamp. The
// payload is carried through untouched.
func New(c Category, payload map[string]any) Alert {
	if payload == nil {
		payload = map[string]any{}
	}
	return Alert{
		ID:         uuid.New().String(),
		Type:       c,
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}
}

package webhook

import (
	"errors"

	"github.com/cvrdincake/m0-alerts/internal/alert"
)

// ErrUnknownCategory is returned when a notification's subscription type has
// no canonical alert category. The message is still acknowledged; the
// notification is simply dropped.
var ErrUnknownCategory = errors.New("unknown event category")

// subscriptionTypes maps EventSub subscription types onto canonical alert
// categories.
var subscriptionTypes = map[string]alert.Category{
	"channel.follow":            alert.CategoryFollow,
	"channel.subscribe":         alert.CategorySubscribe,
	"channel.subscription.gift": alert.CategoryGiftSub,
	"channel.cheer":             alert.CategoryCheer,
	"channel.raid":              alert.CategoryRaid,
}

// payloadFields renames provider fields onto the canonical payload keys the
// overlay understands. Unlisted fields pass through under their own name.
var payloadFields = map[string]string{
	"user_name":                  "username",
	"from_broadcaster_user_name": "username",
}

// MapNotification converts a verified EventSub notification into a canonical
// Alert. The event fields are carried through opaquely apart from key renames.
func MapNotification(subscriptionType string, event map[string]any) (alert.Alert, error) {
	category, ok := subscriptionTypes[subscriptionType]
	if !ok {
		return alert.Alert{}, ErrUnknownCategory
	}

	payload := make(map[string]any, len(event))
	for k, v := range event {
		if canonical, ok := payloadFields[k]; ok {
			payload[canonical] = v
			continue
		}
		payload[k] = v
	}

	return alert.New(category, payload), nil
}

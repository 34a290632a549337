package alert

import (
	"fmt"
	"math/rand"
)

// TestPayloads provides a canned payload per category for the manual
// test-alert trigger when the caller supplies no data of its own.
var TestPayloads = map[Category]map[string]any{
	CategoryFollow:    {"username": "TestFollower"},
	CategorySubscribe: {"username": "TestSubscriber", "months": 3},
	CategoryDonation:  {"username": "TestDonor", "amount": "25.00", "message": "Keep it up!"},
	CategoryRaid:      {"username": "TestRaider", "viewers": 50},
	CategoryCheer:     {"username": "TestCheerer", "bits": 500, "message": "Wooo!"},
	CategoryGiftSub:   {"username": "TestGifter", "count": 5},
	CategoryMember:    {"username": "TestMember", "tier": "Gold"},
	CategorySuperChat: {"username": "TestSuperChatter", "amount": "50.00", "message": "This is awesome!"},
	CategoryHost:      {"username": "TestHost", "viewers": 35},
	CategoryTip:       {"username": "TestTipper", "amount": "7.50", "message": "Enjoy a coffee!"},
}

// RandomPayload generates a randomized payload for the category, for test
// alerts that should look less canned. Unknown categories get an empty map.
func RandomPayload(c Category) map[string]any {
	tag := func(prefix string) string { return fmt.Sprintf("%s%d", prefix, 100+rand.Intn(900)) }
	amount := func(lo, hi int) string { return fmt.Sprintf("%d.%02d", lo+rand.Intn(hi-lo+1), rand.Intn(100)) }

	switch c {
	case CategoryFollow:
		return map[string]any{"username": tag("GamerTag")}
	case CategorySubscribe:
		return map[string]any{"username": tag("SubUser"), "months": 1 + rand.Intn(12)}
	case CategoryDonation:
		return map[string]any{"username": tag("Donor"), "amount": amount(5, 75), "message": "Love the stream!"}
	case CategoryRaid:
		return map[string]any{"username": tag("Raider"), "viewers": 10 + rand.Intn(141)}
	case CategoryCheer:
		return map[string]any{"username": tag("Cheerer"), "bits": 100 + rand.Intn(901), "message": "Poggers!"}
	case CategoryGiftSub:
		return map[string]any{"username": tag("Gifter"), "count": 1 + rand.Intn(5)}
	case CategoryMember:
		tiers := []string{"Bronze", "Silver", "Gold"}
		return map[string]any{"username": tag("Member"), "tier": tiers[rand.Intn(len(tiers))]}
	case CategorySuperChat:
		return map[string]any{"username": tag("SuperFan"), "amount": amount(10, 120), "message": "Amazing content!"}
	case CategoryHost:
		return map[string]any{"username": tag("Host"), "viewers": 5 + rand.Intn(76)}
	case CategoryTip:
		return map[string]any{"username": tag("Tipper"), "amount": amount(2, 20)}
	default:
		return map[string]any{}
	}
}

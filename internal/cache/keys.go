package cache

import (
	"fmt"
	"time"
)

// TTLs for the keys below.
const (
	PaymentDedupTTL = 48 * time.Hour
	SettingsTTL     = 5 * time.Minute
)

// PaymentDedupKey marks a gateway reference as processed so replayed
// webhooks are dropped before they reach the database.
func PaymentDedupKey(reference string) string {
	return fmt.Sprintf("dedup:payment:%s", reference)
}

// SettingsKey caches the platform settings row.
func SettingsKey() string {
	return "settings:platform"
}

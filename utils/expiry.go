// utils/expiry.go - Expiry date classification
package utils

import (
	"fmt"
	"time"
)

// Expiry status tiers, from most to least urgent.
const (
	ExpiryStatusNone       = "none"
	ExpiryStatusExpired    = "expired"
	ExpiryStatusExpiring30 = "expiring_30"
	ExpiryStatusExpiring60 = "expiring_60"
	ExpiryStatusValid      = "valid"
)

// ExpiryDateLayout is the wire format for expiry dates.
const ExpiryDateLayout = "2006-01-02"

// ExpiryStatus is the derived urgency tier of a document's expiry
// date relative to today.
type ExpiryStatus struct {
	Status   string `json:"status"`
	Label    string `json:"label"`
	DaysLeft int    `json:"days_left"`
}

// ClassifyExpiry maps an optional expiry date string to a status
// tier. Day arithmetic uses calendar dates, not instants, so a
// document expiring later today still counts as 0 days left.
// Unparseable or empty input degrades to "none"; this function never
// fails.
func ClassifyExpiry(dateStr string, today time.Time) ExpiryStatus {
	if dateStr == "" {
		return ExpiryStatus{Status: ExpiryStatusNone}
	}

	parsed, err := time.Parse(ExpiryDateLayout, dateStr)
	if err != nil {
		return ExpiryStatus{Status: ExpiryStatusNone}
	}

	// Re-anchor both dates at midnight UTC before subtracting. Local
	// midnights are not 24h apart across a DST transition and the
	// truncation would drop a calendar day.
	expiry := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(expiry.Sub(todayDate).Hours() / 24)

	switch {
	case days < 0:
		return ExpiryStatus{Status: ExpiryStatusExpired, Label: "Expired", DaysLeft: days}
	case days <= 30:
		return ExpiryStatus{Status: ExpiryStatusExpiring30, Label: expiresInLabel(days), DaysLeft: days}
	case days <= 60:
		return ExpiryStatus{Status: ExpiryStatusExpiring60, Label: expiresInLabel(days), DaysLeft: days}
	default:
		return ExpiryStatus{Status: ExpiryStatusValid, Label: "Valid", DaysLeft: days}
	}
}

func expiresInLabel(days int) string {
	if days == 1 {
		return "Expires in 1 day"
	}
	return fmt.Sprintf("Expires in %d days", days)
}

// ValidateExpiryDate checks that a submitted expiry date is in the
// wire format. Empty is allowed (no expiry).
func ValidateExpiryDate(dateStr string) bool {
	if dateStr == "" {
		return true
	}
	_, err := time.Parse(ExpiryDateLayout, dateStr)
	return err == nil
}

package services

import (
	"time"

	"github.com/velourbar/members-app/models"
)

// QuotaUnlimited stands in for "no practical limit" (platinum tier).
const QuotaUnlimited = 999

// MonthlyQuota returns how many matching requests a member of the given
// tier may send per calendar month. Unknown tiers get the bronze limit.
func MonthlyQuota(tier string) int {
	switch tier {
	case models.TierPlatinum:
		return QuotaUnlimited
	case models.TierGold:
		return 20
	case models.TierSilver:
		return 10
	case models.TierBronze:
		return 10
	default:
		return 10
	}
}

// monthStart returns the first instant of t's calendar month in UTC.
// Quota windows and expiry all use UTC so concurrent requests agree on
// the month boundary.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

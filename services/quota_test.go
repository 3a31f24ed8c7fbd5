package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/velourbar/members-app/models"
)

func TestMonthlyQuota(t *testing.T) {
	assert.Equal(t, 10, MonthlyQuota(models.TierBronze))
	assert.Equal(t, 10, MonthlyQuota(models.TierSilver))
	assert.Equal(t, 20, MonthlyQuota(models.TierGold))
	assert.Equal(t, QuotaUnlimited, MonthlyQuota(models.TierPlatinum))

	// Unknown or missing tiers fall back to the bronze limit.
	assert.Equal(t, 10, MonthlyQuota("diamond"))
	assert.Equal(t, 10, MonthlyQuota(""))
}

func TestMonthStart(t *testing.T) {
	at := time.Date(2026, 3, 17, 22, 45, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), monthStart(at))

	// Non-UTC inputs are normalized before truncation.
	jst := time.FixedZone("JST", 9*60*60)
	early := time.Date(2026, 4, 1, 3, 0, 0, 0, jst) // still March in UTC
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), monthStart(early))
}

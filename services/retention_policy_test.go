package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LFroesch/project-management-sub010/models"
)

func TestClassifyImportance(t *testing.T) {
	tests := []struct {
		name             string
		notificationType models.NotificationType
		want             models.Importance
	}{
		{"invitations are critical", models.NotificationProjectInvitation, models.ImportanceCritical},
		{"admin messages are critical", models.NotificationAdminMessage, models.ImportanceCritical},
		{"summaries are transient", models.NotificationDailyTodoSummary, models.ImportanceTransient},
		{"likes are transient", models.NotificationPostLiked, models.ImportanceTransient},
		{"assignments are standard", models.NotificationTodoAssigned, models.ImportanceStandard},
		{"overdue alerts are standard", models.NotificationTodoOverdue, models.ImportanceStandard},
		{"unknown types default to standard", models.NotificationType("something_new"), models.ImportanceStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyImportance(tt.notificationType))
		})
	}
}

func TestExpirationForIsDeterministic(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	first := ExpirationFor(models.PlanPro, models.ImportanceStandard, anchor)
	second := ExpirationFor(models.PlanPro, models.ImportanceStandard, anchor)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.True(t, first.Equal(*second))
}

func TestExpirationForTierWindows(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		tier       models.PlanTier
		importance models.Importance
		wantDays   int
		forever    bool
	}{
		{"free standard", models.PlanFree, models.ImportanceStandard, 30, false},
		{"pro standard", models.PlanPro, models.ImportanceStandard, 90, false},
		{"premium standard", models.PlanPremium, models.ImportanceStandard, 180, false},
		{"free transient", models.PlanFree, models.ImportanceTransient, 7, false},
		{"premium transient", models.PlanPremium, models.ImportanceTransient, 30, false},
		{"free critical", models.PlanFree, models.ImportanceCritical, 180, false},
		{"pro critical never expires", models.PlanPro, models.ImportanceCritical, 0, true},
		{"premium critical never expires", models.PlanPremium, models.ImportanceCritical, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpirationFor(tt.tier, tt.importance, anchor)
			if tt.forever {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, anchor.Add(time.Duration(tt.wantDays)*24*time.Hour), *got)
		})
	}
}

// Paying more must never shorten retention.
func TestExpirationForTierMonotonicity(t *testing.T) {
	anchor := time.Now()
	tiers := []models.PlanTier{models.PlanFree, models.PlanPro, models.PlanPremium}
	importances := []models.Importance{models.ImportanceCritical, models.ImportanceStandard, models.ImportanceTransient}

	for _, importance := range importances {
		var previous *time.Time
		hadValue := false
		for i, tier := range tiers {
			got := ExpirationFor(tier, importance, anchor)
			if i == 0 {
				previous = got
				hadValue = true
				continue
			}
			if previous == nil {
				// Once a lower tier keeps records forever, higher tiers must too
				assert.Nil(t, got, "tier %s importance %s regressed from forever", tier, importance)
				continue
			}
			if got == nil {
				// nil means forever, which is always >= a finite window
				previous = nil
				continue
			}
			assert.False(t, got.Before(*previous),
				"tier %s importance %s has shorter retention than the tier below", tier, importance)
			previous = got
		}
		_ = hadValue
	}
}

func TestExpirationForUnknownInputs(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("unknown tier falls back to free", func(t *testing.T) {
		got := ExpirationFor(models.PlanTier("enterprise"), models.ImportanceStandard, anchor)
		require.NotNil(t, got)
		assert.Equal(t, anchor.Add(30*24*time.Hour), *got)
	})

	t.Run("unknown importance falls back to standard", func(t *testing.T) {
		got := ExpirationFor(models.PlanPro, models.Importance("mystery"), anchor)
		require.NotNil(t, got)
		assert.Equal(t, anchor.Add(90*24*time.Hour), *got)
	})
}

func TestMembershipPurgeAt(t *testing.T) {
	removedAt := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, removedAt.Add(30*24*time.Hour), MembershipPurgeAt(models.PlanFree, removedAt))
	assert.Equal(t, removedAt.Add(90*24*time.Hour), MembershipPurgeAt(models.PlanPro, removedAt))
	assert.Equal(t, removedAt.Add(365*24*time.Hour), MembershipPurgeAt(models.PlanPremium, removedAt))
	assert.Equal(t, removedAt.Add(30*24*time.Hour), MembershipPurgeAt(models.PlanTier("unknown"), removedAt))
}

func TestInvitationExpiry(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, createdAt.Add(7*24*time.Hour), InvitationExpiry(models.PlanFree, createdAt))
	assert.Equal(t, createdAt.Add(14*24*time.Hour), InvitationExpiry(models.PlanPro, createdAt))
	assert.Equal(t, createdAt.Add(30*24*time.Hour), InvitationExpiry(models.PlanPremium, createdAt))
	assert.Equal(t, createdAt.Add(7*24*time.Hour), InvitationExpiry(models.PlanTier(""), createdAt))
}

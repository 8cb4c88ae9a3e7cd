// services/retention_policy.go
package services

import (
	"time"

	"github.com/LFroesch/project-management-sub010/models"
)

const day = 24 * time.Hour

// ClassifyImportance maps a notification type to its retention class.
// Unknown types fall into the standard class.
func ClassifyImportance(notificationType models.NotificationType) models.Importance {
	switch notificationType {
	case models.NotificationProjectInvitation, models.NotificationAdminMessage:
		return models.ImportanceCritical
	case models.NotificationDailyTodoSummary, models.NotificationPostLiked:
		return models.ImportanceTransient
	default:
		return models.ImportanceStandard
	}
}

// Retention windows per importance class and plan tier. A zero duration
// means the record is kept forever.
var notificationRetention = map[models.Importance]map[models.PlanTier]time.Duration{
	models.ImportanceCritical: {
		models.PlanFree:    180 * day,
		models.PlanPro:     0,
		models.PlanPremium: 0,
	},
	models.ImportanceStandard: {
		models.PlanFree:    30 * day,
		models.PlanPro:     90 * day,
		models.PlanPremium: 180 * day,
	},
	models.ImportanceTransient: {
		models.PlanFree:    7 * day,
		models.PlanPro:     14 * day,
		models.PlanPremium: 30 * day,
	},
}

var membershipRetention = map[models.PlanTier]time.Duration{
	models.PlanFree:    30 * day,
	models.PlanPro:     90 * day,
	models.PlanPremium: 365 * day,
}

var invitationLifetime = map[models.PlanTier]time.Duration{
	models.PlanFree:    7 * day,
	models.PlanPro:     14 * day,
	models.PlanPremium: 30 * day,
}

// ExpirationFor returns the instant a notification created at anchor should
// be purged, or nil when the tier keeps it forever. Unknown tiers get the
// free tier's window.
func ExpirationFor(tier models.PlanTier, importance models.Importance, anchor time.Time) *time.Time {
	windows, ok := notificationRetention[importance]
	if !ok {
		windows = notificationRetention[models.ImportanceStandard]
	}
	window, ok := windows[tier]
	if !ok {
		window = windows[models.PlanFree]
	}
	if window == 0 {
		return nil
	}
	expiry := anchor.Add(window)
	return &expiry
}

// MembershipPurgeAt returns when a membership removed at removedAt should
// be purged for good.
func MembershipPurgeAt(tier models.PlanTier, removedAt time.Time) time.Time {
	window, ok := membershipRetention[tier]
	if !ok {
		window = membershipRetention[models.PlanFree]
	}
	return removedAt.Add(window)
}

// InvitationExpiry returns when a pending invitation created at createdAt
// lapses.
func InvitationExpiry(tier models.PlanTier, createdAt time.Time) time.Time {
	window, ok := invitationLifetime[tier]
	if !ok {
		window = invitationLifetime[models.PlanFree]
	}
	return createdAt.Add(window)
}

// controllers/admin_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LFroesch/project-management-sub010/models"
	"github.com/LFroesch/project-management-sub010/repositories"
	"github.com/LFroesch/project-management-sub010/scheduler"
	"github.com/LFroesch/project-management-sub010/services"
)

type AdminController struct {
	users         *repositories.UserRepository
	notifications *services.NotificationService
	plans         *services.PlanService
	reminders     *scheduler.ReminderScheduler
}

func NewAdminController(users *repositories.UserRepository, notifications *services.NotificationService, plans *services.PlanService, reminders *scheduler.ReminderScheduler) *AdminController {
	return &AdminController{
		users:         users,
		notifications: notifications,
		plans:         plans,
		reminders:     reminders,
	}
}

// BroadcastRequest represents the request body for an admin broadcast
type BroadcastRequest struct {
	UserIDs   []string `json:"userIds"`
	Title     string   `json:"title" validate:"required"`
	Message   string   `json:"message" validate:"required"`
	ActionURL string   `json:"actionUrl"`
}

// UpdatePlanRequest represents the request body for changing a user's plan
type UpdatePlanRequest struct {
	PlanTier string `json:"planTier" validate:"required,oneof=free pro premium"`
}

// Broadcast sends an admin message to the listed users, or to every user
// when no ids are given. The bulk path skips per-subject replacement.
func (ac *AdminController) Broadcast(c echo.Context) error {
	var req BroadcastRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title and message are required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var recipients []primitive.ObjectID
	if len(req.UserIDs) > 0 {
		for _, raw := range req.UserIDs {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				return c.JSON(http.StatusBadRequest, models.Response{
					Status:  http.StatusBadRequest,
					Message: "Invalid user ID: " + raw,
				})
			}
			recipients = append(recipients, id)
		}
	} else {
		ids, err := ac.users.ListIDs(ctx)
		if err != nil {
			log.Printf("Error listing users for broadcast: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to resolve broadcast recipients",
			})
		}
		recipients = ids
	}

	if len(recipients) == 0 {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "No recipients, nothing to send",
			Data:    map[string]interface{}{"created": 0},
		})
	}

	inputs := make([]services.NotificationInput, 0, len(recipients))
	for _, id := range recipients {
		inputs = append(inputs, services.NotificationInput{
			UserID:    id,
			Type:      models.NotificationAdminMessage,
			Title:     req.Title,
			Message:   req.Message,
			ActionURL: req.ActionURL,
		})
	}

	created, err := ac.notifications.CreateBulkNotifications(ctx, inputs)
	if err != nil {
		log.Printf("Error broadcasting admin message: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to broadcast message",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Broadcast sent successfully",
		Data:    map[string]interface{}{"created": len(created)},
	})
}

// TriggerReminders runs the due and reminder-window scans synchronously,
// for operational use
func (ac *AdminController) TriggerReminders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	started := time.Now()
	ac.reminders.TriggerChecks(ctx)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Reminder checks completed",
		Data:    map[string]interface{}{"durationMs": time.Since(started).Milliseconds()},
	})
}

// UpdateUserPlan changes a user's subscription tier and drops the cached value
func (ac *AdminController) UpdateUserPlan(c echo.Context) error {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	var req UpdatePlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "planTier must be one of free, pro, premium",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated, err := ac.users.UpdatePlanTier(ctx, targetID, models.PlanTier(req.PlanTier))
	if err != nil {
		log.Printf("Error updating plan tier for user %s: %v", targetID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update plan tier",
		})
	}
	if !updated {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	ac.plans.InvalidatePlanTier(ctx, targetID)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Plan tier updated successfully",
	})
}

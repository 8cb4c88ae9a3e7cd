// controllers/notification_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LFroesch/project-management-sub010/middleware"
	"github.com/LFroesch/project-management-sub010/models"
	"github.com/LFroesch/project-management-sub010/repositories"
	"github.com/LFroesch/project-management-sub010/services"
)

type NotificationController struct {
	notifications *services.NotificationService
	users         *repositories.UserRepository
}

func NewNotificationController(notifications *services.NotificationService, users *repositories.UserRepository) *NotificationController {
	return &NotificationController{notifications: notifications, users: users}
}

// FCMTokenUpdateRequest represents the request body for updating FCM tokens
type FCMTokenUpdateRequest struct {
	FCMToken string `json:"fcmToken" validate:"required"`
}

// GetNotifications returns the caller's notifications, newest first, along
// with the unread count and the total for the active filter.
func (nc *NotificationController) GetNotifications(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	opts := services.ListOptions{}
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			opts.Limit = v
		}
	}
	if raw := c.QueryParam("skip"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			opts.Skip = v
		}
	}
	if raw := c.QueryParam("unreadOnly"); raw != "" {
		opts.UnreadOnly = raw == "true" || raw == "1"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, err := nc.notifications.GetNotifications(ctx, userID, opts)
	if err != nil {
		log.Printf("Error fetching notifications for user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch notifications",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications retrieved successfully",
		Data:    page,
	})
}

// MarkAsRead marks a single notification as read
func (nc *NotificationController) MarkAsRead(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid notification ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification, err := nc.notifications.MarkAsRead(ctx, notificationID, userID)
	if err != nil {
		log.Printf("Error marking notification %s as read: %v", notificationID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to mark notification as read",
		})
	}
	if notification == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Notification not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification marked as read",
		Data:    notification,
	})
}

// MarkAllAsRead marks every unread notification of the caller as read
func (nc *NotificationController) MarkAllAsRead(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	modified, err := nc.notifications.MarkAllAsRead(ctx, userID)
	if err != nil {
		log.Printf("Error marking all notifications as read for user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to mark notifications as read",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "All notifications marked as read",
		Data:    map[string]interface{}{"modified": modified},
	})
}

// DeleteNotification deletes one notification owned by the caller
func (nc *NotificationController) DeleteNotification(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid notification ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deleted, err := nc.notifications.DeleteNotification(ctx, notificationID, userID)
	if err != nil {
		log.Printf("Error deleting notification %s: %v", notificationID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete notification",
		})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Notification not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notification deleted successfully",
	})
}

// ClearAllNotifications deletes every notification of the caller
func (nc *NotificationController) ClearAllNotifications(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deleted, err := nc.notifications.ClearAllNotifications(ctx, userID)
	if err != nil {
		log.Printf("Error clearing notifications for user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to clear notifications",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications cleared successfully",
		Data:    map[string]interface{}{"deleted": deleted},
	})
}

// UpdateFCMToken updates the FCM token for the calling user
func (nc *NotificationController) UpdateFCMToken(c echo.Context) error {
	var req FCMTokenUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "FCM token is required",
		})
	}

	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := nc.users.UpdateFCMToken(ctx, userID, req.FCMToken); err != nil {
		log.Printf("Error updating FCM token for user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update FCM token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "FCM token updated",
	})
}

// currentUserID resolves the authenticated user's object id from the JWT claims.
func currentUserID(c echo.Context) (primitive.ObjectID, error) {
	raw, err := middleware.ExtractUserID(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(raw)
}

package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LFroesch/project-management-sub010/controllers"
	"github.com/LFroesch/project-management-sub010/middleware"
)

// RegisterNotificationRoutes registers all notification-related routes
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client, nc *controllers.NotificationController) {
	authGroup := e.Group("/api")
	authGroup.Use(middleware.JWTMiddleware(), middleware.ActivityTracker(db))

	authGroup.GET("/users/notifications", nc.GetNotifications)
	authGroup.PUT("/notifications/read-all", nc.MarkAllAsRead)
	authGroup.PUT("/notifications/:id/read", nc.MarkAsRead)
	authGroup.DELETE("/notifications/:id", nc.DeleteNotification)
	authGroup.DELETE("/notifications", nc.ClearAllNotifications)

	// FCM token registration for push delivery
	authGroup.POST("/users/fcm-token", nc.UpdateFCMToken)
}

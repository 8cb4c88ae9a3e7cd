package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LFroesch/project-management-sub010/controllers"
	"github.com/LFroesch/project-management-sub010/middleware"
)

// RegisterAdminRoutes sets up all admin-only routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Client, ac *controllers.AdminController) {
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware(), middleware.ActivityTracker(db), middleware.RequireUserType("admin"))

	admin.POST("/notifications/broadcast", ac.Broadcast)
	admin.POST("/reminders/trigger", ac.TriggerReminders)
	admin.PUT("/users/:id/plan", ac.UpdateUserPlan)
}

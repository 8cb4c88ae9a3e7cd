package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LFroesch/project-management-sub010/controllers"
	"github.com/LFroesch/project-management-sub010/middleware"
)

// RegisterInvitationRoutes registers invitation lifecycle routes
func RegisterInvitationRoutes(e *echo.Echo, db *mongo.Client, ic *controllers.InvitationController) {
	authGroup := e.Group("/api")
	authGroup.Use(middleware.JWTMiddleware(), middleware.ActivityTracker(db))

	authGroup.POST("/projects/:id/invitations", ic.CreateInvitation)
	authGroup.GET("/projects/:id/invitations", ic.GetProjectInvitations)
	authGroup.GET("/invitations", ic.GetMyInvitations)
	authGroup.POST("/invitations/accept", ic.AcceptInvitation)
	authGroup.POST("/invitations/decline", ic.DeclineInvitation)
	authGroup.GET("/invitations/:id/qr", ic.GetInvitationQR)
}

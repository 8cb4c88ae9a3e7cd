package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LFroesch/project-management-sub010/controllers"
	"github.com/LFroesch/project-management-sub010/middleware"
)

// RegisterProjectRoutes registers project, todo and member routes
func RegisterProjectRoutes(e *echo.Echo, db *mongo.Client, pc *controllers.ProjectController) {
	authGroup := e.Group("/api")
	authGroup.Use(middleware.JWTMiddleware(), middleware.ActivityTracker(db))

	authGroup.POST("/projects", pc.CreateProject)
	authGroup.GET("/projects", pc.GetProjects)
	authGroup.GET("/projects/:id", pc.GetProject)
	authGroup.PUT("/projects/:id", pc.UpdateProject)
	authGroup.DELETE("/projects/:id", pc.DeleteProject)

	authGroup.POST("/projects/:id/todos", pc.AddTodo)
	authGroup.PUT("/projects/:id/todos/:todoId", pc.UpdateTodo)
	authGroup.PUT("/projects/:id/todos/:todoId/complete", pc.CompleteTodo)
	authGroup.PUT("/projects/:id/todos/:todoId/assign", pc.AssignTodo)
	authGroup.DELETE("/projects/:id/todos/:todoId", pc.DeleteTodo)

	authGroup.GET("/projects/:id/members", pc.GetMembers)
	authGroup.POST("/projects/:id/members", pc.AddMember)
	authGroup.DELETE("/projects/:id/members/:userId", pc.RemoveMember)
}

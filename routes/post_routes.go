package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LFroesch/project-management-sub010/controllers"
	"github.com/LFroesch/project-management-sub010/middleware"
)

// RegisterPostRoutes registers the social feed routes
func RegisterPostRoutes(e *echo.Echo, db *mongo.Client, pc *controllers.PostController) {
	authGroup := e.Group("/api")
	authGroup.Use(middleware.JWTMiddleware(), middleware.ActivityTracker(db))

	authGroup.POST("/posts", pc.CreatePost)
	authGroup.GET("/posts", pc.GetPosts)
	authGroup.DELETE("/posts/:id", pc.DeletePost)

	authGroup.POST("/posts/:id/like", pc.LikePost)
	authGroup.DELETE("/posts/:id/like", pc.UnlikePost)
	authGroup.POST("/posts/:id/comments", pc.AddComment)
}

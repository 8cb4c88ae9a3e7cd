// controllers/post_controller.go
package controllers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LFroesch/project-management-sub010/models"
	"github.com/LFroesch/project-management-sub010/repositories"
	"github.com/LFroesch/project-management-sub010/services"
	"github.com/LFroesch/project-management-sub010/utils"
)

type PostController struct {
	posts         *repositories.PostRepository
	users         *repositories.UserRepository
	notifications *services.NotificationService
}

func NewPostController(posts *repositories.PostRepository, users *repositories.UserRepository, notifications *services.NotificationService) *PostController {
	return &PostController{posts: posts, users: users, notifications: notifications}
}

// CreatePost creates a post with optional image or video attachment.
// Attachments arrive as multipart form data under the "media" field.
func (pc *PostController) CreatePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	content := c.FormValue("content")
	mediaType := c.FormValue("mediaType")
	if content == "" && mediaType == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Post content is required",
		})
	}

	post := &models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  userID,
		Content:   content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if fileHeader, err := c.FormFile("media"); err == nil && fileHeader != nil {
		if mediaType != "image" && mediaType != "video" {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "mediaType must be 'image' or 'video' when uploading media",
			})
		}

		src, err := fileHeader.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Failed to read uploaded file",
			})
		}
		fileData, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Failed to read uploaded file",
			})
		}

		mediaURL, err := utils.UploadPostMedia(fileData, fileHeader.Filename, mediaType)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		}
		post.MediaType = mediaType
		post.MediaURL = mediaURL

		// Thumbnails are nice to have, a failure does not block the post
		switch mediaType {
		case "image":
			if thumbURL, err := utils.GenerateImageThumbnail(mediaURL); err != nil {
				log.Printf("Failed to generate image thumbnail: %v", err)
			} else {
				post.ThumbnailURL = thumbURL
			}
		case "video":
			if thumbURL, err := utils.GenerateVideoThumbnail(mediaURL); err != nil {
				log.Printf("Failed to generate video thumbnail: %v", err)
			} else {
				post.ThumbnailURL = thumbURL
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := pc.posts.Create(ctx, post); err != nil {
		log.Printf("Error creating post: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create post",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Post created successfully",
		Data:    post,
	})
}

// GetPosts returns the feed, newest first
func (pc *PostController) GetPosts(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	limit := int64(20)
	skip := int64(0)
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if raw := c.QueryParam("skip"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v >= 0 {
			skip = v
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts, err := pc.posts.List(ctx, limit, skip)
	if err != nil {
		log.Printf("Error listing posts: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch posts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Posts retrieved successfully",
		Data:    posts,
	})
}

// LikePost records a like and notifies the author on a fresh like
func (pc *PostController) LikePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid post ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := pc.posts.FindByID(ctx, postID)
	if err != nil {
		log.Printf("Error loading post %s: %v", postID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load post",
		})
	}
	if post == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Post not found",
		})
	}

	liked, err := pc.posts.AddLike(ctx, postID, userID)
	if err != nil {
		log.Printf("Error liking post %s: %v", postID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to like post",
		})
	}

	if liked && post.AuthorID != userID {
		liker, err := pc.users.FindByID(ctx, userID)
		name := "Someone"
		if err == nil && liker != nil && liker.FullName != "" {
			name = liker.FullName
		}
		_, err = pc.notifications.CreateNotification(ctx, services.NotificationInput{
			UserID:        post.AuthorID,
			Type:          models.NotificationPostLiked,
			Title:         "New Like",
			Message:       fmt.Sprintf("%s liked your post", name),
			ActionURL:     "/posts/" + postID.Hex(),
			RelatedUserID: &userID,
			Metadata:      map[string]interface{}{"postId": postID.Hex()},
		})
		if err != nil {
			log.Printf("Failed to create like notification: %v", err)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Post liked",
	})
}

// UnlikePost removes the caller's like
func (pc *PostController) UnlikePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid post ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := pc.posts.RemoveLike(ctx, postID, userID); err != nil {
		log.Printf("Error unliking post %s: %v", postID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to unlike post",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Post unliked",
	})
}

// AddComment appends a comment and notifies the post author
func (pc *PostController) AddComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid post ID",
		})
	}

	var req models.CommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Comment content is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	post, err := pc.posts.FindByID(ctx, postID)
	if err != nil {
		log.Printf("Error loading post %s: %v", postID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load post",
		})
	}
	if post == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Post not found",
		})
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		AuthorID:  userID,
		Content:   req.Content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	added, err := pc.posts.AddComment(ctx, postID, comment)
	if err != nil || !added {
		log.Printf("Error commenting on post %s: %v", postID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to add comment",
		})
	}

	if post.AuthorID != userID {
		commenter, err := pc.users.FindByID(ctx, userID)
		name := "Someone"
		if err == nil && commenter != nil && commenter.FullName != "" {
			name = commenter.FullName
		}
		_, err = pc.notifications.CreateNotification(ctx, services.NotificationInput{
			UserID:           post.AuthorID,
			Type:             models.NotificationCommentAdded,
			Title:            "New Comment",
			Message:          fmt.Sprintf("%s commented on your post", name),
			ActionURL:        "/posts/" + postID.Hex(),
			RelatedUserID:    &userID,
			RelatedCommentID: &comment.ID,
			Metadata:         map[string]interface{}{"postId": postID.Hex()},
		})
		if err != nil {
			log.Printf("Failed to create comment notification: %v", err)
		}
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Comment added successfully",
		Data:    comment,
	})
}

// DeletePost deletes the caller's own post
func (pc *PostController) DeletePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid post ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deleted, err := pc.posts.Delete(ctx, postID, userID)
	if err != nil {
		log.Printf("Error deleting post %s: %v", postID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete post",
		})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Post not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Post deleted successfully",
	})
}

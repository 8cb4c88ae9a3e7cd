// controllers/project_controller.go
package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LFroesch/project-management-sub010/models"
	"github.com/LFroesch/project-management-sub010/repositories"
	"github.com/LFroesch/project-management-sub010/services"
)

type ProjectController struct {
	projects      *repositories.ProjectRepository
	memberships   *repositories.MembershipRepository
	users         *repositories.UserRepository
	notifications *services.NotificationService
	plans         *services.PlanService
}

func NewProjectController(projects *repositories.ProjectRepository, memberships *repositories.MembershipRepository, users *repositories.UserRepository, notifications *services.NotificationService, plans *services.PlanService) *ProjectController {
	return &ProjectController{
		projects:      projects,
		memberships:   memberships,
		users:         users,
		notifications: notifications,
		plans:         plans,
	}
}

// AddMemberRequest represents the request body for adding a project member
type AddMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role"`
}

// AssignTodoRequest carries the target assignee, empty to unassign
type AssignTodoRequest struct {
	AssignedTo string `json:"assignedTo"`
}

// CompleteTodoRequest toggles completion, defaults to completed
type CompleteTodoRequest struct {
	Completed *bool `json:"completed"`
}

// MemberInfo is the member list entry returned to clients
type MemberInfo struct {
	UserID   primitive.ObjectID `json:"userId"`
	FullName string             `json:"fullName"`
	Email    string             `json:"email"`
	Role     string             `json:"role"`
	AddedAt  time.Time          `json:"addedAt"`
}

// CreateProject creates a new project owned by the caller
func (pc *ProjectController) CreateProject(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	var req models.ProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Project name is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	project := projectFromRequest(userID, req)
	if err := pc.projects.Create(ctx, &project); err != nil {
		log.Printf("Error creating project: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create project",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Project created successfully",
		Data:    project,
	})
}

// GetProjects returns the caller's owned projects plus projects they are a member of
func (pc *ProjectController) GetProjects(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	owned, err := pc.projects.ListForOwner(ctx, userID)
	if err != nil {
		log.Printf("Error listing projects for user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch projects",
		})
	}

	memberProjectIDs, err := pc.memberships.ProjectIDsForUser(ctx, userID)
	if err != nil {
		log.Printf("Error listing memberships for user %s: %v", userID.Hex(), err)
		memberProjectIDs = nil
	}

	seen := make(map[primitive.ObjectID]bool, len(owned))
	for _, p := range owned {
		seen[p.ID] = true
	}
	var missing []primitive.ObjectID
	for _, id := range memberProjectIDs {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		shared, err := pc.projects.FindByIDs(ctx, missing)
		if err != nil {
			log.Printf("Error loading shared projects for user %s: %v", userID.Hex(), err)
		} else {
			owned = append(owned, shared...)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Projects retrieved successfully",
		Data:    owned,
	})
}

// GetProject returns a single project if the caller owns it or is a member
func (pc *ProjectController) GetProject(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	project, ok, status := pc.loadAccessibleProject(ctx, projectID, userID)
	if !ok {
		return status(c)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Project retrieved successfully",
		Data:    project,
	})
}

// UpdateProject updates name/description, owner only
func (pc *ProjectController) UpdateProject(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	var req models.ProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Project name is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated, err := pc.projects.Update(ctx, projectID, userID, req.Name, req.Description)
	if err != nil {
		log.Printf("Error updating project %s: %v", projectID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update project",
		})
	}
	if !updated {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Project not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Project updated successfully",
	})
}

// DeleteProject deletes a project, owner only
func (pc *ProjectController) DeleteProject(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deleted, err := pc.projects.Delete(ctx, projectID, userID)
	if err != nil {
		log.Printf("Error deleting project %s: %v", projectID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete project",
		})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Project not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Project deleted successfully",
	})
}

// AddTodo appends a todo to the project and notifies the assignee if one was set
func (pc *ProjectController) AddTodo(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	var req models.TodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Todo title is required",
		})
	}

	todo, err := todoFromRequest(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid assignee ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	project, ok, status := pc.loadAccessibleProject(ctx, projectID, userID)
	if !ok {
		return status(c)
	}

	added, err := pc.projects.AddTodo(ctx, projectID, todo)
	if err != nil {
		log.Printf("Error adding todo to project %s: %v", projectID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to add todo",
		})
	}
	if !added {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Project not found",
		})
	}

	if todo.AssignedTo != nil && *todo.AssignedTo != userID {
		pc.notifyTodoAssigned(ctx, *todo.AssignedTo, userID, project, &todo)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Todo added successfully",
		Data:    todo,
	})
}

// UpdateTodo updates todo fields in place
func (pc *ProjectController) UpdateTodo(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}
	todoID, err := primitive.ObjectIDFromHex(c.Param("todoId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid todo ID",
		})
	}

	var req models.TodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, ok, status := pc.loadAccessibleProject(ctx, projectID, userID); !ok {
		return status(c)
	}

	updated, err := pc.projects.UpdateTodo(ctx, projectID, todoID, req)
	if err != nil {
		log.Printf("Error updating todo %s: %v", todoID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update todo",
		})
	}
	if !updated {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Todo not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Todo updated successfully",
	})
}

// CompleteTodo toggles completion and notifies the project owner when
// someone else completes their todo
func (pc *ProjectController) CompleteTodo(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}
	todoID, err := primitive.ObjectIDFromHex(c.Param("todoId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid todo ID",
		})
	}

	completed := true
	var req CompleteTodoRequest
	if err := c.Bind(&req); err == nil && req.Completed != nil {
		completed = *req.Completed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	project, ok, status := pc.loadAccessibleProject(ctx, projectID, userID)
	if !ok {
		return status(c)
	}

	updated, err := pc.projects.SetTodoCompleted(ctx, projectID, todoID, completed)
	if err != nil {
		log.Printf("Error completing todo %s: %v", todoID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update todo",
		})
	}
	if !updated {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Todo not found",
		})
	}

	if completed && project.OwnerID != userID {
		pc.notifyTodoCompleted(ctx, project, todoID, userID)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Todo updated successfully",
	})
}

// AssignTodo sets or clears the todo assignee and notifies the new assignee
func (pc *ProjectController) AssignTodo(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}
	todoID, err := primitive.ObjectIDFromHex(c.Param("todoId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid todo ID",
		})
	}

	var req AssignTodoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	var assignee *primitive.ObjectID
	if req.AssignedTo != "" {
		id, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid assignee ID",
			})
		}
		assignee = &id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	project, ok, status := pc.loadAccessibleProject(ctx, projectID, userID)
	if !ok {
		return status(c)
	}

	updated, err := pc.projects.AssignTodo(ctx, projectID, todoID, assignee)
	if err != nil {
		log.Printf("Error assigning todo %s: %v", todoID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to assign todo",
		})
	}
	if !updated {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Todo not found",
		})
	}

	if assignee != nil && *assignee != userID {
		_, todo, err := pc.projects.FindTodo(ctx, todoID)
		if err != nil || todo == nil {
			log.Printf("Could not load todo %s for assignment notification: %v", todoID.Hex(), err)
		} else {
			pc.notifyTodoAssigned(ctx, *assignee, userID, project, todo)
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Todo assigned successfully",
	})
}

// DeleteTodo removes a todo from the project
func (pc *ProjectController) DeleteTodo(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}
	todoID, err := primitive.ObjectIDFromHex(c.Param("todoId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid todo ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, ok, status := pc.loadAccessibleProject(ctx, projectID, userID); !ok {
		return status(c)
	}

	removed, err := pc.projects.RemoveTodo(ctx, projectID, todoID)
	if err != nil {
		log.Printf("Error removing todo %s: %v", todoID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to delete todo",
		})
	}
	if !removed {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Todo not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Todo deleted successfully",
	})
}

// GetMembers lists the project's active members
func (pc *ProjectController) GetMembers(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, ok, status := pc.loadAccessibleProject(ctx, projectID, userID); !ok {
		return status(c)
	}

	memberships, err := pc.memberships.ListMembers(ctx, projectID)
	if err != nil {
		log.Printf("Error listing members of project %s: %v", projectID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch members",
		})
	}

	members := make([]MemberInfo, 0, len(memberships))
	for _, m := range memberships {
		info := MemberInfo{UserID: m.UserID, Role: m.Role, AddedAt: m.AddedAt}
		if user, err := pc.users.FindByID(ctx, m.UserID); err == nil && user != nil {
			info.FullName = user.FullName
			info.Email = user.Email
		}
		members = append(members, info)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Members retrieved successfully",
		Data:    members,
	})
}

// AddMember adds a user to the project, owner only
func (pc *ProjectController) AddMember(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	var req AddMemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User ID is required",
		})
	}

	memberID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	project, err := pc.projects.FindByID(ctx, projectID)
	if err != nil {
		log.Printf("Error loading project %s: %v", projectID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load project",
		})
	}
	if project == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Project not found",
		})
	}
	if project.OwnerID != userID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only the project owner can manage members",
		})
	}
	if memberID == project.OwnerID {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "The owner is already part of the project",
		})
	}

	user, err := pc.users.FindByID(ctx, memberID)
	if err != nil || user == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	membership, err := pc.memberships.Add(ctx, projectID, memberID, req.Role)
	if err != nil {
		log.Printf("Error adding member %s to project %s: %v", memberID.Hex(), projectID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to add member",
		})
	}

	pc.notifyMemberAdded(ctx, project, userID, user)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Member added successfully",
		Data:    membership,
	})
}

// RemoveMember soft-deletes the membership, owner only. The record is kept
// until its retention window elapses so it can be audited.
func (pc *ProjectController) RemoveMember(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}
	memberID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	project, err := pc.projects.FindByID(ctx, projectID)
	if err != nil {
		log.Printf("Error loading project %s: %v", projectID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load project",
		})
	}
	if project == nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Project not found",
		})
	}
	if project.OwnerID != userID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only the project owner can manage members",
		})
	}

	tier, err := pc.plans.GetPlanTier(ctx, project.OwnerID)
	if err != nil {
		log.Printf("Could not resolve plan tier for member removal: %v", err)
		tier = models.PlanFree
	}
	purgeAt := services.MembershipPurgeAt(tier, time.Now())

	removed, err := pc.memberships.Remove(ctx, projectID, memberID, purgeAt)
	if err != nil {
		log.Printf("Error removing member %s from project %s: %v", memberID.Hex(), projectID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to remove member",
		})
	}
	if !removed {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Membership not found",
		})
	}

	pc.notifyMemberRemoved(ctx, project, userID, memberID)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Member removed successfully",
	})
}

// projectFromRequest builds the project a create request describes. The
// repository assigns the id and timestamps on insert.
func projectFromRequest(ownerID primitive.ObjectID, req models.ProjectRequest) models.Project {
	return models.Project{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
	}
}

// todoFromRequest builds the embedded todo a create request describes. The
// todo gets its id here because it lives inside the project document. The
// assignee arrives as a hex user id.
func todoFromRequest(req models.TodoRequest) (models.Todo, error) {
	now := time.Now()
	todo := models.Todo{
		ID:           primitive.NewObjectID(),
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		ReminderDate: req.ReminderDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.AssignedTo != "" {
		assignee, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			return models.Todo{}, err
		}
		todo.AssignedTo = &assignee
	}
	return todo, nil
}

// loadAccessibleProject fetches the project and checks owner-or-member access.
// The third return value renders the appropriate error response.
func (pc *ProjectController) loadAccessibleProject(ctx context.Context, projectID, userID primitive.ObjectID) (*models.Project, bool, func(echo.Context) error) {
	project, err := pc.projects.FindByID(ctx, projectID)
	if err != nil {
		log.Printf("Error loading project %s: %v", projectID.Hex(), err)
		return nil, false, func(c echo.Context) error {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to load project",
			})
		}
	}
	if project == nil {
		return nil, false, func(c echo.Context) error {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Project not found",
			})
		}
	}
	if project.OwnerID != userID {
		isMember, err := pc.memberships.IsMember(ctx, projectID, userID)
		if err != nil || !isMember {
			return nil, false, func(c echo.Context) error {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "You do not have access to this project",
				})
			}
		}
	}
	return project, true, nil
}

func (pc *ProjectController) notifyTodoAssigned(ctx context.Context, assignee, actor primitive.ObjectID, project *models.Project, todo *models.Todo) {
	_, err := pc.notifications.CreateNotification(ctx, services.NotificationInput{
		UserID:           assignee,
		Type:             models.NotificationTodoAssigned,
		Title:            "Todo Assigned",
		Message:          fmt.Sprintf("%s assigned you %q in %s", pc.displayName(ctx, actor), todo.Title, project.Name),
		ActionURL:        "/projects/" + project.ID.Hex(),
		RelatedProjectID: &project.ID,
		RelatedTodoID:    &todo.ID,
	})
	if err != nil {
		log.Printf("Failed to create assignment notification: %v", err)
	}
}

func (pc *ProjectController) notifyTodoCompleted(ctx context.Context, project *models.Project, todoID, actor primitive.ObjectID) {
	_, todo, err := pc.projects.FindTodo(ctx, todoID)
	if err != nil || todo == nil {
		log.Printf("Could not load todo %s for completion notification: %v", todoID.Hex(), err)
		return
	}

	_, err = pc.notifications.CreateNotification(ctx, services.NotificationInput{
		UserID:           project.OwnerID,
		Type:             models.NotificationTodoCompleted,
		Title:            "Todo Completed",
		Message:          fmt.Sprintf("%s completed %q in %s", pc.displayName(ctx, actor), todo.Title, project.Name),
		ActionURL:        "/projects/" + project.ID.Hex(),
		RelatedProjectID: &project.ID,
		RelatedTodoID:    &todo.ID,
	})
	if err != nil {
		log.Printf("Failed to create completion notification: %v", err)
	}
}

// notifyMemberAdded tells the new member they were added and announces the
// join to the other active members. The announcement is keyed on the joining
// user, so a rejoin replaces the earlier announcement instead of stacking.
func (pc *ProjectController) notifyMemberAdded(ctx context.Context, project *models.Project, actor primitive.ObjectID, member *models.User) {
	actorName := pc.displayName(ctx, actor)

	_, err := pc.notifications.CreateNotification(ctx, services.NotificationInput{
		UserID:           member.ID,
		Type:             models.NotificationMemberAdded,
		Title:            "Added to Project",
		Message:          fmt.Sprintf("%s added you to %s", actorName, project.Name),
		ActionURL:        "/projects/" + project.ID.Hex(),
		RelatedProjectID: &project.ID,
	})
	if err != nil {
		log.Printf("Failed to notify new member %s: %v", member.ID.Hex(), err)
	}

	memberships, err := pc.memberships.ListMembers(ctx, project.ID)
	if err != nil {
		log.Printf("Could not list members for join announcement: %v", err)
		return
	}

	memberName := member.FullName
	if memberName == "" {
		memberName = member.Email
	}
	for _, m := range memberships {
		if m.UserID == member.ID || m.UserID == actor {
			continue
		}
		_, err := pc.notifications.CreateNotification(ctx, services.NotificationInput{
			UserID:        m.UserID,
			Type:          models.NotificationMemberAdded,
			Title:         "New Project Member",
			Message:       fmt.Sprintf("%s joined %s", memberName, project.Name),
			ActionURL:     "/projects/" + project.ID.Hex(),
			RelatedUserID: &member.ID,
			Metadata:      map[string]interface{}{"projectId": project.ID.Hex()},
		})
		if err != nil {
			log.Printf("Failed to announce new member to %s: %v", m.UserID.Hex(), err)
		}
	}
}

func (pc *ProjectController) notifyMemberRemoved(ctx context.Context, project *models.Project, actor, memberID primitive.ObjectID) {
	_, err := pc.notifications.CreateNotification(ctx, services.NotificationInput{
		UserID:           memberID,
		Type:             models.NotificationMemberRemoved,
		Title:            "Removed from Project",
		Message:          fmt.Sprintf("%s removed you from %s", pc.displayName(ctx, actor), project.Name),
		RelatedProjectID: &project.ID,
	})
	if err != nil {
		log.Printf("Failed to notify removed member %s: %v", memberID.Hex(), err)
	}
}

func (pc *ProjectController) displayName(ctx context.Context, userID primitive.ObjectID) string {
	user, err := pc.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return "Someone"
	}
	if user.FullName != "" {
		return user.FullName
	}
	return user.Email
}

// controllers/invitation_controller.go
package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LFroesch/project-management-sub010/middleware"
	"github.com/LFroesch/project-management-sub010/models"
	"github.com/LFroesch/project-management-sub010/repositories"
	"github.com/LFroesch/project-management-sub010/services"
	"github.com/LFroesch/project-management-sub010/utils"
)

type InvitationController struct {
	invitations   *repositories.InvitationRepository
	projects      *repositories.ProjectRepository
	memberships   *repositories.MembershipRepository
	users         *repositories.UserRepository
	notifications *services.NotificationService
	plans         *services.PlanService
}

func NewInvitationController(invitations *repositories.InvitationRepository, projects *repositories.ProjectRepository, memberships *repositories.MembershipRepository, users *repositories.UserRepository, notifications *services.NotificationService, plans *services.PlanService) *InvitationController {
	return &InvitationController{
		invitations:   invitations,
		projects:      projects,
		memberships:   memberships,
		users:         users,
		notifications: notifications,
		plans:         plans,
	}
}

// InvitationTokenRequest carries the invitation token for accept/decline
type InvitationTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// InvitationView is the enriched invitation entry returned to invitees
type InvitationView struct {
	models.Invitation
	ProjectName string `json:"projectName,omitempty"`
	InviterName string `json:"inviterName,omitempty"`
}

// CreateInvitation invites a user by email to the project. Re-inviting the
// same address refreshes the pending invitation instead of stacking a new one.
func (ic *InvitationController) CreateInvitation(c echo.Context) error {
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

	var req models.InvitationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A valid email address is required",
		})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	project, err := ic.projects.FindByID(ctx, projectID)
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
			Message: "Only the project owner can send invitations",
		})
	}

	invitee, err := ic.users.FindByEmail(ctx, email)
	if err != nil {
		log.Printf("Error looking up invitee %s: %v", email, err)
	}
	if invitee != nil {
		if invitee.ID == project.OwnerID {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "You cannot invite yourself",
			})
		}
		isMember, err := ic.memberships.IsMember(ctx, projectID, invitee.ID)
		if err == nil && isMember {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "User is already a member of this project",
			})
		}
	}

	tier, err := ic.plans.GetPlanTier(ctx, project.OwnerID)
	if err != nil {
		log.Printf("Could not resolve plan tier for invitation: %v", err)
		tier = models.PlanFree
	}

	token := uuid.New().String()
	expiresAt := services.InvitationExpiry(tier, time.Now())

	invitation, err := ic.invitations.FindPending(ctx, projectID, email)
	if err != nil {
		log.Printf("Error checking pending invitations: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create invitation",
		})
	}

	if invitation != nil {
		invitation, err = ic.invitations.Refresh(ctx, invitation.ID, token, expiresAt)
	} else {
		invitation = &models.Invitation{
			ID:           primitive.NewObjectID(),
			ProjectID:    projectID,
			InviterID:    userID,
			InviteeEmail: email,
			Token:        token,
			Role:         req.Role,
			Status:       models.InvitationPending,
			ExpiresAt:    &expiresAt,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		err = ic.invitations.Create(ctx, invitation)
	}
	if err != nil {
		log.Printf("Error saving invitation for %s: %v", email, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create invitation",
		})
	}

	inviterName := ic.displayName(ctx, userID)

	// Email is best-effort, do not block the response on SMTP
	go func(toEmail, inviter, projectName, token string) {
		if err := utils.SendInvitationEmail(toEmail, inviter, projectName, token); err != nil {
			log.Printf("Invitation email to %s failed: %v", toEmail, err)
		}
	}(email, inviterName, project.Name, token)

	if invitee != nil {
		_, err := ic.notifications.CreateNotification(ctx, services.NotificationInput{
			UserID:              invitee.ID,
			Type:                models.NotificationProjectInvitation,
			Title:               "Project Invitation",
			Message:             fmt.Sprintf("%s invited you to join %s", inviterName, project.Name),
			ActionURL:           "/invitations?token=" + token,
			RelatedProjectID:    &project.ID,
			RelatedInvitationID: &invitation.ID,
		})
		if err != nil {
			log.Printf("Failed to create invitation notification: %v", err)
		}
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Invitation sent successfully",
		Data:    invitation,
	})
}

// AcceptInvitation redeems the token, adds the caller to the project and
// notifies the inviter
func (ic *InvitationController) AcceptInvitation(c echo.Context) error {
	return ic.resolveInvitation(c, models.InvitationAccepted)
}

// DeclineInvitation marks the invitation declined and notifies the inviter
func (ic *InvitationController) DeclineInvitation(c echo.Context) error {
	return ic.resolveInvitation(c, models.InvitationDeclined)
}

func (ic *InvitationController) resolveInvitation(c echo.Context, status string) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	var req InvitationTokenRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		req.Token = c.QueryParam("token")
	}
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invitation token is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	invitation, err := ic.invitations.FindByToken(ctx, req.Token)
	if err != nil {
		log.Printf("Error finding invitation by token: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load invitation",
		})
	}
	if invitation == nil || invitation.Status != models.InvitationPending {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Invitation not found or already answered",
		})
	}
	// TTL cleanup can lag, treat past expiry as gone
	if invitation.ExpiresAt != nil && invitation.ExpiresAt.Before(time.Now()) {
		return c.JSON(http.StatusGone, models.Response{
			Status:  http.StatusGone,
			Message: "Invitation has expired",
		})
	}

	user, err := ic.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "User not found",
		})
	}
	if !strings.EqualFold(user.Email, invitation.InviteeEmail) {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "This invitation was sent to a different email address",
		})
	}

	invitation, err = ic.invitations.Resolve(ctx, invitation.ID, status, userID)
	if err != nil {
		log.Printf("Error resolving invitation %s: %v", invitation.ID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update invitation",
		})
	}
	if invitation == nil {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Invitation was already answered",
		})
	}

	project, err := ic.projects.FindByID(ctx, invitation.ProjectID)
	if err != nil || project == nil {
		log.Printf("Project %s behind invitation %s is gone: %v", invitation.ProjectID.Hex(), invitation.ID.Hex(), err)
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "The project behind this invitation no longer exists",
		})
	}

	if status == models.InvitationAccepted {
		if _, err := ic.memberships.Add(ctx, project.ID, userID, invitation.Role); err != nil {
			log.Printf("Error adding member %s after accept: %v", userID.Hex(), err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to join project",
			})
		}
		ic.notifyResolution(ctx, invitation, project, user, models.NotificationInvitationAccepted,
			fmt.Sprintf("%s accepted your invitation to %s", inviteeName(user), project.Name))
		ic.announceJoin(ctx, project, user)
	} else {
		ic.notifyResolution(ctx, invitation, project, user, models.NotificationInvitationDeclined,
			fmt.Sprintf("%s declined your invitation to %s", inviteeName(user), project.Name))
	}

	message := "Invitation declined"
	if status == models.InvitationAccepted {
		message = "Invitation accepted, welcome to the project"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    invitation,
	})
}

// GetMyInvitations lists pending invitations addressed to the caller's email
func (ic *InvitationController) GetMyInvitations(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil || claims.Email == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	invitations, err := ic.invitations.ListForEmail(ctx, strings.ToLower(claims.Email))
	if err != nil {
		log.Printf("Error listing invitations for %s: %v", claims.Email, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch invitations",
		})
	}

	views := make([]InvitationView, 0, len(invitations))
	for _, inv := range invitations {
		view := InvitationView{Invitation: inv}
		if project, err := ic.projects.FindByID(ctx, inv.ProjectID); err == nil && project != nil {
			view.ProjectName = project.Name
		}
		if inviter, err := ic.users.FindByID(ctx, inv.InviterID); err == nil && inviter != nil {
			view.InviterName = inviter.FullName
		}
		views = append(views, view)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Invitations retrieved successfully",
		Data:    views,
	})
}

// GetProjectInvitations lists every invitation on a project, any status,
// newest first. Owner only.
func (ic *InvitationController) GetProjectInvitations(c echo.Context) error {
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

	project, err := ic.projects.FindByID(ctx, projectID)
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
			Message: "Only the project owner can view invitations",
		})
	}

	invitations, err := ic.invitations.ListForProject(ctx, projectID)
	if err != nil {
		log.Printf("Error listing invitations for project %s: %v", projectID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch invitations",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Invitations retrieved successfully",
		Data:    invitations,
	})
}

// GetInvitationQR renders the invitation link as a QR code PNG, inviter only
func (ic *InvitationController) GetInvitationQR(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication required",
		})
	}

	invitationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid invitation ID",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	invitation, err := ic.invitations.FindByID(ctx, invitationID)
	if err != nil {
		log.Printf("Error loading invitation %s: %v", invitationID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load invitation",
		})
	}
	if invitation == nil || invitation.Status != models.InvitationPending {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Invitation not found",
		})
	}
	if invitation.InviterID != userID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only the inviter can view this QR code",
		})
	}

	png, err := utils.GenerateInvitationQR(invitation.Token)
	if err != nil {
		log.Printf("Error generating invitation QR: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

func (ic *InvitationController) notifyResolution(ctx context.Context, invitation *models.Invitation, project *models.Project, invitee *models.User, notifType models.NotificationType, message string) {
	title := "Invitation Accepted"
	if notifType == models.NotificationInvitationDeclined {
		title = "Invitation Declined"
	}
	_, err := ic.notifications.CreateNotification(ctx, services.NotificationInput{
		UserID:              invitation.InviterID,
		Type:                notifType,
		Title:               title,
		Message:             message,
		ActionURL:           "/projects/" + project.ID.Hex(),
		RelatedProjectID:    &project.ID,
		RelatedInvitationID: &invitation.ID,
		RelatedUserID:       &invitee.ID,
	})
	if err != nil {
		log.Printf("Failed to notify inviter %s: %v", invitation.InviterID.Hex(), err)
	}
}

// announceJoin tells the other active members that someone joined. Keyed on
// the joining user so a rejoin replaces the previous announcement.
func (ic *InvitationController) announceJoin(ctx context.Context, project *models.Project, member *models.User) {
	memberships, err := ic.memberships.ListMembers(ctx, project.ID)
	if err != nil {
		log.Printf("Could not list members for join announcement: %v", err)
		return
	}

	name := inviteeName(member)
	for _, m := range memberships {
		if m.UserID == member.ID {
			continue
		}
		_, err := ic.notifications.CreateNotification(ctx, services.NotificationInput{
			UserID:        m.UserID,
			Type:          models.NotificationMemberAdded,
			Title:         "New Project Member",
			Message:       fmt.Sprintf("%s joined %s", name, project.Name),
			ActionURL:     "/projects/" + project.ID.Hex(),
			RelatedUserID: &member.ID,
			Metadata:      map[string]interface{}{"projectId": project.ID.Hex()},
		})
		if err != nil {
			log.Printf("Failed to announce new member to %s: %v", m.UserID.Hex(), err)
		}
	}
}

func (ic *InvitationController) displayName(ctx context.Context, userID primitive.ObjectID) string {
	user, err := ic.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return "Someone"
	}
	return inviteeName(user)
}

func inviteeName(user *models.User) string {
	if user.FullName != "" {
		return user.FullName
	}
	return user.Email
}

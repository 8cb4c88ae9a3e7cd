package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LFroesch/project-management-sub010/models"
)

// RelationLoader resolves light summaries of the entities a notification
// points at, for the expanded websocket payload.
type RelationLoader struct {
	users       *UserRepository
	projects    *ProjectRepository
	invitations *InvitationRepository
}

func NewRelationLoader(users *UserRepository, projects *ProjectRepository, invitations *InvitationRepository) *RelationLoader {
	return &RelationLoader{
		users:       users,
		projects:    projects,
		invitations: invitations,
	}
}

func (l *RelationLoader) ProjectRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error) {
	project, err := l.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}
	return &models.RelatedRef{ID: id.Hex(), Name: project.Name}, nil
}

func (l *RelationLoader) UserRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error) {
	user, err := l.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &models.RelatedRef{ID: id.Hex(), Name: user.FullName}, nil
}

func (l *RelationLoader) TodoRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error) {
	_, todo, err := l.projects.FindTodo(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, nil
	}
	return &models.RelatedRef{ID: id.Hex(), Title: todo.Title}, nil
}

func (l *RelationLoader) InvitationRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error) {
	invitation, err := l.invitations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, nil
	}
	return &models.RelatedRef{ID: id.Hex(), Status: invitation.Status}, nil
}

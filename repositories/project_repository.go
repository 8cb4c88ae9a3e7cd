package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LFroesch/project-management-sub010/config"
	"github.com/LFroesch/project-management-sub010/models"
)

type ProjectRepository struct {
	collection *mongo.Collection
}

func NewProjectRepository(db *mongo.Client) *ProjectRepository {
	return &ProjectRepository{
		collection: config.GetCollection(db, "projects"),
	}
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Todos == nil {
		project.Todos = []models.Todo{}
	}
	_, err := r.collection.InsertOne(ctx, project)
	return err
}

func (r *ProjectRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Project, error) {
	if len(ids) == 0 {
		return []models.Project{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) ListForOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Project, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Update changes name and description of a project owned by ownerID.
func (r *ProjectRepository) Update(ctx context.Context, id, ownerID primitive.ObjectID, name, description string) (bool, error) {
	filter := bson.M{"_id": id, "ownerId": ownerID}
	update := bson.M{
		"$set": bson.M{
			"name":        name,
			"description": description,
			"updatedAt":   time.Now(),
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "ownerId": ownerID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *ProjectRepository) AddTodo(ctx context.Context, projectID primitive.ObjectID, todo models.Todo) (bool, error) {
	filter := bson.M{"_id": projectID}
	update := bson.M{
		"$push": bson.M{"todos": todo},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// UpdateTodo sets the provided fields on one embedded todo. Empty strings
// and nil dates are left untouched.
func (r *ProjectRepository) UpdateTodo(ctx context.Context, projectID, todoID primitive.ObjectID, req models.TodoRequest) (bool, error) {
	now := time.Now()
	set := bson.M{
		"todos.$.updatedAt": now,
		"updatedAt":         now,
	}
	if req.Title != "" {
		set["todos.$.title"] = req.Title
	}
	if req.Description != "" {
		set["todos.$.description"] = req.Description
	}
	if req.DueDate != nil {
		set["todos.$.dueDate"] = req.DueDate
	}
	if req.ReminderDate != nil {
		set["todos.$.reminderDate"] = req.ReminderDate
	}

	filter := bson.M{"_id": projectID, "todos._id": todoID}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *ProjectRepository) SetTodoCompleted(ctx context.Context, projectID, todoID primitive.ObjectID, completed bool) (bool, error) {
	now := time.Now()
	filter := bson.M{"_id": projectID, "todos._id": todoID}
	update := bson.M{
		"$set": bson.M{
			"todos.$.completed": completed,
			"todos.$.updatedAt": now,
			"updatedAt":         now,
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *ProjectRepository) AssignTodo(ctx context.Context, projectID, todoID primitive.ObjectID, assignee *primitive.ObjectID) (bool, error) {
	now := time.Now()
	filter := bson.M{"_id": projectID, "todos._id": todoID}

	var update bson.M
	if assignee == nil {
		update = bson.M{
			"$unset": bson.M{"todos.$.assignedTo": ""},
			"$set":   bson.M{"todos.$.updatedAt": now, "updatedAt": now},
		}
	} else {
		update = bson.M{
			"$set": bson.M{
				"todos.$.assignedTo": assignee,
				"todos.$.updatedAt":  now,
				"updatedAt":          now,
			},
		}
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *ProjectRepository) RemoveTodo(ctx context.Context, projectID, todoID primitive.ObjectID) (bool, error) {
	filter := bson.M{"_id": projectID}
	update := bson.M{
		"$pull": bson.M{"todos": bson.M{"_id": todoID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// FindTodo locates the project containing the given todo and returns both.
func (r *ProjectRepository) FindTodo(ctx context.Context, todoID primitive.ObjectID) (*models.Project, *models.Todo, error) {
	var project models.Project
	err := r.collection.FindOne(ctx, bson.M{"todos._id": todoID}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	for i := range project.Todos {
		if project.Todos[i].ID == todoID {
			return &project, &project.Todos[i], nil
		}
	}
	return nil, nil, nil
}

// DueTodoProjects returns projects holding at least one open todo due before
// the horizon. Matched projects carry all their todos, so callers still
// classify per todo.
func (r *ProjectRepository) DueTodoProjects(ctx context.Context, horizon time.Time) ([]models.Project, error) {
	filter := bson.M{"todos": bson.M{"$elemMatch": bson.M{
		"dueDate":   bson.M{"$lte": horizon},
		"completed": false,
	}}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ReminderWindowProjects returns projects holding at least one open todo
// whose reminder or due date falls inside [from, to].
func (r *ProjectRepository) ReminderWindowProjects(ctx context.Context, from, to time.Time) ([]models.Project, error) {
	filter := bson.M{"todos": bson.M{"$elemMatch": bson.M{
		"completed": false,
		"$or": []bson.M{
			{"reminderDate": bson.M{"$gte": from, "$lte": to}},
			{"dueDate": bson.M{"$gte": from, "$lte": to}},
		},
	}}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

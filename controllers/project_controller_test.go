package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LFroesch/project-management-sub010/models"
)

func TestProjectFromRequest(t *testing.T) {
	owner := primitive.NewObjectID()

	project := projectFromRequest(owner, models.ProjectRequest{
		Name:        "Apollo",
		Description: "Launch prep",
	})

	assert.Equal(t, owner, project.OwnerID)
	assert.Equal(t, "Apollo", project.Name)
	assert.Equal(t, "Launch prep", project.Description)
	assert.True(t, project.ID.IsZero(), "the repository assigns the id on insert")
	assert.True(t, project.CreatedAt.IsZero(), "the repository stamps timestamps on insert")
}

func TestTodoFromRequest(t *testing.T) {
	due := time.Now().Add(48 * time.Hour)
	reminder := due.Add(-2 * time.Hour)
	assignee := primitive.NewObjectID()

	todo, err := todoFromRequest(models.TodoRequest{
		Title:        "Ship release",
		Description:  "cut the tag first",
		DueDate:      &due,
		ReminderDate: &reminder,
		AssignedTo:   assignee.Hex(),
	})
	require.NoError(t, err)

	assert.False(t, todo.ID.IsZero(), "embedded todos need their id up front")
	assert.Equal(t, "Ship release", todo.Title)
	assert.Equal(t, "cut the tag first", todo.Description)
	assert.Equal(t, &due, todo.DueDate)
	assert.Equal(t, &reminder, todo.ReminderDate)
	require.NotNil(t, todo.AssignedTo)
	assert.Equal(t, assignee, *todo.AssignedTo)
	assert.False(t, todo.Completed)
	assert.WithinDuration(t, time.Now(), todo.CreatedAt, time.Second)
	assert.Equal(t, todo.CreatedAt, todo.UpdatedAt)
}

func TestTodoFromRequestWithoutAssignee(t *testing.T) {
	first, err := todoFromRequest(models.TodoRequest{Title: "file taxes"})
	require.NoError(t, err)
	second, err := todoFromRequest(models.TodoRequest{Title: "file taxes"})
	require.NoError(t, err)

	assert.Nil(t, first.AssignedTo)
	assert.Nil(t, first.DueDate)
	assert.NotEqual(t, first.ID, second.ID, "every todo gets its own id")
}

func TestTodoFromRequestRejectsBadAssignee(t *testing.T) {
	_, err := todoFromRequest(models.TodoRequest{
		Title:      "Ship release",
		AssignedTo: "not-a-hex-id",
	})
	assert.Error(t, err)
}

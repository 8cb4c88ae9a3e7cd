package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseUserChannel(t *testing.T) {
	userID := primitive.NewObjectID()

	parsed, err := parseUserChannel(userChannel(userID))
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)

	_, err = parseUserChannel("broadcast")
	assert.Error(t, err, "only per-user channels exist")

	_, err = parseUserChannel("user-nothex")
	assert.Error(t, err)
}

func TestPublishWithoutListenerIsDropped(t *testing.T) {
	hub := NewHub()

	err := hub.Publish("notification-created", userChannel(primitive.NewObjectID()), map[string]string{"x": "y"})
	assert.NoError(t, err, "nobody listening is not an error")
	assert.Zero(t, hub.ClientCount())
}

func TestPublishRejectsUnknownChannel(t *testing.T) {
	hub := NewHub()
	err := hub.Publish("notification-created", "system", nil)
	assert.Error(t, err)
}

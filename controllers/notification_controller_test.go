package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LFroesch/project-management-sub010/middleware"
	"github.com/LFroesch/project-management-sub010/models"
	"github.com/LFroesch/project-management-sub010/services"
)

// fakeNotificationStore records the paging arguments the service hands it so
// handler tests can check what the query parameters turned into.
type fakeNotificationStore struct {
	notifications []models.Notification

	lastLimit  int64
	lastSkip   int64
	lastUnread bool
}

func (f *fakeNotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	return nil
}

func (f *fakeNotificationStore) InsertMany(ctx context.Context, ns []models.Notification) ([]models.Notification, error) {
	return ns, nil
}

func (f *fakeNotificationStore) FindByUniquenessKey(ctx context.Context, key string) (*models.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return false, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationStore) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (f *fakeNotificationStore) DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	return false, nil
}

func (f *fakeNotificationStore) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (f *fakeNotificationStore) List(ctx context.Context, userID primitive.ObjectID, limit, skip int64, unreadOnly bool) ([]models.Notification, error) {
	f.lastLimit = limit
	f.lastSkip = skip
	f.lastUnread = unreadOnly
	return f.notifications, nil
}

func (f *fakeNotificationStore) Count(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) (int64, error) {
	return int64(len(f.notifications)), nil
}

func (f *fakeNotificationStore) ExistsSince(ctx context.Context, userID primitive.ObjectID, notificationType models.NotificationType, subjectKey string, since time.Time) (bool, error) {
	return false, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(event, channel string, payload interface{}) error { return nil }

func newNotificationTestController(store *fakeNotificationStore) *NotificationController {
	svc := services.NewNotificationService(store, nopPublisher{}, nil, nil, nil)
	return NewNotificationController(svc, nil)
}

// requestWithUser builds an echo context carrying the JWT claims the way the
// auth middleware leaves them behind.
func requestWithUser(e *echo.Echo, target string, userID primitive.ObjectID) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", jwt.NewWithClaims(jwt.SigningMethodHS256, &middleware.JwtCustomClaims{
		UserID: userID.Hex(),
	}))
	return c, rec
}

func TestGetNotificationsPagingParams(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantLimit  int64
		wantSkip   int64
		wantUnread bool
	}{
		{"explicit paging", "?limit=25&skip=10&unreadOnly=true", 25, 10, true},
		{"defaults without parameters", "", 50, 0, false},
		{"oversized limit is capped", "?limit=500", 200, 0, false},
		{"junk values fall back", "?limit=abc&skip=-3", 50, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeNotificationStore{}
			nc := newNotificationTestController(store)

			e := echo.New()
			c, rec := requestWithUser(e, "/api/users/notifications"+tc.query, primitive.NewObjectID())

			require.NoError(t, nc.GetNotifications(c))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.wantLimit, store.lastLimit)
			assert.Equal(t, tc.wantSkip, store.lastSkip)
			assert.Equal(t, tc.wantUnread, store.lastUnread)
		})
	}
}

func TestGetNotificationsRespondsWithPage(t *testing.T) {
	user := primitive.NewObjectID()
	store := &fakeNotificationStore{notifications: []models.Notification{
		{ID: primitive.NewObjectID(), UserID: user, Type: models.NotificationCommentAdded},
		{ID: primitive.NewObjectID(), UserID: user, Type: models.NotificationTodoAssigned},
	}}
	nc := newNotificationTestController(store)

	e := echo.New()
	c, rec := requestWithUser(e, "/api/users/notifications", user)

	require.NoError(t, nc.GetNotifications(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status int                       `json:"status"`
		Data   services.NotificationPage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.Status)
	assert.Len(t, body.Data.Notifications, 2)
	assert.Equal(t, int64(2), body.Data.UnreadCount)
	assert.Equal(t, int64(2), body.Data.Total)
}

func TestGetNotificationsRequiresAuth(t *testing.T) {
	nc := newNotificationTestController(&fakeNotificationStore{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users/notifications", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, nc.GetNotifications(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

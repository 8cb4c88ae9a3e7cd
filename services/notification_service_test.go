package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/LFroesch/project-management-sub010/models"
)

// fakeStore keeps notifications in memory and enforces the uniqueness key
// the way the partial index does, including the duplicate key error shape
// the driver produces.
type fakeStore struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]models.Notification

	// dupInserts forces the next n Insert calls to fail with a duplicate
	// key error. When planted is set, the losing insert also registers it,
	// simulating a concurrent create that won the slot.
	dupInserts int
	planted    *models.Notification

	lastListLimit int64
	lastListSkip  int64

	findErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[primitive.ObjectID]models.Notification{}}
}

func dupKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
}

func (f *fakeStore) Insert(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dupInserts > 0 {
		f.dupInserts--
		if f.planted != nil {
			f.records[f.planted.ID] = *f.planted
			f.planted = nil
		}
		return dupKeyError()
	}
	if n.UniquenessKey != "" {
		for _, existing := range f.records {
			if existing.UniquenessKey == n.UniquenessKey {
				return dupKeyError()
			}
		}
	}
	f.records[n.ID] = *n
	return nil
}

func (f *fakeStore) InsertMany(ctx context.Context, notifications []models.Notification) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	inserted := make([]models.Notification, 0, len(notifications))
	for _, n := range notifications {
		collides := false
		if n.UniquenessKey != "" {
			for _, existing := range f.records {
				if existing.UniquenessKey == n.UniquenessKey {
					collides = true
					break
				}
			}
		}
		if collides {
			continue
		}
		f.records[n.ID] = n
		inserted = append(inserted, n)
	}
	return inserted, nil
}

func (f *fakeStore) FindByUniquenessKey(ctx context.Context, key string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, n := range f.records {
		if n.UniquenessKey == key {
			found := n
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.records[id]; !ok {
		return false, nil
	}
	delete(f.records, id)
	return true, nil
}

func (f *fakeStore) MarkRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, ok := f.records[id]
	if !ok || n.UserID != userID {
		return nil, nil
	}
	n.IsRead = true
	n.UpdatedAt = time.Now()
	f.records[id] = n
	updated := n
	return &updated, nil
}

func (f *fakeStore) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for id, n := range f.records {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			f.records[id] = n
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n, ok := f.records[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(f.records, id)
	return true, nil
}

func (f *fakeStore) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for id, n := range f.records {
		if n.UserID == userID {
			delete(f.records, id)
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) List(ctx context.Context, userID primitive.ObjectID, limit, skip int64, unreadOnly bool) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastListLimit = limit
	f.lastListSkip = skip

	var matched []models.Notification
	for _, n := range f.records {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if skip >= int64(len(matched)) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit < int64(len(matched)) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeStore) Count(ctx context.Context, userID primitive.ObjectID, unreadOnly bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, n := range f.records {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeStore) ExistsSince(ctx context.Context, userID primitive.ObjectID, notificationType models.NotificationType, subjectKey string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.records {
		if n.UserID != userID || n.Type != notificationType {
			continue
		}
		if n.SubjectKey != subjectKey {
			continue
		}
		if !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) live() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Notification, 0, len(f.records))
	for _, n := range f.records {
		out = append(out, n)
	}
	return out
}

type publishedEvent struct {
	event   string
	channel string
	payload interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(event, channel string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{event: event, channel: channel, payload: payload})
	return nil
}

func (p *fakePublisher) recorded() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]publishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

type fakePlans struct {
	tiers map[primitive.ObjectID]models.PlanTier
	err   error
}

func (p *fakePlans) GetPlanTier(ctx context.Context, userID primitive.ObjectID) (models.PlanTier, error) {
	if p.err != nil {
		return "", p.err
	}
	if tier, ok := p.tiers[userID]; ok {
		return tier, nil
	}
	return models.PlanFree, nil
}

type fakeRelations struct{}

func (fakeRelations) ProjectRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error) {
	return &models.RelatedRef{ID: id.Hex(), Name: "Apollo"}, nil
}

func (fakeRelations) UserRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error) {
	return &models.RelatedRef{ID: id.Hex(), Name: "Dana Miles"}, nil
}

func (fakeRelations) TodoRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error) {
	return &models.RelatedRef{ID: id.Hex(), Title: "Ship release"}, nil
}

func (fakeRelations) InvitationRef(ctx context.Context, id primitive.ObjectID) (*models.RelatedRef, error) {
	return &models.RelatedRef{ID: id.Hex(), Status: "pending"}, nil
}

type fakePush struct {
	mu    sync.Mutex
	sends []primitive.ObjectID
}

func (p *fakePush) SendPush(ctx context.Context, userID primitive.ObjectID, title, message string, data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sends = append(p.sends, userID)
	return nil
}

func (p *fakePush) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sends)
}

func newTestService(store *fakeStore, pub *fakePublisher) *NotificationService {
	return NewNotificationService(store, pub, &fakePlans{}, nil, nil)
}

func TestSubjectKeyPriority(t *testing.T) {
	todoID := primitive.NewObjectID()
	invitationID := primitive.NewObjectID()
	projectID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	tests := []struct {
		name  string
		input NotificationInput
		want  string
	}{
		{
			"todo wins over everything",
			NotificationInput{Type: models.NotificationTodoOverdue, RelatedTodoID: &todoID, RelatedInvitationID: &invitationID, RelatedProjectID: &projectID},
			todoID.Hex(),
		},
		{
			"invitation wins over project",
			NotificationInput{Type: models.NotificationProjectInvitation, RelatedInvitationID: &invitationID, RelatedProjectID: &projectID},
			invitationID.Hex(),
		},
		{
			"project stands alone",
			NotificationInput{Type: models.NotificationMemberRemoved, RelatedProjectID: &projectID},
			projectID.Hex(),
		},
		{
			"related user counts only for member_added",
			NotificationInput{Type: models.NotificationMemberAdded, RelatedUserID: &userID},
			userID.Hex(),
		},
		{
			"related user is ignored for other types",
			NotificationInput{Type: models.NotificationPostLiked, RelatedUserID: &userID},
			"",
		},
		{
			"no relations, no subject",
			NotificationInput{Type: models.NotificationAdminMessage},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subjectKeyFor(tt.input))
		})
	}
}

func TestCreateNotificationReplacesSameSubject(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	user := primitive.NewObjectID()
	todo := primitive.NewObjectID()

	titles := []string{"first", "second", "third"}
	var createdIDs []primitive.ObjectID
	for _, title := range titles {
		n, err := svc.CreateNotification(context.Background(), NotificationInput{
			UserID:        user,
			Type:          models.NotificationTodoDueSoon,
			Title:         title,
			Message:       "due",
			RelatedTodoID: &todo,
		})
		require.NoError(t, err)
		createdIDs = append(createdIDs, n.ID)
	}

	live := store.live()
	require.Len(t, live, 1, "expected exactly one live notification per subject")
	assert.Equal(t, "third", live[0].Title)
	assert.Equal(t, createdIDs[2], live[0].ID)

	events := pub.recorded()
	var sequence []string
	for _, e := range events {
		assert.Equal(t, UserChannel(user), e.channel)
		sequence = append(sequence, e.event)
	}
	assert.Equal(t, []string{
		EventNotificationCreated,
		EventNotificationDeleted, EventNotificationCreated,
		EventNotificationDeleted, EventNotificationCreated,
	}, sequence)

	// Deleted payloads must name the replaced records, oldest first
	var deletedIDs []string
	for _, e := range events {
		if e.event == EventNotificationDeleted {
			deletedIDs = append(deletedIDs, e.payload.(string))
		}
	}
	assert.Equal(t, []string{createdIDs[0].Hex(), createdIDs[1].Hex()}, deletedIDs)
}

func TestCreateNotificationTodoOverridesProject(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakePublisher{})

	user := primitive.NewObjectID()
	todo := primitive.NewObjectID()
	projectA := primitive.NewObjectID()
	projectB := primitive.NewObjectID()

	_, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: user, Type: models.NotificationTodoOverdue, Title: "a",
		RelatedTodoID: &todo, RelatedProjectID: &projectA,
	})
	require.NoError(t, err)

	// Same todo under a different project replaces, the project id is not
	// part of the key when a todo id is present
	_, err = svc.CreateNotification(context.Background(), NotificationInput{
		UserID: user, Type: models.NotificationTodoOverdue, Title: "b",
		RelatedTodoID: &todo, RelatedProjectID: &projectB,
	})
	require.NoError(t, err)
	assert.Len(t, store.live(), 1)

	// A different todo in the same project coexists
	otherTodo := primitive.NewObjectID()
	_, err = svc.CreateNotification(context.Background(), NotificationInput{
		UserID: user, Type: models.NotificationTodoOverdue, Title: "c",
		RelatedTodoID: &otherTodo, RelatedProjectID: &projectA,
	})
	require.NoError(t, err)
	assert.Len(t, store.live(), 2)
}

func TestCreateNotificationWithoutSubjectStacks(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	user := primitive.NewObjectID()
	comment := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateNotification(context.Background(), NotificationInput{
			UserID:           user,
			Type:             models.NotificationCommentAdded,
			Title:            "comment",
			RelatedCommentID: &comment,
		})
		require.NoError(t, err)
	}

	assert.Len(t, store.live(), 3)
	for _, e := range pub.recorded() {
		assert.Equal(t, EventNotificationCreated, e.event)
	}
}

func TestCreateNotificationValidation(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakePublisher{})

	_, err := svc.CreateNotification(context.Background(), NotificationInput{
		Type: models.NotificationAdminMessage, Title: "no recipient",
	})
	assert.Error(t, err)

	_, err = svc.CreateNotification(context.Background(), NotificationInput{
		UserID: primitive.NewObjectID(), Title: "no type",
	})
	assert.Error(t, err)
}

func TestCreateNotificationPlanLookupFailureAssumesFree(t *testing.T) {
	store := newFakeStore()
	svc := NewNotificationService(store, &fakePublisher{}, &fakePlans{err: errors.New("redis down")}, nil, nil)

	user := primitive.NewObjectID()
	n, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: user, Type: models.NotificationTodoAssigned, Title: "t",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, n.PlanTier)
	require.NotNil(t, n.ExpiresAt)
}

func TestCreateNotificationRetentionTagging(t *testing.T) {
	store := newFakeStore()
	user := primitive.NewObjectID()
	plans := &fakePlans{tiers: map[primitive.ObjectID]models.PlanTier{user: models.PlanPremium}}
	svc := NewNotificationService(store, &fakePublisher{}, plans, nil, nil)

	invitation := primitive.NewObjectID()
	critical, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: user, Type: models.NotificationProjectInvitation, Title: "invite",
		RelatedInvitationID: &invitation,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ImportanceCritical, critical.Importance)
	assert.Nil(t, critical.ExpiresAt, "critical notifications never expire on premium")

	transient, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: user, Type: models.NotificationPostLiked, Title: "like",
	})
	require.NoError(t, err)
	require.NotNil(t, transient.ExpiresAt)
	assert.WithinDuration(t, transient.CreatedAt.Add(30*24*time.Hour), *transient.ExpiresAt, time.Second)
}

func TestCreateNotificationPublishFailureIsNotFatal(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{err: errors.New("socket gone")}
	svc := newTestService(store, pub)

	_, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: primitive.NewObjectID(), Type: models.NotificationTodoAssigned, Title: "t",
	})
	require.NoError(t, err)
	assert.Len(t, store.live(), 1, "a failed broadcast must not lose the record")
}

func TestCreateNotificationRecoversFromConcurrentInsert(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	user := primitive.NewObjectID()
	todo := primitive.NewObjectID()

	// Simulate a racing create that wins the uniqueness slot between our
	// existence check and insert
	competitor := models.Notification{
		ID:            primitive.NewObjectID(),
		UserID:        user,
		Type:          models.NotificationTodoDueSoon,
		Title:         "competitor",
		SubjectKey:    todo.Hex(),
		UniquenessKey: uniquenessKeyFor(user, models.NotificationTodoDueSoon, todo.Hex()),
		CreatedAt:     time.Now(),
	}
	store.dupInserts = 1
	store.planted = &competitor

	n, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: user, Type: models.NotificationTodoDueSoon, Title: "ours",
		RelatedTodoID: &todo,
	})
	require.NoError(t, err)

	live := store.live()
	require.Len(t, live, 1)
	assert.Equal(t, "ours", live[0].Title)
	assert.Equal(t, n.ID, live[0].ID)

	// The competitor was replaced, so its deletion precedes our created event
	events := pub.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, EventNotificationDeleted, events[0].event)
	assert.Equal(t, competitor.ID.Hex(), events[0].payload.(string))
	assert.Equal(t, EventNotificationCreated, events[1].event)
}

func TestCreateNotificationGivesUpAfterSecondDuplicate(t *testing.T) {
	store := newFakeStore()
	store.dupInserts = 2
	svc := newTestService(store, &fakePublisher{})

	todo := primitive.NewObjectID()
	_, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: primitive.NewObjectID(), Type: models.NotificationTodoDueSoon, Title: "t",
		RelatedTodoID: &todo,
	})
	assert.Error(t, err)
}

func TestCreateNotificationExpandsRelations(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := NewNotificationService(store, pub, &fakePlans{}, fakeRelations{}, nil)

	project := primitive.NewObjectID()
	todo := primitive.NewObjectID()
	_, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: primitive.NewObjectID(), Type: models.NotificationTodoOverdue, Title: "t",
		RelatedProjectID: &project, RelatedTodoID: &todo,
	})
	require.NoError(t, err)

	events := pub.recorded()
	require.Len(t, events, 1)
	expanded, ok := events[0].payload.(*models.ExpandedNotification)
	require.True(t, ok, "created events carry the expanded record")
	require.NotNil(t, expanded.RelatedProject)
	assert.Equal(t, "Apollo", expanded.RelatedProject.Name)
	require.NotNil(t, expanded.RelatedTodo)
	assert.Equal(t, "Ship release", expanded.RelatedTodo.Title)
}

func TestCreateNotificationCriticalSendsPush(t *testing.T) {
	store := newFakeStore()
	push := &fakePush{}
	svc := NewNotificationService(store, &fakePublisher{}, &fakePlans{}, nil, push)

	user := primitive.NewObjectID()
	_, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: user, Type: models.NotificationAdminMessage, Title: "maintenance",
	})
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return push.count() == 1 }, time.Second, 10*time.Millisecond)

	// Standard importance does not push
	_, err = svc.CreateNotification(context.Background(), NotificationInput{
		UserID: user, Type: models.NotificationTodoAssigned, Title: "assigned",
	})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, push.count())
}

func TestMarkAsRead(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	owner := primitive.NewObjectID()
	n, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: owner, Type: models.NotificationTodoAssigned, Title: "t",
	})
	require.NoError(t, err)

	t.Run("wrong owner is a silent no-op", func(t *testing.T) {
		got, err := svc.MarkAsRead(context.Background(), n.ID, primitive.NewObjectID())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("owner flips the flag and an update event fires", func(t *testing.T) {
		before := len(pub.recorded())
		got, err := svc.MarkAsRead(context.Background(), n.ID, owner)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsRead)

		events := pub.recorded()
		require.Len(t, events, before+1)
		assert.Equal(t, EventNotificationUpdated, events[len(events)-1].event)
	})
}

func TestDeleteNotification(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	owner := primitive.NewObjectID()
	n, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: owner, Type: models.NotificationTodoAssigned, Title: "t",
	})
	require.NoError(t, err)

	deleted, err := svc.DeleteNotification(context.Background(), n.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.False(t, deleted, "someone else's id must not delete")

	deleted, err = svc.DeleteNotification(context.Background(), n.ID, owner)
	require.NoError(t, err)
	assert.True(t, deleted)

	events := pub.recorded()
	last := events[len(events)-1]
	assert.Equal(t, EventNotificationDeleted, last.event)
	assert.Equal(t, n.ID.Hex(), last.payload.(string))

	// Deleting again reports false without another event
	before := len(pub.recorded())
	deleted, err = svc.DeleteNotification(context.Background(), n.ID, owner)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, pub.recorded(), before)
}

func TestClearAllNotifications(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	user := primitive.NewObjectID()

	t.Run("empty list publishes nothing", func(t *testing.T) {
		count, err := svc.ClearAllNotifications(context.Background(), user)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, pub.recorded())
	})

	t.Run("clearing fires one event with no payload", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := svc.CreateNotification(context.Background(), NotificationInput{
				UserID: user, Type: models.NotificationTodoAssigned, Title: "t",
			})
			require.NoError(t, err)
		}

		count, err := svc.ClearAllNotifications(context.Background(), user)
		require.NoError(t, err)
		assert.EqualValues(t, 3, count)

		events := pub.recorded()
		last := events[len(events)-1]
		assert.Equal(t, EventNotificationsCleared, last.event)
		assert.Nil(t, last.payload)
		assert.Empty(t, store.live())
	})
}

func TestGetNotificationsPaginationAndCounts(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakePublisher{})

	user := primitive.NewObjectID()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		n := models.Notification{
			ID:        primitive.NewObjectID(),
			UserID:    user,
			Type:      models.NotificationTodoAssigned,
			Title:     "n",
			IsRead:    i >= 3, // 3 unread, 2 read
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		store.records[n.ID] = n
	}

	t.Run("unfiltered totals", func(t *testing.T) {
		page, err := svc.GetNotifications(context.Background(), user, ListOptions{})
		require.NoError(t, err)
		assert.Len(t, page.Notifications, 5)
		assert.EqualValues(t, 5, page.Total)
		assert.EqualValues(t, 3, page.UnreadCount)

		// Newest first
		for i := 1; i < len(page.Notifications); i++ {
			assert.False(t, page.Notifications[i].CreatedAt.After(page.Notifications[i-1].CreatedAt))
		}
	})

	t.Run("unread filter narrows total but not unread count", func(t *testing.T) {
		page, err := svc.GetNotifications(context.Background(), user, ListOptions{UnreadOnly: true, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, page.Notifications, 2)
		for _, n := range page.Notifications {
			assert.False(t, n.IsRead)
		}
		assert.EqualValues(t, 3, page.Total, "total reflects the filter, not the page size")
		assert.EqualValues(t, 3, page.UnreadCount)
	})

	t.Run("limit is clamped", func(t *testing.T) {
		_, err := svc.GetNotifications(context.Background(), user, ListOptions{Limit: 10000})
		require.NoError(t, err)
		assert.EqualValues(t, 200, store.lastListLimit)

		_, err = svc.GetNotifications(context.Background(), user, ListOptions{Limit: 0, Skip: -5})
		require.NoError(t, err)
		assert.EqualValues(t, 50, store.lastListLimit)
		assert.EqualValues(t, 0, store.lastListSkip)
	})
}

func TestHasRecentNotification(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakePublisher{})

	user := primitive.NewObjectID()
	todo := primitive.NewObjectID()
	otherTodo := primitive.NewObjectID()

	record := models.Notification{
		ID:         primitive.NewObjectID(),
		UserID:     user,
		Type:       models.NotificationTodoOverdue,
		SubjectKey: todo.Hex(),
		CreatedAt:  time.Now().Add(-30 * time.Minute),
	}
	store.records[record.ID] = record

	recent, err := svc.HasRecentNotification(context.Background(), user, models.NotificationTodoOverdue, todo, time.Hour)
	require.NoError(t, err)
	assert.True(t, recent)

	recent, err = svc.HasRecentNotification(context.Background(), user, models.NotificationTodoOverdue, todo, 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, recent, "outside the window")

	recent, err = svc.HasRecentNotification(context.Background(), user, models.NotificationTodoOverdue, otherTodo, time.Hour)
	require.NoError(t, err)
	assert.False(t, recent, "different subject")

	recent, err = svc.HasRecentNotification(context.Background(), user, models.NotificationTodoDueSoon, todo, time.Hour)
	require.NoError(t, err)
	assert.False(t, recent, "different type")
}

func TestCreateBulkNotifications(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	push := &fakePush{}
	svc := NewNotificationService(store, pub, &fakePlans{}, nil, push)

	users := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}
	inputs := []NotificationInput{
		{UserID: users[0], Type: models.NotificationAdminMessage, Title: "maintenance"},
		{UserID: users[1], Type: models.NotificationAdminMessage, Title: "maintenance"},
		{UserID: users[2], Type: models.NotificationAdminMessage, Title: "maintenance"},
		{Type: models.NotificationAdminMessage, Title: "missing recipient"},
	}

	created, err := svc.CreateBulkNotifications(context.Background(), inputs)
	require.NoError(t, err)
	assert.Len(t, created, 3, "invalid inputs are skipped, not fatal")
	assert.Len(t, store.live(), 3)

	var createdEvents int
	for _, e := range pub.recorded() {
		if e.event == EventNotificationCreated {
			createdEvents++
		}
	}
	assert.Equal(t, 3, createdEvents, "one created event per inserted record")

	// admin_message is critical, each record pushes
	assert.Eventually(t, func() bool { return push.count() == 3 }, time.Second, 10*time.Millisecond)
}

func TestCreateBulkNotificationsSkipsUniquenessCollisions(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	user := primitive.NewObjectID()
	todo := primitive.NewObjectID()

	// An existing live alert holds the uniqueness slot
	_, err := svc.CreateNotification(context.Background(), NotificationInput{
		UserID: user, Type: models.NotificationTodoDueSoon, Title: "live",
		RelatedTodoID: &todo,
	})
	require.NoError(t, err)
	eventsBefore := len(pub.recorded())

	created, err := svc.CreateBulkNotifications(context.Background(), []NotificationInput{
		{UserID: user, Type: models.NotificationTodoDueSoon, Title: "colliding", RelatedTodoID: &todo},
		{UserID: user, Type: models.NotificationAdminMessage, Title: "fine"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "fine", created[0].Title)
	assert.Len(t, store.live(), 2)
	assert.Len(t, pub.recorded(), eventsBefore+1, "skipped records publish nothing")
}

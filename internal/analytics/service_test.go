package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"blog-platform/internal/database"
	"blog-platform/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvents struct {
	saved   []*models.ViewEvent
	saveErr error
}

func (f *fakeEvents) SaveEvent(_ context.Context, event *models.ViewEvent) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *event
	f.saved = append(f.saved, &copied)
	return nil
}

func (f *fakeEvents) CountEventsByAction(_ context.Context, postID string, action models.EventAction) (int, error) {
	count := 0
	for _, event := range f.saved {
		if event.PostID == postID && event.Action == action {
			count++
		}
	}
	return count, nil
}

func (f *fakeEvents) ListEventsByPost(_ context.Context, postID string) ([]*models.ViewEvent, error) {
	var out []*models.ViewEvent
	for _, event := range f.saved {
		if event.PostID == postID {
			out = append(out, event)
		}
	}
	return out, nil
}

type fakePosts struct {
	posts map[string]*models.Post
}

func (f *fakePosts) CreatePost(_ context.Context, req *models.CreatePostRequest) (*models.Post, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	if post, ok := f.posts[id]; ok {
		return post, nil
	}
	return nil, database.ErrNotFound
}

func (f *fakePosts) ListPosts(_ context.Context, _ models.PostListOptions) ([]*models.Post, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePosts) UpdatePost(_ context.Context, _ string, _ *models.UpdatePostRequest) (*models.Post, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePosts) DeletePost(_ context.Context, _ string) (bool, error) {
	return false, errors.New("not implemented")
}

func newTestService() (*Service, *fakeEvents, string) {
	postID := uuid.NewString()
	events := &fakeEvents{}
	posts := &fakePosts{posts: map[string]*models.Post{
		postID: {ID: postID, Title: "hello world"},
	}}
	return NewService(events, posts), events, postID
}

func TestTrackGeneratesSessionWhenMissing(t *testing.T) {
	svc, events, postID := newTestService()

	session, err := svc.Track(context.Background(), &models.TrackEventRequest{
		PostID: postID,
		Action: string(models.ActionStartView),
	})
	require.NoError(t, err)
	_, err = uuid.Parse(session)
	assert.NoError(t, err, "generated session id is a uuid")

	require.Len(t, events.saved, 1)
	assert.Equal(t, session, events.saved[0].Session)
	assert.False(t, events.saved[0].Date.IsZero(), "missing date defaults to now")
}

func TestTrackReusesSuppliedSession(t *testing.T) {
	svc, events, postID := newTestService()
	when := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	session, err := svc.Track(context.Background(), &models.TrackEventRequest{
		PostID:  postID,
		Action:  string(models.ActionEndView),
		Session: "client-chosen",
		Date:    when,
	})
	require.NoError(t, err)
	assert.Equal(t, "client-chosen", session)

	require.Len(t, events.saved, 1)
	assert.Equal(t, models.ActionEndView, events.saved[0].Action)
	assert.Equal(t, when, events.saved[0].Date)
}

func TestTrackRejectsUnknownAction(t *testing.T) {
	svc, events, postID := newTestService()

	_, err := svc.Track(context.Background(), &models.TrackEventRequest{
		PostID: postID,
		Action: "hoverView",
	})
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Empty(t, events.saved)
}

func TestTrackRejectsUnknownPost(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Track(context.Background(), &models.TrackEventRequest{
		PostID: uuid.NewString(),
		Action: string(models.ActionStartView),
	})
	assert.ErrorIs(t, err, ErrPostNotFound)

	// a malformed id is indistinguishable from a missing post
	_, err = svc.Track(context.Background(), &models.TrackEventRequest{
		PostID: "not-a-uuid",
		Action: string(models.ActionStartView),
	})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestTotalViewsCountsStartsOnly(t *testing.T) {
	svc, _, postID := newTestService()
	ctx := context.Background()

	session, err := svc.Track(ctx, &models.TrackEventRequest{PostID: postID, Action: string(models.ActionStartView)})
	require.NoError(t, err)
	_, err = svc.Track(ctx, &models.TrackEventRequest{PostID: postID, Action: string(models.ActionEndView), Session: session})
	require.NoError(t, err)
	_, err = svc.Track(ctx, &models.TrackEventRequest{PostID: postID, Action: string(models.ActionStartView)})
	require.NoError(t, err)

	views, err := svc.TotalViews(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, 2, views)
}

func TestStatsRoundTrip(t *testing.T) {
	svc, _, postID := newTestService()
	ctx := context.Background()
	begin := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	session, err := svc.Track(ctx, &models.TrackEventRequest{
		PostID: postID,
		Action: string(models.ActionStartView),
		Date:   begin,
	})
	require.NoError(t, err)
	_, err = svc.Track(ctx, &models.TrackEventRequest{
		PostID:  postID,
		Action:  string(models.ActionEndView),
		Session: session,
		Date:    begin.Add(2 * time.Minute),
	})
	require.NoError(t, err)

	views, err := svc.DailyViews(ctx, postID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 1, views[0].Views)

	durations, err := svc.DailyDurations(ctx, postID)
	require.NoError(t, err)
	require.Len(t, durations, 1)
	assert.Equal(t, int64(120000), durations[0].TotalDurationMs)
	assert.InDelta(t, 120000, durations[0].AverageDurationMs, 0.001)
	assert.Equal(t, 1, durations[0].SessionCount)
}

func TestStatsForPostWithoutEvents(t *testing.T) {
	svc, _, postID := newTestService()
	ctx := context.Background()

	views, err := svc.TotalViews(ctx, postID)
	require.NoError(t, err)
	assert.Zero(t, views)

	daily, err := svc.DailyViews(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, daily)

	durations, err := svc.DailyDurations(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, durations)
}

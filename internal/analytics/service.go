package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog-platform/internal/database"
	"blog-platform/internal/models"

	"github.com/google/uuid"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrInvalidAction = errors.New("invalid action")
)

// Service is the session aggregator: it records raw view events and
// reconstructs viewing statistics from them on demand. A post with no
// events yields empty results, never an error.
type Service struct {
	events database.EventRepository
	posts  database.PostRepository
}

func NewService(events database.EventRepository, posts database.PostRepository) *Service {
	return &Service{
		events: events,
		posts:  posts,
	}
}

// Track records one view event. When the caller supplies no session id a
// fresh one is generated and returned so the matching endView can reuse it.
func (s *Service) Track(ctx context.Context, req *models.TrackEventRequest) (string, error) {
	action := models.EventAction(req.Action)
	if action != models.ActionStartView && action != models.ActionEndView {
		return "", ErrInvalidAction
	}

	if err := s.resolvePost(ctx, req.PostID); err != nil {
		return "", err
	}

	session := req.Session
	if session == "" {
		session = uuid.NewString()
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	event := &models.ViewEvent{
		PostID:  req.PostID,
		Session: session,
		Action:  action,
		Date:    date,
	}
	if err := s.events.SaveEvent(ctx, event); err != nil {
		return "", fmt.Errorf("failed to save event: %w", err)
	}

	return session, nil
}

// TotalViews counts every startView for the post, complete or not.
func (s *Service) TotalViews(ctx context.Context, postID string) (int, error) {
	if err := s.resolvePost(ctx, postID); err != nil {
		return 0, err
	}
	return s.events.CountEventsByAction(ctx, postID, models.ActionStartView)
}

func (s *Service) DailyViews(ctx context.Context, postID string) ([]models.DailyViews, error) {
	if err := s.resolvePost(ctx, postID); err != nil {
		return nil, err
	}

	events, err := s.events.ListEventsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return dailyViews(events), nil
}

func (s *Service) DailyDurations(ctx context.Context, postID string) ([]models.DailyDuration, error) {
	if err := s.resolvePost(ctx, postID); err != nil {
		return nil, err
	}

	events, err := s.events.ListEventsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return dailyDurations(events), nil
}

func (s *Service) resolvePost(ctx context.Context, postID string) error {
	if _, err := uuid.Parse(postID); err != nil {
		return ErrPostNotFound
	}

	_, err := s.posts.GetPostByID(ctx, postID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}

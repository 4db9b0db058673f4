package database

import (
	"context"
	"errors"

	"blog-platform/internal/models"
)

// ErrNotFound is returned by lookups that miss. Callers decide whether a
// miss is an error or an empty result.
var ErrNotFound = errors.New("not found")

type UserRepository interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type PostRepository interface {
	CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error)
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, opts models.PostListOptions) ([]*models.Post, error)
	UpdatePost(ctx context.Context, id string, req *models.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, id string) (bool, error)
}

type EventRepository interface {
	SaveEvent(ctx context.Context, event *models.ViewEvent) error
	CountEventsByAction(ctx context.Context, postID string, action models.EventAction) (int, error)
	ListEventsByPost(ctx context.Context, postID string) ([]*models.ViewEvent, error)
}

type Database interface {
	UserRepository
	PostRepository
	EventRepository
	Close() error
}

// MessageStore holds chat messages for a bounded retention window. Expiry
// happens store-side: a message read a moment ago may already be gone.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.ChatMessage) error
	RecentMessages(ctx context.Context, room string, limit int) ([]*models.ChatMessage, error)
	Close() error
}

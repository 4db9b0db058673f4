package services

import (
	"context"
	"fmt"

	"blog-platform/internal/database"
	"blog-platform/internal/models"

	"github.com/google/uuid"
)

type PostService struct {
	db database.PostRepository
}

func NewPostService(db database.PostRepository) *PostService {
	return &PostService{db: db}
}

func (s *PostService) CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("post title is required")
	}

	return s.db.CreatePost(ctx, req)
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, database.ErrNotFound
	}

	return s.db.GetPostByID(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context, opts models.PostListOptions) ([]*models.Post, error) {
	return s.db.ListPosts(ctx, opts)
}

func (s *PostService) UpdatePost(ctx context.Context, id string, req *models.UpdatePostRequest) (*models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, database.ErrNotFound
	}

	return s.db.UpdatePost(ctx, id, req)
}

func (s *PostService) DeletePost(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	return s.db.DeletePost(ctx, id)
}

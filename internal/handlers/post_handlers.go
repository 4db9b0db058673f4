package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"blog-platform/internal/auth"
	"blog-platform/internal/database"
	"blog-platform/internal/models"
	"blog-platform/internal/services"
	"blog-platform/pkg/logger"
)

type PostHandlers struct {
	postService *services.PostService
	authService *auth.Service
}

func NewPostHandlers(postService *services.PostService, authService *auth.Service) *PostHandlers {
	return &PostHandlers{
		postService: postService,
		authService: authService,
	}
}

func (h *PostHandlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := models.PostListOptions{
		Author:    strings.TrimSpace(query.Get("author")),
		Tag:       strings.TrimSpace(query.Get("tag")),
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
	}

	if opts.Author != "" && opts.Tag != "" {
		http.Error(w, "query by either author or tag, not both", http.StatusBadRequest)
		return
	}

	posts, err := h.postService.ListPosts(r.Context(), opts)
	if err != nil {
		logger.Error("List posts error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(posts)
}

func (h *PostHandlers) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, 3)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	post, err := h.postService.GetPost(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("Get post error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

func (h *PostHandlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireUser(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)

	post, err := h.postService.CreatePost(r.Context(), &req)
	if err != nil {
		logger.Error("Create post error: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(post)
}

func (h *PostHandlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireUser(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r, 3)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	var req models.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	post, err := h.postService.UpdatePost(r.Context(), id, &req)
	if errors.Is(err, database.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error("Update post error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

func (h *PostHandlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	if _, err := h.requireUser(r); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r, 3)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	deleted, err := h.postService.DeletePost(r.Context(), id)
	if err != nil {
		logger.Error("Delete post error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PostHandlers) requireUser(r *http.Request) (*auth.Claims, error) {
	header := r.Header.Get("Authorization")
	token := ""
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 {
		token = parts[1]
	}
	return h.authService.ValidateToken(token)
}

// pathID extracts the path segment at index from /api/v1/<resource>/<id>.
func pathID(r *http.Request, index int) (string, error) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) <= index || parts[index] == "" {
		return "", errors.New("invalid path")
	}
	return parts[index], nil
}

package database

import (
	"context"
	"errors"
	"fmt"

	"blog-platform/internal/models"
	"blog-platform/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// User Repository Implementation
func (db *PostgresDB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, username, created_at, updated_at`

	user := &models.User{PasswordHash: passwordHash}
	err := db.pool.QueryRow(ctx, query, username, passwordHash).Scan(
		&user.ID, &user.Username, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (db *PostgresDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at, updated_at FROM users WHERE username = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (db *PostgresDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, username, created_at, updated_at FROM users WHERE id = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Username, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Post Repository Implementation
func (db *PostgresDB) CreatePost(ctx context.Context, req *models.CreatePostRequest) (*models.Post, error) {
	query := `
		INSERT INTO posts (title, author, contents, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, title, author, contents, tags, created_at, updated_at`

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	post := &models.Post{}
	err := db.pool.QueryRow(ctx, query, req.Title, req.Author, req.Contents, tags).Scan(
		&post.ID, &post.Title, &post.Author, &post.Contents, &post.Tags, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

func (db *PostgresDB) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT id, title, author, contents, tags, created_at, updated_at FROM posts WHERE id = $1`

	post := &models.Post{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Author, &post.Contents, &post.Tags, &post.CreatedAt, &post.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

var postSortColumns = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"updated_at": "updated_at",
	"updatedAt":  "updated_at",
}

func (db *PostgresDB) ListPosts(ctx context.Context, opts models.PostListOptions) ([]*models.Post, error) {
	column, ok := postSortColumns[opts.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if opts.SortOrder == "asc" || opts.SortOrder == "ascending" {
		direction = "ASC"
	}

	query := `SELECT id, title, author, contents, tags, created_at, updated_at FROM posts`
	args := []interface{}{}
	switch {
	case opts.Author != "":
		query += ` WHERE author = $1`
		args = append(args, opts.Author)
	case opts.Tag != "":
		query += ` WHERE $1 = ANY(tags)`
		args = append(args, opts.Tag)
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, column, direction)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post := &models.Post{}
		if err := rows.Scan(&post.ID, &post.Title, &post.Author, &post.Contents, &post.Tags, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

func (db *PostgresDB) UpdatePost(ctx context.Context, id string, req *models.UpdatePostRequest) (*models.Post, error) {
	query := `
		UPDATE posts SET
			title = COALESCE(NULLIF($2, ''), title),
			contents = COALESCE(NULLIF($3, ''), contents),
			tags = COALESCE($4, tags),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, author, contents, tags, created_at, updated_at`

	post := &models.Post{}
	err := db.pool.QueryRow(ctx, query, id, req.Title, req.Contents, req.Tags).Scan(
		&post.ID, &post.Title, &post.Author, &post.Contents, &post.Tags, &post.CreatedAt, &post.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (db *PostgresDB) DeletePost(ctx context.Context, id string) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Event Repository Implementation
func (db *PostgresDB) SaveEvent(ctx context.Context, event *models.ViewEvent) error {
	query := `INSERT INTO view_events (post_id, session, action, date) VALUES ($1, $2, $3, $4)`
	_, err := db.pool.Exec(ctx, query, event.PostID, event.Session, string(event.Action), event.Date)
	return err
}

func (db *PostgresDB) CountEventsByAction(ctx context.Context, postID string, action models.EventAction) (int, error) {
	query := `SELECT COUNT(*) FROM view_events WHERE post_id = $1 AND action = $2`

	var count int
	err := db.pool.QueryRow(ctx, query, postID, string(action)).Scan(&count)
	return count, err
}

func (db *PostgresDB) ListEventsByPost(ctx context.Context, postID string) ([]*models.ViewEvent, error) {
	query := `SELECT post_id, session, action, date FROM view_events WHERE post_id = $1 ORDER BY date`

	rows, err := db.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.ViewEvent
	for rows.Next() {
		event := &models.ViewEvent{}
		var action string
		if err := rows.Scan(&event.PostID, &event.Session, &action, &event.Date); err != nil {
			return nil, err
		}
		event.Action = models.EventAction(action)
		events = append(events, event)
	}

	return events, rows.Err()
}

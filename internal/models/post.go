package models

import "time"

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	Contents  string    `json:"contents,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Title    string   `json:"title"`
	Author   string   `json:"author,omitempty"`
	Contents string   `json:"contents,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type UpdatePostRequest struct {
	Title    string   `json:"title,omitempty"`
	Contents string   `json:"contents,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// PostListOptions narrows and orders post listings. SortBy is either
// "created_at" or "updated_at"; SortOrder "ascending" or "descending".
type PostListOptions struct {
	Author    string
	Tag       string
	SortBy    string
	SortOrder string
}

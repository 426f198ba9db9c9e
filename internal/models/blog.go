package models

import (
	"strings"
	"time"
)

type Blog struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	Tag        string    `json:"tag"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Comment belongs to a blog. ParentID allows threaded replies; no route
// sets it yet but the field is part of the stored document.
type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	BlogID     string    `json:"blog_id"`
	ParentID   string    `json:"parent_id,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

type BlogRequest struct {
	Subject string
	Content string
	Tag     string
}

func (r *BlogRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Subject) == "" {
		errors["subject"] = "Subject is required"
	}
	if strings.TrimSpace(r.Content) == "" {
		errors["content"] = "Content is required"
	}
	if strings.TrimSpace(r.Tag) == "" {
		errors["tag"] = "Tag is required"
	}

	return errors
}

type CommentRequest struct {
	Content  string
	ParentID string
}

func (r *CommentRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Content) == "" {
		errors["content"] = "Content is required"
	}

	return errors
}

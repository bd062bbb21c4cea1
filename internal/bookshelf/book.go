// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package bookshelf is a small book catalogue served through the rest package.
package bookshelf

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/z5labs/schemaroute/rest"
)

// Book is a catalogued book.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Pages     int       `json:"pages,omitempty"`
	Cover     string    `json:"cover,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Draft holds the client supplied fields of a [Book].
type Draft struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Pages  int    `json:"pages,omitempty"`
}

// ErrNotFound is returned by stores for an unknown book id.
var ErrNotFound = errors.New("bookshelf: book not found")

// Store persists books.
type Store interface {
	List(ctx context.Context, offset, limit int) ([]Book, error)
	Search(ctx context.Context, q string, limit int) ([]Book, error)
	Get(ctx context.Context, id string) (Book, error)
	Create(ctx context.Context, b Book) error
	Update(ctx context.Context, b Book) error
	SetCover(ctx context.Context, id, key string) error
	Delete(ctx context.Context, id string) error
}

// CoverStore keeps cover images and returns the key they are stored under.
type CoverStore interface {
	PutCover(ctx context.Context, id, contentType string, image []byte) (string, error)
}

// Publisher announces catalogue changes.
type Publisher interface {
	BookCreated(ctx context.Context, b Book) error
}

// NotFoundError is the client facing form of [ErrNotFound].
type NotFoundError struct {
	rest.ProblemDetail

	ID string `json:"id"`
}

func notFound(id string) NotFoundError {
	return NotFoundError{
		ProblemDetail: rest.ProblemDetail{
			Type:   "about:blank",
			Title:  "Not Found",
			Status: http.StatusNotFound,
			Detail: "No book exists with id " + id + ".",
		},
		ID: id,
	}
}

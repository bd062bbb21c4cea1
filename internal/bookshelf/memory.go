// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bookshelf

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps books in process.
type MemoryStore struct {
	mu    sync.RWMutex
	books map[string]Book
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[string]Book)}
}

func (s *MemoryStore) sorted() []Book {
	books := make([]Book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, b)
	}
	slices.SortFunc(books, func(a, b Book) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return books
}

func (s *MemoryStore) List(ctx context.Context, offset, limit int) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := s.sorted()
	if offset >= len(books) {
		return []Book{}, nil
	}
	books = books[offset:]
	if limit < len(books) {
		books = books[:limit]
	}
	return books, nil
}

func (s *MemoryStore) Search(ctx context.Context, q string, limit int) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q = strings.ToLower(q)
	found := []Book{}
	for _, b := range s.sorted() {
		if len(found) == limit {
			break
		}
		if strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
			found = append(found, b)
		}
	}
	return found, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) Create(ctx context.Context, b Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books[b.ID] = b
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, b Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[b.ID]; !ok {
		return ErrNotFound
	}
	s.books[b.ID] = b
	return nil
}

func (s *MemoryStore) SetCover(ctx context.Context, id, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[id]
	if !ok {
		return ErrNotFound
	}
	b.Cover = key
	s.books[id] = b
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return ErrNotFound
	}
	delete(s.books, id)
	return nil
}

// MemoryCovers keeps cover images in process.
type MemoryCovers struct {
	mu     sync.Mutex
	images map[string][]byte
}

// NewMemoryCovers returns an empty MemoryCovers.
func NewMemoryCovers() *MemoryCovers {
	return &MemoryCovers{images: make(map[string][]byte)}
}

func (c *MemoryCovers) PutCover(ctx context.Context, id, contentType string, image []byte) (string, error) {
	key := coverKey(id, contentType)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[key] = slices.Clone(image)
	return key, nil
}

// Image returns the image stored under key.
func (c *MemoryCovers) Image(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.images[key]
	return img, ok
}

func coverKey(id, contentType string) string {
	switch contentType {
	case "image/png":
		return "covers/" + id + ".png"
	case "image/jpeg":
		return "covers/" + id + ".jpg"
	default:
		return "covers/" + id
	}
}

type nopPublisher struct{}

func (nopPublisher) BookCreated(context.Context, Book) error { return nil }

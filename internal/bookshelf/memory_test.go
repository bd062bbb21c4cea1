// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bookshelf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Run("will return ErrNotFound", func(t *testing.T) {
		s := NewMemoryStore()

		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.Update(ctx, Book{ID: "missing"}), ErrNotFound)
		assert.ErrorIs(t, s.SetCover(ctx, "missing", "covers/missing.png"), ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)
	})

	t.Run("will return an empty page", func(t *testing.T) {
		t.Run("if the offset is past the end", func(t *testing.T) {
			s := NewMemoryStore()
			require.NoError(t, s.Create(ctx, Book{ID: "a", CreatedAt: at}))

			books, err := s.List(ctx, 5, 10)
			require.NoError(t, err)
			assert.Empty(t, books)
			assert.NotNil(t, books)
		})
	})

	t.Run("will order books by creation time", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Create(ctx, Book{ID: "late", CreatedAt: at.Add(time.Hour)}))
		require.NoError(t, s.Create(ctx, Book{ID: "early", CreatedAt: at}))

		books, err := s.List(ctx, 0, 10)
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "early", books[0].ID)
	})

	t.Run("will search case insensitively", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Create(ctx, Book{ID: "a", Title: "The Hobbit", Author: "J.R.R. Tolkien", CreatedAt: at}))

		books, err := s.Search(ctx, "HOBBIT", 5)
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})
}

func TestCoverKey(t *testing.T) {
	testCases := []struct {
		ContentType string
		Key         string
	}{
		{ContentType: "image/png", Key: "covers/b1.png"},
		{ContentType: "image/jpeg", Key: "covers/b1.jpg"},
		{ContentType: "application/octet-stream", Key: "covers/b1"},
	}

	for _, testCase := range testCases {
		t.Run("will name "+testCase.ContentType+" covers", func(t *testing.T) {
			assert.Equal(t, testCase.Key, coverKey("b1", testCase.ContentType))
		})
	}
}

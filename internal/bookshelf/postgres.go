// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bookshelf

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS books (
	id         UUID PRIMARY KEY,
	title      TEXT NOT NULL,
	author     TEXT NOT NULL,
	pages      INTEGER NOT NULL DEFAULT 0,
	cover      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
)`

const bookColumns = `id::text, title, author, pages, cover, created_at`

// PostgresStore keeps books in a Postgres table named books.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database at url and creates the books table
// if it does not exist.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	_, err = pool.Exec(ctx, schemaSQL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create books table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Ping checks the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func collect(rows pgx.Rows) ([]Book, error) {
	books, err := pgx.CollectRows(rows, scanBook)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

func scanBook(row pgx.CollectableRow) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Pages, &b.Cover, &b.CreatedAt)
	return b, err
}

func (s *PostgresStore) List(ctx context.Context, offset, limit int) ([]Book, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY created_at, id OFFSET $1 LIMIT $2`,
		offset,
		limit,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *PostgresStore) Search(ctx context.Context, q string, limit int) ([]Book, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT `+bookColumns+` FROM books
		 WHERE title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%'
		 ORDER BY created_at, id LIMIT $2`,
		q,
		limit,
	)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Book, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	if err != nil {
		return Book{}, err
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBook)
	if errors.Is(err, pgx.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	return b, err
}

func (s *PostgresStore) Create(ctx context.Context, b Book) error {
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO books (id, title, author, pages, cover, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.Title, b.Author, b.Pages, b.Cover, b.CreatedAt,
	)
	return err
}

func (s *PostgresStore) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, b Book) error {
	return s.exec(
		ctx,
		`UPDATE books SET title = $2, author = $3, pages = $4 WHERE id = $1`,
		b.ID, b.Title, b.Author, b.Pages,
	)
}

func (s *PostgresStore) SetCover(ctx context.Context, id, key string) error {
	return s.exec(ctx, `UPDATE books SET cover = $2 WHERE id = $1`, id, key)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.exec(ctx, `DELETE FROM books WHERE id = $1`, id)
}

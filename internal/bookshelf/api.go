// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package bookshelf

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/z5labs/schemaroute"
	"github.com/z5labs/schemaroute/rest"
	"github.com/z5labs/schemaroute/schema"

	"github.com/google/uuid"
	"github.com/swaggest/jsonschema-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// Service implements the catalogue operations.
type Service struct {
	store  Store
	covers CoverStore
	events Publisher
	log    *slog.Logger
	now    func() time.Time
}

// Option configures a [Service].
type Option func(*Service)

// Covers sets where cover images are stored. Defaults to memory.
func Covers(c CoverStore) Option {
	return func(s *Service) {
		s.covers = c
	}
}

// Events sets the publisher notified of new books. Defaults to none.
func Events(p Publisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// NewService returns a Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		covers: NewMemoryCovers(),
		events: nopPublisher{},
		log:    schemaroute.Logger("bookshelf"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	bookSchema = schema.Object(
		map[string]*jsonschema.Schema{
			"id":        schema.String(schema.Format("uuid")),
			"title":     schema.String(),
			"author":    schema.String(),
			"pages":     schema.Integer(),
			"cover":     schema.String(schema.Description("Object key of the cover image.")),
			"createdAt": schema.String(schema.Format("date-time")),
		},
		schema.Required("id", "title", "author", "createdAt"),
	)

	draftSchema = schema.Object(
		map[string]*jsonschema.Schema{
			"title":  schema.String(schema.MinLength(1), schema.MaxLength(256)),
			"author": schema.String(schema.MinLength(1), schema.MaxLength(256)),
			"pages":  schema.Integer(schema.Minimum(1)),
		},
		schema.Required("title", "author"),
		schema.Closed(),
	)

	idParam = rest.Parameter{
		Name:     "id",
		In:       openapi3.ParameterInPath,
		Required: true,
		Schema:   schema.String(schema.Format("uuid")),
	}
)

func jsonContent(s *jsonschema.Schema) map[string]rest.MediaType {
	return map[string]rest.MediaType{"application/json": {Schema: s}}
}

func problem(desc string) rest.Response {
	return rest.Response{
		Description: desc,
		Content:     map[string]rest.MediaType{"application/problem+json": {}},
	}
}

// Router returns the catalogue routes. Mount it under a prefix of a
// [rest.Api].
func (s *Service) Router() *rest.Router {
	r := rest.NewRouter(rest.OnError(rest.NewProblemDetailsErrorHandler()))

	r.Get("/books", rest.Operation{
		OperationID: "listBooks",
		Summary:     "List books",
		Tags:        []string{"books"},
		Parameters: []rest.Parameter{
			{Name: "offset", In: openapi3.ParameterInQuery, Schema: schema.Integer(schema.Minimum(0), schema.Default(0))},
			{Name: "limit", In: openapi3.ParameterInQuery, Schema: schema.Integer(schema.Minimum(1), schema.Maximum(100), schema.Default(20))},
		},
		Responses: map[string]rest.Response{
			"200": {Description: "A page of books.", Content: jsonContent(schema.Array(bookSchema))},
			"400": problem("Invalid paging parameters."),
		},
	}, rest.ProduceJSON(rest.ProducerFunc[[]Book](s.listBooks)))

	r.Post("/books", rest.Operation{
		OperationID: "createBook",
		Summary:     "Add a book",
		Tags:        []string{"books"},
		RequestBody: &rest.RequestBody{Required: true, Content: jsonContent(draftSchema)},
		Responses: map[string]rest.Response{
			"201": {Description: "The created book.", Content: jsonContent(bookSchema)},
			"400": problem("Invalid book."),
			"415": problem("Unsupported content type."),
		},
	}, rest.HandleJSON(rest.BodyHandlerFunc[Draft, Book](s.createBook), rest.Status(http.StatusCreated)))

	r.Get("/books/search", rest.Operation{
		OperationID: "searchBooks",
		Summary:     "Search books by title or author",
		Tags:        []string{"books"},
		Parameters: []rest.Parameter{
			{Name: "q", In: openapi3.ParameterInQuery, Required: true, Schema: schema.String(schema.MinLength(1))},
			{Name: "limit", In: openapi3.ParameterInQuery, Schema: schema.Integer(schema.Minimum(1), schema.Maximum(50), schema.Default(10))},
		},
		Responses: map[string]rest.Response{
			"200": {Description: "Matching books.", Content: jsonContent(schema.Array(bookSchema))},
			"400": problem("Invalid search."),
		},
	}, rest.ProduceJSON(rest.ProducerFunc[[]Book](s.searchBooks)))

	r.Get("/books/:id", rest.Operation{
		OperationID: "getBook",
		Summary:     "Get a book",
		Tags:        []string{"books"},
		Parameters:  []rest.Parameter{idParam},
		Responses: map[string]rest.Response{
			"200": {Description: "The book.", Content: jsonContent(bookSchema)},
			"404": problem("Unknown book."),
		},
	}, rest.ProduceJSON(rest.ProducerFunc[Book](s.getBook)))

	r.Put("/books/:id", rest.Operation{
		OperationID: "updateBook",
		Summary:     "Replace a book",
		Tags:        []string{"books"},
		Parameters:  []rest.Parameter{idParam},
		RequestBody: &rest.RequestBody{Required: true, Content: jsonContent(draftSchema)},
		Responses: map[string]rest.Response{
			"200": {Description: "The updated book.", Content: jsonContent(bookSchema)},
			"404": problem("Unknown book."),
		},
	}, rest.HandleJSON(rest.BodyHandlerFunc[Draft, Book](s.updateBook)))

	r.Delete("/books/:id", rest.Operation{
		OperationID: "deleteBook",
		Summary:     "Remove a book",
		Tags:        []string{"books"},
		Parameters:  []rest.Parameter{idParam},
		Responses: map[string]rest.Response{
			"204": {Description: "The book was removed."},
			"404": problem("Unknown book."),
		},
	}, rest.HandlerFunc(s.deleteBook))

	r.Put("/books/:id/cover", rest.Operation{
		OperationID: "putCover",
		Summary:     "Upload a cover image",
		Tags:        []string{"covers"},
		Parameters:  []rest.Parameter{idParam},
		RequestBody: &rest.RequestBody{
			Required: true,
			Content: map[string]rest.MediaType{
				"image/png":  {Schema: schema.Binary(schema.MinLength(1))},
				"image/jpeg": {Schema: schema.Binary(schema.MinLength(1))},
			},
		},
		Responses: map[string]rest.Response{
			"200": {Description: "The book with its cover.", Content: jsonContent(bookSchema)},
			"404": problem("Unknown book."),
			"415": problem("Unsupported image type."),
		},
	}, rest.ProduceJSON(rest.ProducerFunc[Book](s.putCover)))

	return r
}

type pageQuery struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

func (s *Service) listBooks(ctx context.Context) (*[]Book, error) {
	q, err := rest.DecodeQuery[pageQuery](ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.store.List(ctx, q.Offset, q.Limit)
	if err != nil {
		return nil, err
	}
	return &books, nil
}

type searchQuery struct {
	Q     string `json:"q"`
	Limit int    `json:"limit"`
}

func (s *Service) searchBooks(ctx context.Context) (*[]Book, error) {
	q, err := rest.DecodeQuery[searchQuery](ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.store.Search(ctx, q.Q, q.Limit)
	if err != nil {
		return nil, err
	}
	return &books, nil
}

func (s *Service) createBook(ctx context.Context, d *Draft) (*Book, error) {
	b := Book{
		ID:        uuid.NewString(),
		Title:     d.Title,
		Author:    d.Author,
		Pages:     d.Pages,
		CreatedAt: s.now().UTC(),
	}
	err := s.store.Create(ctx, b)
	if err != nil {
		return nil, err
	}

	// The book is stored, so a failed announcement is not a failed request.
	err = s.events.BookCreated(ctx, b)
	if err != nil {
		s.log.WarnContext(ctx, "failed to publish book created event", slog.String("id", b.ID), slog.Any("error", err))
	}
	return &b, nil
}

type idPath struct {
	ID string `json:"id"`
}

func bookID(ctx context.Context) (string, error) {
	p, err := rest.DecodePath[idPath](ctx)
	return p.ID, err
}

func (s *Service) getBook(ctx context.Context) (*Book, error) {
	id, err := bookID(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, mapErr(id, err)
	}
	return &b, nil
}

func (s *Service) updateBook(ctx context.Context, d *Draft) (*Book, error) {
	id, err := bookID(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, mapErr(id, err)
	}
	b.Title, b.Author, b.Pages = d.Title, d.Author, d.Pages

	err = s.store.Update(ctx, b)
	if err != nil {
		return nil, mapErr(id, err)
	}
	return &b, nil
}

func (s *Service) deleteBook(w http.ResponseWriter, r *http.Request) error {
	id, err := bookID(r.Context())
	if err != nil {
		return err
	}

	err = s.store.Delete(r.Context(), id)
	if err != nil {
		return mapErr(id, err)
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Service) putCover(ctx context.Context) (*Book, error) {
	id, err := bookID(ctx)
	if err != nil {
		return nil, err
	}

	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, mapErr(id, err)
	}

	in, _ := rest.InputFrom(ctx)
	key, err := s.covers.PutCover(ctx, id, in.MediaType, in.RawBody)
	if err != nil {
		return nil, err
	}

	err = s.store.SetCover(ctx, id, key)
	if err != nil {
		return nil, mapErr(id, err)
	}
	b.Cover = key
	return &b, nil
}

func mapErr(id string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return notFound(id)
	}
	return err
}

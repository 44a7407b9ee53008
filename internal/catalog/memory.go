package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests and local runs. It applies the
// same referential rules as the PostgreSQL store: books require an existing
// author, and deleting an author removes the author's books.
type Memory struct {
	mu           sync.Mutex
	nextAuthorID int64
	nextBookID   int64
	authors      map[int64]Author
	books        map[int64]Book
	now          func() time.Time
}

var _ Store = (*Memory)(nil)

// MemoryOption customizes a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory returns an empty in-memory catalog.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		nextAuthorID: 1,
		nextBookID:   1,
		authors:      make(map[int64]Author),
		books:        make(map[int64]Book),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) FindAuthor(_ context.Context, id int64) (Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.authors[id]
	if !ok {
		return Author{}, ErrNotFound
	}
	return a, nil
}

func (m *Memory) ListAuthors(_ context.Context) ([]Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Author, 0, len(m.authors))
	for _, a := range m.authors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *Memory) InsertAuthor(_ context.Context, ownerID int64, fields AuthorFields) (Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	a := Author{
		ID:        m.nextAuthorID,
		UserID:    ownerID,
		Firstname: fields.Firstname,
		Lastname:  fields.Lastname,
		Bio:       fields.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.nextAuthorID++
	m.authors[a.ID] = a
	return a, nil
}

func (m *Memory) UpdateAuthor(_ context.Context, id int64, fields AuthorFields) (Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.authors[id]
	if !ok {
		return Author{}, ErrNotFound
	}
	a.Firstname = fields.Firstname
	a.Lastname = fields.Lastname
	a.Bio = fields.Bio
	a.UpdatedAt = m.now().UTC()
	m.authors[id] = a
	return a, nil
}

func (m *Memory) DeleteAuthor(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.authors[id]; !ok {
		return ErrNotFound
	}
	delete(m.authors, id)
	for bookID, b := range m.books {
		if b.AuthorID == id {
			delete(m.books, bookID)
		}
	}
	return nil
}

func (m *Memory) BooksByAuthor(_ context.Context, authorID int64) ([]Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.authors[authorID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]Book, 0)
	for _, b := range m.books {
		if b.AuthorID == authorID {
			out = append(out, b)
		}
	}
	sortBooks(out)
	return out, nil
}

func (m *Memory) FindBook(_ context.Context, id int64) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return b, nil
}

func (m *Memory) ListBooks(_ context.Context) ([]Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Book, 0, len(m.books))
	for _, b := range m.books {
		out = append(out, b)
	}
	sortBooks(out)
	return out, nil
}

func (m *Memory) InsertBook(_ context.Context, ownerID int64, fields BookFields) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.authors[fields.AuthorID]; !ok {
		return Book{}, ErrForeignKey
	}
	now := m.now().UTC()
	b := Book{
		ID:        m.nextBookID,
		UserID:    ownerID,
		AuthorID:  fields.AuthorID,
		Title:     fields.Title,
		Year:      fields.Year,
		Cover:     fields.Cover,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.nextBookID++
	m.books[b.ID] = b
	return b, nil
}

func (m *Memory) UpdateBook(_ context.Context, id int64, fields BookFields) (Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	if _, ok := m.authors[fields.AuthorID]; !ok {
		return Book{}, ErrForeignKey
	}
	b.AuthorID = fields.AuthorID
	b.Title = fields.Title
	b.Year = fields.Year
	b.Cover = fields.Cover
	b.UpdatedAt = m.now().UTC()
	m.books[id] = b
	return b, nil
}

func (m *Memory) DeleteBook(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return ErrNotFound
	}
	delete(m.books, id)
	return nil
}

func sortBooks(books []Book) {
	sort.Slice(books, func(i, j int) bool {
		if !books[i].UpdatedAt.Equal(books[j].UpdatedAt) {
			return books[i].UpdatedAt.After(books[j].UpdatedAt)
		}
		return books[i].ID > books[j].ID
	})
}

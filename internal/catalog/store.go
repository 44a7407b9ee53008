package catalog

import "context"

// Store persists the catalog. Implementations translate their backend's
// failures into ErrNotFound and ErrForeignKey; anything else surfaces as-is
// and is treated as a store outage by callers.
//
// Deleting an author also deletes the author's books, so the book-to-author
// reference never dangles.
type Store interface {
	FindAuthor(ctx context.Context, id int64) (Author, error)
	ListAuthors(ctx context.Context) ([]Author, error)
	InsertAuthor(ctx context.Context, ownerID int64, fields AuthorFields) (Author, error)
	UpdateAuthor(ctx context.Context, id int64, fields AuthorFields) (Author, error)
	DeleteAuthor(ctx context.Context, id int64) error
	BooksByAuthor(ctx context.Context, authorID int64) ([]Book, error)

	FindBook(ctx context.Context, id int64) (Book, error)
	ListBooks(ctx context.Context) ([]Book, error)
	InsertBook(ctx context.Context, ownerID int64, fields BookFields) (Book, error)
	UpdateBook(ctx context.Context, id int64, fields BookFields) (Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

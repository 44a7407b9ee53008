// Package pg implements the catalog store on PostgreSQL via database/sql and
// the pgx stdlib driver.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"bookstand.org/internal/catalog"
)

// Store is the PostgreSQL-backed catalog.
type Store struct {
	db *sql.DB
}

var _ catalog.Store = (*Store)(nil)

// Open dials the database and tunes the pool for API traffic.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// New wraps an existing handle. Used by tests.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying pool for readiness probes and sibling stores.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the pool.
func (s *Store) Close() error { return s.db.Close() }

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

const authorColumns = "id, user_id, firstname, lastname, bio, created_at, updated_at"

func scanAuthor(row interface{ Scan(...any) error }) (catalog.Author, error) {
	var a catalog.Author
	err := row.Scan(&a.ID, &a.UserID, &a.Firstname, &a.Lastname, &a.Bio, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *Store) FindAuthor(ctx context.Context, id int64) (catalog.Author, error) {
	a, err := scanAuthor(s.db.QueryRowContext(ctx, `
		select `+authorColumns+`
		from authors
		where id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Author{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Author{}, err
	}
	return a, nil
}

func (s *Store) ListAuthors(ctx context.Context) ([]catalog.Author, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+authorColumns+`
		from authors
		order by updated_at desc, id desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	authors := make([]catalog.Author, 0)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (s *Store) InsertAuthor(ctx context.Context, ownerID int64, fields catalog.AuthorFields) (catalog.Author, error) {
	a, err := scanAuthor(s.db.QueryRowContext(ctx, `
		insert into authors (user_id, firstname, lastname, bio)
		values ($1, $2, $3, $4)
		returning `+authorColumns+`
	`, ownerID, fields.Firstname, fields.Lastname, fields.Bio))
	if err != nil {
		return catalog.Author{}, translate(err)
	}
	return a, nil
}

func (s *Store) UpdateAuthor(ctx context.Context, id int64, fields catalog.AuthorFields) (catalog.Author, error) {
	a, err := scanAuthor(s.db.QueryRowContext(ctx, `
		update authors
		set firstname = $2, lastname = $3, bio = $4, updated_at = now()
		where id = $1
		returning `+authorColumns+`
	`, id, fields.Firstname, fields.Lastname, fields.Bio))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Author{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Author{}, translate(err)
	}
	return a, nil
}

func (s *Store) DeleteAuthor(ctx context.Context, id int64) error {
	// Books cascade at the schema level.
	res, err := s.db.ExecContext(ctx, `delete from authors where id = $1`, id)
	if err != nil {
		return translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) BooksByAuthor(ctx context.Context, authorID int64) ([]catalog.Book, error) {
	if _, err := s.FindAuthor(ctx, authorID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		select `+bookColumns+`
		from books
		where author_id = $1
		order by updated_at desc, id desc
	`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBooks(rows)
}

const bookColumns = "id, user_id, author_id, title, year, cover, created_at, updated_at"

func scanBook(row interface{ Scan(...any) error }) (catalog.Book, error) {
	var b catalog.Book
	err := row.Scan(&b.ID, &b.UserID, &b.AuthorID, &b.Title, &b.Year, &b.Cover, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func collectBooks(rows *sql.Rows) ([]catalog.Book, error) {
	books := make([]catalog.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (s *Store) FindBook(ctx context.Context, id int64) (catalog.Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, `
		select `+bookColumns+`
		from books
		where id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Book{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Book{}, err
	}
	return b, nil
}

func (s *Store) ListBooks(ctx context.Context) ([]catalog.Book, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+bookColumns+`
		from books
		order by updated_at desc, id desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBooks(rows)
}

func (s *Store) InsertBook(ctx context.Context, ownerID int64, fields catalog.BookFields) (catalog.Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, `
		insert into books (user_id, author_id, title, year, cover)
		values ($1, $2, $3, $4, $5)
		returning `+bookColumns+`
	`, ownerID, fields.AuthorID, fields.Title, fields.Year, fields.Cover))
	if err != nil {
		return catalog.Book{}, translate(err)
	}
	return b, nil
}

func (s *Store) UpdateBook(ctx context.Context, id int64, fields catalog.BookFields) (catalog.Book, error) {
	b, err := scanBook(s.db.QueryRowContext(ctx, `
		update books
		set author_id = $2, title = $3, year = $4, cover = $5, updated_at = now()
		where id = $1
		returning `+bookColumns+`
	`, id, fields.AuthorID, fields.Title, fields.Year, fields.Cover))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Book{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Book{}, translate(err)
	}
	return b, nil
}

func (s *Store) DeleteBook(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from books where id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// translate maps driver failures onto the catalog error taxonomy.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return catalog.ErrForeignKey
	}
	return err
}

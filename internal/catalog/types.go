package catalog

import "time"

// Author is a catalog author record. UserID tags the account that created it
// and is never serialized.
type Author struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Firstname string    `json:"firstname"`
	Lastname  string    `json:"lastname"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Book is a catalog book record. Year and Cover are optional and render as
// JSON null when absent.
type Book struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Year      *int      `json:"year"`
	Cover     *string   `json:"cover"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// AuthorFields carries the writable attributes of an author.
type AuthorFields struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Bio       string `json:"bio"`
}

// BookFields carries the writable attributes of a book.
type BookFields struct {
	AuthorID int64   `json:"author_id"`
	Title    string  `json:"title"`
	Year     *int    `json:"year"`
	Cover    *string `json:"cover"`
}

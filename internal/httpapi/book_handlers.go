package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"bookstand.org/internal/auth"
	"bookstand.org/internal/catalog"
)

const bookNotFoundMsg = "No book found with the specified ID."

func (a *API) handleBooksCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listBooks(w, r)
	case http.MethodPost:
		a.createBook(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleBookResource(w http.ResponseWriter, r *http.Request) {
	idPart := strings.TrimPrefix(r.URL.Path, "/books/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getBook(w, r, id)
	case http.MethodPut:
		a.updateBook(w, r, id)
	case http.MethodDelete:
		a.deleteBook(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := a.catalog.ListBooks(r.Context())
	if err != nil {
		a.storeError(w, r, err, bookNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(books),
		"books": books,
	})
}

func validateBook(fields catalog.BookFields) string {
	if fields.AuthorID < 1 {
		return "author_id is required"
	}
	if strings.TrimSpace(fields.Title) == "" {
		return "title is required"
	}
	return ""
}

func (a *API) createBook(w http.ResponseWriter, r *http.Request) {
	var fields catalog.BookFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateBook(fields); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	identity, _ := auth.IdentityFromContext(r.Context())
	book, err := a.catalog.InsertBook(r.Context(), identity.UserID, fields)
	if err != nil {
		a.storeError(w, r, err, bookNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusCreated, book)
}

func (a *API) getBook(w http.ResponseWriter, r *http.Request, id int64) {
	book, err := a.catalog.FindBook(r.Context(), id)
	if err != nil {
		a.storeError(w, r, err, bookNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (a *API) updateBook(w http.ResponseWriter, r *http.Request, id int64) {
	var fields catalog.BookFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateBook(fields); msg != "" {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}

	book, err := a.catalog.UpdateBook(r.Context(), id, fields)
	if err != nil {
		a.storeError(w, r, err, bookNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

func (a *API) deleteBook(w http.ResponseWriter, r *http.Request, id int64) {
	if err := a.catalog.DeleteBook(r.Context(), id); err != nil {
		a.storeError(w, r, err, bookNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Book deleted."})
}

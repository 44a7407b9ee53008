package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"bookstand.org/internal/auth"
	"bookstand.org/internal/catalog"
)

const authorNotFoundMsg = "No author found with the specified ID."

func (a *API) handleAuthorsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listAuthors(w, r)
	case http.MethodPost:
		a.createAuthor(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleAuthorResource serves /authors/{id} and /authors/{id}/books. Anything
// that does not parse as one of those shapes is a 404, matching the behavior
// of unknown routes.
func (a *API) handleAuthorResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/authors/")
	idPart, tail, hasTail := strings.Cut(rest, "/")

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id < 1 {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	if hasTail {
		if tail != "books" {
			writeError(w, r, http.StatusNotFound, "not found")
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.listAuthorBooks(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getAuthor(w, r, id)
	case http.MethodPut:
		a.updateAuthor(w, r, id)
	case http.MethodDelete:
		a.deleteAuthor(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := a.catalog.ListAuthors(r.Context())
	if err != nil {
		a.storeError(w, r, err, authorNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(authors),
		"authors": authors,
	})
}

func (a *API) createAuthor(w http.ResponseWriter, r *http.Request) {
	var fields catalog.AuthorFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	identity, _ := auth.IdentityFromContext(r.Context())
	author, err := a.catalog.InsertAuthor(r.Context(), identity.UserID, fields)
	if err != nil {
		a.storeError(w, r, err, authorNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusCreated, author)
}

func (a *API) getAuthor(w http.ResponseWriter, r *http.Request, id int64) {
	author, err := a.catalog.FindAuthor(r.Context(), id)
	if err != nil {
		a.storeError(w, r, err, authorNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, author)
}

func (a *API) updateAuthor(w http.ResponseWriter, r *http.Request, id int64) {
	var fields catalog.AuthorFields
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	author, err := a.catalog.UpdateAuthor(r.Context(), id, fields)
	if err != nil {
		a.storeError(w, r, err, authorNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, author)
}

func (a *API) deleteAuthor(w http.ResponseWriter, r *http.Request, id int64) {
	if err := a.catalog.DeleteAuthor(r.Context(), id); err != nil {
		a.storeError(w, r, err, authorNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Author deleted."})
}

func (a *API) listAuthorBooks(w http.ResponseWriter, r *http.Request, authorID int64) {
	books, err := a.catalog.BooksByAuthor(r.Context(), authorID)
	if err != nil {
		a.storeError(w, r, err, authorNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(books),
		"books": books,
	})
}

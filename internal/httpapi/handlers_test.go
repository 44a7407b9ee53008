package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookstand.org/internal/auth"
	"bookstand.org/internal/catalog"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	srv     *httptest.Server
	catalog *catalog.Memory
	users   *auth.MemoryUsers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tokens, err := auth.NewTokens(testSecret, auth.WithIssuer("bookstand"))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	f := &fixture{
		catalog: catalog.NewMemory(),
		users:   auth.NewMemoryUsers(),
	}
	api := New(f.catalog, f.users, tokens, WithVersion("test"))
	f.srv = httptest.NewServer(api.Handler())
	t.Cleanup(f.srv.Close)
	return f
}

// apiClient performs requests against the test server, attaching the token
// header when set.
type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func (f *fixture) client(t *testing.T) *apiClient {
	return &apiClient{t: t, base: f.srv.URL}
}

func (c *apiClient) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.base+path, payload)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("token", c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

// signIn registers an account and stores its token on the client.
func (c *apiClient) signIn(email string) {
	c.t.Helper()

	resp, body := c.do(http.MethodPost, "/auth/sign_up", map[string]string{
		"email":    email,
		"password": "correct-horse-battery",
	})
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("sign_up: status %d body %s", resp.StatusCode, body)
	}

	resp, body = c.do(http.MethodPost, "/auth/sign_in", map[string]string{
		"email":    email,
		"password": "correct-horse-battery",
	})
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("sign_in: status %d body %s", resp.StatusCode, body)
	}
	session := decode[struct {
		Token string `json:"token"`
	}](c.t, body)
	if session.Token == "" {
		c.t.Fatal("sign_in returned empty token")
	}
	c.token = session.Token
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return v
}

type authorResponse struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Bio       string `json:"bio"`
}

type bookResponse struct {
	ID       int64   `json:"id"`
	AuthorID int64   `json:"author_id"`
	Title    string  `json:"title"`
	Year     *int    `json:"year"`
	Cover    *string `json:"cover"`
}

func TestAuthorBookLifecycle(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.signIn("lifecycle@example.com")

	// Create an author.
	resp, body := c.do(http.MethodPost, "/authors", map[string]string{
		"firstname": "Ursula",
		"lastname":  "Le Guin",
		"bio":       "Speculative fiction.",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create author: status %d body %s", resp.StatusCode, body)
	}
	author := decode[authorResponse](t, body)
	if author.ID != 1 || author.Firstname != "Ursula" {
		t.Fatalf("unexpected author: %+v", author)
	}

	// Attach a book; optional fields stay null.
	year := 1969
	resp, body = c.do(http.MethodPost, "/books", map[string]any{
		"author_id": author.ID,
		"title":     "The Left Hand of Darkness",
		"year":      year,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create book: status %d body %s", resp.StatusCode, body)
	}
	book := decode[bookResponse](t, body)
	if book.AuthorID != author.ID || book.Year == nil || *book.Year != year || book.Cover != nil {
		t.Fatalf("unexpected book: %+v", book)
	}

	// The author's book listing sees it.
	resp, body = c.do(http.MethodGet, "/authors/1/books", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list author books: status %d body %s", resp.StatusCode, body)
	}
	listing := decode[struct {
		Total int            `json:"total"`
		Books []bookResponse `json:"books"`
	}](t, body)
	if listing.Total != 1 || len(listing.Books) != 1 || listing.Books[0].ID != book.ID {
		t.Fatalf("unexpected listing: %+v", listing)
	}

	// Update the author.
	resp, body = c.do(http.MethodPut, "/authors/1", map[string]string{
		"firstname": "Ursula K.",
		"lastname":  "Le Guin",
		"bio":       "Speculative fiction.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update author: status %d body %s", resp.StatusCode, body)
	}
	if got := decode[authorResponse](t, body); got.Firstname != "Ursula K." {
		t.Fatalf("update not applied: %+v", got)
	}

	// Delete the author; the book goes with it.
	resp, body = c.do(http.MethodDelete, "/authors/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete author: status %d body %s", resp.StatusCode, body)
	}
	msg := decode[struct {
		Message string `json:"message"`
	}](t, body)
	if msg.Message != "Author deleted." {
		t.Fatalf("unexpected message: %q", msg.Message)
	}

	resp, _ = c.do(http.MethodGet, "/authors/1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted author should 404, got %d", resp.StatusCode)
	}
	resp, _ = c.do(http.MethodGet, "/books/1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("cascaded book should 404, got %d", resp.StatusCode)
	}
}

func TestCreateRecordsOwner(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.signIn("owner@example.com")

	resp, body := c.do(http.MethodPost, "/authors", map[string]string{"firstname": "A", "lastname": "B"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create author: status %d body %s", resp.StatusCode, body)
	}
	created := decode[authorResponse](t, body)

	stored, err := f.catalog.FindAuthor(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("FindAuthor: %v", err)
	}
	if stored.UserID != 1 {
		t.Fatalf("author should carry creator id 1, got %d", stored.UserID)
	}
}

func TestAuthorNotFoundMessages(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.signIn("missing@example.com")

	resp, body := c.do(http.MethodGet, "/authors/42", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
	errBody := decode[struct {
		Error     string `json:"error"`
		RequestID string `json:"request_id"`
	}](t, body)
	if errBody.Error != "No author found with the specified ID." {
		t.Fatalf("unexpected error: %q", errBody.Error)
	}
	if errBody.RequestID == "" {
		t.Fatal("error body should carry a request id")
	}

	resp, body = c.do(http.MethodDelete, "/books/42", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if got := decode[struct {
		Error string `json:"error"`
	}](t, body); got.Error != "No book found with the specified ID." {
		t.Fatalf("unexpected error: %q", got.Error)
	}
}

func TestDeleteTwiceReports404(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.signIn("twice@example.com")

	c.do(http.MethodPost, "/authors", map[string]string{"firstname": "A"})
	if resp, _ := c.do(http.MethodDelete, "/authors/1", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("first delete: status %d", resp.StatusCode)
	}
	if resp, _ := c.do(http.MethodDelete, "/authors/1", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete should 404, got %d", resp.StatusCode)
	}
}

func TestBookRequiresExistingAuthor(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.signIn("fk@example.com")

	resp, body := c.do(http.MethodPost, "/books", map[string]any{
		"author_id": 999999,
		"title":     "Orphan",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status %d body %s", resp.StatusCode, body)
	}
}

func TestBookValidation(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.signIn("validation@example.com")

	resp, _ := c.do(http.MethodPost, "/books", map[string]any{"title": "No Author"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing author_id should 400, got %d", resp.StatusCode)
	}
	resp, _ = c.do(http.MethodPost, "/books", map[string]any{"author_id": 1, "title": "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank title should 400, got %d", resp.StatusCode)
	}
}

func TestListWrappersOnEmptyCatalog(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.signIn("empty@example.com")

	_, body := c.do(http.MethodGet, "/authors", nil)
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(wrapper["total"]) != "0" {
		t.Fatalf("total should be 0, got %s", wrapper["total"])
	}
	if string(wrapper["authors"]) != "[]" {
		t.Fatalf("authors should be an empty array, not %s", wrapper["authors"])
	}

	_, body = c.do(http.MethodGet, "/books", nil)
	if err := json.Unmarshal(body, &wrapper); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(wrapper["books"]) != "[]" {
		t.Fatalf("books should be an empty array, not %s", wrapper["books"])
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.signIn("strict@example.com")

	resp, _ := c.do(http.MethodPost, "/authors", map[string]string{
		"firstname": "A",
		"surprise":  "field",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field should 400, got %d", resp.StatusCode)
	}
}

func TestSignUpConflictsAndMe(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.signIn("me@example.com")

	resp, _ := c.do(http.MethodPost, "/auth/sign_up", map[string]string{
		"email":    "me@example.com",
		"password": "correct-horse-battery",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate sign_up should 409, got %d", resp.StatusCode)
	}

	resp, body := c.do(http.MethodGet, "/auth/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d body %s", resp.StatusCode, body)
	}
	me := decode[struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}](t, body)
	if me.ID != 1 || me.Email != "me@example.com" {
		t.Fatalf("unexpected me: %+v", me)
	}
	if bytes.Contains(body, []byte("password")) {
		t.Fatalf("me body leaks password material: %s", body)
	}
}

func TestSignInRejectsBadPassword(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.signIn("locked@example.com")

	resp, _ := c.do(http.MethodPost, "/auth/sign_in", map[string]string{
		"email":    "locked@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password should 401, got %d", resp.StatusCode)
	}

	resp, _ = c.do(http.MethodPost, "/auth/sign_in", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever-password",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown email should 401, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	resp, body := c.do(http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: status %d", resp.StatusCode)
	}
	health := decode[struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}](t, body)
	if health.Status != "ok" || health.Version != "test" {
		t.Fatalf("unexpected healthz: %+v", health)
	}

	if resp, _ := c.do(http.MethodGet, "/readyz", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz: status %d", resp.StatusCode)
	}
}

func TestUnknownRoute404s(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	c.signIn("router@example.com")

	for _, path := range []string{"/authors/abc", "/authors/1/chapters", "/nope"} {
		if resp, _ := c.do(http.MethodGet, path, nil); resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s should 404, got %d", path, resp.StatusCode)
		}
	}
}

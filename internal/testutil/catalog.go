package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Belphemur/titlovi/internal/models"
)

// FakeTokenID is the token issued by FakeCatalog unless overridden
const FakeTokenID = "6f1c2a9e-4b7d-4a52-9d51-0c2b8e1f7a33"

// FakeCatalog is an httptest server speaking the Titlovi kodi API.
// Handlers can be swapped before the first request is made.
type FakeCatalog struct {
	Server *httptest.Server

	// Username/Password accepted by gettoken and validatelogin
	Username string
	Password string

	// TokenExpiry is added to time.Now() for issued tokens
	TokenExpiry time.Duration
	TokenID     string

	// Search answers a search query. Defaults to an empty single page.
	Search func(query url.Values) models.SubtitleResultPage
	// Downloads maps mediaid to a payload
	Downloads          map[int][]byte
	DownloadStatusCode int

	TokenCalls    atomic.Int32
	ValidateCalls atomic.Int32
	SearchCalls   atomic.Int32
	DownloadCalls atomic.Int32

	mu      sync.Mutex
	queries []url.Values
	headers []http.Header
}

// NewFakeCatalog starts a fake catalog that is closed with the test.
func NewFakeCatalog(t testing.TB) *FakeCatalog {
	t.Helper()

	f := &FakeCatalog{
		Username:    "marko",
		Password:    "tajna",
		TokenExpiry: 24 * time.Hour,
		TokenID:     FakeTokenID,
		Downloads:   map[int][]byte{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/subtitles/gettoken", f.handleToken)
	mux.HandleFunc("POST /api/subtitles/validatelogin", f.handleValidate)
	mux.HandleFunc("GET /api/subtitles/search", f.handleSearch)
	mux.HandleFunc("GET /download", f.handleDownload)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// KodiBaseURL is the API root to configure the catalog client with
func (f *FakeCatalog) KodiBaseURL() string {
	return f.Server.URL + "/api/subtitles/"
}

// DownloadBaseURL is the download root to configure the catalog client with
func (f *FakeCatalog) DownloadBaseURL() string {
	return f.Server.URL + "/"
}

// Credentials returns the credentials the fake accepts
func (f *FakeCatalog) Credentials() models.Credentials {
	return models.Credentials{Username: f.Username, Password: f.Password}
}

// SearchQueries returns a copy of every search query received so far
func (f *FakeCatalog) SearchQueries() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]url.Values, len(f.queries))
	copy(out, f.queries)
	return out
}

// LastHeaders returns the headers of the most recent request, or nil
func (f *FakeCatalog) LastHeaders() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.headers) == 0 {
		return nil
	}
	return f.headers[len(f.headers)-1]
}

// TotalCalls is the number of requests of any kind
func (f *FakeCatalog) TotalCalls() int {
	return int(f.TokenCalls.Load() + f.ValidateCalls.Load() + f.SearchCalls.Load() + f.DownloadCalls.Load())
}

func (f *FakeCatalog) record(r *http.Request) {
	f.mu.Lock()
	f.headers = append(f.headers, r.Header.Clone())
	f.mu.Unlock()
}

func (f *FakeCatalog) handleToken(w http.ResponseWriter, r *http.Request) {
	f.TokenCalls.Add(1)
	f.record(r)

	q := r.URL.Query()
	if q.Get("username") != f.Username || q.Get("password") != f.Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	writeJSON(w, map[string]any{
		"ExpirationDate": time.Now().In(models.CatalogLocation()).Add(f.TokenExpiry).Format("2006-01-02T15:04:05.999"),
		"Token":          f.TokenID,
		"UserId":         4242,
		"UserName":       f.Username,
	})
}

func (f *FakeCatalog) handleValidate(w http.ResponseWriter, r *http.Request) {
	f.ValidateCalls.Add(1)
	f.record(r)

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if body.Username != f.Username || body.Password != f.Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *FakeCatalog) handleSearch(w http.ResponseWriter, r *http.Request) {
	f.SearchCalls.Add(1)
	f.record(r)

	q := r.URL.Query()
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	if q.Get("token") != f.TokenID {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	page := models.SubtitleResultPage{CurrentPage: 1, PagesAvailable: 1}
	if f.Search != nil {
		page = f.Search(q)
	}
	writeJSON(w, page)
}

func (f *FakeCatalog) handleDownload(w http.ResponseWriter, r *http.Request) {
	f.DownloadCalls.Add(1)
	f.record(r)

	if f.DownloadStatusCode != 0 && f.DownloadStatusCode != http.StatusOK {
		w.WriteHeader(f.DownloadStatusCode)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("mediaid"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	payload, ok := f.Downloads[id]
	if !ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, "<html><head><title>Titlovi.com - Greška</title></head><body>Not found</body></html>")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(payload)
}

// PagedSearch returns a search handler that serves pages of records.
func PagedSearch(pages ...[]models.SubtitleRecord) func(url.Values) models.SubtitleResultPage {
	return func(q url.Values) models.SubtitleResultPage {
		pg, _ := strconv.Atoi(q.Get("pg"))
		if pg < 1 {
			pg = 1
		}
		result := models.SubtitleResultPage{CurrentPage: pg, PagesAvailable: len(pages)}
		if pg <= len(pages) {
			result.Records = pages[pg-1]
			for _, p := range pages {
				result.ResultsFound += len(p)
			}
		}
		return result
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapthttp "journal/internal/adapter/http"
	"journal/internal/adapter/memory"
	"journal/internal/analysis"
	"journal/internal/app"
	"journal/internal/domain"
)

// ---------------------------------------------------------------------------
// Mocks and helpers
// ---------------------------------------------------------------------------

type mockGenerator struct {
	generateFn func(ctx context.Context, system, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, system, prompt)
	}
	return "A steady week.", nil
}

type testOptions struct {
	gen    domain.NarrativeGenerator
	noAuth bool
}

func newTestServer(t *testing.T, db *memory.DB, opts testOptions) *httptest.Server {
	t.Helper()

	if db == nil {
		db = memory.New()
	}
	svc := adapthttp.Services{
		Entries:    app.NewEntryService(db, analysis.NewAnalyzer(nil, nil), nil),
		Insights:   app.NewInsightsService(db),
		Garden:     app.NewGardenService(db),
		Reflection: app.NewReflectionService(db, nil),
		Weekly:     app.NewWeeklySummaryService(db, db, opts.gen, false, nil),
		Auth:       app.NewAuthService(db, db.NewSessionRepo(), nil),
	}

	webDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600))

	srv := adapthttp.New(svc, webDir, nil)
	if opts.noAuth {
		srv = srv.WithoutAuth()
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func openServer(t *testing.T, db *memory.DB) *httptest.Server {
	t.Helper()
	return newTestServer(t, db, testOptions{noAuth: true})
}

func doJSON(t *testing.T, method, url string, payload any, header http.Header) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func seedEntry(t *testing.T, db *memory.DB, e domain.Entry) string {
	t.Helper()
	id, err := db.InsertEntry(context.Background(), &e)
	require.NoError(t, err)
	return id
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := openServer(t, nil)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, true, body["ok"])
}

func TestCreateEntry(t *testing.T) {
	ts := openServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/entries", map[string]any{
		"text": "Work was a wonderful success today and I feel happy.",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	got := decode[domain.Entry](t, resp)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "default_user", got.UserID)
	assert.Contains(t, got.Themes, "work")
	assert.Greater(t, got.Sentiment, 0.0)
	assert.False(t, got.IsReflection)
	assert.NotEmpty(t, got.Summary)
}

func TestCreateEntryValidation(t *testing.T) {
	ts := openServer(t, nil)

	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus int
		wantText   string
	}{
		{name: "missing text", payload: map[string]any{"text": ""}, wantStatus: http.StatusBadRequest},
		{name: "only markup", payload: map[string]any{"text": "<b></b>"}, wantStatus: http.StatusBadRequest},
		{name: "too short", payload: map[string]any{"text": "hi"}, wantStatus: http.StatusBadRequest},
		{name: "too long", payload: map[string]any{"text": strings.Repeat("a", 10001)}, wantStatus: http.StatusBadRequest},
		{name: "long user id", payload: map[string]any{"text": "a fine day", "userId": strings.Repeat("u", 101)}, wantStatus: http.StatusBadRequest},
		{name: "unknown field", payload: map[string]any{"text": "a fine day", "mood": 3}, wantStatus: http.StatusBadRequest},
		{name: "markup stripped", payload: map[string]any{"text": "<b>a fine</b> day"}, wantStatus: http.StatusCreated, wantText: "a fine day"},
		{name: "encoded markup stays escaped", payload: map[string]any{"text": "&lt;script&gt;x&lt;/script&gt; ok"}, wantStatus: http.StatusCreated, wantText: "&lt;script&gt;x&lt;/script&gt; ok"},
		{name: "apostrophe kept", payload: map[string]any{"text": "it's fine"}, wantStatus: http.StatusCreated, wantText: "it's fine"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/entries", tc.payload, nil)
			require.Equal(t, tc.wantStatus, resp.StatusCode)
			if tc.wantText != "" {
				got := decode[domain.Entry](t, resp)
				assert.Equal(t, tc.wantText, got.Text)
			}
		})
	}
}

func TestListEntries(t *testing.T) {
	db := memory.New()
	ts := openServer(t, db)

	base := time.Now().UTC().Add(-time.Hour)
	for i := range 3 {
		seedEntry(t, db, domain.Entry{UserID: "ana", Text: "entry", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	seedEntry(t, db, domain.Entry{UserID: "someone_else", Text: "entry", CreatedAt: base})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/entries?userId=ana&limit=2", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[[]domain.Entry](t, resp)
	require.Len(t, got, 2)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/entries?userId=nobody", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]domain.Entry](t, resp))
}

func TestInsightsEndpoint(t *testing.T) {
	db := memory.New()
	ts := openServer(t, db)

	now := time.Now().UTC()
	seedEntry(t, db, domain.Entry{UserID: "ana", CreatedAt: now.Add(-time.Hour), Sentiment: 0.4, Themes: []string{"work"}})
	seedEntry(t, db, domain.Entry{UserID: "ana", CreatedAt: now.Add(-2 * time.Hour), Sentiment: 0.2, Themes: []string{"work", "family"}})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/insights?userId=ana&period=week", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[app.Insights](t, resp)
	assert.Equal(t, 2, got.EntryCount)
	assert.InDelta(t, 0.3, got.AvgSentiment, 1e-9)
	assert.Equal(t, []string{"work", "family"}, got.TopThemes)
	assert.Equal(t, 2, got.ThemeCounts["work"])
}

func TestGardenEndpoint(t *testing.T) {
	db := memory.New()
	ts := openServer(t, db)

	now := time.Now().UTC()
	for range 5 {
		seedEntry(t, db, domain.Entry{UserID: "ana", CreatedAt: now, Themes: []string{"nature"}})
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/garden?userId=ana", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[app.Garden](t, resp)
	require.Len(t, got.Plants, 1)
	assert.Equal(t, "nature", got.Plants[0].Theme)
	assert.Equal(t, 5, got.Plants[0].Count)
	assert.Equal(t, 1, got.TotalPlants)
}

func TestReflectionEndpoint(t *testing.T) {
	db := memory.New()
	ts := openServer(t, db)

	old := time.Now().UTC().AddDate(0, 0, -10)
	first := seedEntry(t, db, domain.Entry{UserID: "ana", Text: "first", CreatedAt: old})
	second := seedEntry(t, db, domain.Entry{UserID: "ana", Text: "second", CreatedAt: old.Add(time.Hour)})
	seedEntry(t, db, domain.Entry{UserID: "ana", Text: "fresh", CreatedAt: time.Now().UTC()})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/reflection?userId=ana&exclude="+first, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[app.Reflection](t, resp)
	require.NotNil(t, got.Entry)
	assert.Equal(t, second, got.Entry.ID)
	assert.NotEmpty(t, got.Prompt)
	require.NotNil(t, got.DaysAgo)
	assert.GreaterOrEqual(t, *got.DaysAgo, 9)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/reflection?userId=ana&exclude="+first+","+second, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[app.Reflection](t, resp)
	assert.Nil(t, got.Entry)
	assert.NotEmpty(t, got.Message)
}

func TestReflectionsEndpoint(t *testing.T) {
	db := memory.New()
	ts := openServer(t, db)

	now := time.Now().UTC()
	original := seedEntry(t, db, domain.Entry{UserID: "ana", Text: "original", CreatedAt: now.AddDate(0, 0, -10)})
	seedEntry(t, db, domain.Entry{UserID: "ana", Text: "about it", CreatedAt: now, IsReflection: true, OriginalEntryID: original})
	seedEntry(t, db, domain.Entry{UserID: "ana", Text: "unrelated", CreatedAt: now, IsReflection: true, OriginalEntryID: "other"})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/reflections?userId=ana", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.Entry](t, resp), 2)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/reflections?userId=ana&originalEntryId="+original, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[[]domain.Entry](t, resp)
	require.Len(t, got, 1)
	assert.Equal(t, "about it", got[0].Text)
}

func TestWeeklySummaryUnavailable(t *testing.T) {
	ts := openServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/weekly-summary?userId=ana", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	got := decode[app.WeeklyResult](t, resp)
	assert.Equal(t, app.WeeklyUnavailable, got.Status)
	assert.NotEmpty(t, got.Message)
}

func TestWeeklySummaryNoEntries(t *testing.T) {
	ts := newTestServer(t, nil, testOptions{noAuth: true, gen: &mockGenerator{}})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/weekly-summary", map[string]any{"userId": "ana"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "no_entries", body["status"])
	assert.Contains(t, body, "summary")
	assert.Nil(t, body["summary"])
}

func TestWeeklySummaryGenerated(t *testing.T) {
	db := memory.New()
	var prompts []string
	ts := newTestServer(t, db, testOptions{noAuth: true, gen: &mockGenerator{
		generateFn: func(_ context.Context, _, prompt string) (string, error) {
			prompts = append(prompts, prompt)
			return "You found your footing at work.", nil
		},
	}})

	now := time.Now().UTC()
	seedEntry(t, db, domain.Entry{UserID: "ana", Text: "busy at work", CreatedAt: now.Add(-48 * time.Hour), Themes: []string{"work"}})
	seedEntry(t, db, domain.Entry{UserID: "ana", Text: "a calm walk", CreatedAt: now.Add(-24 * time.Hour), Themes: []string{"nature"}})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/weekly-summary?userId=ana", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[app.WeeklyResult](t, resp)
	assert.Equal(t, app.WeeklyGenerated, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "You found your footing at work.", got.Summary.Summary)
	assert.Equal(t, 2, got.Summary.EntryCount)

	// A second request inside the cooldown returns the stored summary.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/weekly-summary?userId=ana", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, app.WeeklyCached, decode[app.WeeklyResult](t, resp).Status)
	assert.Len(t, prompts, 1)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/weekly-summary/latest?userId=ana", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	latest := decode[map[string]*domain.WeeklySummary](t, resp)
	require.NotNil(t, latest["summary"])
	assert.Equal(t, got.Summary.ID, latest["summary"].ID)
}

func TestWeeklySummaryGenerationFailure(t *testing.T) {
	db := memory.New()
	ts := newTestServer(t, db, testOptions{noAuth: true, gen: &mockGenerator{
		generateFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("upstream unavailable")
		},
	}})

	now := time.Now().UTC()
	seedEntry(t, db, domain.Entry{UserID: "ana", CreatedAt: now.Add(-2 * time.Hour)})
	seedEntry(t, db, domain.Entry{UserID: "ana", CreatedAt: now.Add(-time.Hour)})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/weekly-summary?userId=ana", nil, nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.NotContains(t, body["error"], "upstream")

	latest, err := db.LatestSummary(context.Background(), "ana", time.Time{})
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestWeeklySummaryLatestEmpty(t *testing.T) {
	ts := openServer(t, nil)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/weekly-summary/latest?userId=ana", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Contains(t, body, "summary")
	assert.Nil(t, body["summary"])
}

func TestMethodNotAllowed(t *testing.T) {
	ts := openServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"DELETE entries", http.MethodDelete, "/api/entries"},
		{"POST insights", http.MethodPost, "/api/insights"},
		{"POST garden", http.MethodPost, "/api/garden"},
		{"POST reflection", http.MethodPost, "/api/reflection"},
		{"PUT reflections", http.MethodPut, "/api/reflections"},
		{"GET weekly-summary", http.MethodGet, "/api/weekly-summary"},
		{"POST weekly-summary/latest", http.MethodPost, "/api/weekly-summary/latest"},
		{"GET auth/login", http.MethodGet, "/api/auth/login"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, tc.method, ts.URL+tc.path, nil, nil)
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := openServer(t, nil)

	doJSON(t, http.MethodPost, ts.URL+"/api/entries", map[string]any{"text": "a quiet evening"}, nil)

	resp := doJSON(t, http.MethodGet, ts.URL+"/metrics", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "journal_entries_created_total")
}

func TestSPAFallback(t *testing.T) {
	ts := openServer(t, nil)

	resp := doJSON(t, http.MethodGet, ts.URL+"/garden", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(b))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t, nil, testOptions{})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/entries", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/entries", nil, http.Header{
		"Cookie": {"session=bogus"},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestForwardAuthOwnsJournal(t *testing.T) {
	ts := newTestServer(t, nil, testOptions{})
	header := http.Header{"Remote-User": {"alice"}}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/entries", map[string]any{
		"text":   "walked by the river",
		"userId": "mallory",
	}, header)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", decode[domain.Entry](t, resp).UserID)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/entries?userId=mallory", nil, header)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[[]domain.Entry](t, resp)
	require.Len(t, got, 1)
	assert.Equal(t, "walked by the river", got[0].Text)
}

func TestSetupLoginLogout(t *testing.T) {
	ts := newTestServer(t, nil, testOptions{})
	creds := map[string]any{"username": "ana", "password": "correct horse"}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/setup", creds, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/setup", map[string]any{"username": "eve", "password": "x"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", map[string]any{"username": "ana", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", creds, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	withCookie := http.Header{"Cookie": {"session=" + session.Value}}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/entries", nil, withCookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/logout", nil, withCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/entries", nil, withCookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSetupValidation(t *testing.T) {
	ts := newTestServer(t, nil, testOptions{})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/setup", map[string]any{"username": " ", "password": "pw"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/setup", map[string]any{"username": "ana", "password": ""}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthConfig(t *testing.T) {
	ts := newTestServer(t, nil, testOptions{})

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/auth/config", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, false, body["sso_enabled"])
	assert.Equal(t, true, body["auth_enabled"])
}

func TestSSODisabled(t *testing.T) {
	ts := newTestServer(t, nil, testOptions{})

	for _, path := range []string{"/api/auth/sso/login", "/api/auth/sso/callback"} {
		resp := doJSON(t, http.MethodGet, ts.URL+path, nil, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"uekcal/internal/config"
	"uekcal/internal/pipeline"
)

const upstreamPage = `<table>
<tr><td>2025-10-07</td><td>09:45 - 11:15</td><td>Metody inwestowania</td><td>ćwiczenia</td><td>dr Oleksij Kelebaj</td><td>Paw.A 014</td></tr>
</table>`

func newTestServer(t *testing.T, sourceURL string) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.SourceURL = sourceURL
	pipe, err := pipeline.New(cfg)
	require.NoError(t, err)
	return NewServer(cfg, pipe)
}

func TestPlanSuccess(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(upstreamPage))
	}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plan.ics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "SUMMARY:Metody inwestowania")
}

func TestPlanSourceOverride(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(upstreamPage))
	}))
	defer upstream.Close()

	// Configured source is unreachable; the override must win.
	s := newTestServer(t, "http://127.0.0.1:1/dead")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plan.ics?src="+upstream.URL, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
}

func TestPlanFetchFailureIsBadGateway(t *testing.T) {
	s := newTestServer(t, "http://127.0.0.1:1/dead")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plan.ics", nil))

	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPlanNoEventsIsServerError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>brak planu</p></body></html>"))
	}))
	defer upstream.Close()

	s := newTestServer(t, upstream.URL)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plan.ics", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "layout")
}

func TestPlanRejectsPost(t *testing.T) {
	s := newTestServer(t, "http://example.invalid")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plan.ics", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, "http://example.invalid/plan")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/plan.ics")
	require.Contains(t, rec.Body.String(), "http://example.invalid/plan")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "http://example.invalid")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func TestUnknownPathIs404(t *testing.T) {
	s := newTestServer(t, "http://example.invalid")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

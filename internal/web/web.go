// Package web exposes the calendar feed over HTTP. All error mapping from
// pipeline failures to response statuses lives here.
package web

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"

	"uekcal/internal/config"
	appLog "uekcal/internal/log"
	"uekcal/internal/pipeline"
	"uekcal/internal/schedule"
)

// Server serves the informational root page, the ICS feed and a health
// endpoint. It holds no request state; every /plan.ics hit runs the
// pipeline once.
type Server struct {
	cfg  *config.Config
	pipe *pipeline.Pipeline
	mux  *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, pipe *pipeline.Pipeline) *Server {
	s := &Server{
		cfg:  cfg,
		pipe: pipe,
		mux:  http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// StartServer starts an HTTP server bound to cfg.Listen and blocks until
// it fails or ctx is done.
func StartServer(ctx context.Context, cfg *config.Config, pipe *pipeline.Pipeline) error {
	s := NewServer(cfg, pipe)
	srv := &http.Server{Addr: cfg.Listen, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/plan.ics", s.handlePlan)
	s.mux.HandleFunc("/", s.handleIndex)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePlan runs the pipeline against the configured source (or the
// ?src= override) and serves the resulting calendar inline.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source := s.cfg.SourceURL
	if override := r.URL.Query().Get("src"); override != "" {
		source = override
	}

	out, err := s.pipe.Run(r.Context(), source)
	if err != nil {
		s.writePipelineError(w, source, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// writePipelineError maps the typed pipeline failures onto statuses:
// upstream retrieval problems are a gateway failure (retryable), while an
// extraction that found nothing points at an upstream layout change and is
// reported as a server error with a message the operator can act on.
func (s *Server) writePipelineError(w http.ResponseWriter, source string, err error) {
	var fetchErr *pipeline.FetchError
	var parseErr *schedule.ParseError

	switch {
	case errors.As(err, &fetchErr):
		appLog.Error("schedule page fetch failed", err, "source", source)
		http.Error(w, "could not fetch schedule page: "+err.Error(), http.StatusBadGateway)
	case errors.Is(err, pipeline.ErrNoEvents), errors.As(err, &parseErr):
		appLog.Error("no events extracted; upstream layout may have changed", err, "source", source)
		http.Error(w, "no schedule events found; the source page layout may have changed", http.StatusInternalServerError)
	default:
		appLog.Error("unexpected pipeline failure", err, "source", source)
		http.Error(w, "internal error while building calendar", http.StatusInternalServerError)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="pl">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<h1>%s</h1>
<p>Kalendarz w formacie iCalendar: <a href="/plan.ics">/plan.ics</a></p>
<p>Źródło planu: <a href="%s">%s</a></p>
<p>Parametr <code>?src=</code> pozwala wskazać inny adres strony z planem.</p>
</body>
</html>
`,
		html.EscapeString(s.cfg.CalendarName),
		html.EscapeString(s.cfg.CalendarName),
		html.EscapeString(s.cfg.SourceURL),
		html.EscapeString(s.cfg.SourceURL),
	)
}

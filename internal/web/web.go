package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"webcal/internal/calendar"
	"webcal/internal/clock"
	"webcal/internal/config"
	"webcal/internal/ics"
	appLog "webcal/internal/log"
	"webcal/internal/model"
	"webcal/internal/store"
	"webcal/internal/view"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Server exposes one calendar session over HTTP: navigation, the editor
// flow and the event list, plus the embedded browser UI.
type Server struct {
	cfg       *config.Config
	store     *store.Store
	mapper    calendar.Mapper
	indicator *clock.Indicator
	mux       *http.ServeMux

	// ctrl is single-threaded by contract; mu serializes handler access.
	mu   sync.Mutex
	ctrl *view.Controller
}

// embeddedStatic contains the browser UI.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server. A nil indicator disables the periodic
// tick; /api/now then computes the offset on demand.
func NewServer(cfg *config.Config, s *store.Store, ctrl *view.Controller, ind *clock.Indicator) *Server {
	srv := &Server{
		cfg:       cfg,
		store:     s,
		mapper:    cfg.Mapper(),
		indicator: ind,
		mux:       http.NewServeMux(),
		ctrl:      ctrl,
	}
	srv.registerRoutes()
	return srv
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password disables auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="webcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("POST /api/view/granularity", s.handleSetGranularity)
	s.mux.HandleFunc("POST /api/view/{action}", s.handleNavigate)
	s.mux.HandleFunc("GET /api/view", s.handleView)
	s.mux.HandleFunc("GET /api/now", s.handleNow)

	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCommit)
	s.mux.HandleFunc("GET /api/events/{id}", s.handleGetEvent)
	s.mux.HandleFunc("PUT /api/events/{id}", s.handleCommit)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDiscard)
	s.mux.HandleFunc("GET /api/events/{id}/draft", s.handleRequestEdit)
	s.mux.HandleFunc("POST /api/drafts", s.handleRequestCreate)
	s.mux.HandleFunc("DELETE /api/editor", s.handleCloseEditor)

	s.mux.HandleFunc("GET /api/calendar.ics", s.handleExport)

	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// staticFileServer serves the embedded UI. /api/* never falls through to
// HTML.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}

	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

// stateLocked builds the /api/state body. s.mu must be held.
func (s *Server) stateLocked() stateResponse {
	st := s.ctrl.State()
	resp := stateResponse{
		ReferenceDate: naiveTime(st.ReferenceDate),
		Granularity:   st.Granularity,
		Title:         s.ctrl.Title(),
		WeekStart:     strings.ToLower(s.ctrl.WeekStart().String()),
	}
	if d, open := s.ctrl.Editor(); open {
		dto := toDraftDTO(d)
		resp.Editor = &dto
	}
	return resp
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := s.stateLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetGranularity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Granularity model.Granularity `json:"granularity"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Granularity == "" {
		writeError(w, http.StatusBadRequest, "granularity is required")
		return
	}

	s.mu.Lock()
	s.ctrl.SetGranularity(req.Granularity)
	resp := s.stateLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

// handleNavigate serves POST /api/view/{prev|next|today}.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch action {
	case "prev":
		s.ctrl.GoPrev()
	case "next":
		s.ctrl.GoNext()
	case "today":
		s.ctrl.GoToToday()
	default:
		writeError(w, http.StatusNotFound, "unknown view action: "+action)
		return
	}
	appLog.Debug("view navigated", "action", action, "reference_date", s.ctrl.State().ReferenceDate.Format(dateLayout))
	writeJSON(w, http.StatusOK, s.stateLocked())
}

// handleView returns the rendered session view.
//
// GET /api/view?granularity=week&date=2024-03-15
//   - granularity, date: optional; when given, the view is rendered for them
//     without changing the session state.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.Lock()
	st := s.ctrl.State()
	weekStart := s.ctrl.WeekStart()
	now := s.ctrl.Now()
	s.mu.Unlock()

	if v := q.Get("granularity"); v != "" {
		g, err := model.ParseGranularity(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		st.Granularity = g
	}
	if v := q.Get("date"); v != "" {
		t, err := parseNaive(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		st.ReferenceDate = t
	}

	snap := view.Render(st, weekStart, s.store.All(), now, s.mapper)
	writeJSON(w, http.StatusOK, toViewResponse(snap))
}

func (s *Server) handleNow(w http.ResponseWriter, _ *http.Request) {
	var reading clock.Reading
	if s.indicator != nil {
		reading = s.indicator.Reading()
	}

	s.mu.Lock()
	if reading.At.IsZero() {
		now := s.ctrl.Now()
		reading = clock.Reading{At: now, Offset: s.mapper.CurrentTimeOffset(now)}
	}
	visible := s.ctrl.TodayVisible()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, nowResponse{
		At:           naiveTime(reading.At),
		Offset:       reading.Offset,
		TodayVisible: visible,
	})
}

func (s *Server) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	events := s.store.All()
	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toEventDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(e))
}

// handleCommit saves an editor draft. POST creates unless the body carries
// an id; PUT /api/events/{id} always targets {id}. Updates of unknown ids
// are accepted as no-ops.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var dto eventDTO
	if err := decodeJSON(w, r, &dto); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if id := r.PathValue("id"); id != "" {
		dto.ID = id
	}

	d := dto.draft()
	if err := validateDraft(d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	e := s.ctrl.Commit(d)
	s.mu.Unlock()

	status := http.StatusOK
	if d.IsNew() {
		status = http.StatusCreated
	}
	writeJSON(w, status, toEventDTO(e))
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.ctrl.Discard(r.PathValue("id"))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRequestCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date naiveTime `json:"date"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if time.Time(req.Date).IsZero() {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	s.mu.Lock()
	d := s.ctrl.RequestCreate(time.Time(req.Date))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, toDraftDTO(d))
}

func (s *Server) handleRequestEdit(w http.ResponseWriter, r *http.Request) {
	e, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	s.mu.Lock()
	d := s.ctrl.RequestEdit(e)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, toDraftDTO(d))
}

func (s *Server) handleCloseEditor(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.ctrl.CloseEditor()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	body := ics.Export(s.store.All(), time.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

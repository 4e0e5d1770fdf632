package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"plancal/internal/agenda"
	"plancal/internal/config"
	"plancal/internal/ics"
	appLog "plancal/internal/log"
	"plancal/internal/model"
)

// Server exposes laid-out calendar views as JSON and the whole snapshot as
// an iCalendar feed. It never writes records back; series previews and
// deletion sets only tell the caller what to send to the backend.
type Server struct {
	cfg   *config.Config
	loc   *time.Location
	store *SnapshotStore
	mux   *http.ServeMux
	now   func() time.Time
}

// NewServer constructs a new Server reading from store.
func NewServer(cfg *config.Config, loc *time.Location, store *SnapshotStore) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		cfg:   cfg,
		loc:   loc,
		store: store,
		mux:   http.NewServeMux(),
		now:   time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/config", s.handleConfig)
	s.mux.HandleFunc("GET /api/day", s.withCalendar(s.handleDay))
	s.mux.HandleFunc("GET /api/week", s.withCalendar(s.handleWeek))
	s.mux.HandleFunc("GET /api/month", s.withCalendar(s.handleMonth))
	s.mux.HandleFunc("GET /api/progress", s.withCalendar(s.handleProgress))
	s.mux.HandleFunc("GET /api/matrix", s.withSnapshot(s.handleMatrix))
	s.mux.HandleFunc("GET /api/series/{id}", s.withSnapshot(s.handleSeries))
	s.mux.HandleFunc("POST /api/series/preview", s.handleSeriesPreview)
	s.mux.HandleFunc("GET /api/tasks/{id}/deletion", s.withSnapshot(s.handleDeletion))
	s.mux.HandleFunc("GET /calendar.ics", s.withCalendar(s.handleICS))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// calendarHandler is a handler that needs a loaded snapshot and a date.
type calendarHandler func(w http.ResponseWriter, r *http.Request, cal *agenda.Calendar, snap model.Snapshot, day time.Time)

// withCalendar resolves the current calendar and the ?date= parameter
// (default: today in the configured timezone).
func (s *Server) withCalendar(h calendarHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cal, snap, ok := s.store.Current()
		if !ok {
			writeError(w, http.StatusServiceUnavailable, "records not loaded yet")
			return
		}
		day := model.DateOf(s.now().In(s.loc))
		if v := r.URL.Query().Get("date"); v != "" {
			d, err := model.ParseDate(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad date format; expected YYYY-MM-DD")
				return
			}
			day = d
		}
		h(w, r, cal, snap, day)
	}
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		Timezone:    s.loc.String(),
		WeekStart:   s.cfg.WeekStart,
		DefaultView: s.cfg.DefaultView,
		ShowHabits:  s.cfg.ShowHabits,
		Midnight:    s.cfg.Midnight,
		UpdatedAt:   s.store.UpdatedAt(),
	})
}

func (s *Server) handleDay(w http.ResponseWriter, _ *http.Request, cal *agenda.Calendar, _ model.Snapshot, day time.Time) {
	writeJSON(w, http.StatusOK, toDayDTO(cal.Day(day)))
}

func (s *Server) handleWeek(w http.ResponseWriter, _ *http.Request, cal *agenda.Calendar, _ model.Snapshot, day time.Time) {
	writeJSON(w, http.StatusOK, weekOf(cal, day))
}

func weekOf(cal *agenda.Calendar, day time.Time) weekResponse {
	days := cal.Week(day)
	resp := weekResponse{WeekStart: model.DateKey(days[0].Date), Days: make([]dayDTO, 0, len(days))}
	for _, d := range days {
		resp.Days = append(resp.Days, toDayDTO(d))
	}
	return resp
}

// EncodeWeek writes the laid-out week containing day in the same JSON
// shape as /api/week.
func EncodeWeek(w io.Writer, cal *agenda.Calendar, day time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(weekOf(cal, day))
}

func (s *Server) handleMonth(w http.ResponseWriter, _ *http.Request, cal *agenda.Calendar, _ model.Snapshot, day time.Time) {
	g := cal.Month(day)
	resp := monthResponse{
		Year:  g.Year,
		Month: int(g.Month),
		Start: model.DateKey(g.Start),
		End:   model.DateKey(g.End),
		Days:  make([]monthDayDTO, 0, len(g.Days)),
	}
	for _, d := range g.Days {
		items := make([]eventDTO, 0, len(d.Items))
		for _, ev := range d.Items {
			items = append(items, toEventDTO(ev))
		}
		resp.Days = append(resp.Days, monthDayDTO{Date: model.DateKey(d.Date), InMonth: d.InMonth, Items: items})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request, cal *agenda.Calendar, _ model.Snapshot, day time.Time) {
	resp := progressResponse{Date: model.DateKey(day), Habits: make([]progressDTO, 0)}
	for _, p := range cal.Progress(day) {
		resp.Habits = append(resp.Habits, progressDTO{
			HabitID:    p.HabitID,
			WeekTarget: p.WeekTarget,
			WeekDone:   p.WeekDone,
			Streak:     p.Streak,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request, _ *agenda.Calendar, snap model.Snapshot, _ time.Time) {
	var buf bytes.Buffer
	if err := ics.Export(&buf, snap, ics.ExportOptions{Location: s.loc}); err != nil {
		appLog.Error("ics export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"plancal/internal/agenda"
	"plancal/internal/model"
	"plancal/internal/series"
)

// maxPreviewDays bounds how far a previewed series may repeat.
const maxPreviewDays = 366

// withSnapshot passes the current snapshot to h, or answers 503 before the
// first load.
func (s *Server) withSnapshot(h func(w http.ResponseWriter, r *http.Request, snap model.Snapshot)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, snap, ok := s.store.Current()
		if !ok {
			writeError(w, http.StatusServiceUnavailable, "records not loaded yet")
			return
		}
		h(w, r, snap)
	}
}

func (s *Server) handleMatrix(w http.ResponseWriter, _ *http.Request, snap model.Snapshot) {
	m := agenda.Matrix(snap.Tasks)
	resp := matrixResponse{Quadrants: make([]quadrantDTO, 0, len(m.Quadrants)), Unsorted: toTaskDTOs(m.Unsorted)}
	for _, q := range m.Quadrants {
		resp.Quadrants = append(resp.Quadrants, quadrantDTO{
			Priority:  q.Priority,
			Urgent:    q.Urgent,
			Important: q.Important,
			Tasks:     toTaskDTOs(q.Tasks),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request, snap model.Snapshot) {
	id := r.PathValue("id")
	members := series.Members(snap.Tasks, id)
	if len(members) == 0 {
		writeError(w, http.StatusNotFound, "series not found")
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{SeriesID: id, Tasks: toTaskDTOs(members)})
}

func (s *Server) handleDeletion(w http.ResponseWriter, r *http.Request, snap model.Snapshot) {
	id := r.PathValue("id")
	whole := false
	if v := r.URL.Query().Get("whole_series"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "whole_series must be true or false")
			return
		}
		whole = b
	}

	for _, t := range snap.Tasks {
		if t.ID == id {
			writeJSON(w, http.StatusOK, deletionResponse{
				TaskID:      id,
				WholeSeries: whole,
				IDs:         series.DeletionSet(snap.Tasks, t, whole),
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "task not found")
}

// handleSeriesPreview expands a task request into the tasks it would
// create. Nothing is stored.
func (s *Server) handleSeriesPreview(w http.ResponseWriter, r *http.Request) {
	var in seriesRequestDTO
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, err := in.request()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tasks, err := series.Generate(req)
	if err != nil {
		if errors.Is(err, series.ErrTitleRequired) || errors.Is(err, series.ErrDateRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to generate series")
		return
	}

	resp := seriesResponse{Tasks: toTaskDTOs(tasks)}
	if len(tasks) > 0 {
		resp.SeriesID = tasks[0].SeriesID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (in seriesRequestDTO) request() (series.Request, error) {
	req := series.Request{
		Title:       in.Title,
		Description: in.Description,
		Color:       in.Color,
		ProjectID:   in.ProjectID,
		Priority:    in.Priority,
		TimeOfDay:   in.TimeOfDay,
		Duration:    in.Duration,
		RepeatDays:  in.RepeatDays,
	}
	if in.Date != "" {
		d, err := model.ParseDate(in.Date)
		if err != nil {
			return series.Request{}, errors.New("bad date format; expected YYYY-MM-DD")
		}
		req.Date = d
	}
	for _, wd := range in.RepeatDays {
		if wd < 0 || wd > 6 {
			return series.Request{}, errors.New("repeat_days must be in 0..6")
		}
	}
	if in.RepeatUntil != "" {
		u, err := model.ParseDate(in.RepeatUntil)
		if err != nil {
			return series.Request{}, errors.New("bad repeat_until format; expected YYYY-MM-DD")
		}
		if !req.Date.IsZero() && u.After(model.AddDays(req.Date, maxPreviewDays)) {
			return series.Request{}, errors.New("repeat_until is too far after date")
		}
		req.RepeatUntil = &u
	}
	return req, nil
}

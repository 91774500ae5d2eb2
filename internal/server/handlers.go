package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/tracklayout/pkg/buildinfo"
	"github.com/matzehuels/tracklayout/pkg/core/layout"
	"github.com/matzehuels/tracklayout/pkg/core/mode"
	errs "github.com/matzehuels/tracklayout/pkg/errors"
	tio "github.com/matzehuels/tracklayout/pkg/io"
	"github.com/matzehuels/tracklayout/pkg/observability"
	"github.com/matzehuels/tracklayout/pkg/pipeline"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// LayoutRequest is the body of POST /v1/layout.
type LayoutRequest struct {
	SessionID   string        `json:"session_id,omitempty"`
	CanvasWidth float64       `json:"canvas_width"`
	Items       []layout.Item `json:"items"`
}

// SessionResponse describes a session.
type SessionResponse struct {
	ID        string        `json:"id"`
	Modes     mode.Snapshot `json:"modes"`
	ExpiresAt time.Time     `json:"expires_at,omitzero"`
}

// TransitionResponse is the state of one item after an event.
type TransitionResponse struct {
	SessionID string    `json:"session_id"`
	ItemID    string    `json:"item_id"`
	Event     string    `json:"event"`
	Mode      mode.Mode `json:"mode"`
	Pinned    bool      `json:"pinned"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

// handleLayout runs one pass. With ?format=svg the response is the SVG
// drawing, otherwise the layout JSON.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if format != pipeline.FormatJSON && format != pipeline.FormatSVG {
		writeError(w, errs.New(errs.ErrCodeInvalidInput, "format must be json or svg, got %q", format))
		return
	}

	track := &tio.Track{CanvasWidth: req.CanvasWidth, Items: req.Items}
	opts := s.opts.Pipeline
	opts.Formats = []string{format}
	opts.Session = req.SessionID
	opts.Logger = s.logger

	var result *pipeline.Result
	run := func(m *mode.Machine) error {
		o := opts
		o.Machine = m
		res, err := s.runner.ExecuteTrack(r.Context(), track, o)
		result = res
		return err
	}

	var err error
	if req.SessionID != "" {
		// The pass records resolved modes, so it runs under the session lock.
		_, err = s.sessions.Update(r.Context(), req.SessionID, run)
	} else {
		err = run(nil)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	switch format {
	case pipeline.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{ID: sess.ID, Modes: sess.Modes, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{ID: sess.ID, Modes: sess.Modes, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Update(r.Context(), id, func(m *mode.Machine) error {
		m.ResetAll()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	observability.Mode().OnReset(r.Context(), id)
	writeJSON(w, http.StatusOK, SessionResponse{ID: sess.ID, Modes: sess.Modes, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "item")
	if err := errs.ValidateItemID(itemID); err != nil {
		writeError(w, err)
		return
	}
	ev, err := mode.ParseEvent(chi.URLParam(r, "event"))
	if err != nil {
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "bad event"))
		return
	}
	weight := 1
	if v := r.URL.Query().Get("weight"); v != "" {
		weight, err = strconv.Atoi(v)
		if err != nil || weight < 1 {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "weight must be a positive integer, got %q", v))
			return
		}
	}

	var from, to mode.State
	_, err = s.sessions.Update(r.Context(), id, func(m *mode.Machine) error {
		from, _ = m.State(itemID)
		st, err := m.Apply(itemID, weight, ev)
		to = st
		return err
	})
	observability.Mode().OnTransition(r.Context(), itemID, ev.String(), from.Mode.String(), to.Mode.String(), err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TransitionResponse{
		SessionID: id,
		ItemID:    itemID,
		Event:     ev.String(),
		Mode:      to.Mode,
		Pinned:    to.Pinned,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.Wrap(errs.ErrCodeInvalidInput, err, "request body too large")
		}
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode request")
	}
	return nil
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Ashenafi-pixel/simple-roulette/spin"
)

const defaultHistoryLimit = 100

// spinResponse omits the selected item; it is published on reveal.
type spinResponse struct {
	SpinID       string        `json:"spinId"`
	Rotation     float64       `json:"rotation"`
	TransitionMS int64         `json:"transitionMs"`
	RevealAt     time.Time     `json:"revealAt"`
	State        spin.Snapshot `json:"state"`
}

type soundRequest struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) spin(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	out, err := s.spinner.Spin(sess.Address)
	switch {
	case errors.Is(err, spin.ErrSpinInProgress):
		writeError(w, http.StatusConflict, "the wheel is already spinning", codeSpinInProgress)
		return
	case err != nil:
		s.logger.Error("spin failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error(), codeInternal)
		return
	}
	snap := s.spinner.Snapshot()
	writeJSON(w, http.StatusAccepted, spinResponse{
		SpinID:       out.SpinID,
		Rotation:     out.Rotation,
		TransitionMS: snap.TransitionMS,
		RevealAt:     out.RevealAt,
		State:        snap,
	})
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.spinner.Snapshot())
}

// sound sets the flag from {"enabled": bool}; an empty body toggles it.
func (s *Server) sound(w http.ResponseWriter, r *http.Request) {
	var req soundRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body", codeBadRequest)
			return
		}
	}
	enabled := !s.spinner.Snapshot().Sound
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	writeJSON(w, http.StatusOK, s.spinner.SetSound(enabled))
}

// listHistory returns revealed spins newest first. format=jsonl streams
// JSON lines; format=jsonl.zst streams them zstd-compressed.
func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusOK, []spin.Record{})
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", codeBadRequest)
			return
		}
		limit = n
	}
	records, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read history", codeInternal)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		if records == nil {
			records = []spin.Record{}
		}
		writeJSON(w, http.StatusOK, records)
	case "jsonl":
		w.Header().Set("Content-Type", "application/x-ndjson")
		if err := spin.ExportJSONL(w, records, false); err != nil {
			s.logger.Warn("history export failed", "error", err)
		}
	case "jsonl.zst":
		w.Header().Set("Content-Type", "application/zstd")
		w.Header().Set("Content-Disposition", `attachment; filename="spin_history.jsonl.zst"`)
		if err := spin.ExportJSONL(w, records, true); err != nil {
			s.logger.Warn("history export failed", "error", err)
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be json, jsonl or jsonl.zst", codeBadRequest)
	}
}

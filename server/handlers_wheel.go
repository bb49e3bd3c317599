package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Ashenafi-pixel/simple-roulette/preset"
	"github.com/Ashenafi-pixel/simple-roulette/spin"
	"github.com/Ashenafi-pixel/simple-roulette/wheel"
)

const maxBodyBytes = 1 << 20

type wheelResponse struct {
	Items       []wheel.Item    `json:"items"`
	Segments    []wheel.Segment `json:"segments"`
	TotalWeight int             `json:"totalWeight"`
	State       spin.Snapshot   `json:"state"`
}

type itemResponse struct {
	Index int        `json:"index"`
	Item  wheel.Item `json:"item"`
}

// updateItemRequest edits one item. Weight sets the value directly;
// WeightDelta steps it (the +/- buttons). Both are clamped to [1, 50].
type updateItemRequest struct {
	Name        *string `json:"name"`
	Weight      *int    `json:"weight"`
	WeightDelta *int    `json:"weightDelta"`
}

func (s *Server) wheelView() wheelResponse {
	items := s.wheel.Snapshot()
	return wheelResponse{
		Items:       items,
		Segments:    wheel.Layout(items, wheel.Radius, wheel.LabelRadius),
		TotalWeight: wheel.TotalWeight(items),
		State:       s.spinner.Snapshot(),
	}
}

// saveWheel persists the current items. The in-memory edit already happened,
// so a store failure is logged and does not fail the request.
func (s *Server) saveWheel(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.wheel.Snapshot()); err != nil {
		s.logger.Error("failed to save wheel items", "error", err)
	}
}

func (s *Server) getWheel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.wheelView())
}

func (s *Server) getWheelSVG(w http.ResponseWriter, r *http.Request) {
	items := s.wheel.Snapshot()
	snap := s.spinner.Snapshot()
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if err := wheel.RenderSVG(w, items, snap.Rotation); err != nil {
		s.logger.Warn("failed to write wheel svg", "error", err)
	}
}

func (s *Server) replaceItems(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body", codeBadRequest)
		return
	}
	items, err := preset.ParseItems(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeInvalidItems)
		return
	}
	if err := s.wheel.Replace(items); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeInvalidItems)
		return
	}
	s.saveWheel(r.Context())
	writeJSON(w, http.StatusOK, s.wheelView())
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	it := s.wheel.Add()
	s.saveWheel(r.Context())
	writeJSON(w, http.StatusCreated, itemResponse{Index: s.wheel.Len() - 1, Item: it})
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", codeBadRequest)
		return
	}
	if req.Name == nil && req.Weight == nil && req.WeightDelta == nil {
		writeError(w, http.StatusBadRequest, "nothing to update", codeBadRequest)
		return
	}

	var (
		it  wheel.Item
		err error
	)
	if req.Name != nil {
		it, err = s.wheel.UpdateName(index, *req.Name)
	}
	if err == nil && req.Weight != nil {
		it, err = s.wheel.SetWeight(index, *req.Weight)
	}
	if err == nil && req.WeightDelta != nil {
		it, err = s.wheel.UpdateWeight(index, *req.WeightDelta)
	}
	if err != nil {
		s.writeWheelError(w, err)
		return
	}
	s.saveWheel(r.Context())
	writeJSON(w, http.StatusOK, itemResponse{Index: index, Item: it})
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if err := s.wheel.Remove(index); err != nil {
		s.writeWheelError(w, err)
		return
	}
	s.saveWheel(r.Context())
	writeJSON(w, http.StatusOK, s.wheelView())
}

func (s *Server) writeWheelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wheel.ErrIndexOutOfRange):
		writeError(w, http.StatusNotFound, err.Error(), codeIndexOutOfRange)
	case errors.Is(err, wheel.ErrTooFewItems):
		writeError(w, http.StatusConflict, "the wheel needs at least 2 items", codeTooFewItems)
	default:
		s.logger.Error("wheel edit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "wheel edit failed", codeInternal)
	}
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer", codeBadRequest)
		return 0, false
	}
	return index, true
}

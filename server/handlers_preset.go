package server

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/Ashenafi-pixel/simple-roulette/preset"
)

const maxPresetUpload = 4 << 20

type presetSummary struct {
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	ItemCount int    `json:"itemCount"`
}

type importPresetResponse struct {
	OK       bool     `json:"ok"`
	Imported []string `json:"imported"`
	Stored   bool     `json:"stored"`
	Message  string   `json:"message,omitempty"`
}

func (s *Server) listPresets(w http.ResponseWriter, r *http.Request) {
	list := s.presets.List()
	out := make([]presetSummary, len(list))
	for i, p := range list {
		out[i] = presetSummary{Name: p.Name, Title: p.Title, ItemCount: len(p.Items)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) applyPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.presets.Get(r.PathValue("name"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), codePresetNotFound)
		return
	}
	if err := s.wheel.Replace(p.Items); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), codeInvalidPreset)
		return
	}
	s.logger.Info("preset applied", "preset", p.Name, "items", len(p.Items))
	s.saveWheel(r.Context())
	writeJSON(w, http.StatusOK, s.wheelView())
}

// importPreset registers presets uploaded as a single YAML document or as a
// ZIP of *.yaml / *.yml files (Content-Type: application/zip). With a database
// configured they are stored in wheel_presets as well.
func (s *Server) importPreset(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPresetUpload))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body", codeBadRequest)
		return
	}
	if len(body) == 0 {
		writeError(w, http.StatusBadRequest, "empty request body", codeBadRequest)
		return
	}

	var docs [][]byte
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/zip" {
		docs, err = presetDocsFromZip(body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), codeInvalidPreset)
			return
		}
	} else {
		docs = [][]byte{body}
	}

	parsed := make([]preset.Preset, 0, len(docs))
	for _, doc := range docs {
		p, err := preset.Parse(doc)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), codeInvalidPreset)
			return
		}
		if p.Name == preset.DefaultName {
			writeError(w, http.StatusBadRequest, "the default preset cannot be replaced", codeInvalidPreset)
			return
		}
		parsed = append(parsed, p)
	}

	resp := importPresetResponse{OK: true, Imported: make([]string, 0, len(parsed)), Stored: s.db != nil}
	for _, p := range parsed {
		if s.db != nil {
			if err := preset.Upsert(r.Context(), s.db, p); err != nil {
				s.logger.Error("failed to store preset", "preset", p.Name, "error", err)
				writeError(w, http.StatusInternalServerError, "failed to store preset", codeInternal)
				return
			}
		}
		s.presets.Register(p)
		resp.Imported = append(resp.Imported, p.Name)
	}
	s.logger.Info("presets imported", "names", resp.Imported, "stored", resp.Stored)
	writeJSON(w, http.StatusCreated, resp)
}

// presetDocsFromZip returns the YAML files of a ZIP archive. Directories and
// other files are ignored.
func presetDocsFromZip(zipBytes []byte) ([][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	var docs [][]byte
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(path.Ext(f.Name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(io.LimitReader(rc, maxPresetUpload))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		docs = append(docs, b)
	}
	if len(docs) == 0 {
		return nil, errors.New("no preset files in zip")
	}
	return docs, nil
}

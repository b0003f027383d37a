package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/michaelbrown/codepad/internal/execution"
	"github.com/michaelbrown/codepad/internal/judge"
	"github.com/michaelbrown/codepad/internal/preview"
	"github.com/michaelbrown/codepad/internal/storage"
)

const maxBodyBytes = 1 << 20

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// --- Language handlers ---

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Languages())
}

func (s *Server) handleJudgeLanguages(w http.ResponseWriter, r *http.Request) {
	if s.judges == nil {
		writeError(w, http.StatusServiceUnavailable, "no judge configured")
		return
	}

	langs, err := s.judges.Languages(r.Context())
	if err != nil {
		s.writeRunError(w, err)
		return
	}
	if langs == nil {
		langs = []judge.Language{}
	}
	writeJSON(w, http.StatusOK, langs)
}

// --- Run handler ---

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req execution.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := validateRun(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func validateRun(req execution.Request) error {
	if req.Language <= 0 {
		return errors.New("language_id is required")
	}
	return nil
}

// runErrorBody is the JSON shape of a failed run. JudgeBody carries the
// judge's own error payload on transport failures.
type runErrorBody struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code,omitempty"`
	JudgeBody  string `json:"judge_body,omitempty"`
}

// runErrorStatus maps a backend failure onto an HTTP status.
func runErrorStatus(err error) int {
	var te *judge.TransportError
	switch {
	case errors.As(err, &te):
		return http.StatusBadGateway
	case errors.Is(err, execution.ErrTimedOut):
		return http.StatusGatewayTimeout
	case errors.Is(err, execution.ErrNoBackend):
		return http.StatusServiceUnavailable
	case errors.Is(err, execution.ErrEvaluatorCrash):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	status := runErrorStatus(err)
	body := runErrorBody{Error: err.Error()}

	var te *judge.TransportError
	if errors.As(err, &te) {
		body.StatusCode = te.StatusCode
		body.JudgeBody = te.Body
	}
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout {
		s.log.Warn("run failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, body)
}

// --- Preview handlers ---

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var set preview.ArtifactSet
	if err := decodeJSON(w, r, &set); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	writeDocument(w, preview.Compose(set))
}

func (s *Server) handleProjectPreview(w http.ResponseWriter, r *http.Request) {
	_, set, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	writeDocument(w, preview.Compose(set))
}

func (s *Server) handleProjectFrame(w http.ResponseWriter, r *http.Request) {
	p, set, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	title := p.Name
	if title == "" {
		title = p.ID
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, preview.FramePage(title, preview.Compose(set)))
}

func (s *Server) handleProjectArchive(w http.ResponseWriter, r *http.Request) {
	p, set, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	data, err := preview.ArchiveBytes(set)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("building archive: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, archiveName(p)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// writeDocument serves a composed document. It holds untrusted code, so it
// only ever leaves the server under the sandbox policy.
func writeDocument(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", preview.SandboxCSP)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, doc)
}

func (s *Server) loadProject(w http.ResponseWriter, r *http.Request) (*storage.Project, preview.ArtifactSet, bool) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no project store configured")
		return nil, preview.ArtifactSet{}, false
	}

	id := chi.URLParam(r, "id")
	p, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "project not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, preview.ArtifactSet{}, false
	}

	files, err := s.store.ListFiles(r.Context(), p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, preview.ArtifactSet{}, false
	}
	return p, preview.FromFiles(files), true
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// archiveName derives a download name from the project name.
func archiveName(p *storage.Project) string {
	name := unsafeFileChars.ReplaceAllString(p.Name, "-")
	if name == "" || name == "-" {
		return "project-" + p.ID
	}
	return name
}

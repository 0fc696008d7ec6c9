package server

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/depscope/pkg/buildinfo"
	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/pipeline"
	"github.com/matzehuels/depscope/pkg/report"
	"github.com/matzehuels/depscope/pkg/session"
)

const contentTypeSVG = "image/svg+xml"

type errorResponse struct {
	Code  errors.Code `json:"code,omitempty"`
	Error string      `json:"error"`
}

type sessionResponse struct {
	ID       string       `json:"id"`
	Source   string       `json:"source"`
	Stats    report.Stats `json:"stats"`
	Circular int          `json:"circular_edges"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Code: errors.GetCode(err), Error: errors.UserMessage(err)})
}

func writeSVG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", contentTypeSVG)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// snapshot resolves the session named by the request, or the latest one.
func (s *Server) snapshot(r *http.Request) (*session.Snapshot, error) {
	id := r.Header.Get(SessionHeader)
	if id == "" {
		id = r.URL.Query().Get("session")
	}
	return s.sessions.Get(r.Context(), id)
}

// requiredParam returns a validated, non-empty query parameter.
func requiredParam(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "missing required parameter %q", name)
	}
	if err := errors.ValidateIdentifier(v); err != nil {
		return "", err
	}
	return v, nil
}

func (s *Server) renderOptions() pipeline.RenderOptions {
	return pipeline.RenderOptions{
		Format:   pipeline.FormatSVG,
		Detailed: s.opts.Detailed,
		Timeout:  s.opts.RenderTimeout,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

// handleGenerate parses an uploaded report, publishes it as the latest
// session and answers with one SVG per chunk joined by newlines.
// uploadName returns the filename as the client sent it. The multipart
// reader strips directories from header.Filename, so a path would otherwise
// pass validation unseen.
func uploadName(header *multipart.FileHeader) string {
	_, params, err := mime.ParseMediaType(header.Header.Get("Content-Disposition"))
	if err != nil || params["filename"] == "" {
		return header.Filename
	}
	return params["filename"]
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "Please select a file to upload."))
		return
	}
	defer file.Close()

	if err := errors.ValidateUploadName(uploadName(header)); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload"))
		return
	}
	if len(data) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeEmptyInput, "Please select a file to upload."))
		return
	}

	opts := s.opts.Parse
	if v := r.URL.Query().Get("chunkSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidChunkSize, "chunk size must be a positive integer, got %q", v))
			return
		}
		if err := errors.ValidateChunkSize(n); err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.ChunkSize = n
	}

	res, err := s.pipeline.Ingest(r.Context(), header.Filename, data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.sessions.Publish(r.Context(), res.Snapshot); err != nil {
		s.writeError(w, r, err)
		return
	}

	svgs, err := s.pipeline.Render(r.Context(), res.Snapshot, s.renderOptions())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	parts := make([]string, len(svgs))
	for i, svg := range svgs {
		parts[i] = string(svg)
	}
	w.Header().Set(SessionHeader, res.Snapshot.ID)
	writeSVG(w, []byte(strings.Join(parts, "\n")))
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:       snap.ID,
		Source:   snap.Source,
		Stats:    snap.Report.Stats,
		Circular: snap.Circular.Len(),
	})
}

// handleDeleteSession drops the selected session. Deleting the latest
// session makes queries without a session ID fail until the next upload.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.sessions.Delete(r.Context(), snap.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTitleNodes(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg, err := s.pipeline.RenderTitles(r.Context(), snap, s.renderOptions())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSVG(w, svg)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	focus, err := requiredParam(r, "focusNode")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg, err := s.pipeline.RenderFocus(r.Context(), snap, focus, s.renderOptions())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSVG(w, svg)
}

// handleSearch renders the focus graph of the first title that references
// the term, highlighting the term itself.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	term, err := requiredParam(r, "term")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	title, ok := snap.Index.SearchTitle(term)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "Node not found"))
		return
	}
	opts := s.renderOptions()
	opts.Highlight = term
	svg, err := s.pipeline.RenderFocus(r.Context(), snap, title, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeSVG(w, svg)
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	term, err := requiredParam(r, "term")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Index.Autocomplete(term, s.opts.AutocompleteLimit))
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	title, err := requiredParam(r, "title")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	children, _ := snap.Index.ChildrenOf(title, r.URL.Query().Get("project"))
	writeJSON(w, http.StatusOK, children)
}

func (s *Server) handleCircular(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Index.TitlesWithCircularDependencies())
}

func (s *Server) handleTitlesForDependency(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dep, err := requiredParam(r, "dependency")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Index.TitlesReferencing(dep))
}

func (s *Server) handleTitles(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pattern := r.URL.Query().Get("match")
	if pattern == "" {
		writeJSON(w, http.StatusOK, snap.Index.Titles())
		return
	}
	titles, err := snap.Index.MatchTitles(pattern)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, titles)
}

func (s *Server) handleCoordinate(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := requiredParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, ok := snap.Index.Coordinate(id)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no coordinate for %q", id))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

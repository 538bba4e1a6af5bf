package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/tilegrid/internal/board"
	"github.com/matzehuels/tilegrid/pkg/buildinfo"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/project"
	"github.com/matzehuels/tilegrid/pkg/store"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

// maxBodySize caps uploaded project documents.
const maxBodySize = 1 << 20

// =============================================================================
// Responses
// =============================================================================

// healthResponse is returned by the health endpoint.
type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// loadResponse is returned after a board is uploaded.
type loadResponse struct {
	Project  *project.Project `json:"project"`
	Placed   []string         `json:"placed"`
	Unplaced []string         `json:"unplaced"`
	Moved    []string         `json:"moved"`
	Cleared  []string         `json:"cleared"`
}

// placeResponse is returned by the place endpoint.
type placeResponse struct {
	Project  *project.Project `json:"project"`
	Placed   []string         `json:"placed"`
	Unplaced []string         `json:"unplaced"`
}

// repairResponse is returned by the repair endpoint.
type repairResponse struct {
	Project *project.Project `json:"project"`
	Moved   []string         `json:"moved"`
	Cleared []string         `json:"cleared"`
}

// fitResponse is returned by the fit endpoint.
type fitResponse struct {
	Size string `json:"size"`
	Fits bool   `json:"fits"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	code := errors.GetCode(err)
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCapacityExceeded, errors.ErrCodeStaleSession, errors.ErrCodeInvalidDisplacement,
		errors.ErrCodeDragInProgress, errors.ErrCodeNoDragSession:
		return http.StatusConflict
	}
	if strings.HasPrefix(string(code), "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: string(code), Message: errors.UserMessage(err)})
}

// readBody reads a request body up to maxBodySize.
func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if len(data) > maxBodySize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "body larger than %d bytes", maxBodySize)
	}
	return data, nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Current()})
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "list boards"))
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"boards": names})
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var data []byte
	err := s.withBoard(r.Context(), name, func(b *board.Board) error {
		var err error
		data, err = project.Marshal(b.Project, project.FormatJSON)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handlePutBoard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := project.Unmarshal(data, project.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if p.Name != name {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidProject, "project name %q does not match board %q", p.Name, name))
		return
	}

	b, rep, err := board.Open(p, s.boardOptions(context.WithoutCancel(r.Context())))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.persist(r.Context(), b); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.replace(name, b)

	writeJSON(w, http.StatusOK, loadResponse{
		Project:  b.Project,
		Placed:   nonNil(rep.Placed),
		Unplaced: nonNil(rep.Unplaced),
		Moved:    nonNil(rep.Repair.Moved),
		Cleared:  nonNil(rep.Repair.Cleared),
	})
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	e := s.entry(name)
	e.mu.Lock()
	err := s.store.Delete(r.Context(), name)
	e.board = nil
	e.mu.Unlock()
	s.forget(name, e)

	if stderrors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "board %q not found", name))
		return
	}
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "delete board %s", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var resp placeResponse
	err := s.withBoard(r.Context(), chi.URLParam(r, "name"), func(b *board.Board) error {
		res := b.Engine.Place()
		if len(res.Placed) > 0 {
			b.Sync()
			if err := s.persist(r.Context(), b); err != nil {
				return err
			}
		}
		resp = placeResponse{Project: b.Project, Placed: nonNil(res.Placed), Unplaced: nonNil(res.Unplaced)}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	var resp repairResponse
	err := s.withBoard(r.Context(), chi.URLParam(r, "name"), func(b *board.Board) error {
		rep := b.Engine.RepairBounds()
		if rep.Changed() {
			b.Sync()
			if err := s.persist(r.Context(), b); err != nil {
				return err
			}
		}
		resp = repairResponse{Project: b.Project, Moved: nonNil(rep.Moved), Cleared: nonNil(rep.Cleared)}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	fp, err := footprintQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var fits bool
	err = s.withBoard(r.Context(), chi.URLParam(r, "name"), func(b *board.Board) error {
		fits = b.Engine.CanFit(fp)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fitResponse{Size: fp.String(), Fits: fits})
}

// footprintQuery reads ?size=WxH or ?kind=K.
func footprintQuery(r *http.Request) (grid.Footprint, error) {
	q := r.URL.Query()
	if size := q.Get("size"); size != "" {
		return grid.ParseFootprint(size)
	}
	if kind := q.Get("kind"); kind != "" {
		k, err := tile.ParseKind(kind)
		if err != nil {
			return grid.Footprint{}, err
		}
		fp, _ := k.Footprint()
		return fp, nil
	}
	return grid.Footprint{}, errors.New(errors.ErrCodeInvalidInput, "size or kind query parameter is required")
}

func (s *Server) handleAddTile(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var t project.Tile
	if err := json.Unmarshal(data, &t); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode tile"))
		return
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	var added project.Tile
	err = s.withBoard(r.Context(), chi.URLParam(r, "name"), func(b *board.Board) error {
		var err error
		if added, err = b.Add(t); err != nil {
			return err
		}
		return s.persist(r.Context(), b)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleRemoveTile(w http.ResponseWriter, r *http.Request) {
	err := s.withBoard(r.Context(), chi.URLParam(r, "name"), func(b *board.Board) error {
		if err := b.Remove(chi.URLParam(r, "id")); err != nil {
			return err
		}
		return s.persist(r.Context(), b)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

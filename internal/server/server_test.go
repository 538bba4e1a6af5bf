package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tilegrid/pkg/buildinfo"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/project"
	"github.com/matzehuels/tilegrid/pkg/store"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

func intp(v int) *int { return &v }

// sampleBoard is an 8x4 board with two tiles in the top row and one in the
// bottom-right corner.
func sampleBoard() *project.Project {
	p := project.New("set", grid.Default())
	p.Tiles = []project.Tile{
		{ID: "a", Title: "Play", Kind: tile.KindButton, Col: intp(0), Row: intp(0)},
		{ID: "b", Kind: tile.KindSmallButton, Col: intp(2), Row: intp(0)},
		{ID: "n", Kind: tile.KindButton, Col: intp(6), Row: intp(3)},
	}
	return p
}

func newTestServer(t *testing.T, projects ...*project.Project) (*Server, *httptest.Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	for _, p := range projects {
		if err := st.Put(context.Background(), p); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	srv, ts := serveStore(t, st)
	return srv, ts, st
}

func serveStore(t *testing.T, st store.Store) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(st, Options{Logger: log.New(io.Discard)})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, ts
}

// readOnlyStore rejects every write.
type readOnlyStore struct {
	store.Store
}

func (readOnlyStore) Put(context.Context, *project.Project) error {
	return stderrors.New("disk full")
}

// newReadOnlyServer serves projects from a store that cannot save.
func newReadOnlyServer(t *testing.T, projects ...*project.Project) (*httptest.Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	for _, p := range projects {
		if err := st.Put(context.Background(), p); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	_, ts := serveStore(t, readOnlyStore{Store: st})
	return ts, st
}

func tileIDs(tiles []project.Tile) []string {
	ids := make([]string, len(tiles))
	for i, t := range tiles {
		ids[i] = t.ID
	}
	return ids
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func expectError(t *testing.T, resp *http.Response, data []byte, status int, code errors.Code) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("status = %d, want %d (%s)", resp.StatusCode, status, data)
	}
	if got := decode[errorResponse](t, data); got.Code != string(code) {
		t.Errorf("code = %q, want %q", got.Code, code)
	}
}

// =============================================================================
// Boards
// =============================================================================

func TestHealth(t *testing.T) {
	_, ts, _ := newTestServer(t)
	resp, data := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /healthz = %d %s", resp.StatusCode, data)
	}
	got := decode[healthResponse](t, data)
	if got.Status != "ok" || got.Build != buildinfo.Current() {
		t.Errorf("GET /healthz = %+v", got)
	}
}

func TestListBoards(t *testing.T) {
	_, ts, _ := newTestServer(t)
	_, data := do(t, http.MethodGet, ts.URL+"/boards", "")
	if got := decode[map[string][]string](t, data); len(got["boards"]) != 0 || got["boards"] == nil {
		t.Errorf("GET /boards = %s, want empty list", data)
	}

	other := project.New("other", grid.Default())
	_, ts, _ = newTestServer(t, sampleBoard(), other)
	_, data = do(t, http.MethodGet, ts.URL+"/boards", "")
	if diff := cmp.Diff([]string{"other", "set"}, decode[map[string][]string](t, data)["boards"]); diff != "" {
		t.Errorf("GET /boards mismatch (-want +got):\n%s", diff)
	}
}

func TestGetBoard(t *testing.T) {
	_, ts, _ := newTestServer(t, sampleBoard())

	resp, data := do(t, http.MethodGet, ts.URL+"/boards/set", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /boards/set = %d %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	got, err := project.Unmarshal(data, project.FormatJSON)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff(sampleBoard(), got); diff != "" {
		t.Errorf("GET /boards/set mismatch (-want +got):\n%s", diff)
	}

	resp, data = do(t, http.MethodGet, ts.URL+"/boards/missing", "")
	expectError(t, resp, data, http.StatusNotFound, errors.ErrCodeNotFound)
}

func TestPutBoard(t *testing.T) {
	_, ts, st := newTestServer(t)

	doc := `{
		"name": "fresh",
		"grid": {"columns": 4, "rows": 2},
		"tiles": [
			{"id": "a", "kind": "button"},
			{"id": "b", "kind": "small_button", "col": 9, "row": 9}
		]
	}`
	resp, data := do(t, http.MethodPut, ts.URL+"/boards/fresh", doc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /boards/fresh = %d %s", resp.StatusCode, data)
	}
	got := decode[loadResponse](t, data)
	if diff := cmp.Diff([]string{"a"}, got.Placed); diff != "" {
		t.Errorf("placed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, got.Moved); diff != "" {
		t.Errorf("moved mismatch (-want +got):\n%s", diff)
	}
	if len(got.Unplaced) != 0 || len(got.Cleared) != 0 {
		t.Errorf("PUT response = %+v", got)
	}

	stored, err := st.Get(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("store.Get() error = %v", err)
	}
	if diff := cmp.Diff(got.Project, stored); diff != "" {
		t.Errorf("stored project mismatch (-response +stored):\n%s", diff)
	}
	b, _ := stored.Tile("b")
	if *b.Col != 0 || *b.Row != 0 {
		t.Errorf("b stored at (%d,%d), want (0,0)", *b.Col, *b.Row)
	}

	resp, data = do(t, http.MethodPut, ts.URL+"/boards/other", doc)
	expectError(t, resp, data, http.StatusBadRequest, errors.ErrCodeInvalidProject)

	resp, data = do(t, http.MethodPut, ts.URL+"/boards/fresh", `{"name": "fresh", "tiles": [{"id": "x"}]}`)
	expectError(t, resp, data, http.StatusBadRequest, errors.ErrCodeInvalidProject)

	resp, data = do(t, http.MethodPut, ts.URL+"/boards/fresh", strings.Repeat(" ", maxBodySize+1))
	expectError(t, resp, data, http.StatusBadRequest, errors.ErrCodeInvalidInput)
}

func TestPutBoardReplacesCachedBoard(t *testing.T) {
	_, ts, _ := newTestServer(t, sampleBoard())
	do(t, http.MethodGet, ts.URL+"/boards/set", "")

	resp, data := do(t, http.MethodPut, ts.URL+"/boards/set", `{"name": "set", "tiles": [{"id": "z", "kind": "button"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /boards/set = %d %s", resp.StatusCode, data)
	}
	_, data = do(t, http.MethodGet, ts.URL+"/boards/set", "")
	p, err := project.Unmarshal(data, project.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Tiles) != 1 || p.Tiles[0].ID != "z" {
		t.Errorf("GET after PUT = %+v", p.Tiles)
	}
}

func TestDeleteBoard(t *testing.T) {
	_, ts, st := newTestServer(t, sampleBoard())
	do(t, http.MethodGet, ts.URL+"/boards/set", "")

	resp, data := do(t, http.MethodDelete, ts.URL+"/boards/set", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE /boards/set = %d %s", resp.StatusCode, data)
	}
	if _, err := st.Get(context.Background(), "set"); !stderrors.Is(err, store.ErrNotFound) {
		t.Errorf("store.Get() after delete error = %v, want ErrNotFound", err)
	}

	resp, data = do(t, http.MethodGet, ts.URL+"/boards/set", "")
	expectError(t, resp, data, http.StatusNotFound, errors.ErrCodeNotFound)
	resp, data = do(t, http.MethodDelete, ts.URL+"/boards/set", "")
	expectError(t, resp, data, http.StatusNotFound, errors.ErrCodeNotFound)
}

// =============================================================================
// Operations
// =============================================================================

func TestPlaceAndRepair(t *testing.T) {
	_, ts, _ := newTestServer(t, sampleBoard())

	resp, data := do(t, http.MethodPost, ts.URL+"/boards/set/place", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST place = %d %s", resp.StatusCode, data)
	}
	placed := decode[placeResponse](t, data)
	if len(placed.Placed) != 0 || len(placed.Unplaced) != 0 || len(placed.Project.Tiles) != 3 {
		t.Errorf("POST place = %s", data)
	}

	resp, data = do(t, http.MethodPost, ts.URL+"/boards/set/repair", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST repair = %d %s", resp.StatusCode, data)
	}
	repaired := decode[repairResponse](t, data)
	if len(repaired.Moved) != 0 || len(repaired.Cleared) != 0 {
		t.Errorf("POST repair = %s", data)
	}

	resp, data = do(t, http.MethodPost, ts.URL+"/boards/missing/place", "")
	expectError(t, resp, data, http.StatusNotFound, errors.ErrCodeNotFound)
}

func TestFit(t *testing.T) {
	p := project.New("row", grid.Grid{Columns: 4, MaxRows: 1})
	p.Tiles = []project.Tile{{ID: "a", Kind: tile.KindButton, Col: intp(0), Row: intp(0)}}
	_, ts, _ := newTestServer(t, p)

	tests := []struct {
		query string
		want  fitResponse
	}{
		{"size=2x1", fitResponse{Size: "2x1", Fits: true}},
		{"size=3x1", fitResponse{Size: "3x1", Fits: false}},
		{"kind=small_button", fitResponse{Size: "1x1", Fits: true}},
		{"kind=fader_vertical", fitResponse{Size: "1x2", Fits: false}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, data := do(t, http.MethodGet, ts.URL+"/boards/row/fit?"+tt.query, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("GET fit = %d %s", resp.StatusCode, data)
			}
			if got := decode[fitResponse](t, data); got != tt.want {
				t.Errorf("GET fit = %+v, want %+v", got, tt.want)
			}
		})
	}

	for _, query := range []string{"", "size=x", "kind=knob"} {
		resp, data := do(t, http.MethodGet, ts.URL+"/boards/row/fit?"+query, "")
		expectError(t, resp, data, http.StatusBadRequest, errors.ErrCodeInvalidInput)
	}
}

func TestAddRemoveTile(t *testing.T) {
	p := project.New("row", grid.Grid{Columns: 4, MaxRows: 1})
	p.Tiles = []project.Tile{{ID: "a", Kind: tile.KindButton, Col: intp(0), Row: intp(0)}}
	_, ts, st := newTestServer(t, p)

	resp, data := do(t, http.MethodPost, ts.URL+"/boards/row/tiles", `{"title": "Rec", "kind": "small_button"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST tiles = %d %s", resp.StatusCode, data)
	}
	added := decode[project.Tile](t, data)
	if added.ID == "" || added.Title != "Rec" || added.Col == nil || *added.Col != 2 {
		t.Errorf("POST tiles = %s", data)
	}

	stored, err := st.Get(context.Background(), "row")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := stored.Tile(added.ID); !ok {
		t.Errorf("added tile %s was not persisted", added.ID)
	}

	resp, data = do(t, http.MethodPost, ts.URL+"/boards/row/tiles", `{"id": "big", "width": 2, "height": 1}`)
	expectError(t, resp, data, http.StatusConflict, errors.ErrCodeCapacityExceeded)
	resp, data = do(t, http.MethodPost, ts.URL+"/boards/row/tiles", `{"id": "a", "kind": "small_button"}`)
	expectError(t, resp, data, http.StatusBadRequest, errors.ErrCodeInvalidTile)
	resp, data = do(t, http.MethodPost, ts.URL+"/boards/row/tiles", `{`)
	expectError(t, resp, data, http.StatusBadRequest, errors.ErrCodeInvalidInput)

	resp, data = do(t, http.MethodDelete, ts.URL+"/boards/row/tiles/"+added.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE tile = %d %s", resp.StatusCode, data)
	}
	resp, data = do(t, http.MethodDelete, ts.URL+"/boards/row/tiles/"+added.ID, "")
	expectError(t, resp, data, http.StatusNotFound, errors.ErrCodeNotFound)

	stored, err = st.Get(context.Background(), "row")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Tiles) != 1 {
		t.Errorf("stored tiles after delete = %+v", stored.Tiles)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeCapacityExceeded, "x"), http.StatusConflict},
		{errors.New(errors.ErrCodeStaleSession, "x"), http.StatusConflict},
		{errors.New(errors.ErrCodeDragInProgress, "x"), http.StatusConflict},
		{errors.New(errors.ErrCodeNoDragSession, "x"), http.StatusConflict},
		{errors.New(errors.ErrCodeInvalidDisplacement, "x"), http.StatusConflict},
		{errors.New(errors.ErrCodeInvalidGrid, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInvalidProject, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestFailedSaveKeepsStoredBoard(t *testing.T) {
	ts, st := newReadOnlyServer(t, sampleBoard())
	want := []string{"a", "b", "n"}

	resp, data := do(t, http.MethodPost, ts.URL+"/boards/set/tiles", `{"id": "x", "kind": "small_button"}`)
	expectError(t, resp, data, http.StatusInternalServerError, errors.ErrCodeInternal)
	resp, data = do(t, http.MethodDelete, ts.URL+"/boards/set/tiles/a", "")
	expectError(t, resp, data, http.StatusInternalServerError, errors.ErrCodeInternal)

	_, data = do(t, http.MethodGet, ts.URL+"/boards/set", "")
	if diff := cmp.Diff(want, tileIDs(decode[project.Project](t, data).Tiles)); diff != "" {
		t.Errorf("GET after failed saves mismatch (-want +got):\n%s", diff)
	}
	stored, err := st.Get(context.Background(), "set")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(want, tileIDs(stored.Tiles)); diff != "" {
		t.Errorf("stored tiles mismatch (-want +got):\n%s", diff)
	}
}

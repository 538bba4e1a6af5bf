package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/tile"
)

func sampleProject() *Project {
	return &Project{
		Name: "live-set",
		Grid: grid.Default(),
		Tiles: []Tile{
			{ID: "t1", Title: "Play", Kind: tile.KindButton, Col: intp(0), Row: intp(0),
				MIDI: &MIDI{Type: MIDINote, Channel: 1, Number: 60}},
			{ID: "t2", Title: "Vol", Width: 1, Height: 2},
			{ID: "t3", Kind: tile.KindSmallButton, Col: intp(7), Row: intp(3),
				MIDI: &MIDI{Type: MIDIControl, Channel: 16, Number: 0}},
		},
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"set.json", FormatJSON, false},
		{"dir/set.TOML", FormatTOML, false},
		{"set.yaml", FormatYAML, false},
		{"set.yml", FormatYAML, false},
		{"set.xml", "", true},
		{"set", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("FormatFromPath() code = %v, want INVALID_FORMAT", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("FormatFromPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			want := sampleProject()
			data, err := Marshal(want, f)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			got, err := Unmarshal(data, f)
			if err != nil {
				t.Fatalf("Unmarshal() error = %v\n%s", err, data)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshalJSONSchema(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing name", `{"tiles": []}`},
		{"unknown field", `{"name": "a", "colour": "red"}`},
		{"col without row", `{"name": "a", "tiles": [{"id": "t", "kind": "button", "col": 1}]}`},
		{"no size", `{"name": "a", "tiles": [{"id": "t"}]}`},
		{"unknown kind", `{"name": "a", "tiles": [{"id": "t", "kind": "knob"}]}`},
		{"midi channel", `{"name": "a", "tiles": [{"id": "t", "kind": "button", "midi": {"type": "note", "channel": 17, "number": 1}}]}`},
		{"zero grid", `{"name": "a", "grid": {"columns": 0, "rows": 4}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.doc), FormatJSON)
			if !errors.Is(err, errors.ErrCodeInvalidProject) {
				t.Errorf("Unmarshal() error = %v, want INVALID_PROJECT", err)
			}
		})
	}
}

func TestUnmarshalMinimal(t *testing.T) {
	docs := map[Format]string{
		FormatJSON: `{"name": "a"}`,
		FormatTOML: `name = "a"`,
		FormatYAML: `name: a`,
	}
	for f, doc := range docs {
		t.Run(string(f), func(t *testing.T) {
			p, err := Unmarshal([]byte(doc), f)
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if p.Name != "a" || p.Grid != (grid.Grid{}) || p.Tiles == nil || len(p.Tiles) != 0 {
				t.Errorf("Unmarshal() = %+v", p)
			}
		})
	}
}

func TestUnmarshalValidatesTOMLAndYAML(t *testing.T) {
	toml := "name = \"a\"\n\n[[tiles]]\nid = \"t\"\nkind = \"button\"\ncol = 1\n"
	if _, err := Unmarshal([]byte(toml), FormatTOML); !errors.Is(err, errors.ErrCodeInvalidProject) {
		t.Errorf("Unmarshal(toml) error = %v, want INVALID_PROJECT", err)
	}
	yml := "name: a\ntiles:\n  - id: t\n    kind: button\n    midi: {type: note, channel: 0, number: 1}\n"
	if _, err := Unmarshal([]byte(yml), FormatYAML); !errors.Is(err, errors.ErrCodeInvalidProject) {
		t.Errorf("Unmarshal(yaml) error = %v, want INVALID_PROJECT", err)
	}
}

func TestMarshalOmitsEmptyOrigin(t *testing.T) {
	p := New("a", grid.Grid{})
	p.Tiles = append(p.Tiles, Tile{ID: "t", Kind: tile.KindButton})

	data, err := Marshal(p, FormatJSON)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, key := range []string{`"col"`, `"row"`, `"grid"`, `"midi"`} {
		if strings.Contains(string(data), key) {
			t.Errorf("Marshal() output should omit %s:\n%s", key, data)
		}
	}
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"set.json", "set.toml", "set.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			want := sampleProject()
			if err := WriteFile(path, want); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ReadFile() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("WriteFile() left temporary files behind: %v", entries)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("ReadFile() of a missing file should fail")
	}
}

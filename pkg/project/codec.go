package project

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tilegrid/pkg/errors"
)

// Format is a project document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatTOML, FormatYAML}

// ParseFormat accepts a format name or a common alias ("yml").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported project format %q", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "%s: missing file extension (.json, .toml, .yaml)", path)
	}
	return ParseFormat(ext)
}

//go:embed project.schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("project.schema.json", schemaSource)

// ValidateJSON checks a JSON document against the project schema.
func ValidateJSON(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidProject, err, "parse project json")
	}
	if err := schema.Validate(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidProject, err, "project does not match schema")
	}
	return nil
}

// Marshal encodes p in the given format.
func Marshal(p *Project, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal project: %w", err)
		}
		return append(data, '\n'), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(p); err != nil {
			return nil, fmt.Errorf("marshal project: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return nil, fmt.Errorf("marshal project: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("marshal project: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported project format %q", f)
}

// Unmarshal decodes and validates a project document.
func Unmarshal(data []byte, f Format) (*Project, error) {
	var p Project
	switch f {
	case FormatJSON:
		if err := ValidateJSON(data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "decode project json")
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "decode project toml")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "decode project yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported project format %q", f)
	}
	if p.Tiles == nil {
		p.Tiles = []Tile{}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ReadFile reads a project, picking the format from the file extension.
func ReadFile(path string) (*Project, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	p, err := Unmarshal(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// WriteFile writes p to path, picking the format from the file extension.
// The file is replaced atomically.
func WriteFile(path string, p *Project) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(p, f)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write project: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return nil
}

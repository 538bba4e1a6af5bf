package errors

import (
	"strings"
	"testing"
)

func TestValidateTileID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid slug", "play-button", false},
		{"valid uuid", "5f0c7a4e-8a7e-4b7c-9a51-2d5b4f3f0c11", false},
		{"valid with spaces", "Fader 1", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTileID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTileID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTile) {
				t.Errorf("ValidateTileID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidTile)
			}
		})
	}
}

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "live-set", false},
		{"valid with dot", "live.set", false},
		{"valid with underscore", "live_set", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 300), true},
		{"path traversal", "..", true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

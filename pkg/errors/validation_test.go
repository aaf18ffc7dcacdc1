package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "graphs/a.json", false},
		{"absolute", "/tmp/a.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 2000), true},
		{"null byte", "a\x00.json", true},
		{"newline", "a\n.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGraphFile(t *testing.T) {
	tests := []struct {
		input    string
		wantCode Code
	}{
		{"graph.json", ""},
		{"GRAPH.JSON", ""},
		{"graph.dot", ErrCodeInvalidFormat},
		{"", ErrCodeInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateGraphFile(tt.input)
			if got := GetCode(err); got != tt.wantCode {
				t.Errorf("ValidateGraphFile(%q) code = %q, want %q", tt.input, got, tt.wantCode)
			}
		})
	}
}

func TestValidateConfigFile(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"layout.toml", false},
		{"layout.yaml", false},
		{"layout.yml", false},
		{"layout.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateConfigFile(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfigFile(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRankDir(t *testing.T) {
	for _, ok := range []string{"", "tb", "BT", "lr", "Rl"} {
		if err := ValidateRankDir(ok); err != nil {
			t.Errorf("ValidateRankDir(%q) error = %v", ok, err)
		}
	}
	if err := ValidateRankDir("up"); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("ValidateRankDir(up) error = %v, want INVALID_INPUT", err)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"redis://localhost:6379/0", false},
		{"rediss://cache.internal:6380", false},
		{"", true},
		{"http://localhost:6379", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

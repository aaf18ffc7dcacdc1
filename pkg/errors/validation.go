package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidatePath validates a graph or config file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// Graph file formats understood by the CLI.
var graphExtensions = map[string]bool{
	".json": true,
}

// Config file formats understood by the config loader.
var configExtensions = map[string]bool{
	".toml": true,
	".yaml": true,
	".yml":  true,
}

// ValidateGraphFile validates the path of an input graph file.
func ValidateGraphFile(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !graphExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported graph file %q (want .json)", filepath.Base(path))
	}
	return nil
}

// ValidateConfigFile validates the path of a layout defaults file.
func ValidateConfigFile(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !configExtensions[ext] {
		return New(ErrCodeInvalidConfig, "unsupported config file %q (want .toml, .yaml or .yml)", filepath.Base(path))
	}
	return nil
}

// ValidateRankDir validates a rank direction given on the command line.
// Graph attributes are never validated this way; the layout engine maps
// unknown directions to top-to-bottom.
func ValidateRankDir(dir string) error {
	switch strings.ToLower(dir) {
	case "", "tb", "bt", "lr", "rl":
		return nil
	default:
		return New(ErrCodeInvalidInput, "invalid rank direction %q (want tb, bt, lr or rl)", dir)
	}
}

// ValidateURL validates a Redis URL string for safety.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "URL must use redis or rediss scheme")
	}

	return nil
}

// Package configfile decodes the YAML or JSON registry files used by the
// collector.
package configfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyPath is returned when no file path is configured.
var ErrEmptyPath = errors.New("config file path is empty")

// Decode reads path into out. The format follows the extension (.yaml, .yml,
// .json); files without a known extension are tried as YAML and then JSON.
func Decode(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return ErrEmptyPath
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return Unmarshal(raw, filepath.Ext(path), out)
}

// Unmarshal decodes raw using the format implied by ext.
func Unmarshal(raw []byte, ext string, out any) error {
	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode yaml: %w", err)
		}
		return nil
	case ".json":
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
		return nil
	case "":
		if yaml.Unmarshal(raw, out) == nil {
			return nil
		}
		if json.Unmarshal(raw, out) == nil {
			return nil
		}
		return errors.New("format not recognized (expected YAML or JSON)")
	default:
		return fmt.Errorf("unsupported config file extension %q", ext)
	}
}

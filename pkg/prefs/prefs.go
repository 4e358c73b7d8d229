// Package prefs stores user-facing defaults (match mode, input script,
// sect filter) in a small JSON file. The core packages never read these;
// the CLI maps them onto its flag defaults.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Prefs holds the persisted toggles as plain strings; parsing into enums
// happens at the call site.
type Prefs struct {
	MatchMode string `json:"matchMode,omitempty"` // "root" or "exact"
	Script    string `json:"script,omitempty"`    // "arabic" or "latin"
	Sect      string `json:"sect,omitempty"`      // "", "shia", "sunni"
}

// Load reads preferences from path. A missing file is not an error: the
// zero value (all defaults) is returned.
func Load(path string) (Prefs, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Prefs{}, nil
	}
	if err != nil {
		return Prefs{}, fmt.Errorf("read prefs: %w", err)
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse prefs %s: %w", path, err)
	}
	return p, nil
}

// Save writes preferences to path, creating parent directories as needed.
func Save(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "nope", "prefs.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p != (Prefs{}) {
		t.Errorf("expected zero-value prefs, got %+v", p)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "prefs.json")
	want := Prefs{MatchMode: "exact", Script: "latin", Sect: "shia"}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed prefs file")
	}
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	if err := Save(path, Prefs{MatchMode: "root"}); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, Prefs{MatchMode: "exact"}); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.MatchMode != "exact" {
		t.Errorf("MatchMode = %q, want %q", got.MatchMode, "exact")
	}
}

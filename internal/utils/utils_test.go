package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func TestFormatWithCommas(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}
	for _, tt := range tests {
		if got := FormatWithCommas(tt.in); got != tt.want {
			t.Errorf("FormatWithCommas(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTOMLRoundTrip(t *testing.T) {
	type section struct {
		Name  string  `toml:"name"`
		Ratio float64 `toml:"ratio"`
	}
	type doc struct {
		Section section `toml:"section"`
	}

	path := filepath.Join(t.TempDir(), "doc.toml")
	if err := SaveTOMLFile(doc{Section: section{Name: "x", Ratio: 2}}, path); err != nil {
		t.Fatal(err)
	}

	var got doc
	if err := LoadTOMLFile(path, &got); err != nil {
		t.Fatal(err)
	}
	if got.Section.Name != "x" || got.Section.Ratio != 2 {
		t.Errorf("decoded %+v", got)
	}

	raw, err := ParseTOMLWithRecovery(path)
	if err != nil {
		t.Fatal(err)
	}
	sec, ok := ExtractSection(raw, "section")
	if !ok {
		t.Fatal("section missing")
	}
	if v, ok := ExtractString(sec, "name"); !ok || v != "x" {
		t.Errorf("ExtractString = %q, %v", v, ok)
	}
	if v, ok := ExtractFloat(sec, "ratio"); !ok || v != 2 {
		t.Errorf("ExtractFloat = %v, %v", v, ok)
	}
	if _, ok := ExtractInt64(sec, "name"); ok {
		t.Error("ExtractInt64 must reject strings")
	}
	if _, ok := ExtractBool(sec, "missing"); ok {
		t.Error("ExtractBool must reject missing keys")
	}
}

func TestCheckDirStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	res := CheckDirStatus(dir)
	if !res.Exists || !res.Writable || res.Error != nil {
		t.Errorf("CheckDirStatus = %+v", res)
	}
	if FileExists(filepath.Join(dir, ".write_test")) {
		t.Error("write probe must be cleaned up")
	}
}

func TestResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "x.json")
	if got := ResolvePath(abs); got != abs {
		t.Errorf("absolute path changed: %q", got)
	}

	t.Chdir(t.TempDir())

	if err := os.WriteFile("here.json", []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := ResolvePath("here.json"); got != "here.json" {
		t.Errorf("ResolvePath(here.json) = %q", got)
	}
	if got := ResolvePath("nowhere.json"); got != "nowhere.json" {
		t.Errorf("unresolvable path must come back unchanged, got %q", got)
	}
}

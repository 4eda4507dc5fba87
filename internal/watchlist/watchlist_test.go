package watchlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := "# accounts\nocto\n\n  acme/widget   # main project\nhttps://github.com/acme\n"
	ids, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"octo", "acme/widget", "https://github.com/acme"}
	if len(ids) != len(want) {
		t.Fatalf("unexpected ids: %q", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("id %d = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(strings.NewReader("# nothing\n\n")); err == nil {
		t.Fatalf("expected error for empty watchlist")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.txt")
	if err := os.WriteFile(path, []byte("octo\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ids, err := Load(path)
	if err != nil || len(ids) != 1 || ids[0] != "octo" {
		t.Fatalf("unexpected load result: %q %v", ids, err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/repolens/internal/config"
	"github.com/verte-zerg/repolens/internal/query"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template should decode: %v", err)
	}
	if cfg.Backend.BaseURL != nil || cfg.View.Mode != nil {
		t.Fatalf("template values should all be commented out: %+v", cfg)
	}
}

func TestInputFor(t *testing.T) {
	in := inputFor(query.ModeProject, "golang/go")
	if in.Owner != "golang" || in.Project != "go" {
		t.Fatalf("unexpected project input: %+v", in)
	}
	if in := inputFor(query.ModeAccount, "golang/go"); in.Account != "golang/go" {
		t.Fatalf("account mode keeps the raw identifier: %+v", in)
	}
	if in := inputFor(query.ModeURL, "https://github.com/golang"); in.URL == "" {
		t.Fatalf("url mode fills the url field: %+v", in)
	}
}

func TestFetchTargets(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "watch.txt")
	if err := os.WriteFile(list, []byte("# team\nhubot\nacme/widget\n"), 0o644); err != nil {
		t.Fatalf("write watchlist: %v", err)
	}
	cmd := newFetchCmd()
	if err := cmd.ParseFlags([]string{"--from", list}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	t.Cleanup(func() { fetchFrom = "" })

	targets, err := fetchTargets(cmd, []string{"octo"})
	if err != nil {
		t.Fatalf("targets: %v", err)
	}
	if len(targets) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(targets))
	}
	if targets[0].mode != query.ModeAccount || targets[2].mode != query.ModeProject {
		t.Fatalf("unexpected modes: %+v", targets)
	}

	fetchFrom = ""
	if _, err := fetchTargets(newFetchCmd(), nil); err == nil {
		t.Fatalf("expected error with nothing to fetch")
	}
}

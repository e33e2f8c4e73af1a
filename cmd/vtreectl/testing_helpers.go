package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/vtree/internal/config"
	"github.com/joshuapare/vtree/pkg/graph/sqlgraph"
)

const catalogJSON = `{
  "name": "catalog",
  "children": [
    {"name": "books", "children": [
      {"name": "fiction", "attrs": {"value": 12}, "children": [
        {"name": "dune", "attrs": {"value": "1965"}}
      ]},
      {"name": "poetry", "attrs": {"value": 3}}
    ]},
    {"name": "music", "attrs": {"value": "vinyl"}}
  ]
}`

// writeCatalog writes the sample JSON source and returns its path.
func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(catalogJSON), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

// writeInventory creates a SQLite source: inventory -> {tools -> {saw}, parts}.
func writeInventory(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "inventory.db")
	g, err := sqlgraph.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer g.Close()

	root, _ := g.Insert(ctx, 0, "inventory", "")
	tools, _ := g.Insert(ctx, root, "tools", "4")
	if _, err := g.Insert(ctx, tools, "saw", "1"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := g.Insert(ctx, root, "parts", "900"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return path
}

// resetFlags restores every global flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	cfg = config.Default()
	sortChildren, collation, charset = false, "", ""
	treeDepth, treeField, treeWidth, treePolicy = 2, "value", 80, ""
	treeOrder, treeDesc = "", false
	statsDepth, statsWindow = -1, 40
	exportOutput, exportFormat, exportDepth, exportState = "", "rows", -1, ""
	selectMode, selectDepth, selectMax = "clear-and-add", -1, 0
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return buf.String(), fnErr
}

// decodeJSON unmarshals command output into v
func decodeJSON(t *testing.T, output string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), v); err != nil {
		t.Fatalf("output is not valid JSON: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			t.Errorf("output missing expected string %q\nOutput: %s", exp, output)
		}
	}
}

// assertNotContains checks that output does not contain any of the strings
func assertNotContains(t *testing.T, output string, unexpected []string) {
	t.Helper()
	for _, s := range unexpected {
		if strings.Contains(output, s) {
			t.Errorf("output contains unexpected string %q\nOutput: %s", s, output)
		}
	}
}

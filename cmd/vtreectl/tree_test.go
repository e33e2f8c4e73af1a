package main

import (
	"context"
	"testing"
)

func TestTreeCommand(t *testing.T) {
	tests := []struct {
		name           string
		source         func(*testing.T) string
		path           string
		depth          int
		wantErr        bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:           "json depth 0",
			source:         writeCatalog,
			depth:          0,
			wantContain:    []string{"books", "music", "vinyl"},
			wantNotContain: []string{"fiction", "catalog"},
		},
		{
			name:        "json full depth",
			source:      writeCatalog,
			depth:       -1,
			wantContain: []string{"books", "fiction", "dune", "1965", "poetry"},
		},
		{
			name:           "json subtree",
			source:         writeCatalog,
			path:           "/books",
			depth:          0,
			wantContain:    []string{"fiction", "poetry"},
			wantNotContain: []string{"music"},
		},
		{
			name:    "json missing subtree",
			source:  writeCatalog,
			path:    "/nowhere",
			wantErr: true,
		},
		{
			name:        "sqlite full depth",
			source:      writeInventory,
			depth:       -1,
			wantContain: []string{"tools", "saw", "parts", "900"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			treeDepth = tt.depth

			args := []string{tt.source(t)}
			if tt.path != "" {
				args = append(args, tt.path)
			}

			output, err := captureOutput(t, func() error {
				return runTree(context.Background(), args)
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("runTree() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestTreeCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	treeDepth = -1

	output, err := captureOutput(t, func() error {
		return runTree(context.Background(), []string{writeCatalog(t)})
	})
	if err != nil {
		t.Fatalf("runTree() error = %v", err)
	}

	var rows []visibleRow
	decodeJSON(t, output, &rows)
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	if rows[2].Path != "books/fiction/dune" || rows[2].Depth != 2 || !rows[2].Leaf {
		t.Errorf("unexpected third row: %+v", rows[2])
	}
	for i, r := range rows {
		if r.Index != i {
			t.Errorf("row %d reports index %d", i, r.Index)
		}
	}
}

func TestTreeCommand_AutoExpandPolicy(t *testing.T) {
	resetFlags()
	jsonOut = true
	treeDepth = 0
	treePolicy = "auto-expand"

	output, err := captureOutput(t, func() error {
		return runTree(context.Background(), []string{writeCatalog(t)})
	})
	if err != nil {
		t.Fatalf("runTree() error = %v", err)
	}
	var rows []visibleRow
	decodeJSON(t, output, &rows)
	if len(rows) != 5 {
		t.Errorf("auto-expand should reveal every row, got %d", len(rows))
	}
}

func TestTreeCommand_OrderBy(t *testing.T) {
	resetFlags()
	jsonOut = true
	treeDepth = 0
	treeOrder = "value"
	treeDesc = true

	output, err := captureOutput(t, func() error {
		return runTree(context.Background(), []string{writeInventory(t)})
	})
	if err != nil {
		t.Fatalf("runTree() error = %v", err)
	}
	var rows []visibleRow
	decodeJSON(t, output, &rows)
	if len(rows) != 2 || rows[0].Path != "/parts" {
		t.Errorf("expected parts first, got %+v", rows)
	}

	resetFlags()
	treeOrder = "nowhere"
	_, err = captureOutput(t, func() error {
		return runTree(context.Background(), []string{writeInventory(t)})
	})
	if err == nil {
		t.Error("unknown sort column should fail")
	}
}

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/vtree/pkg/vtree"
)

func TestStatsCommand(t *testing.T) {
	resetFlags()
	jsonOut = true
	statsWindow = 2

	output, err := captureOutput(t, func() error {
		return runStats(context.Background(), []string{writeCatalog(t)})
	})
	if err != nil {
		t.Fatalf("runStats() error = %v", err)
	}

	var st TreeStats
	decodeJSON(t, output, &st)
	if st.Visible != 5 || st.MaxDepth != 2 {
		t.Errorf("unexpected counts: %+v", st)
	}
	if st.Layouts != 3 {
		t.Errorf("expected 3 layouts for 5 rows in a window of 2, got %d", st.Layouts)
	}
	if st.Pool.Reused == 0 {
		t.Error("scrolling should reuse widgets")
	}
}

func TestStatsCommand_Text(t *testing.T) {
	resetFlags()

	output, err := captureOutput(t, func() error {
		return runStats(context.Background(), []string{writeInventory(t)})
	})
	if err != nil {
		t.Fatalf("runStats() error = %v", err)
	}
	assertContains(t, output, []string{"Rows:", "3 visible", "Widgets:"})
}

func TestExportStateRoundTrip(t *testing.T) {
	resetFlags()
	src := writeCatalog(t)
	statePath := filepath.Join(t.TempDir(), "view.json")
	exportFormat = "state"
	exportDepth = 0
	exportOutput = statePath

	if _, err := captureOutput(t, func() error {
		return runExport(context.Background(), []string{src})
	}); err != nil {
		t.Fatalf("export state: %v", err)
	}

	f, err := os.Open(statePath)
	if err != nil {
		t.Fatalf("open state: %v", err)
	}
	st, err := vtree.ReadState(f)
	f.Close()
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if len(st.Expanded) != 0 {
		t.Errorf("depth 0 should expand nothing, got %v", st.Expanded)
	}

	// Hand-edit the state and feed it back.
	st.Expanded = []string{"books"}
	f, _ = os.Create(statePath)
	if err := vtree.WriteState(f, st); err != nil {
		t.Fatalf("write state: %v", err)
	}
	f.Close()

	resetFlags()
	exportState = statePath
	output, err := captureOutput(t, func() error {
		return runExport(context.Background(), []string{src})
	})
	if err != nil {
		t.Fatalf("export rows: %v", err)
	}
	var rows []visibleRow
	decodeJSON(t, output, &rows)
	if len(rows) != 4 {
		t.Errorf("expected books expanded (4 rows), got %d", len(rows))
	}
}

func TestExportCommand_BadFormat(t *testing.T) {
	resetFlags()
	exportFormat = "xml"
	if err := runExport(context.Background(), []string{writeCatalog(t)}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSelectCommand(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		mode        string
		max         int
		wantApplied bool
		wantPaths   []string
		wantErr     bool
	}{
		{
			name:        "range",
			args:        []string{"1", "2"},
			mode:        "clear-and-add",
			wantApplied: true,
			wantPaths:   []string{"books/fiction", "books/fiction/dune"},
		},
		{
			name:        "single row",
			args:        []string{"4"},
			mode:        "add",
			wantApplied: true,
			wantPaths:   []string{"music"},
		},
		{
			name:        "vetoed",
			args:        []string{"0", "4"},
			mode:        "add",
			max:         3,
			wantApplied: false,
			wantPaths:   []string{},
		},
		{
			name:    "out of range",
			args:    []string{"3", "40"},
			mode:    "add",
			wantErr: true,
		},
		{
			name:    "bad mode",
			args:    []string{"0"},
			mode:    "toggle",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = true
			selectMode = tt.mode
			selectMax = tt.max

			args := append([]string{writeCatalog(t)}, tt.args...)
			output, err := captureOutput(t, func() error {
				return runSelect(context.Background(), args)
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("runSelect() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			var got struct {
				Applied  bool     `json:"applied"`
				Selected []string `json:"selected"`
			}
			decodeJSON(t, output, &got)
			if got.Applied != tt.wantApplied {
				t.Errorf("applied = %v, want %v", got.Applied, tt.wantApplied)
			}
			if len(got.Selected) != len(tt.wantPaths) {
				t.Fatalf("selected = %v, want %v", got.Selected, tt.wantPaths)
			}
			for i := range got.Selected {
				if got.Selected[i] != tt.wantPaths[i] {
					t.Errorf("selected[%d] = %q, want %q", i, got.Selected[i], tt.wantPaths[i])
				}
			}
		})
	}
}

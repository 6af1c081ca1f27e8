package datasource

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSummaryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.json")
	s := &Summary{
		GeneratedAt: "2026-02-10T12:00:00Z",
		InProgress:  false,
		Suits:       4,
		Search: SearchSettings{
			MaxSeconds:  4.0,
			MaxNodes:    1_500_000,
			MaxFrontier: 800_000,
			Workers:     7,
		},
		Source: SourceInfo{
			StartSeed:          1000,
			Count:              50,
			MergeMode:          "merge",
			ExistingRowsLoaded: 10,
			IncomingRows:       50,
		},
		Stats:     Stats{Scanned: 60, Solved: 40, Unknown: 15, ProvenUnsolvable: 5},
		Quantiles: Quantiles{Q33: 100.5, Q66: 300.25},
		Buckets: Buckets{
			Easy:    []int64{1, 2},
			Medium:  []int64{3},
			Hard:    []int64{4, 5},
			Unknown: []int64{6},
		},
		Files:          Files{RowsCSV: "pool_rows.csv"},
		BuildElapsedMS: 1234.5,
	}

	if err := WriteSummary(path, s); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadSummary(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s, loaded) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", s, loaded)
	}
}

func TestLoadSummaryMissingFile(t *testing.T) {
	s, err := LoadSummary(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("expected missing summary to load as nil, got %v", err)
	}
	if s != nil {
		t.Error("expected nil summary for a missing file")
	}
}

func TestSummaryJSONFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.json")
	if err := WriteSummary(path, &Summary{}); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data := string(raw)
	for _, key := range []string{
		`"generated_at"`, `"in_progress"`, `"suits"`, `"search"`, `"source"`,
		`"stats"`, `"quantiles"`, `"buckets"`, `"files"`, `"build_elapsed_ms"`,
		`"rows_csv"`, `"q33"`, `"q66"`,
	} {
		if !strings.Contains(data, key) {
			t.Errorf("expected summary JSON to contain %s", key)
		}
	}
}

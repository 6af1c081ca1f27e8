package datasource

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func f(v float64) *float64 { return &v }

func sampleRows() []SeedRow {
	return []SeedRow{
		{Seed: 1, Status: "solved", Score: f(12345.5), Bucket: "Easy", ElapsedMS: 10.5, ExpandedNodes: 100, UniqueStates: 90},
		{Seed: 2, Status: "unknown", Reason: "limits_reached", ElapsedMS: 99.9, ExpandedNodes: 5000, UniqueStates: 4100},
		{Seed: 3, Status: "proven_unsolvable", Score: f(100), Bucket: "Unsolvable", Reason: "search_space_exhausted", ElapsedMS: 3.2, ExpandedNodes: 12, UniqueStates: 9},
	}
}

func TestRowsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	rows := sampleRows()

	if err := WriteRowsCSV(path, rows); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadRowsCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rows, loaded) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", rows, loaded)
	}
}

func TestRowsCSVMissingValuesAreEmpty(t *testing.T) {
	data, err := EncodeRowsCSV([]SeedRow{{Seed: 7, Status: "unknown", Reason: "limits_reached"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "seed,status,score,bucket,reason,elapsed_ms,expanded_nodes,unique_states\n" +
		"7,unknown,,,limits_reached,0,0,0\n"
	if string(data) != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, string(data))
	}
}

func TestLoadRowsCSVMissingFile(t *testing.T) {
	rows, err := LoadRowsCSV(filepath.Join(t.TempDir(), "absent.csv"))
	if err != nil {
		t.Fatalf("expected missing file to load as empty, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestMergeRowsNewerWins(t *testing.T) {
	existing := []SeedRow{
		{Seed: 100, Status: "unknown", Reason: "limits_reached"},
		{Seed: 101, Status: "solved", Score: f(20)},
	}
	incoming := []SeedRow{
		{Seed: 100, Status: "solved", Score: f(25)},
		{Seed: 102, Status: "unknown", Reason: "limits_reached"},
	}

	merged := MergeRows(existing, incoming)

	if got := []int64{merged[0].Seed, merged[1].Seed, merged[2].Seed}; got[0] != 100 || got[1] != 101 || got[2] != 102 {
		t.Fatalf("expected seeds [100 101 102], got %v", got)
	}
	if merged[0].Status != "solved" || *merged[0].Score != 25 {
		t.Errorf("expected incoming row to win for seed 100: %+v", merged[0])
	}
	if merged[1].Status != "solved" {
		t.Errorf("expected untouched existing row for seed 101: %+v", merged[1])
	}
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	if err := WriteFileAtomic(path, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("second")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("expected replaced contents, got %q", string(data))
	}

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

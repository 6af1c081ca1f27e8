package datasource

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// SearchSettings echoes the per-seed search budget into the summary so a
// pool documents how it was mined.
type SearchSettings struct {
	MaxSeconds  float64 `json:"max_seconds"`
	MaxNodes    int     `json:"max_nodes"`
	MaxFrontier int     `json:"max_frontier"`
	SingleStage bool    `json:"single_stage"`
	Workers     int     `json:"workers"`
}

// SourceInfo records the scanned seed range and how existing rows were
// merged.
type SourceInfo struct {
	StartSeed          int64  `json:"start_seed"`
	Count              int    `json:"count"`
	MergeMode          string `json:"merge_mode"`
	ExistingRowsLoaded int    `json:"existing_rows_loaded"`
	IncomingRows       int    `json:"incoming_rows"`
}

// Stats counts outcome classes over all rows.
type Stats struct {
	Scanned          int `json:"scanned"`
	Solved           int `json:"solved"`
	Unknown          int `json:"unknown"`
	ProvenUnsolvable int `json:"proven_unsolvable"`
}

// Quantiles holds the empirical score tertile boundaries.
type Quantiles struct {
	Q33 float64 `json:"q33"`
	Q66 float64 `json:"q66"`
}

// Buckets lists seeds per difficulty band, plus the seeds whose outcome is
// still unknown.
type Buckets struct {
	Easy    []int64 `json:"Easy"`
	Medium  []int64 `json:"Medium"`
	Hard    []int64 `json:"Hard"`
	Unknown []int64 `json:"unknown"`
}

// Files points at sibling artifacts of the summary.
type Files struct {
	RowsCSV string `json:"rows_csv"`
}

// Summary is the seed-pool JSON document. In-progress checkpoints carry
// InProgress = true; the final write clears it.
type Summary struct {
	GeneratedAt    string         `json:"generated_at"`
	InProgress     bool           `json:"in_progress"`
	Suits          int            `json:"suits"`
	Search         SearchSettings `json:"search"`
	Source         SourceInfo     `json:"source"`
	Stats          Stats          `json:"stats"`
	Quantiles      Quantiles      `json:"quantiles"`
	Buckets        Buckets        `json:"buckets"`
	Files          Files          `json:"files"`
	BuildElapsedMS float64        `json:"build_elapsed_ms"`
}

// WriteSummary atomically writes the summary JSON.
func WriteSummary(path string, s *Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	return WriteFileAtomic(path, append(data, '\n'))
}

// LoadSummary reads a previously written summary. A missing file yields
// (nil, nil).
func LoadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing summary: %w", err)
	}
	return &s, nil
}

package datasource

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// SeedRow is one analyzed seed as persisted in the rows CSV, the SQLite
// mirror and the raw JSONL dump.
type SeedRow struct {
	Seed          int64    `json:"seed"`
	Status        string   `json:"status"`
	Score         *float64 `json:"score"`
	Bucket        string   `json:"bucket"`
	Reason        string   `json:"reason"`
	ElapsedMS     float64  `json:"elapsed_ms"`
	ExpandedNodes int      `json:"expanded_nodes"`
	UniqueStates  int      `json:"unique_states"`
}

// rowsHeader is the CSV column order. Missing values are empty strings.
var rowsHeader = []string{"seed", "status", "score", "bucket", "reason", "elapsed_ms", "expanded_nodes", "unique_states"}

// MergeRows upserts incoming rows over existing ones by seed, newer wins.
// The result is sorted by seed.
func MergeRows(existing, incoming []SeedRow) []SeedRow {
	bySeed := make(map[int64]SeedRow, len(existing)+len(incoming))
	for _, row := range existing {
		bySeed[row.Seed] = row
	}
	for _, row := range incoming {
		bySeed[row.Seed] = row
	}
	merged := make([]SeedRow, 0, len(bySeed))
	for _, row := range bySeed {
		merged = append(merged, row)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Seed < merged[j].Seed })
	return merged
}

// EncodeRowsCSV renders rows with the canonical header.
func EncodeRowsCSV(rows []SeedRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(rowsHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		score := ""
		if row.Score != nil {
			score = strconv.FormatFloat(*row.Score, 'f', -1, 64)
		}
		record := []string{
			strconv.FormatInt(row.Seed, 10),
			row.Status,
			score,
			row.Bucket,
			row.Reason,
			strconv.FormatFloat(row.ElapsedMS, 'f', -1, 64),
			strconv.Itoa(row.ExpandedNodes),
			strconv.Itoa(row.UniqueStates),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row.Seed, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteRowsCSV atomically writes the rows CSV.
func WriteRowsCSV(path string, rows []SeedRow) error {
	data, err := EncodeRowsCSV(rows)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// LoadRowsCSV reads a rows CSV written by WriteRowsCSV. A missing file
// yields no rows and no error so a first run and a resumed run share one
// code path.
func LoadRowsCSV(path string) ([]SeedRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading rows csv: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing rows csv: %w", err)
	}

	rows := make([]SeedRow, 0, len(records))
	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == "seed" {
			continue
		}
		if len(record) != len(rowsHeader) {
			return nil, fmt.Errorf("row %d: expected %d columns, got %d", i, len(rowsHeader), len(record))
		}
		row, err := decodeRow(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(record []string) (SeedRow, error) {
	var row SeedRow
	seed, err := strconv.ParseInt(record[0], 10, 64)
	if err != nil {
		return row, fmt.Errorf("seed: %w", err)
	}
	row.Seed = seed
	row.Status = record[1]
	if record[2] != "" {
		score, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return row, fmt.Errorf("score: %w", err)
		}
		row.Score = &score
	}
	row.Bucket = record[3]
	row.Reason = record[4]
	if record[5] != "" {
		elapsed, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return row, fmt.Errorf("elapsed_ms: %w", err)
		}
		row.ElapsedMS = elapsed
	}
	if record[6] != "" {
		n, err := strconv.Atoi(record[6])
		if err != nil {
			return row, fmt.Errorf("expanded_nodes: %w", err)
		}
		row.ExpandedNodes = n
	}
	if record[7] != "" {
		n, err := strconv.Atoi(record[7])
		if err != nil {
			return row, fmt.Errorf("unique_states: %w", err)
		}
		row.UniqueStates = n
	}
	return row, nil
}

package pool

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/spiderlab/internal/datasource"
	"github.com/vanderheijden86/spiderlab/pkg/analysis"
	"github.com/vanderheijden86/spiderlab/pkg/debug"
	"github.com/vanderheijden86/spiderlab/pkg/metrics"
	"github.com/vanderheijden86/spiderlab/pkg/solver"
)

// Options configure a pool build.
type Options struct {
	Suits     int
	StartSeed int64
	Count     int

	Workers     int
	Limits      solver.Limits
	SingleStage bool

	MaxPerBucket  int
	ProgressEvery int
	SaveInterval  time.Duration

	// OutPath is the summary JSON path; the rows CSV lands next to it.
	// Empty selects data/seed_pool_{suits}s.json.
	OutPath      string
	RawJSONLPath string
	// DBPath mirrors rows into a SQLite store when set.
	DBPath string

	// Overwrite discards rows from a prior run instead of merging.
	Overwrite bool

	// TargetSolved stops submitting new seeds once this many solved rows
	// exist in the current scan; 0 scans the whole range.
	TargetSolved int
}

// DefaultOptions returns the pipeline defaults for a suit count.
func DefaultOptions(suits int) Options {
	return Options{
		Suits:         suits,
		Workers:       1,
		Limits:        solver.Limits{MaxNodes: 1_500_000, MaxSeconds: 4.0, MaxFrontier: 800_000},
		ProgressEvery: 10,
		SaveInterval:  60 * time.Second,
	}
}

// Builder runs the mining pipeline. Each seed is analyzed by an isolated
// search instance; the only shared resources are the output files, guarded
// by atomic writes.
type Builder struct {
	opts   Options
	logger *log.Logger

	mu       sync.Mutex
	incoming []datasource.SeedRow
	done     int
	solved   int
}

// NewBuilder validates nothing: option validation happens at the CLI
// boundary. Logging is silent by default; use SetLogger to surface
// progress.
func NewBuilder(opts Options) *Builder {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.OutPath == "" {
		opts.OutPath = fmt.Sprintf("data/seed_pool_%ds.json", opts.Suits)
	}
	return &Builder{
		opts:   opts,
		logger: log.New(io.Discard, "", 0),
	}
}

// SetLogger sets the progress/error logger.
func (b *Builder) SetLogger(l *log.Logger) {
	b.logger = l
}

// OutPath returns the summary JSON path after defaulting.
func (b *Builder) OutPath() string {
	return b.opts.OutPath
}

// RowsCSVPath returns the rows CSV path derived from the summary path.
func (b *Builder) RowsCSVPath() string {
	return strings.TrimSuffix(b.opts.OutPath, ".json") + "_rows.csv"
}

// Run scans the configured seed range and writes the pool artifacts.
// Checkpoints are written every SaveInterval while in progress; a failed
// checkpoint is logged and retried at the next interval. The returned
// summary matches the final file contents.
func (b *Builder) Run(ctx context.Context) (*datasource.Summary, error) {
	started := time.Now()

	existing, err := b.loadExisting()
	if err != nil {
		return nil, err
	}

	scanCtx, cancelScan := context.WithCancel(ctx)
	defer cancelScan()

	checkpointDone := make(chan struct{})
	go b.checkpointLoop(scanCtx, started, existing, checkpointDone)

	g, gctx := errgroup.WithContext(scanCtx)
	g.SetLimit(b.opts.Workers)

	for i := 0; i < b.opts.Count; i++ {
		seed := b.opts.StartSeed + int64(i)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			row := b.analyzeOne(seed)
			b.record(row, started, cancelScan)
			return nil
		})
	}
	_ = g.Wait()
	cancelScan()
	<-checkpointDone

	summary, err := b.persist(started, existing, false)
	if err != nil {
		return nil, err
	}
	// An interrupted scan still persists what it has; surface the
	// cancellation so the caller can report a partial pool.
	return summary, ctx.Err()
}

// loadExisting gathers rows from a prior run unless overwriting. The CSV
// is authoritative; the SQLite mirror is a fallback for pools whose CSV
// was lost.
func (b *Builder) loadExisting() ([]datasource.SeedRow, error) {
	if b.opts.Overwrite {
		return nil, nil
	}
	rows, err := datasource.LoadRowsCSV(b.RowsCSVPath())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 && b.opts.DBPath != "" {
		store, err := datasource.OpenSQLiteStore(b.opts.DBPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		rows, err = store.LoadRows()
		if err != nil {
			return nil, err
		}
	}
	if len(rows) > 0 {
		b.logger.Printf("loaded %d existing rows for merge", len(rows))
	}
	return rows, nil
}

// analyzeOne runs the full staged analysis for one seed and flattens the
// result into a row.
func (b *Builder) analyzeOne(seed int64) datasource.SeedRow {
	result, err := analysis.AnalyzeSeed(seed, b.opts.Suits, b.opts.Limits, !b.opts.SingleStage)
	if err != nil {
		// Config errors are caught at the CLI boundary; a failure here is a
		// bug worth surfacing in the row rather than dropping the seed.
		return datasource.SeedRow{Seed: seed, Status: "error", Reason: err.Error()}
	}

	row := datasource.SeedRow{
		Seed:          seed,
		Status:        result.Status,
		Score:         result.DifficultyScore,
		Reason:        result.Metrics.Reason,
		ElapsedMS:     result.Metrics.ElapsedMS,
		ExpandedNodes: result.Metrics.ExpandedNodes,
		UniqueStates:  result.Metrics.UniqueStates,
	}
	if result.DifficultyBand != nil {
		row.Bucket = *result.DifficultyBand
	}
	return row
}

func (b *Builder) record(row datasource.SeedRow, started time.Time, cancelScan context.CancelFunc) {
	b.mu.Lock()
	b.incoming = append(b.incoming, row)
	b.done++
	if row.Status == "solved" {
		b.solved++
	}
	done := b.done
	solved := b.solved
	b.mu.Unlock()

	debug.Log("seed %d status=%s reason=%s", row.Seed, row.Status, row.Reason)
	if b.opts.ProgressEvery > 0 && done%b.opts.ProgressEvery == 0 {
		b.logger.Printf("progress %d/%d elapsed_ms=%.1f", done, b.opts.Count, float64(time.Since(started).Microseconds())/1000.0)
	}
	if b.opts.TargetSolved > 0 && solved >= b.opts.TargetSolved {
		cancelScan()
	}
}

// snapshotIncoming copies the rows collected so far.
func (b *Builder) snapshotIncoming() []datasource.SeedRow {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]datasource.SeedRow, len(b.incoming))
	copy(out, b.incoming)
	return out
}

// checkpointLoop periodically persists an in-progress snapshot.
func (b *Builder) checkpointLoop(ctx context.Context, started time.Time, existing []datasource.SeedRow, done chan<- struct{}) {
	defer close(done)
	if b.opts.SaveInterval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(b.opts.SaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.persist(started, existing, true); err != nil {
				// Never aborts the build; the next interval retries.
				b.logger.Printf("checkpoint failed (will retry): %v", err)
			}
		}
	}
}

// persist merges, buckets and writes every configured artifact, returning
// the summary it wrote.
func (b *Builder) persist(started time.Time, existing []datasource.SeedRow, inProgress bool) (*datasource.Summary, error) {
	defer metrics.Timer(metrics.Checkpoint)()

	incoming := b.snapshotIncoming()
	rows := datasource.MergeRows(existing, incoming)
	summary := b.buildSummary(started, rows, len(existing), len(incoming), inProgress)

	if err := datasource.WriteRowsCSV(b.RowsCSVPath(), rows); err != nil {
		return nil, fmt.Errorf("writing rows csv: %w", err)
	}
	if err := datasource.WriteSummary(b.opts.OutPath, summary); err != nil {
		return nil, fmt.Errorf("writing summary: %w", err)
	}
	if b.opts.RawJSONLPath != "" {
		if err := writeRawJSONL(b.opts.RawJSONLPath, rows); err != nil {
			return nil, fmt.Errorf("writing raw jsonl: %w", err)
		}
	}
	if b.opts.DBPath != "" {
		if err := b.mirrorToSQLite(rows); err != nil {
			return nil, fmt.Errorf("mirroring to sqlite: %w", err)
		}
	}
	return summary, nil
}

func (b *Builder) mirrorToSQLite(rows []datasource.SeedRow) error {
	store, err := datasource.OpenSQLiteStore(b.opts.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.UpsertRows(rows)
}

func writeRawJSONL(path string, rows []datasource.SeedRow) error {
	var buf strings.Builder
	for _, row := range rows {
		line, err := json.Marshal(row)
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return datasource.WriteFileAtomic(path, []byte(buf.String()))
}

func (b *Builder) buildSummary(started time.Time, rows []datasource.SeedRow, existingCount, incomingCount int, inProgress bool) *datasource.Summary {
	buckets, quantiles := BucketSolvedRows(rows, b.opts.MaxPerBucket)

	var stats datasource.Stats
	unknownSeeds := []int64{}
	for _, row := range rows {
		stats.Scanned++
		switch row.Status {
		case "solved":
			stats.Solved++
		case "proven_unsolvable":
			stats.ProvenUnsolvable++
		default:
			stats.Unknown++
			unknownSeeds = append(unknownSeeds, row.Seed)
		}
	}

	mergeMode := "merge"
	if b.opts.Overwrite {
		mergeMode = "overwrite"
	}

	return &datasource.Summary{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		InProgress:  inProgress,
		Suits:       b.opts.Suits,
		Search: datasource.SearchSettings{
			MaxSeconds:  b.opts.Limits.MaxSeconds,
			MaxNodes:    b.opts.Limits.MaxNodes,
			MaxFrontier: b.opts.Limits.MaxFrontier,
			SingleStage: b.opts.SingleStage,
			Workers:     b.opts.Workers,
		},
		Source: datasource.SourceInfo{
			StartSeed:          b.opts.StartSeed,
			Count:              b.opts.Count,
			MergeMode:          mergeMode,
			ExistingRowsLoaded: existingCount,
			IncomingRows:       incomingCount,
		},
		Stats:     stats,
		Quantiles: quantiles,
		Buckets: datasource.Buckets{
			Easy:    seeds(buckets.Easy),
			Medium:  seeds(buckets.Medium),
			Hard:    seeds(buckets.Hard),
			Unknown: unknownSeeds,
		},
		Files:          datasource.Files{RowsCSV: b.RowsCSVPath()},
		BuildElapsedMS: float64(time.Since(started).Microseconds()) / 1000.0,
	}
}

// Command spider-pool mines a seed range in parallel and partitions the
// solved seeds into Easy/Medium/Hard buckets by empirical score tertiles.
// It writes a JSON summary plus a rows CSV, checkpointing atomically while
// the scan runs.
package main

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/vanderheijden86/spiderlab/pkg/config"
	"github.com/vanderheijden86/spiderlab/pkg/pool"
	"github.com/vanderheijden86/spiderlab/pkg/solver"
	"github.com/vanderheijden86/spiderlab/pkg/version"
)

func main() {
	suits := flag.Int("suits", 0, "Suit count (1, 2, 3 or 4)")
	startSeed := flag.Int64("start-seed", 0, "Start seed inclusive (default: random 31-bit)")
	count := flag.Int("count", 0, "How many seeds to scan")
	workers := flag.Int("workers", 0, "Parallel workers (default: cpu count - 1)")
	maxSeconds := flag.Float64("max-seconds", 4.0, "Per-seed search time budget")
	maxNodes := flag.Int("max-nodes", 1_500_000, "Per-seed node budget")
	maxFrontier := flag.Int("max-frontier", 800_000, "Per-seed frontier budget")
	singleStage := flag.Bool("single-stage", false, "Disable staged widening search")
	maxPerBucket := flag.Int("max-per-bucket", 0, "Cap seeds per bucket; 0 means unlimited")
	targetSolved := flag.Int("target-solved", 0, "Stop early after this many solved seeds; 0 scans all")
	progressEvery := flag.Int("progress-every", 10, "Log progress every N completed seeds")
	saveIntervalSec := flag.Int("save-interval-sec", 60, "Checkpoint interval in seconds")
	out := flag.String("out", "", "Output JSON path (default: data/seed_pool_{suits}s.json)")
	rawJSONL := flag.String("raw-jsonl", "", "Optional raw per-seed JSONL path")
	dbPath := flag.String("db", "", "Optional SQLite row-store path")
	overwrite := flag.Bool("overwrite", false, "Discard existing rows instead of merging")
	configPath := flag.String("config", "", "Optional YAML config file")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("spider-pool %s\n", version.Version)
		os.Exit(0)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	if *suits < 1 || *suits > 4 {
		fmt.Fprintf(os.Stderr, "invalid --suits %d: must be 1, 2, 3 or 4\n", *suits)
		os.Exit(1)
	}
	if *count <= 0 {
		fmt.Fprintln(os.Stderr, "--count must be a positive integer")
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFrom(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	start := *startSeed
	if !explicit["start-seed"] {
		start = randomStartSeed()
		// Logged so the scan is reproducible even before the summary lands.
		logger.Printf("start seed not given; drew %d", start)
	}

	opts := pool.DefaultOptions(*suits)
	opts.StartSeed = start
	opts.Count = *count
	opts.Limits = solver.Limits{MaxNodes: *maxNodes, MaxSeconds: *maxSeconds, MaxFrontier: *maxFrontier}
	if cfg.Search.MaxNodes > 0 && !explicit["max-nodes"] {
		opts.Limits.MaxNodes = cfg.Search.MaxNodes
	}
	if cfg.Search.MaxSeconds > 0 && !explicit["max-seconds"] {
		opts.Limits.MaxSeconds = cfg.Search.MaxSeconds
	}
	if cfg.Search.MaxFrontier > 0 && !explicit["max-frontier"] {
		opts.Limits.MaxFrontier = cfg.Search.MaxFrontier
	}
	opts.SingleStage = *singleStage
	opts.MaxPerBucket = *maxPerBucket
	opts.TargetSolved = *targetSolved
	opts.ProgressEvery = *progressEvery
	opts.SaveInterval = time.Duration(*saveIntervalSec) * time.Second
	opts.OutPath = *out
	opts.RawJSONLPath = *rawJSONL
	opts.DBPath = *dbPath
	opts.Overwrite = *overwrite

	opts.Workers = *workers
	if opts.Workers <= 0 {
		if cfg.Pool.Workers > 0 {
			opts.Workers = cfg.Pool.Workers
		} else {
			opts.Workers = max(1, runtime.NumCPU()-1)
		}
	}
	if opts.OutPath == "" && cfg.Pool.Out != "" {
		opts.OutPath = cfg.Pool.Out
	}
	if cfg.Pool.ProgressEvery > 0 && !explicit["progress-every"] {
		opts.ProgressEvery = cfg.Pool.ProgressEvery
	}
	if cfg.Pool.SaveIntervalSec > 0 && !explicit["save-interval-sec"] {
		opts.SaveInterval = time.Duration(cfg.Pool.SaveIntervalSec) * time.Second
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := pool.NewBuilder(opts)
	builder.SetLogger(logger)

	summary, err := builder.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			logger.Printf("interrupted; partial pool written to %s", builder.OutPath())
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "building pool: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf(
		"done out=%s scanned=%d solved=%d unknown=%d proven_unsolvable=%d q33=%g q66=%g\n",
		builder.OutPath(), summary.Stats.Scanned, summary.Stats.Solved,
		summary.Stats.Unknown, summary.Stats.ProvenUnsolvable,
		summary.Quantiles.Q33, summary.Quantiles.Q66,
	)
}

// randomStartSeed draws a 31-bit start seed from the OS entropy source.
func randomStartSeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return time.Now().UnixNano() & 0x7fffffff
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) & 0x7fffffff)
}

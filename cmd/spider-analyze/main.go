// Command spider-analyze classifies Spider deals: for each seed it runs the
// staged solver and prints a JSON object with solvability, difficulty score
// and search telemetry.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/spiderlab/pkg/analysis"
	"github.com/vanderheijden86/spiderlab/pkg/config"
	"github.com/vanderheijden86/spiderlab/pkg/solver"
	"github.com/vanderheijden86/spiderlab/pkg/version"
)

// seedList collects repeatable --seed flags.
type seedList []int64

func (s *seedList) String() string {
	parts := make([]string, len(*s))
	for i, v := range *s {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func (s *seedList) Set(v string) error {
	seed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid seed %q", v)
	}
	*s = append(*s, seed)
	return nil
}

func main() {
	var seeds seedList
	flag.Var(&seeds, "seed", "Seed to analyze; can be repeated")
	suits := flag.Int("suits", 0, "Suit count (1, 2, 3 or 4)")
	maxNodes := flag.Int("max-nodes", 0, "Search node limit (0 = default)")
	maxSeconds := flag.Float64("max-seconds", 0, "Search time limit in seconds (0 = default)")
	maxFrontier := flag.Int("max-frontier", 0, "Search frontier size limit (0 = default)")
	singleStage := flag.Bool("single-stage", false, "Disable staged widening search")
	pretty := flag.Bool("pretty", false, "Pretty-print JSON output")
	configPath := flag.String("config", "", "Optional YAML config file")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("spider-analyze %s\n", version.Version)
		os.Exit(0)
	}

	if len(seeds) == 0 {
		fmt.Fprintln(os.Stderr, "at least one --seed is required")
		os.Exit(1)
	}
	if *suits < 1 || *suits > 4 {
		fmt.Fprintf(os.Stderr, "invalid --suits %d: must be 1, 2, 3 or 4\n", *suits)
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

	limits := resolveLimits(cfg.Search, *maxNodes, *maxSeconds, *maxFrontier)

	for _, seed := range seeds {
		result, err := analysis.AnalyzeSeed(seed, *suits, limits, !*singleStage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "analyzing seed %d: %v\n", seed, err)
			os.Exit(1)
		}

		var out []byte
		if *pretty {
			out, err = json.MarshalIndent(result, "", "  ")
		} else {
			out, err = json.Marshal(result)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "encoding result for seed %d: %v\n", seed, err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	}
}

// resolveLimits layers built-in defaults, the config file and explicit
// flags, in that order.
func resolveLimits(fileCfg config.SearchConfig, nodes int, seconds float64, frontier int) solver.Limits {
	limits := solver.DefaultLimits()
	if fileCfg.MaxNodes > 0 {
		limits.MaxNodes = fileCfg.MaxNodes
	}
	if fileCfg.MaxSeconds > 0 {
		limits.MaxSeconds = fileCfg.MaxSeconds
	}
	if fileCfg.MaxFrontier > 0 {
		limits.MaxFrontier = fileCfg.MaxFrontier
	}
	if nodes > 0 {
		limits.MaxNodes = nodes
	}
	if seconds > 0 {
		limits.MaxSeconds = seconds
	}
	if frontier > 0 {
		limits.MaxFrontier = frontier
	}
	return limits
}

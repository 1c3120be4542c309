package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"admitwise/recommender/recommender"
)

type cliOptions struct {
	configPath string
	dataDir    string
	modelPath  string
	saveModel  bool
	rank       int
	category   string
	branches   string
	minProb    float64
	outputPath string
	outputDir  string
	stdout     bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("recommender-cli: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("recommender-cli: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&opts.dataDir, "data", "", "Directory of cutoff CSV/TSV files (overrides config)")
	flag.StringVar(&opts.modelPath, "model", "", "Load a previously saved model instead of raw data")
	flag.BoolVar(&opts.saveModel, "save-model", false, "Save the built model to the configured model path")
	flag.IntVar(&opts.rank, "rank", 0, "Candidate rank to query (omit to only build the model)")
	flag.StringVar(&opts.category, "category", "", "Seat category (OPEN, OBC-NCL, SC, ST, EWS, GENERAL)")
	flag.StringVar(&opts.branches, "branch", "", "Comma-separated branch filter")
	flag.Float64Var(&opts.minProb, "min-prob", 0, "Drop recommendations below this probability")
	flag.StringVar(&opts.outputPath, "output", "", "CSV file to write results (default uses --output-dir/result_*.csv)")
	flag.StringVar(&opts.outputDir, "output-dir", "csv", "Directory where result CSVs are written when --output is omitted")
	flag.BoolVar(&opts.stdout, "stdout", false, "Print a result summary to STDOUT")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [--data DIR | --model FILE] [--rank N --category C] [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.dataDir = strings.TrimSpace(opts.dataDir)
	opts.modelPath = strings.TrimSpace(opts.modelPath)
	opts.category = strings.TrimSpace(opts.category)
	opts.branches = strings.TrimSpace(opts.branches)
	opts.outputPath = strings.TrimSpace(opts.outputPath)
	opts.outputDir = strings.TrimSpace(opts.outputDir)

	if opts.rank < 0 {
		return opts, errors.New("--rank must be positive")
	}
	if opts.rank == 0 && !opts.saveModel {
		flag.Usage()
		return opts, errors.New("nothing to do: pass --rank to query or --save-model to build")
	}
	return opts, nil
}

func run(opts cliOptions) error {
	cfg, err := recommender.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)
	session := recommender.NewSession(cfg, logger)

	if opts.modelPath != "" {
		if err := session.LoadModel(opts.modelPath); err != nil {
			return fmt.Errorf("load model: %w", err)
		}
	} else {
		if _, err := session.LoadData(); err != nil {
			return fmt.Errorf("load data: %w", err)
		}
	}

	if opts.saveModel {
		if err := session.SaveModel(""); err != nil {
			return fmt.Errorf("save model: %w", err)
		}
	}
	if opts.rank == 0 {
		return nil
	}

	query := recommender.Query{
		Rank:           opts.rank,
		Category:       recommender.ParseCategory(opts.category),
		BranchFilter:   parseBranchFilter(opts.branches),
		MinProbability: opts.minProb,
	}
	entries, err := session.Recommend(query)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No colleges match the given rank and filters.")
		return nil
	}

	outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir)
	if err != nil {
		return err
	}
	if err := writeResultCSV(outputPath, entries); err != nil {
		return err
	}
	fmt.Printf("Saved %d recommendations to %s\n", len(entries), outputPath)

	if opts.stdout {
		printSummary(entries)
	}
	return nil
}

func parseBranchFilter(raw string) []recommender.Branch {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]recommender.Branch, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, recommender.ExtractBranch(p))
	}
	return out
}

func resolveOutputPath(path, dir string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "csv"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := fmt.Sprintf("result_%s.csv", time.Now().Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}

func writeResultCSV(path string, entries []recommender.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	header := []string{"College", "Branch", "Category", "Probability", "Chance", "VFM", "Composite", "Opening Rank", "Closing Rank"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range entries {
		vfm := "n/a"
		if e.HasVFM {
			vfm = fmt.Sprintf("%.2f", e.VFMScore)
		}
		row := []string{
			e.CollegeCanonical,
			string(e.Branch),
			string(e.Category),
			fmt.Sprintf("%.3f", e.Probability),
			string(e.Chance),
			vfm,
			fmt.Sprintf("%.3f", e.Composite),
			fmt.Sprintf("%d", e.OpeningRank),
			fmt.Sprintf("%d", e.ClosingRank),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush result: %w", err)
	}
	return nil
}

func printSummary(entries []recommender.Entry) {
	fmt.Println()
	fmt.Println("==== Recommendations ====")
	limit := 10
	if len(entries) < limit {
		limit = len(entries)
	}
	for i := 0; i < limit; i++ {
		e := entries[i]
		stars := "n/a"
		if e.HasVFM {
			stars = recommender.VFMStars(e.VFMScore)
		}
		fmt.Printf("%d. %s / %s\n", i+1, e.CollegeCanonical, e.Branch)
		fmt.Printf("    chance=%s (p=%.2f)  vfm=%s  window=%d-%d\n",
			e.Chance, e.Probability, stars, e.OpeningRank, e.ClosingRank)
	}
	if len(entries) > limit {
		fmt.Printf("... and %d more\n", len(entries)-limit)
	}
}

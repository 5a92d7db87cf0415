package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"rotorbreak/internal/machine"
	"rotorbreak/internal/search"
	"rotorbreak/internal/storage"
	"rotorbreak/pkg/rotorbreak"
)

const (
	runsDir    = "runs"
	exportsDir = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "encrypt":
		return runCipher(ctx, "encrypt", args[1:])
	case "decrypt":
		return runCipher(ctx, "decrypt", args[1:])
	case "analyze":
		return runAnalyze(ctx, args[1:])
	case "hillclimb":
		return runHillClimb(ctx, args[1:])
	case "exhaustive":
		return runExhaustive(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: rotorbreakctl <init|reset|encrypt|decrypt|analyze|hillclimb|exhaustive|runs|fitness|export> [flags]", msg)
}

func addStoreFlags(fs *flag.FlagSet) (storeKind, dbPath *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "rotorbreak.db", "sqlite database path")
	return storeKind, dbPath
}

func newClient(storeKind, dbPath string) (*rotorbreak.Client, error) {
	return rotorbreak.New(rotorbreak.Options{
		StoreKind:  storeKind,
		DBPath:     dbPath,
		RunsDir:    runsDir,
		ExportsDir: exportsDir,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}
	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runCipher(_ context.Context, direction string, args []string) error {
	fs := flag.NewFlagSet(direction, flag.ContinueOnError)
	text := fs.String("text", "", "text to process")
	inPath := fs.String("in", "", "read text from file instead of -text")
	rotors := fs.String("rotors", "I,II,III", "rotor names left to right")
	positions := fs.String("positions", "AAA", "start positions left to right")
	rings := fs.String("rings", "0,0,0", "ring settings left to right")
	plugboard := fs.String("plugboard", "", "plugboard pair string, e.g. AZBY")
	reflector := fs.String("reflector", "B", "reflector name or pair string")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input, err := readText(*text, *inPath)
	if err != nil {
		return err
	}
	ringSettings, err := parseRings(*rings)
	if err != nil {
		return err
	}

	client, err := newClient("memory", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	req := rotorbreak.CipherRequest{
		Text:      input,
		Rotors:    strings.Split(*rotors, ","),
		Positions: *positions,
		Rings:     ringSettings,
		Plugboard: *plugboard,
		Reflector: *reflector,
	}
	var output string
	if direction == "encrypt" {
		output, err = client.Encrypt(req)
	} else {
		output, err = client.Decrypt(req)
	}
	if err != nil {
		return err
	}

	fmt.Println(output)
	return nil
}

func runAnalyze(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	text := fs.String("text", "", "text to analyze")
	inPath := fs.String("in", "", "read text from file instead of -text")
	jsonOut := fs.Bool("json", false, "emit analysis as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	input, err := readText(*text, *inPath)
	if err != nil {
		return err
	}

	client, err := newClient("memory", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	analysis := client.Analyze(input)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	fmt.Printf("letters=%d\n", analysis.Letters)
	fmt.Printf("index_of_coincidence=%.6f\n", analysis.IndexOfCoincidence)
	fmt.Printf("chi_square=%.4f\n", analysis.ChiSquare)
	fmt.Printf("trigram_count=%d\n", analysis.TrigramCount)
	fmt.Printf("fitness=%.6f\n", analysis.Fitness)
	return nil
}

func runHillClimb(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("hillclimb", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	text := fs.String("text", "", "ciphertext to attack")
	inPath := fs.String("in", "", "read ciphertext from file instead of -text")
	configPath := fs.String("config", "", "JSON attack config file")
	seed := fs.Int64("seed", 0, "random seed (0 picks one from the clock)")
	iterations := fs.Int("iterations", 0, "iteration budget")
	stagnation := fs.Int("stagnation", 0, "restart after this many non-improving iterations")
	plugboard := fs.String("plugboard", "", "plugboard pair string held fixed during the attack")
	reflector := fs.String("reflector", "B", "reflector name or pair string")
	jsonOut := fs.Bool("json", false, "emit summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := rotorbreak.HillClimbRequest{
		AttackRequest: rotorbreak.AttackRequest{
			Plugboard: *plugboard,
			Reflector: *reflector,
		},
		Seed:            *seed,
		MaxIterations:   *iterations,
		StagnationLimit: *stagnation,
	}
	if *configPath != "" {
		loaded, err := loadHillClimbConfig(*configPath)
		if err != nil {
			return err
		}
		req = mergeHillClimb(req, loaded)
	}
	if req.Ciphertext == "" {
		input, err := readText(*text, *inPath)
		if err != nil {
			return err
		}
		req.Ciphertext = input
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.HillClimb(ctx, req)
	if err != nil {
		return err
	}
	return printSummary(summary, *jsonOut)
}

func runExhaustive(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("exhaustive", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	text := fs.String("text", "", "ciphertext to attack")
	inPath := fs.String("in", "", "read ciphertext from file instead of -text")
	configPath := fs.String("config", "", "JSON attack config file")
	workers := fs.Int("workers", 0, "concurrent rotor-triple sweeps (0 uses all CPUs)")
	progressEvery := fs.Uint64("progress-every", search.DefaultProgressEvery, "configurations between progress lines")
	plugboard := fs.String("plugboard", "", "plugboard pair string held fixed during the attack")
	reflector := fs.String("reflector", "B", "reflector name or pair string")
	quiet := fs.Bool("quiet", false, "suppress progress lines")
	jsonOut := fs.Bool("json", false, "emit summary as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := rotorbreak.ExhaustiveRequest{
		AttackRequest: rotorbreak.AttackRequest{
			Plugboard: *plugboard,
			Reflector: *reflector,
		},
		Workers:       *workers,
		ProgressEvery: *progressEvery,
	}
	if *configPath != "" {
		loaded, err := loadExhaustiveConfig(*configPath)
		if err != nil {
			return err
		}
		req = mergeExhaustive(req, loaded)
	}
	if req.Ciphertext == "" {
		input, err := readText(*text, *inPath)
		if err != nil {
			return err
		}
		req.Ciphertext = input
	}

	total := search.SpaceSize(len(machine.Catalog))
	if !*quiet {
		req.Progress = func(evaluated uint64) {
			fmt.Fprintf(os.Stderr, "evaluated %s of %s configurations\n",
				humanize.Comma(int64(evaluated)), humanize.Comma(int64(total)))
		}
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Exhaustive(ctx, req)
	if err != nil {
		return err
	}
	return printSummary(summary, *jsonOut)
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	runs, err := client.Runs(ctx, rotorbreak.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, item := range runs {
		age := item.CreatedAtUTC
		if created, err := time.Parse(time.RFC3339, item.CreatedAtUTC); err == nil {
			age = humanize.Time(created)
		}
		fmt.Printf("%s  %-10s  fitness=%.6f  evaluated=%s  rotors=%s  positions=%s  %s\n",
			item.RunID, item.Method, item.Fitness,
			humanize.Comma(int64(item.Evaluated)),
			strings.Join(item.Best.Rotors[:], "-"),
			strings.Join(item.Best.Positions[:], ""),
			age)
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	runID := fs.String("run", "", "run id (empty resolves to the newest run)")
	jsonOut := fs.Bool("json", false, "emit history as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	resolvedID, history, err := client.FitnessHistory(ctx, *runID)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"run_id": resolvedID, "history": history})
	}

	fmt.Printf("run %s (%d improvements)\n", resolvedID, len(history))
	for i, fitness := range history {
		fmt.Printf("%4d  %.6f\n", i+1, fitness)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind, dbPath := addStoreFlags(fs)
	runID := fs.String("run", "", "run id to export")
	latest := fs.Bool("latest", false, "export the newest run")
	outDir := fs.String("out", exportsDir, "destination directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" && !*latest {
		return errors.New("either -run or -latest is required")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Export(ctx, rotorbreak.ExportRequest{
		RunID:  *runID,
		Latest: *latest,
		OutDir: *outDir,
	})
	if err != nil {
		return err
	}
	fmt.Printf("exported run %s to %s\n", summary.RunID, summary.Directory)
	return nil
}

func printSummary(summary rotorbreak.AttackSummary, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Printf("run %s method=%s\n", summary.RunID, summary.Method)
	fmt.Printf("rotors=%s positions=%s reflector=%s\n",
		strings.Join(summary.Best.Rotors[:], "-"),
		strings.Join(summary.Best.Positions[:], ""),
		summary.Best.Reflector)
	fmt.Printf("fitness=%.6f evaluated=%s elapsed=%s\n",
		summary.Fitness,
		humanize.Comma(int64(summary.Evaluated)),
		time.Duration(summary.ElapsedMS)*time.Millisecond)
	fmt.Printf("plaintext: %s\n", summary.Plaintext)
	return nil
}

func readText(text, inPath string) (string, error) {
	if inPath != "" {
		data, err := os.ReadFile(inPath)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(data), "\n"), nil
	}
	if text == "" {
		return "", errors.New("either -text or -in is required")
	}
	return text, nil
}

func parseRings(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	rings := make([]int, 0, len(parts))
	for _, part := range parts {
		ring, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad ring setting %q", part)
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

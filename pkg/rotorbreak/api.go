// Package rotorbreak is the public facade over the cipher machine, the
// fitness scorer and the configuration search. It owns run identity,
// persistence and on-disk artifacts so callers only deal in requests and
// summaries.
package rotorbreak

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"rotorbreak/internal/fitness"
	"rotorbreak/internal/machine"
	"rotorbreak/internal/model"
	"rotorbreak/internal/search"
	"rotorbreak/internal/stats"
	"rotorbreak/internal/storage"
)

const (
	defaultRunsDir    = "runs"
	defaultExportsDir = "exports"
	defaultDBPath     = "rotorbreak.db"
)

var (
	ErrUnknownRotor     = errors.New("unknown rotor name")
	ErrUnknownReflector = errors.New("unknown reflector name")
	ErrBadPositions     = errors.New("positions must be three letters A-Z")
	ErrEmptyCiphertext  = errors.New("ciphertext is required")
	ErrRunNotFound      = errors.New("run not found")
)

type Options struct {
	StoreKind  string
	DBPath     string
	RunsDir    string
	ExportsDir string
}

type Client struct {
	store storage.Store

	runsDir    string
	exportsDir string
}

// CipherRequest describes one machine setup for encryption or decryption.
// Zero values fall back to rotors I-II-III at AAA with reflector B and no
// plugboard.
type CipherRequest struct {
	Text      string
	Rotors    []string
	Positions string
	Rings     []int
	Plugboard string
	Reflector string
}

// AttackRequest carries the knobs shared by both attack methods.
type AttackRequest struct {
	Ciphertext string
	Plugboard  string
	Reflector  string
}

type HillClimbRequest struct {
	AttackRequest
	Seed            int64
	MaxIterations   int
	StagnationLimit int
}

type ExhaustiveRequest struct {
	AttackRequest
	Workers       int
	ProgressEvery uint64
	Progress      func(evaluated uint64)
}

// AttackSummary reports a finished attack along with where its artifacts
// landed.
type AttackSummary struct {
	RunID          string
	Method         string
	Best           model.MachineConfig
	Fitness        float64
	Plaintext      string
	Evaluated      uint64
	ElapsedMS      int64
	ArtifactsDir   string
	FitnessHistory []float64
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	Method       string
	CreatedAtUTC string
	Fitness      float64
	Evaluated    uint64
	Seed         int64
	Best         model.MachineConfig
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

// Analysis reports the raw statistics behind the fitness score.
type Analysis struct {
	Letters            int
	IndexOfCoincidence float64
	ChiSquare          float64
	TrigramCount       int
	Fitness            float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		runsDir:    runsDir,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Reset(ctx context.Context) error {
	return c.store.Reset(ctx)
}

// Encrypt runs the text through a machine built from the request.
func (c *Client) Encrypt(req CipherRequest) (string, error) {
	m, err := buildMachine(req)
	if err != nil {
		return "", err
	}
	return m.Encrypt(req.Text), nil
}

// Decrypt is Encrypt under a matched starting state; the machine is
// symmetric, so the implementations coincide.
func (c *Client) Decrypt(req CipherRequest) (string, error) {
	m, err := buildMachine(req)
	if err != nil {
		return "", err
	}
	return m.Decrypt(req.Text), nil
}

// Analyze reports the English-likeness statistics of a text without running
// any machine.
func (c *Client) Analyze(text string) Analysis {
	letters := 0
	for _, r := range strings.ToUpper(text) {
		if r >= 'A' && r <= 'Z' {
			letters++
		}
	}
	return Analysis{
		Letters:            letters,
		IndexOfCoincidence: fitness.IndexOfCoincidence(text),
		ChiSquare:          fitness.FrequencyScore(text),
		TrigramCount:       fitness.CountCommonTrigrams(text),
		Fitness:            fitness.Score(text),
	}
}

// HillClimb attacks the ciphertext with the stochastic climber, persists the
// run and writes its artifacts.
func (c *Client) HillClimb(ctx context.Context, req HillClimbRequest) (AttackSummary, error) {
	if strings.TrimSpace(req.Ciphertext) == "" {
		return AttackSummary{}, ErrEmptyCiphertext
	}
	reflectorName, reflectorPairs, err := resolveReflector(req.Reflector)
	if err != nil {
		return AttackSummary{}, err
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	started := time.Now()
	result, err := search.HillClimb(ctx, req.Ciphertext, search.HillClimbConfig{
		Catalog:         machine.Catalog,
		Plugboard:       req.Plugboard,
		Reflector:       reflectorPairs,
		MaxIterations:   req.MaxIterations,
		StagnationLimit: req.StagnationLimit,
		Rand:            rand.New(rand.NewSource(req.Seed)),
	})
	if err != nil {
		return AttackSummary{}, err
	}

	run := c.newRun(model.MethodHillClimb, req.AttackRequest, reflectorName, result, started)
	run.Seed = req.Seed

	summary, err := c.finishRun(ctx, run, stats.RunConfig{
		RunID:           run.ID,
		Method:          run.Method,
		Plugboard:       req.Plugboard,
		Reflector:       reflectorName,
		CatalogSize:     len(machine.Catalog),
		MaxIterations:   req.MaxIterations,
		StagnationLimit: req.StagnationLimit,
		Seed:            req.Seed,
		CiphertextLen:   len(req.Ciphertext),
	}, result.Trace)
	return summary, err
}

// Exhaustive attacks the ciphertext by sweeping the whole configuration
// space, persists the run and writes its artifacts.
func (c *Client) Exhaustive(ctx context.Context, req ExhaustiveRequest) (AttackSummary, error) {
	if strings.TrimSpace(req.Ciphertext) == "" {
		return AttackSummary{}, ErrEmptyCiphertext
	}
	reflectorName, reflectorPairs, err := resolveReflector(req.Reflector)
	if err != nil {
		return AttackSummary{}, err
	}

	started := time.Now()
	result, err := search.Exhaustive(ctx, req.Ciphertext, search.ExhaustiveConfig{
		Catalog:       machine.Catalog,
		Plugboard:     req.Plugboard,
		Reflector:     reflectorPairs,
		Workers:       req.Workers,
		ProgressEvery: req.ProgressEvery,
		Progress:      req.Progress,
	})
	if err != nil {
		return AttackSummary{}, err
	}

	run := c.newRun(model.MethodExhaustive, req.AttackRequest, reflectorName, result, started)

	summary, err := c.finishRun(ctx, run, stats.RunConfig{
		RunID:         run.ID,
		Method:        run.Method,
		Plugboard:     req.Plugboard,
		Reflector:     reflectorName,
		CatalogSize:   len(machine.Catalog),
		Workers:       req.Workers,
		CiphertextLen: len(req.Ciphertext),
	}, []float64{result.Fitness})
	return summary, err
}

// Runs lists persisted attack runs newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	runs, err := c.store.ListAttackRuns(ctx)
	if err != nil {
		return nil, err
	}
	if req.Limit > 0 && len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}

	items := make([]RunItem, 0, len(runs))
	for _, run := range runs {
		items = append(items, RunItem{
			RunID:        run.ID,
			Method:       run.Method,
			CreatedAtUTC: run.CreatedAt.UTC().Format(time.RFC3339),
			Fitness:      run.Fitness,
			Evaluated:    run.Evaluated,
			Seed:         run.Seed,
			Best:         run.Best,
		})
	}
	return items, nil
}

// FitnessHistory returns the improvement trace of a run. An empty run id
// resolves to the newest run.
func (c *Client) FitnessHistory(ctx context.Context, runID string) (string, []float64, error) {
	if runID == "" {
		runs, err := c.store.ListAttackRuns(ctx)
		if err != nil {
			return "", nil, err
		}
		if len(runs) == 0 {
			return "", nil, ErrRunNotFound
		}
		runID = runs[0].ID
	}

	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return runID, history, nil
}

// Export copies a run's artifact files to the export directory.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	runID := req.RunID
	if req.Latest || runID == "" {
		runs, err := c.store.ListAttackRuns(ctx)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(runs) == 0 {
			return ExportSummary{}, ErrRunNotFound
		}
		runID = runs[0].ID
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}

	dir, err := stats.ExportRunArtifacts(c.runsDir, runID, outDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: dir}, nil
}

func (c *Client) newRun(method string, req AttackRequest, reflectorName string, result search.Result, started time.Time) model.AttackRun {
	names := result.Config.Names(machine.Catalog)
	return model.AttackRun{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:         uuid.NewString(),
		Method:     method,
		CreatedAt:  time.Now().UTC(),
		Ciphertext: req.Ciphertext,
		Best: model.MachineConfig{
			Rotors: names,
			Positions: [3]string{
				string(result.Config.LeftPos),
				string(result.Config.MiddlePos),
				string(result.Config.RightPos),
			},
			Plugboard: req.Plugboard,
			Reflector: reflectorName,
		},
		Fitness:   result.Fitness,
		Plaintext: result.Plaintext,
		Evaluated: result.Evaluated,
		ElapsedMS: time.Since(started).Milliseconds(),
	}
}

func (c *Client) finishRun(ctx context.Context, run model.AttackRun, cfg stats.RunConfig, history []float64) (AttackSummary, error) {
	if err := c.store.SaveAttackRun(ctx, run); err != nil {
		return AttackSummary{}, err
	}
	if err := c.store.SaveFitnessHistory(ctx, run.ID, history); err != nil {
		return AttackSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.runsDir, stats.RunArtifacts{
		Config:         cfg,
		FitnessHistory: history,
		Result:         run,
	})
	if err != nil {
		return AttackSummary{}, err
	}
	if err := stats.AppendRunIndex(c.runsDir, stats.RunIndexEntry{
		RunID:        run.ID,
		Method:       run.Method,
		Fitness:      run.Fitness,
		Evaluated:    run.Evaluated,
		Seed:         run.Seed,
		CreatedAtUTC: run.CreatedAt.Format(time.RFC3339),
	}); err != nil {
		return AttackSummary{}, err
	}

	return AttackSummary{
		RunID:          run.ID,
		Method:         run.Method,
		Best:           run.Best,
		Fitness:        run.Fitness,
		Plaintext:      run.Plaintext,
		Evaluated:      run.Evaluated,
		ElapsedMS:      run.ElapsedMS,
		ArtifactsDir:   runDir,
		FitnessHistory: history,
	}, nil
}

func buildMachine(req CipherRequest) (*machine.Machine, error) {
	rotors := req.Rotors
	if len(rotors) == 0 {
		rotors = []string{"I", "II", "III"}
	}
	if len(rotors) != 3 {
		return nil, fmt.Errorf("%w: need 3 rotors, have %d", machine.ErrRotorCount, len(rotors))
	}
	positions := req.Positions
	if positions == "" {
		positions = "AAA"
	}
	positions = strings.ToUpper(positions)
	if len(positions) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrBadPositions, req.Positions)
	}
	rings := req.Rings
	if rings == nil {
		rings = []int{0, 0, 0}
	}
	if len(rings) != 3 {
		return nil, fmt.Errorf("%w: need 3 ring settings, have %d", machine.ErrRotorCount, len(rings))
	}
	_, reflectorPairs, err := resolveReflector(req.Reflector)
	if err != nil {
		return nil, err
	}

	// Requests name rotors left to right; the machine wants the fast (right)
	// rotor first.
	var wirings []string
	var notches []byte
	var posIdx []int
	var ringIdx []int
	for i := 2; i >= 0; i-- {
		spec, ok := machine.LookupRotor(strings.ToUpper(rotors[i]))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRotor, rotors[i])
		}
		p := positions[i]
		if p < 'A' || p > 'Z' {
			return nil, fmt.Errorf("%w: %q", ErrBadPositions, req.Positions)
		}
		wirings = append(wirings, spec.Wiring)
		notches = append(notches, spec.Notch)
		posIdx = append(posIdx, int(p-'A'))
		ringIdx = append(ringIdx, rings[i])
	}

	return machine.New(machine.Settings{
		Wirings:   wirings,
		Notches:   notches,
		Positions: posIdx,
		Rings:     ringIdx,
		Plugboard: req.Plugboard,
		Reflector: reflectorPairs,
	})
}

// resolveReflector accepts a catalog name ("B", "C") or a raw 26-letter pair
// string; empty means reflector B.
func resolveReflector(name string) (string, string, error) {
	switch {
	case name == "":
		return "B", machine.ReflectorB, nil
	case len(name) == 1:
		pairs, ok := machine.Reflectors[strings.ToUpper(name)]
		if !ok {
			return "", "", fmt.Errorf("%w: %s", ErrUnknownReflector, name)
		}
		return strings.ToUpper(name), pairs, nil
	default:
		return name, name, nil
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"evodrive/internal/storage"
	"evodrive/pkg/evodrive"
)

const defaultDBPath = "evodrive.db"

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
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "fitness":
		return runFitness(ctx, args[1:])
	case "best":
		return runBest(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "inspect":
		return runInspect(args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: evodrivectl <init|run|runs|fitness|best|export|inspect> [flags]", msg)
}

func storeFlags(fs *flag.FlagSet) (*string, *string) {
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	return storeKind, dbPath
}

func openClient(ctx context.Context, storeKind, dbPath string) (*evodrive.Client, error) {
	client, err := evodrive.New(evodrive.Options{StoreKind: storeKind, DBPath: dbPath})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	profile := fs.String("profile", "", "ini run profile; flags override its values where set")
	runID := fs.String("run-id", "", "run identifier (generated when empty)")
	evaluator := fs.String("evaluator", "", "evaluator name (default xor)")
	population := fs.Int("population", 0, "population size")
	generations := fs.Int("generations", 0, "generation limit")
	inputs := fs.Int("inputs", 0, "controller input width")
	selection := fs.Float64("selection", 0, "selection percentage (0 = default)")
	mixing := fs.Float64("mixing", 0, "crossover mixing ratio (0 = default)")
	mutation := fs.Float64("mutation", 0, "mutation probability (0 = default)")
	goal := fs.Float64("goal", 0, "fitness goal (0 = run to the generation limit)")
	seed := fs.Int64("seed", 0, "random seed")
	controllerFile := fs.String("controller", "", "controller file to seed the first population from")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req evodrive.RunRequest
	if *profile != "" {
		var err error
		req, err = loadRunRequestFromProfile(*profile)
		if err != nil {
			return err
		}
	}
	if *runID != "" {
		req.RunID = *runID
	}
	if *evaluator != "" {
		req.Evaluator = *evaluator
	}
	if *population > 0 {
		req.Population = *population
	}
	if *generations > 0 {
		req.Generations = *generations
	}
	if *inputs > 0 {
		req.InputsLength = *inputs
	}
	if *selection > 0 {
		req.SelectionPercentage = *selection
	}
	if *mixing > 0 {
		req.MixingRatio = *mixing
	}
	if *mutation > 0 {
		req.MutationProbability = *mutation
	}
	if *goal > 0 {
		req.FitnessGoal = *goal
	}
	if *seed != 0 {
		req.Seed = *seed
	}
	if *controllerFile != "" {
		width, text, err := evodrive.LoadControllerFile(*controllerFile)
		if err != nil {
			return err
		}
		req.SeedNetworkText = text
		if req.InputsLength == 0 {
			req.InputsLength = width
		}
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	limit := req.Generations
	if limit <= 0 {
		limit = 100
	}
	req.OnGeneration = generationProgress(limit)

	started := time.Now()
	result, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s finished: generations=%d best=%s elapsed=%s\n",
		result.RunID, result.Generations, humanize.Ftoa(result.BestFitness),
		time.Since(started).Round(time.Millisecond))
	fmt.Printf("best network: %s\n", result.NetworkID)
	return nil
}

// generationProgress renders a progress bar on a terminal and falls back to
// one log line per generation when stderr is redirected.
func generationProgress(limit int) func(evodrive.Generation) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return func(g evodrive.Generation) {
			fmt.Fprintf(os.Stderr, "generation %d: best=%.4f sum=%.4f leader=%s\n",
				g.Number, g.BestFitness, g.SumFitness, g.BestID)
		}
	}

	bar := progressbar.NewOptions(limit,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("evolving"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func(g evodrive.Generation) {
		bar.Describe(fmt.Sprintf("gen %d best %.3f", g.Number, g.BestFitness))
		_ = bar.Add(1)
	}
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	fmt.Printf("%-36s %-10s %12s %12s %10s\n", "RUN", "EVALUATOR", "POPULATION", "GENERATIONS", "BEST")
	for _, item := range runs {
		fmt.Printf("%-36s %-10s %12s %12s %10s\n",
			item.RunID, item.Evaluator,
			humanize.Comma(int64(item.Population)),
			humanize.Comma(int64(item.Generations)),
			humanize.FtoaWithDigits(item.BestFitness, 4))
	}
	return nil
}

func runFitness(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fitness", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	runID := fs.String("run-id", "", "run identifier")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("fitness requires -run-id")
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.FitnessHistory(ctx, *runID)
	if err != nil {
		return err
	}
	fmt.Printf("%10s %12s %12s %-12s\n", "GENERATION", "BEST", "SUM", "LEADER")
	for _, item := range history {
		fmt.Printf("%10d %12s %12s %-12s\n",
			item.Generation,
			humanize.FtoaWithDigits(item.BestFitness, 4),
			humanize.FtoaWithDigits(item.SumFitness, 4),
			item.BestID)
	}
	return nil
}

func runBest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("best", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	runID := fs.String("run-id", "", "run identifier")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("best requires -run-id")
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	info, err := client.BestNetwork(ctx, *runID)
	if err != nil {
		return err
	}
	fmt.Printf("network %s\n", info.ID)
	fmt.Printf("fitness %s\n", humanize.Ftoa(info.Best))
	fmt.Printf("layers  %s\n", formatShapes(info.Shapes))
	fmt.Println(info.Text)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	runID := fs.String("run-id", "", "run identifier")
	out := fs.String("out", "controller.txt", "controller file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("export requires -run-id")
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	info, err := client.BestNetwork(ctx, *runID)
	if err != nil {
		return err
	}
	if err := evodrive.SaveControllerFile(*out, info.Text); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", info.ID, *out)
	return nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	path := fs.String("controller", "", "controller file to inspect")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return usageError("inspect requires -controller")
	}

	sensors, text, err := evodrive.LoadControllerFile(*path)
	if err != nil {
		return err
	}
	shapeLine, _, _ := strings.Cut(text, "\n")
	fmt.Printf("sensors %d\n", sensors)
	fmt.Printf("shapes  %s\n", shapeLine)
	return nil
}

func formatShapes(shapes []int) string {
	if len(shapes) == 0 {
		return "(unknown)"
	}
	parts := make([]string, 0, len(shapes)/2)
	for i := 0; i+1 < len(shapes); i += 2 {
		parts = append(parts, fmt.Sprintf("%dx%d", shapes[i], shapes[i+1]))
	}
	return strings.Join(parts, " -> ")
}

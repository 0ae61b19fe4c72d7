package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/cellbody/internal/analysis"
	"github.com/san-kum/cellbody/internal/config"
	"github.com/san-kum/cellbody/internal/dynamo"
	"github.com/san-kum/cellbody/internal/grid"
	"github.com/san-kum/cellbody/internal/metrics"
	"github.com/san-kum/cellbody/internal/solver"
	"github.com/san-kum/cellbody/internal/storage"
	"github.com/san-kum/cellbody/internal/tui"
	"github.com/san-kum/cellbody/internal/viz"
)

var (
	dataDir     string
	logLevel    string
	configFile  string
	preset      string
	runName     string
	steps       int
	seed        int64
	width       int
	height      int
	wrap        bool
	iterations  int
	restitution float64
	workers     int
	diagonal    bool
	saveConfig  string

	// live output
	live      bool
	frameRate int
	mode      string
	theme     string

	series    []string
	combined  bool
	minimap   bool
	instances int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "cellbody",
		Short:        "grid-resident rigid body simulator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cellbody", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its step series",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addWorldFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name (defaults to the preset or config file)")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved config to this path")
	runCmd.Flags().BoolVar(&live, "live", false, "stream the grid to the terminal")
	runCmd.Flags().IntVar(&frameRate, "fps", 20, "frame rate for --live")
	runCmd.Flags().StringVar(&mode, "mode", "owners", "overlay mode for --live (owners, rejection, velocity)")
	runCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme: "+strings.Join(viz.ThemeNames(), ", "))

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot step series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&series, "series", []string{"collisions", "energy", "lost"}, "columns: "+strings.Join(metrics.Columns, ", "))
	plotCmd.Flags().BoolVar(&combined, "combined", false, "draw all series on one chart")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "draw the final grid of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().StringVar(&mode, "mode", "owners", "overlay mode (owners, rejection, velocity)")
	showCmd.Flags().BoolVar(&minimap, "minimap", false, "draw a Braille minimap instead of one glyph per cell")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary statistics and dominant periods",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return tui.RunViewer(cfg)
		},
	}
	addWorldFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRID\tWRAP\tOBJECTS\tSTEPS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				n := len(p.Scene.Objects) + p.Scene.Random
				fmt.Fprintf(w, "%s\t%dx%d\t%v\t%d\t%d\n", name, p.Grid.Width, p.Grid.Height, p.Grid.Wrap, n, p.Run.Steps)
			}
			return w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "step several independent worlds in parallel",
		Args:  cobra.NoArgs,
		RunE:  benchWorlds,
	}
	addWorldFlags(benchCmd)
	benchCmd.Flags().IntVar(&instances, "instances", 4, "number of worlds")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, showCmd, analyzeCmd, exportJSONCmd, liveCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addWorldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps to run")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for random scenes")
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "grid width")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "grid height")
	cmd.Flags().BoolVar(&wrap, "wrap", false, "wrap grid edges")
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "impulse passes per step")
	cmd.Flags().Float64Var(&restitution, "restitution", config.DefaultRestitution, "coefficient of restitution")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&diagonal, "diagonal", false, "search diagonal neighbors for rejection")
}

// resolveConfig layers preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("steps") || (preset == "" && configFile == "") {
		cfg.Run.Steps = steps
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if flags.Changed("width") {
		cfg.Grid.Width = width
	}
	if flags.Changed("height") {
		cfg.Grid.Height = height
	}
	if flags.Changed("wrap") {
		cfg.Grid.Wrap = wrap
	}
	if flags.Changed("iterations") {
		cfg.Solver.Iterations = iterations
	}
	if flags.Changed("restitution") {
		cfg.Solver.Restitution = restitution
	}
	if flags.Changed("workers") {
		cfg.Solver.Workers = workers
	}
	if flags.Changed("diagonal") {
		cfg.Solver.Diagonal = diagonal
	}
	return cfg, cfg.Validate()
}

func newLogger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("bad --log-level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}

	world, err := cfg.NewWorld(logger)
	if err != nil {
		return err
	}

	rec := &metrics.Recorder{}
	set := metrics.Standard()
	world.AddObserver(rec)
	world.AddObserver(set)

	if live {
		m, err := viz.ParseMode(mode)
		if err != nil {
			return err
		}
		r := tui.NewLiveRenderer(os.Stdout, world, viz.Overlay{Theme: viz.GetTheme(theme), Mode: m}, frameRate)
		world.AddObserver(r)
		r.Start()
		defer r.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	name := runName
	switch {
	case name != "":
	case preset != "":
		name = preset
	case configFile != "":
		name = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	default:
		name = "run"
	}

	fmt.Printf("running %s: %dx%d grid, %d objects, %d steps\n",
		name, cfg.Grid.Width, cfg.Grid.Height, world.Objects().Len(), cfg.Run.Steps)
	start := time.Now()
	runErr := world.Run(ctx, cfg.Run.Steps, nil)
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	meta := storage.RunMetadata{
		Name:        name,
		Seed:        cfg.Run.Seed,
		Width:       cfg.Grid.Width,
		Height:      cfg.Grid.Height,
		Wrap:        cfg.Grid.Wrap,
		Objects:     world.Objects().Len(),
		Steps:       world.Steps(),
		Iterations:  world.Options().Iterations,
		Restitution: world.Options().Restitution,
		Metrics:     set.Values(),
	}
	for _, col := range []string{"collisions", "lost", "energy", "elapsed_us"} {
		meta.Summaries = append(meta.Summaries, analysis.Summarize(col, rec.Series(col)))
	}
	if runErr != nil {
		meta.Aborted = runErr.Error()
	}

	runID, err := st.Save(&storage.Run{Meta: meta, Samples: rec.Samples, Final: world.Snapshot()})
	if err != nil {
		return err
	}

	fmt.Printf("completed %d steps in %v\n", world.Steps(), elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Println("\nmetrics:")
	for _, m := range set {
		fmt.Printf("  %-16s %.6f\n", m.Name(), m.Value())
	}

	var stepErr *solver.StepError
	switch {
	case errors.As(runErr, &stepErr):
		return fmt.Errorf("world frozen: %w", runErr)
	case errors.Is(runErr, dynamo.ErrContextCanceled):
		fmt.Println("interrupted")
		return nil
	}
	return runErr
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tOBJECTS\tSTEPS\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Aborted != "" {
			status = "aborted"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Objects,
			run.Steps,
			status,
		)
	}

	return w.Flush()
}

func loadRecorder(runID string) (*storage.RunMetadata, *metrics.Recorder, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSteps(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("no data to plot")
	}
	return meta, &metrics.Recorder{Samples: samples}, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, rec, err := loadRecorder(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(rec.Samples))

	out, err := plotSeries(rec, series, combined)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// plotSeries charts the named columns of rec, one chart each or all on one.
func plotSeries(rec *metrics.Recorder, names []string, together bool) (string, error) {
	all := make([][]float64, 0, len(names))
	for _, name := range names {
		data := rec.Series(name)
		if data == nil {
			return "", fmt.Errorf("unknown series %q (available: %s)", name, strings.Join(metrics.Columns, ", "))
		}
		all = append(all, data)
	}

	var b strings.Builder
	if together && len(all) > 1 {
		b.WriteString(viz.PlotMany(all, strings.Join(names, ", ")+" vs step", 80, 12))
		b.WriteString("\n")
		return b.String(), nil
	}
	for i, data := range all {
		b.WriteString(viz.Plot(data, names[i]+" vs step", 80, 10))
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func showRun(cmd *cobra.Command, args []string) error {
	m, err := viz.ParseMode(mode)
	if err != nil {
		return err
	}
	snap, err := storage.New(dataDir).LoadFinal(args[0])
	if err != nil {
		return err
	}
	o := viz.Overlay{Theme: viz.ThemeMinimal, Mode: m}
	fmt.Printf("step %d\n", snap.Step)
	if minimap {
		centres := make([][]grid.Vec2, 0, len(snap.Objects))
		for _, obj := range snap.Objects {
			if obj.Mass > 0 {
				centres = append(centres, []grid.Vec2{obj.Position})
			}
		}
		fmt.Print(viz.Minimap(snap, centres...).String())
	} else {
		fmt.Print(o.Render(snap))
	}
	fmt.Println()
	fmt.Print(o.Legend(snap.Objects))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, rec, err := loadRecorder(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%d steps)\n\n", meta.ID, len(rec.Samples))
	for _, name := range metrics.Columns {
		fmt.Println(analysis.Summarize(name, rec.Series(name)))
	}

	fmt.Println()
	for _, name := range []string{"collisions", "energy"} {
		period, power := analysis.DominantPeriod(rec.Series(name))
		if period == 0 {
			fmt.Printf("%-12s flat\n", name)
			continue
		}
		fmt.Printf("%-12s period %.1f steps (power %.3g)\n", name, period, power)
	}
	fmt.Printf("\ncorr(collisions, lost) = %.3f\n", analysis.Correlate(rec.Series("collisions"), rec.Series("lost")))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	run, err := storage.New(dataDir).LoadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, run)
}

func benchWorlds(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if instances < 1 {
		return fmt.Errorf("%w: instances must be positive", dynamo.ErrInvalidConfig)
	}

	type result struct {
		steps   int
		elapsed time.Duration
		cells   int
	}
	results := make([]result, instances)
	var frozen atomic.Int32

	fmt.Printf("benchmarking %d worlds of %dx%d for %d steps\n\n", instances, cfg.Grid.Width, cfg.Grid.Height, cfg.Run.Steps)
	start := time.Now()
	err = dynamo.NewEnsemble(0).Run(context.Background(), instances, func(ctx context.Context, idx int) error {
		c := *cfg
		c.Run.Seed = cfg.Run.Seed + int64(idx)
		// each world gets one worker so instances scale across cores
		c.Solver.Workers = 1
		w, err := c.NewWorld(nil)
		if err != nil {
			return err
		}
		t0 := time.Now()
		if err := w.Run(ctx, c.Run.Steps, nil); err != nil {
			var stepErr *solver.StepError
			if !errors.As(err, &stepErr) {
				return err
			}
			frozen.Add(1)
		}
		results[idx] = result{steps: w.Steps(), elapsed: time.Since(t0), cells: w.Cells().OwnedCount()}
		return nil
	})
	if err != nil {
		return err
	}
	total := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORLD\tSTEPS\tCELLS\tTIME\tSTEPS/SEC")
	sum := 0
	for i, r := range results {
		sum += r.steps
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n", i, r.steps, r.cells, r.elapsed.Round(time.Microsecond), float64(r.steps)/r.elapsed.Seconds())
	}
	fmt.Fprintf(w, "all\t%d\t\t%v\t%.0f\n", sum, total.Round(time.Microsecond), float64(sum)/total.Seconds())
	if n := frozen.Load(); n > 0 {
		fmt.Fprintf(w, "\n%d world(s) froze on collision overflow\n", n)
	}
	return w.Flush()
}

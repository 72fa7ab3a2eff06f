package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/grainsim/internal/automation"
	"github.com/san-kum/grainsim/internal/config"
	"github.com/san-kum/grainsim/internal/experiment"
	"github.com/san-kum/grainsim/internal/export"
	"github.com/san-kum/grainsim/internal/geom"
	"github.com/san-kum/grainsim/internal/logging"
	"github.com/san-kum/grainsim/internal/observability"
	"github.com/san-kum/grainsim/internal/optim"
	"github.com/san-kum/grainsim/internal/propulsion"
	"github.com/san-kum/grainsim/internal/sim"
	"github.com/san-kum/grainsim/internal/storage"
	"github.com/san-kum/grainsim/internal/viz"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile  string
	fireTime    float64
	ips         float64
	oxFlow      float64
	coeffA      float64
	coeffN      float64
	isp         float64
	length      float64
	density     float64
	portRadius  float64
	outerRadius float64
	outlines    bool

	save        bool
	metricsFile string
	metricsAddr string
	workers     int
	format      string
	outFile     string
	preset      string
	steps       int
	metric      string
	maximize    bool

	// render
	renderFormat string
	renderOut    string
	curve        string
	curveFile    string
	every        int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "grainsim",
		Short:        "hybrid rocket fuel grain regression simulator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunPicker()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".grainsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, text, json)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a burn simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addDesignFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", true, "store the run under the data directory")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus textfile metrics to path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot thrust, regression rate and port area",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the run series",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCSVCmd.Flags().StringVar(&format, "format", "csv", "output format (csv, json)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPORTS\tOUTER\tFIRE TIME")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%s r=%.2f\t%.3fs\n", name, len(cfg.Ports), cfg.Outer.Shape, cfg.Outer.Radius, cfg.Run.FireTime)
			}
			return w.Flush()
		},
	}

	configCmd := &cobra.Command{
		Use:   "config [preset]",
		Short: "write a preset as a yaml config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	configCmd.Flags().StringVarP(&outFile, "out", "o", "grainsim.yaml", "output path")

	batchCmd := &cobra.Command{
		Use:   "batch [config|preset]...",
		Short: "run several designs concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&workers, "workers", 4, "concurrent runs")
	batchCmd.Flags().BoolVar(&save, "save", true, "store every run under the data directory")
	batchCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus textfile metrics to path")
	batchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on addr until interrupted")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "animate the burn in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addDesignFlags(liveCmd)

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render recorded contours and a curve as svg or png",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVar(&renderFormat, "format", "svg", "image format (svg, png)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "contour image path (default <run_id>.<format>)")
	renderCmd.Flags().StringVar(&curve, "curve", "thrust", "series column for the curve image")
	renderCmd.Flags().StringVar(&curveFile, "curve-out", "", "also write the curve image to path")
	renderCmd.Flags().IntVar(&every, "every", 5, "draw every n-th contour")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param] [min] [max]",
		Short: "run a design across a parameter range",
		Args:  cobra.ExactArgs(3),
		RunE:  runSweep,
	}
	addDesignFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&preset, "preset", "baseline", "base preset")
	sweepCmd.Flags().IntVar(&steps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 4, "concurrent runs")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the sweeps and monte carlo study of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	optimizeCmd := &cobra.Command{
		Use:   "optimize [param=v1,v2,...]...",
		Short: "grid search design parameters for the best metric",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runOptimize,
	}
	addDesignFlags(optimizeCmd)
	optimizeCmd.Flags().StringVar(&preset, "preset", "baseline", "base preset")
	optimizeCmd.Flags().StringVar(&metric, "metric", "total_impulse", "metric to optimise")
	optimizeCmd.Flags().BoolVar(&maximize, "max", true, "maximise the metric instead of minimising it")
	optimizeCmd.Flags().IntVar(&workers, "workers", 4, "concurrent runs")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, presetsCmd, configCmd, batchCmd, liveCmd, renderCmd, sweepCmd, scenarioCmd, optimizeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addDesignFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&fireTime, "time", d.Run.FireTime, "fire time (s)")
	cmd.Flags().Float64Var(&ips, "ips", d.Run.IterationsPerSecond, "iterations per second")
	cmd.Flags().Float64Var(&oxFlow, "ox-flow", d.Grain.OxidizerFlow, "oxidizer mass flow (kg/s)")
	cmd.Flags().Float64Var(&coeffA, "a", d.Grain.A, "regression coefficient a")
	cmd.Flags().Float64Var(&coeffN, "n", d.Grain.N, "regression exponent n")
	cmd.Flags().Float64Var(&isp, "isp", d.Grain.Isp, "specific impulse (s)")
	cmd.Flags().Float64Var(&length, "length", d.Grain.Length, "grain length (m)")
	cmd.Flags().Float64Var(&density, "density", d.Grain.Density, "fuel density (kg/m³)")
	cmd.Flags().Float64Var(&portRadius, "port-radius", d.Ports[0].Radius, "radius of a single circular port (mm)")
	cmd.Flags().Float64Var(&outerRadius, "outer-radius", d.Outer.Radius, "radius of a circular outer boundary (mm)")
	cmd.Flags().BoolVar(&outlines, "outlines", false, "record the port outline at every step")
}

// loadConfig resolves the preset, then the config file, then any flag the
// user set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	name := "baseline"
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.Run.FireTime = fireTime
	}
	if flags.Changed("ips") {
		cfg.Run.IterationsPerSecond = ips
	}
	if flags.Changed("outlines") {
		cfg.Run.RecordOutlines = outlines
	}
	if flags.Changed("ox-flow") {
		cfg.Grain.OxidizerFlow = oxFlow
	}
	if flags.Changed("a") {
		cfg.Grain.A = coeffA
	}
	if flags.Changed("n") {
		cfg.Grain.N = coeffN
	}
	if flags.Changed("isp") {
		cfg.Grain.Isp = isp
	}
	if flags.Changed("length") {
		cfg.Grain.Length = length
	}
	if flags.Changed("density") {
		cfg.Grain.Density = density
	}
	if flags.Changed("port-radius") {
		cfg.Ports = []config.ShapeConfig{{Shape: "circle", Radius: portRadius, Segments: config.DefaultSegments}}
	}
	if flags.Changed("outer-radius") {
		cfg.Outer = config.ShapeConfig{Shape: "circle", Radius: outerRadius, Segments: config.DefaultSegments}
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg logging.Config) logging.Logger {
	if logLevel != "" {
		cfg.Level = logLevel
	}
	if logFormat != "" {
		cfg.Format = logFormat
	}
	return logging.NewFromEnv(cfg)
}

func newCollector() (*observability.RunCollector, error) {
	if metricsFile == "" && metricsAddr == "" {
		return nil, nil
	}
	return observability.NewRunCollector(prometheus.NewRegistry())
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Log)

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg, registry, log)
	if err := exp.Setup(registry.DefaultMetrics()); err != nil {
		return err
	}

	collector, err := newCollector()
	if err != nil {
		return err
	}
	if collector != nil {
		exp.Simulator().AddObserver(collector)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s...\n", cfg.Name)
	start := time.Now()
	result, runErr := exp.Run(ctx)
	elapsed := time.Since(start)
	if result == nil {
		return runErr
	}

	if collector != nil {
		collector.RecordRun(cfg.Name, result, elapsed)
		if err := collector.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Name, exp.Spec(), exp.SimConfig(), result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("status: %s\n", result.Status)
	fmt.Printf("snapshots: %d\n", len(result.Series))
	printMetrics(result.Metrics)
	return runErr
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTATUS\tSNAPSHOTS\tIMPULSE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.1f N·s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.Snapshots,
			run.Metrics["total_impulse"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("status: %s\n", meta.Status)
	fmt.Printf("samples: %d\n\n", len(series))

	plots := []struct {
		caption string
		pick    func(propulsion.State) float64
	}{
		{"thrust (N)", func(s propulsion.State) float64 { return s.Thrust }},
		{"regression rate (mm/s)", func(s propulsion.State) float64 { return s.RegressionRate * 1e3 }},
		{"port area (mm²)", func(s propulsion.State) float64 { return s.PortArea * 1e6 }},
	}
	for _, p := range plots {
		data := make([]float64, len(series))
		for i, s := range series {
			data[i] = p.pick(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		return storage.ExportCSV(os.Stdout, series)
	case "json":
		return storage.ExportJSON(os.Stdout, meta, series)
	}
	return fmt.Errorf("unknown format: %s", format)
}

func writeConfig(cmd *cobra.Command, args []string) error {
	name := "baseline"
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s", name)
	}
	if err := config.Save(outFile, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

// batchConfig treats arg as a preset name first, then as a config file.
func batchConfig(arg string) (*config.Config, error) {
	if cfg := config.GetPreset(arg); cfg != nil {
		return cfg, nil
	}
	return config.Load(arg)
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := newLogger(logging.Config{})

	jobs := make([]sim.Job, 0, len(args))
	names := make(map[string]bool, len(args))
	for _, arg := range args {
		cfg, err := batchConfig(arg)
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		if names[cfg.Name] {
			cfg.Name = fmt.Sprintf("%s-%d", cfg.Name, len(jobs)+1)
		}
		names[cfg.Name] = true
		job, err := experiment.BuildJob(cfg, log)
		if err != nil {
			return fmt.Errorf("%s: %w", arg, err)
		}
		jobs = append(jobs, job)
	}

	collector, err := newCollector()
	if err != nil {
		return err
	}
	batch := sim.NewBatch(workers, log)
	if collector != nil {
		batch.AddObserver(collector)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var srv *http.Server
	if metricsAddr != "" {
		srv = serveMetrics(metricsAddr, collector, log)
		defer srv.Close()
	}

	start := time.Now()
	results, err := batch.Run(ctx, jobs)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	var st *storage.Store
	if save {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS\tSNAPSHOTS\tIMPULSE\tPEAK\tRUN ID")
	var failed []error
	for i, r := range results {
		if r.Result == nil {
			failed = append(failed, fmt.Errorf("%s: %w", r.Name, r.Err))
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\n", r.Name)
			continue
		}
		if r.Err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
		if collector != nil {
			collector.RecordRun(r.Name, r.Result, elapsed)
		}
		runID := "-"
		if st != nil {
			id, err := st.Save(r.Name, jobs[i].Spec, jobs[i].Config, r.Result)
			if err != nil {
				return err
			}
			runID = id
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f N·s\t%.1f N\t%s\n",
			r.Name,
			r.Result.Status,
			len(r.Result.Series),
			r.Result.Metrics["total_impulse"],
			r.Result.Metrics["peak_thrust"],
			runID,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d designs in %v\n", len(results), elapsed)

	if metricsFile != "" {
		if err := collector.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}
	if srv != nil {
		fmt.Printf("serving metrics on %s, interrupt to exit\n", metricsAddr)
		<-ctx.Done()
	}
	return errors.Join(failed...)
}

func serveMetrics(addr string, collector *observability.RunCollector, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(context.Background(), "metrics server", logging.String("addr", addr), logging.Err(err))
		}
	}()
	return srv
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && configFile == "" && cmd.Flags().NFlag() == 0 {
		return viz.RunPicker()
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := viz.ModelForConfig(cfg)
	if err != nil {
		return err
	}
	return viz.RunLive(m)
}

func renderRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	if renderFormat != "svg" && renderFormat != "png" {
		return fmt.Errorf("unknown format: %s", renderFormat)
	}
	col, ok := export.Columns[curve]
	if !ok {
		return fmt.Errorf("unknown curve: %s", curve)
	}

	st := storage.New(dataDir)
	outer, err := st.LoadBoundary(runID)
	if err != nil {
		return err
	}
	outlines, err := st.LoadOutlines(runID)
	if err != nil {
		return err
	}
	if outer == nil || len(outlines) == 0 {
		return fmt.Errorf("run %s has no recorded outlines (run with --outlines)", runID)
	}

	_, polys := storage.Contours(outlines)
	if every < 1 {
		every = 1
	}
	picked := make([]geom.Polygon, 0, len(polys)/every+1)
	for i := every - 1; i < len(polys); i += every {
		picked = append(picked, polys[i])
	}
	if len(polys)%every != 0 {
		picked = append(picked, polys[len(polys)-1])
	}

	path := renderOut
	if path == "" {
		path = runID + "." + renderFormat
	}
	if renderFormat == "png" {
		err = export.ContoursPNG(path, outer, picked, runID)
	} else {
		err = writeFile(path, func(f *os.File) error {
			return export.ContoursSVG(f, outer, picked, 600, 600, export.DefaultStyle)
		})
	}
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d contours)\n", path, len(picked))

	if curveFile == "" {
		return nil
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if renderFormat == "png" {
		err = export.SeriesPNG(curveFile, series, col, runID)
	} else {
		xs := make([]float64, len(series))
		ys := make([]float64, len(series))
		for i, s := range series {
			xs[i], ys[i] = s.Time, col.Pick(s)
		}
		err = writeFile(curveFile, func(f *os.File) error {
			return export.CurveSVG(f, xs, ys, 800, 300, export.DefaultStyle.Front)
		})
	}
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", curveFile)
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runSweep(cmd *cobra.Command, args []string) error {
	lo, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("min: %w", err)
	}
	hi, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("max: %w", err)
	}
	base, err := loadConfig(cmd, []string{preset})
	if err != nil {
		return err
	}
	log := newLogger(base.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sweep := automation.Sweep{Param: args[0], Min: lo, Max: hi, Steps: steps}
	res, err := automation.RunSweep(ctx, base, sweep, workers, log)
	if err != nil {
		return err
	}
	return printSweep(res)
}

func printSweep(res []automation.SweepResult) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if len(res) > 0 {
		fmt.Fprintf(w, "%s\tSTATUS\tSNAPSHOTS\tIMPULSE\tPEAK\tBURN TIME\n", strings.ToUpper(res[0].Param))
	}
	for _, r := range res {
		if r.Err != nil && r.Metrics == nil {
			fmt.Fprintf(w, "%.4g\terror: %v\t\t\t\t\n", r.Value, r.Err)
			continue
		}
		fmt.Fprintf(w, "%.4g\t%s\t%d\t%.1f N·s\t%.1f N\t%.3fs\n",
			r.Value,
			r.Status,
			r.Snapshots,
			r.Metrics["total_impulse"],
			r.Metrics["peak_thrust"],
			r.Metrics["burn_time"],
		)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	log := newLogger(logging.Config{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := automation.RunScenario(ctx, sc, log)
	if err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", report.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	for _, sweep := range report.Sweeps {
		fmt.Println()
		if err := printSweep(sweep); err != nil {
			return err
		}
	}
	if len(report.MonteCarlo) > 0 {
		fmt.Printf("\nmonte carlo (%d trials):\n", len(report.MonteCarlo))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
		for _, name := range []string{"total_impulse", "peak_thrust", "average_thrust", "fuel_consumed", "burn_time"} {
			d := automation.MonteCarloStats(report.MonteCarlo, name)
			fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\n", name, d.Mean, d.StdDev, d.Min, d.Max)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		d := automation.MonteCarloStats(report.MonteCarlo, "total_impulse")
		fmt.Printf("completed: %d  burned out: %d  failed: %d\n", d.Completed, d.BurnedOut, d.Failed)
	}
	return nil
}

// parseRange reads "name=v1,v2,...".
func parseRange(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("expected param=v1,v2,... got %q", arg)
	}
	var values []float64
	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", name, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	names := make([]string, 0, len(args))
	ranges := make([][]float64, 0, len(args))
	for _, arg := range args {
		name, values, err := parseRange(arg)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	base, err := loadConfig(cmd, []string{preset})
	if err != nil {
		return err
	}

	g := optim.NewGridSearch(names, ranges)
	g.Maximize = maximize
	g.Workers = workers
	g.Log = newLogger(base.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("searching %d designs for %s...\n", g.Size(), metric)
	best, value, _, err := g.Search(ctx, base, metric)
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.6g\n", metric, value)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}

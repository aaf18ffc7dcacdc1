package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stratum/pkg/buildinfo"
	"github.com/matzehuels/stratum/pkg/cache"
	"github.com/matzehuels/stratum/pkg/config"
	serrors "github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/graph"
	stratumio "github.com/matzehuels/stratum/pkg/io"
	"github.com/matzehuels/stratum/pkg/layout"
	"github.com/matzehuels/stratum/pkg/observability"
	"github.com/matzehuels/stratum/pkg/pipeline"
)

type layoutFlags struct {
	output      string
	preview     string
	configPath  string
	metricsFile string

	rankdir   string
	acyclicer string
	ranker    string
	align     string
	nodesep   float64
	edgesep   float64
	ranksep   float64

	debugTiming bool
	refresh     bool
	watch       bool
	jobs        int
	cache       cacheOptions
}

// graphFlags maps flags to the graph attribute they override.
var graphFlags = []string{"rankdir", "acyclicer", "ranker", "align", "nodesep", "edgesep", "ranksep"}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout <graph.json>...",
		Short: "Compute a layered layout for one or more graphs",
		Long: `Compute a layered layout for one or more graphs.

Each input is a JSON graph:

  {"graph": {...}, "nodes": [{"id", "parent", "attrs"}], "edges": [{"v", "w", "name", "attrs"}]}

The graph is written back with x/y on every node, width/height on compound
nodes, points on every edge and the drawing size on the graph. Output goes
to <input>.layout.json unless -o is given.

Graph attributes come from the graph itself, then the --config defaults
file, and flags such as --rankdir override both.

Results are cached by the content of the input and the options. Several
inputs are laid out concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := graph.Attrs{}
			for _, name := range graphFlags {
				if !cmd.Flags().Changed(name) {
					continue
				}
				fl := cmd.Flags().Lookup(name)
				if fl.Value.Type() == "float64" {
					v, _ := cmd.Flags().GetFloat64(name)
					overrides[name] = v
				} else {
					overrides[name] = fl.Value.String()
				}
			}
			return c.runLayout(c.runContext(cmd.Context()), args, f, overrides)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single input only; default: <input>.layout.json)")
	cmd.Flags().StringVar(&f.preview, "preview", "", "also render an SVG preview to this file (single input only)")
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "layout defaults file (.toml, .yaml)")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	cmd.Flags().StringVar(&f.rankdir, "rankdir", "", "rank direction: tb, bt, lr, rl")
	cmd.Flags().StringVar(&f.acyclicer, "acyclicer", "", "cycle breaking: greedy, or depth-first when unset")
	cmd.Flags().StringVar(&f.ranker, "ranker", "", "ranking: longest-path, tight-tree")
	cmd.Flags().StringVar(&f.align, "align", "", "horizontal alignment: ul, ur, dl, dr")
	cmd.Flags().Float64Var(&f.nodesep, "nodesep", 0, "horizontal gap between nodes")
	cmd.Flags().Float64Var(&f.edgesep, "edgesep", 0, "horizontal gap between edges")
	cmd.Flags().Float64Var(&f.ranksep, "ranksep", 0, "vertical gap between ranks")

	cmd.Flags().BoolVar(&f.debugTiming, "debug-timing", false, "log the duration of every layout pass (use with -v)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached layout exists")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "re-run whenever an input or the config file changes")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", runtime.NumCPU(), "number of graphs laid out concurrently")
	cmd.Flags().BoolVar(&f.cache.disabled, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.cache.redisURL, "redis-url", "", "use a Redis cache (redis://host:port/db)")

	registerLayoutCompletions(cmd)
	return cmd
}

// layoutJob carries what every file of one invocation shares.
type layoutJob struct {
	runner    *pipeline.Runner
	cfg       *config.Config
	flags     layoutFlags
	overrides graph.Attrs
	logger    *log.Logger
}

type fileResult struct {
	input, output, preview string
	nodes, edges           int
	width, height          float64
	took                   time.Duration
	cached                 bool
}

// runLayout validates the inputs, lays them all out and then, with
// --watch, keeps re-running until ctx is cancelled.
func (c *CLI) runLayout(ctx context.Context, inputs []string, f layoutFlags, overrides graph.Attrs) error {
	logger := loggerFromContext(ctx)
	if err := validateLayoutArgs(inputs, f); err != nil {
		return err
	}

	var cfg *config.Config
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return err
		}
		logger.Debug("loaded config", "path", f.configPath, "digest", cfg.Digest()[:12])
	}

	writeMetrics := func() {}
	if f.metricsFile != "" {
		metrics := observability.NewPrometheusHooks()
		observability.SetLayoutHooks(metrics)
		observability.SetCacheHooks(metrics)
		defer observability.Reset()
		writeMetrics = func() {
			if err := metrics.WriteFile(f.metricsFile); err != nil {
				logger.Warn("write metrics", "path", f.metricsFile, "err", err)
			}
		}
	}

	store, err := newCache(ctx, f.cache, cfg)
	if err != nil {
		return err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.CacheScope())
	job := &layoutJob{
		runner:    pipeline.NewRunner(store, keyer, logger),
		cfg:       cfg,
		flags:     f,
		overrides: overrides,
		logger:    logger,
	}
	defer job.runner.Close()

	err = job.runAll(ctx, inputs)
	writeMetrics()
	if !f.watch {
		return err
	}
	return job.watch(ctx, inputs, writeMetrics)
}

func validateLayoutArgs(inputs []string, f layoutFlags) error {
	if len(inputs) > 1 && (f.output != "" || f.preview != "") {
		return serrors.New(serrors.ErrCodeInvalidInput, "-o and --preview need a single input, got %d", len(inputs))
	}
	for _, in := range inputs {
		if err := serrors.ValidateGraphFile(in); err != nil {
			return err
		}
		if samePath(in, outputPath(in, f.output)) {
			return serrors.New(serrors.ErrCodeInvalidInput, "output would overwrite input %s", in)
		}
	}
	if f.rankdir != "" {
		if err := serrors.ValidateRankDir(f.rankdir); err != nil {
			return err
		}
	}
	if f.configPath != "" {
		if err := serrors.ValidateConfigFile(f.configPath); err != nil {
			return err
		}
	}
	if f.jobs < 1 {
		return serrors.New(serrors.ErrCodeInvalidInput, "--jobs must be at least 1")
	}
	return nil
}

// runAll lays out inputs concurrently and prints one summary per file.
func (j *layoutJob) runAll(ctx context.Context, inputs []string) error {
	prog := newProgress(j.logger)
	spinner := newSpinnerWithContext(ctx, os.Stderr, fmt.Sprintf("Laying out %d graph(s)...", len(inputs)))
	spinner.Start()

	results := make([]fileResult, len(inputs))
	var finished atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.flags.jobs)
	for i, in := range inputs {
		g.Go(func() error {
			r, err := j.layoutFile(gctx, in)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			results[i] = r
			spinner.SetMessage(fmt.Sprintf("Laid out %d/%d graphs...", finished.Add(1), len(inputs)))
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		spinner.StopWithError(err.Error())
		return err
	}
	spinner.Stop()

	for _, r := range results {
		printSuccess("Laid out %s", r.input)
		printFile(r.output)
		if r.preview != "" {
			printFile(r.preview)
		}
		printStats(r.nodes, r.edges, r.width, r.height, r.took, r.cached)
	}
	prog.done("laid out", "graphs", len(inputs), "jobs", min(j.flags.jobs, len(inputs)))
	return nil
}

// layoutFile reads, lays out and writes one graph.
func (j *layoutJob) layoutFile(ctx context.Context, input string) (fileResult, error) {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fileResult{}, err
	}
	j.cfg.Apply(g)
	keys := make([]string, 0, len(j.overrides))
	for k := range j.overrides {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		g.Attrs.Set(k, j.overrides[k])
	}

	logger := graphLogger(j.logger, input, g)
	res, err := j.runner.Layout(ctx, g, pipeline.Options{
		Layout:     layout.Options{DebugTiming: j.flags.debugTiming, Logger: logger},
		ConfigHash: j.cfg.Digest(),
		Refresh:    j.flags.refresh,
	})
	if err != nil {
		return fileResult{}, err
	}

	out := outputPath(input, j.flags.output)
	if err := graph.WriteGraphFile(g, out); err != nil {
		return fileResult{}, err
	}
	if j.flags.preview != "" {
		if err := stratumio.WriteSVGFile(ctx, g, j.flags.preview); err != nil {
			return fileResult{}, fmt.Errorf("preview: %w", err)
		}
	}

	w, h := g.Size()
	return fileResult{
		input:   input,
		output:  out,
		preview: j.flags.preview,
		nodes:   res.Stats.NodeCount,
		edges:   res.Stats.EdgeCount,
		width:   w,
		height:  h,
		took:    res.Stats.LayoutTime,
		cached:  res.CacheHit,
	}, nil
}

// watch re-runs the inputs that change. A changed config file is reloaded
// and re-runs everything. Failed runs are reported and watching goes on.
func (j *layoutJob) watch(ctx context.Context, inputs []string, after func()) error {
	byPath := make(map[string]string, len(inputs))
	paths := slices.Clone(inputs)
	for _, in := range inputs {
		byPath[absPath(in)] = in
	}
	configAbs := ""
	if j.cfg != nil {
		configAbs = absPath(j.cfg.Path())
		paths = append(paths, j.cfg.Path())
	}

	w, err := config.NewWatcher(paths, 0, j.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	printNewline()
	printInfo("Watching %d file(s), press Ctrl+C to stop", len(paths))
	err = w.Run(ctx, func(changed []string) {
		var targets []string
		for _, p := range changed {
			if p == configAbs {
				cfg, err := config.Load(j.cfg.Path())
				if err != nil {
					printWarning("keeping previous config: %s", serrors.UserMessage(err))
					continue
				}
				j.cfg = cfg
				targets = inputs
				break
			}
			if in, ok := byPath[p]; ok {
				targets = append(targets, in)
			}
		}
		if len(targets) == 0 {
			return
		}
		printNewline()
		if err := j.runAll(ctx, targets); err != nil {
			j.logger.Error("layout failed", "err", err)
		}
		after()
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// outputPath returns the explicit output or <input>.layout.json.
func outputPath(input, output string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func samePath(a, b string) bool {
	return absPath(a) == absPath(b)
}

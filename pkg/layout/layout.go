package layout

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/dag/transform"
	"github.com/matzehuels/stratum/pkg/graph"
	"github.com/matzehuels/stratum/pkg/observability"
	"github.com/matzehuels/stratum/pkg/ordering"
)

// Options configure a single layout call. The zero value is ready to use.
type Options struct {
	// DebugTiming logs the duration of every pass at debug level and of
	// the whole call at info level. It never changes the result.
	DebugTiming bool

	// Logger receives timing output and warnings. Nil means log.Default().
	Logger *log.Logger

	// Orderer reduces crossings within ranks. Nil means ordering.Default().
	Orderer ordering.Orderer
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

func (o Options) orderer() ordering.Orderer {
	if o.Orderer != nil {
		return o.Orderer
	}
	return ordering.Default()
}

// Layout computes a layered drawing of g and writes it back onto g.
//
// On success every node carries x and y, compound nodes also width and
// height, every edge carries points and edges with a label size carry
// the label anchor x and y. The graph records its total width and height.
//
// Layout fails without touching g if a pass hits a structural violation.
// Numeric attributes that do not convert to a number are not an error:
// they become NaN and propagate into the results.
func Layout(g *graph.Graph, opts Options) error {
	return LayoutContext(context.Background(), g, opts)
}

// LayoutContext is like [Layout] and passes ctx to the registered
// observability hooks. It does not cancel a running layout.
func LayoutContext(ctx context.Context, g *graph.Graph, opts Options) error {
	hooks := observability.Layout()
	logger := opts.logger()
	t := &timer{enabled: opts.DebugTiming, ctx: ctx, logger: logger, hooks: hooks}

	hooks.OnLayoutStart(ctx, g.NodeCount(), g.EdgeCount())
	start := time.Now()
	err := run(g, opts, t)
	d := time.Since(start)
	if opts.DebugTiming {
		logger.Info("layout", "duration", d, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	}
	hooks.OnLayoutComplete(ctx, d, err)
	return err
}

func run(g *graph.Graph, opts Options, t *timer) error {
	var w *dag.Graph
	err := t.time("buildLayoutGraph", func() error {
		var err error
		w, err = buildGraph(g)
		return err
	})
	if err != nil {
		return err
	}

	if gl := w.Label(); !transform.KnownRanker(gl.Ranker) {
		opts.logger().Warn("unknown ranker, using longest-path", "ranker", gl.Ranker)
		gl.Ranker = transform.RankerLongestPath
	}

	err = t.time("runLayout", func() error {
		return runPasses(w, passes(opts.orderer()), t)
	})
	if err != nil {
		return err
	}

	return t.time("updateInputGraph", func() error {
		writeResults(g, w)
		return nil
	})
}

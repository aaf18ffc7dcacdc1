package cli

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stratum/pkg/graph"
)

// Keys the layout commands log with. Pass timings use "duration", cache
// lookups "hash".
const (
	keyFile     = "file"
	keyNodes    = "nodes"
	keyEdges    = "edges"
	keyDuration = "duration"
	keyHash     = "hash"
)

// newLogger creates a logger stamped with "HH:MM:SS.ms" times (e.g.
// "14:32:01.45"). Pass durations and graph sizes are highlighted so a
// --debug-timing run reads as a table of passes.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	l.SetStyles(logStyles())
	return l
}

func logStyles() *log.Styles {
	s := log.DefaultStyles()
	s.Keys[keyDuration] = lipgloss.NewStyle().Foreground(colorYellow)
	s.Values[keyDuration] = lipgloss.NewStyle().Bold(true)
	s.Keys[keyFile] = lipgloss.NewStyle().Foreground(colorCyan)
	s.Keys[keyHash] = lipgloss.NewStyle().Foreground(colorGray)
	for _, k := range []string{keyNodes, keyEdges} {
		s.Keys[k] = lipgloss.NewStyle().Foreground(colorGreen)
	}
	return s
}

// graphLogger tags l with the input file, so every pass timing of a
// concurrent run names the graph it belongs to, and logs the graph's
// shape once at debug level.
func graphLogger(l *log.Logger, input string, g *graph.Graph) *log.Logger {
	l = l.With(keyFile, filepath.Base(input))
	clusters := make(map[string]bool)
	for _, n := range g.Nodes() {
		if n.Parent != "" {
			clusters[n.Parent] = true
		}
	}
	l.Debug("read graph", keyNodes, g.NodeCount(), keyEdges, g.EdgeCount(), "clusters", len(clusters))
	return l
}

// progress tracks the start of an operation and logs its completion with
// the elapsed time. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time, e.g.
// "laid out graphs=3 duration=12ms".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, keyDuration, time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

package layout

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stratum/pkg/dag"
	"github.com/matzehuels/stratum/pkg/dag/transform"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/observability"
	"github.com/matzehuels/stratum/pkg/ordering"
	"github.com/matzehuels/stratum/pkg/position"
)

// pass is one step of the layout. Every pass mutates the working graph in
// place and may rely on the postconditions of all passes before it.
type pass struct {
	name string
	run  func(g *dag.Graph) error
}

// Pass names, in execution order.
const (
	passReserveLabelSpace  = "makeSpaceForEdgeLabels"
	passRemoveSelfEdges    = "removeSelfEdges"
	passAcyclic            = "acyclic"
	passNestingRun         = "nestingGraph.run"
	passRank               = "rank"
	passInjectLabelProxies = "injectEdgeLabelProxies"
	passRemoveEmptyRanks   = "removeEmptyRanks"
	passNestingCleanup     = "nestingGraph.cleanup"
	passNormalizeRanks     = "normalizeRanks"
	passAssignRankMinMax   = "assignRankMinMax"
	passRemoveLabelProxies = "removeEdgeLabelProxies"
	passNormalize          = "normalize.run"
	passParentDummyChains  = "parentDummyChains"
	passAddBorderSegments  = "addBorderSegments"
	passOrder              = "order"
	passInsertSelfEdges    = "insertSelfEdges"
	passAdjustCoordinates  = "adjustCoordinateSystem"
	passPosition           = "position"
	passPositionSelfEdges  = "positionSelfEdges"
	passRemoveBorderNodes  = "removeBorderNodes"
	passDenormalize        = "normalize.undo"
	passFixupLabelCoords   = "fixupEdgeLabelCoords"
	passUndoCoordinates    = "undoCoordinateSystem"
	passTranslate          = "translateGraph"
	passNodeIntersects     = "assignNodeIntersects"
	passReversePoints      = "reversePoints"
	passAcyclicUndo        = "acyclic.undo"
)

// passes returns the full layout sequence. The order is fixed: self-loops
// must be gone before cycle breaking and ranking, and dummy chains must
// exist from ordering until positioning is done.
func passes(orderer ordering.Orderer) []pass {
	return []pass{
		{passReserveLabelSpace, reserveLabelSpace},
		{passRemoveSelfEdges, removeSelfEdges},
		{passAcyclic, infallible(func(g *dag.Graph) { transform.Acyclic(g) })},
		{passNestingRun, infallible(transform.NestingRun)},
		{passRank, transform.Rank},
		{passInjectLabelProxies, injectLabelProxies},
		{passRemoveEmptyRanks, infallible(transform.RemoveEmptyRanks)},
		{passNestingCleanup, infallible(transform.NestingCleanup)},
		{passNormalizeRanks, infallible(transform.NormalizeRanks)},
		{passAssignRankMinMax, assignRankMinMax},
		{passRemoveLabelProxies, removeLabelProxies},
		{passNormalize, infallible(transform.NormalizeEdges)},
		{passParentDummyChains, infallible(transform.ParentDummyChains)},
		{passAddBorderSegments, infallible(transform.AddBorderSegments)},
		{passOrder, orderer.Order},
		{passInsertSelfEdges, insertSelfEdges},
		{passAdjustCoordinates, infallible(transform.AdjustCoordinateSystem)},
		{passPosition, infallible(position.Position)},
		{passPositionSelfEdges, positionSelfEdges},
		{passRemoveBorderNodes, removeBorderNodes},
		{passDenormalize, transform.DenormalizeEdges},
		{passFixupLabelCoords, fixupLabelCoords},
		{passUndoCoordinates, infallible(transform.UndoCoordinateSystem)},
		{passTranslate, translateGraph},
		{passNodeIntersects, assignNodeIntersects},
		{passReversePoints, reversePoints},
		{passAcyclicUndo, infallible(transform.UndoAcyclic)},
	}
}

func infallible(fn func(g *dag.Graph)) func(g *dag.Graph) error {
	return func(g *dag.Graph) error {
		fn(g)
		return nil
	}
}

// runPasses runs ps in order and stops at the first failure, naming the
// pass that failed.
func runPasses(g *dag.Graph, ps []pass, t *timer) error {
	for _, p := range ps {
		if err := t.time(p.name, func() error { return p.run(g) }); err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInternal
			}
			return errors.Wrap(code, err, "%s", p.name)
		}
	}
	return nil
}

// timer measures and logs steps only while enabled. Disabled, it just
// calls through.
type timer struct {
	enabled bool
	ctx     context.Context
	logger  *log.Logger
	hooks   observability.LayoutHooks
}

func (t *timer) time(name string, fn func() error) error {
	if !t.enabled {
		return fn()
	}
	start := time.Now()
	err := fn()
	d := time.Since(start)
	t.logger.Debug(name, "duration", d)
	t.hooks.OnPassComplete(t.ctx, name, d, err)
	return err
}

package cluster

import (
	"context"
	"log/slog"
	"sort"

	"github.com/robertogiachetta/aegis-origin/distance"
	"github.com/robertogiachetta/aegis-origin/segment"
)

// GraphMergeOptions configures the graph-based merge strategy.
type GraphMergeOptions struct {
	// MergeThreshold bounds edge admissibility; endpoints merge only when
	// their current aggregate distance is strictly below it.
	MergeThreshold float64

	// Metric selects the aggregate distance used as the edge weight.
	Metric distance.Kind

	// Logger receives progress at debug level.
	Logger *slog.Logger
}

// DefaultGraphMergeOptions are the options used when none are overridden.
var DefaultGraphMergeOptions = GraphMergeOptions{
	MergeThreshold: 1,
	Metric:         distance.Euclidean,
}

// GraphMerge builds a weighted adjacency graph over neighboring segments and
// processes its edges in descending weight order, merging endpoints that
// pass the threshold test.
type GraphMerge struct {
	opts GraphMergeOptions
	fn   distance.Func
}

// NewGraphMerge creates a graph-based merge strategy.
func NewGraphMerge(optFns ...func(o *GraphMergeOptions)) (*GraphMerge, error) {
	opts := DefaultGraphMergeOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MergeThreshold < 0 {
		return nil, &ErrInvalidOptions{Reason: "merge threshold must not be negative"}
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger()
	}

	fn, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, err
	}

	return &GraphMerge{opts: opts, fn: fn}, nil
}

// graphEdge records an adjacency by a representative pair of neighboring
// cells. Cells stay valid across merges, unlike segment handles.
type graphEdge struct {
	rowA, colA int
	rowB, colB int
	weight     float64
}

// Segment runs graph-based merging over the collection.
func (g *GraphMerge) Segment(ctx context.Context, coll *segment.Collection) error {
	edges, err := g.buildEdges(coll)
	if err != nil {
		return err
	}

	sort.Slice(edges, func(i, j int) bool { return edges[i].weight > edges[j].weight })

	var bufA, bufB []float64
	merges := 0
	for _, e := range edges {
		if err := ctx.Err(); err != nil {
			return err
		}

		a, err := coll.Get(e.rowA, e.colA)
		if err != nil {
			return err
		}
		b, err := coll.Get(e.rowB, e.colB)
		if err != nil {
			return err
		}
		if a == b {
			// Endpoints already merged through another edge.
			continue
		}

		// Earlier merges change aggregates; test the current distance,
		// not the recorded weight.
		bufA = a.MeanVector(bufA)
		bufB = b.MeanVector(bufB)
		d, err := g.fn(bufA, bufB)
		if err != nil {
			return err
		}
		if d < g.opts.MergeThreshold {
			if err := coll.Merge(a, b); err != nil {
				return err
			}
			merges++
		}
	}

	g.opts.Logger.Debug("graph merge completed", "edges", len(edges), "merges", merges, "segments", coll.Count())
	return nil
}

// buildEdges collects one weighted edge per unordered pair of adjacent
// segments.
func (g *GraphMerge) buildEdges(coll *segment.Collection) ([]graphEdge, error) {
	var edges []graphEdge
	var bufA, bufB []float64
	seen := make(map[[2]segment.ID]struct{})
	var scanErr error

	neighborPairs(coll.Rows(), coll.Cols(), func(rowA, colA, rowB, colB int) bool {
		a, err := coll.Get(rowA, colA)
		if err != nil {
			scanErr = err
			return false
		}
		b, err := coll.Get(rowB, colB)
		if err != nil {
			scanErr = err
			return false
		}
		if a == b {
			return true
		}
		key := orderedIDs(a.ID(), b.ID())
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}

		bufA = a.MeanVector(bufA)
		bufB = b.MeanVector(bufB)
		w, err := g.fn(bufA, bufB)
		if err != nil {
			scanErr = err
			return false
		}
		edges = append(edges, graphEdge{rowA: rowA, colA: colA, rowB: rowB, colB: colB, weight: w})
		return true
	})
	if scanErr != nil {
		return nil, scanErr
	}

	return edges, nil
}

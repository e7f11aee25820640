package cluster

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/robertogiachetta/aegis-origin/distance"
	"github.com/robertogiachetta/aegis-origin/raster"
	"github.com/robertogiachetta/aegis-origin/segment"
)

// autoSizeFloor is the configured center count below which ISODATA derives
// the working cluster count from the raster size instead.
const autoSizeFloor = 10

// ISODATAOptions configures the ISODATA clustering strategy.
type ISODATAOptions struct {
	// ClusterCenterCount is the requested number of initial cluster
	// centers. Values below 10 trigger auto-sizing from the cell count.
	ClusterCenterCount int

	// ClusterDistanceThreshold is the aggregate distance below which two
	// clusters are merged during convergence. The boundary itself does
	// not merge: merging requires strictly smaller distance.
	ClusterDistanceThreshold float64

	// ClusterSizeThreshold is the minimum cell count for a cluster to
	// survive elimination; smaller clusters are split back into cells.
	ClusterSizeThreshold int

	// SpectralDistance selects the metric for cell/segment-to-center
	// comparisons during assignment.
	SpectralDistance distance.Kind

	// ClusterDistance selects the metric for inter-cluster comparisons
	// during convergent merging. May differ from SpectralDistance.
	ClusterDistance distance.Kind

	// Seed seeds center sampling. Zero derives a seed from the clock,
	// making runs non-reproducible.
	Seed uint64

	// Logger receives per-phase progress at debug level.
	Logger *slog.Logger
}

// DefaultISODATAOptions are the options used when none are overridden.
var DefaultISODATAOptions = ISODATAOptions{
	ClusterCenterCount:       0, // auto-sized
	ClusterDistanceThreshold: 1,
	ClusterSizeThreshold:     0,
	SpectralDistance:         distance.Euclidean,
	ClusterDistance:          distance.Euclidean,
}

// ISODATA implements Iterative Self-Organizing Data Analysis clustering:
// randomized center initialization from global band statistics, nearest-
// center assignment, elimination of undersized clusters, and convergent
// pairwise merging.
type ISODATA struct {
	opts       ISODATAOptions
	spectralFn distance.Func
	clusterFn  distance.Func
}

// NewISODATA creates an ISODATA strategy. Malformed options (negative count
// or thresholds, unknown metrics) are rejected here, before any raster
// access.
func NewISODATA(optFns ...func(o *ISODATAOptions)) (*ISODATA, error) {
	opts := DefaultISODATAOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.ClusterCenterCount < 0 {
		return nil, &ErrInvalidOptions{Reason: "cluster center count must not be negative"}
	}
	if opts.ClusterDistanceThreshold < 0 {
		return nil, &ErrInvalidOptions{Reason: "cluster distance threshold must not be negative"}
	}
	if opts.ClusterSizeThreshold < 0 {
		return nil, &ErrInvalidOptions{Reason: "cluster size threshold must not be negative"}
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger()
	}

	spectralFn, err := distance.Provider(opts.SpectralDistance)
	if err != nil {
		return nil, err
	}
	clusterFn, err := distance.Provider(opts.ClusterDistance)
	if err != nil {
		return nil, err
	}

	return &ISODATA{
		opts:       opts,
		spectralFn: spectralFn,
		clusterFn:  clusterFn,
	}, nil
}

// Segment runs the four ISODATA phases over the collection.
func (i *ISODATA) Segment(ctx context.Context, coll *segment.Collection) error {
	r := coll.Raster()

	stats, err := raster.ComputeBandStats(ctx, r)
	if err != nil {
		return err
	}

	count := workingCenterCount(i.opts.ClusterCenterCount, r.Rows(), r.Cols())
	centers := i.createCenters(stats, count)
	i.opts.Logger.Debug("initialized cluster centers",
		"requested", i.opts.ClusterCenterCount,
		"working", count,
	)

	if err := i.assign(ctx, coll, centers); err != nil {
		return err
	}
	i.opts.Logger.Debug("assignment completed", "segments", coll.Count())

	// Centers are not needed past assignment; elimination and merging
	// work on segment aggregates only.
	if err := i.eliminate(coll); err != nil {
		return err
	}
	i.opts.Logger.Debug("elimination completed", "segments", coll.Count())

	rounds, err := i.mergeClusters(ctx, coll)
	if err != nil {
		return err
	}
	i.opts.Logger.Debug("merge converged", "rounds", rounds, "segments", coll.Count())

	return nil
}

// workingCenterCount resolves the effective cluster count. Configured counts
// of at least 10 are taken as-is; smaller values are recomputed from the
// raster size and clamped to [10, cells].
func workingCenterCount(configured, rows, cols int) int {
	if configured >= autoSizeFloor {
		return configured
	}
	cells := rows * cols
	count := int(math.Round(math.Sqrt(float64(cells))))
	if count < autoSizeFloor {
		count = autoSizeFloor
	}
	if count > cells {
		count = cells
	}
	return count
}

// createCenters samples count cluster-center vectors, drawing each band
// component from a Gaussian parameterized by that band's global mean and
// standard deviation. A zero-deviation band yields the global mean exactly.
func (i *ISODATA) createCenters(stats *raster.BandStats, count int) [][]float64 {
	seed := i.opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewPCG(seed, seed)

	bands := len(stats.Mean)
	centers := make([][]float64, count)
	for k := range centers {
		center := make([]float64, bands)
		for b := 0; b < bands; b++ {
			if stats.StdDev[b] == 0 {
				center[b] = stats.Mean[b]
				continue
			}
			center[b] = distuv.Normal{
				Mu:    stats.Mean[b],
				Sigma: stats.StdDev[b],
				Src:   src,
			}.Rand()
		}
		centers[k] = center
	}
	return centers
}

// assign folds every cell (or, for an externally supplied coarser partition,
// every segment) into one output segment per cluster center, choosing the
// nearest center under the spectral metric. Ties resolve to the first
// minimal center in ascending index order.
func (i *ISODATA) assign(ctx context.Context, coll *segment.Collection, centers [][]float64) error {
	claims := make([]*segment.Segment, len(centers))

	if coll.Count() < coll.Rows()*coll.Cols() {
		return i.assignSegments(ctx, coll, centers, claims)
	}
	return i.assignCells(ctx, coll, centers, claims)
}

func (i *ISODATA) assignCells(ctx context.Context, coll *segment.Collection, centers [][]float64, claims []*segment.Segment) error {
	r := coll.Raster()
	var vec []float64

	for row := 0; row < coll.Rows(); row++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for col := 0; col < coll.Cols(); col++ {
			vec = raster.Vector(r, row, col, vec)
			best, err := i.nearestCenter(vec, centers)
			if err != nil {
				return err
			}
			if claims[best] == nil {
				s, err := coll.Get(row, col)
				if err != nil {
					return err
				}
				claims[best] = s
				continue
			}
			if err := coll.MergeCell(claims[best], row, col); err != nil {
				return err
			}
		}
	}
	return nil
}

func (i *ISODATA) assignSegments(ctx context.Context, coll *segment.Collection, centers [][]float64, claims []*segment.Segment) error {
	var mean []float64

	for _, s := range coll.Segments() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !coll.Contains(s) {
			continue
		}
		mean = s.MeanVector(mean)
		best, err := i.nearestCenter(mean, centers)
		if err != nil {
			return err
		}
		if claims[best] == nil {
			claims[best] = s
			continue
		}
		if err := coll.Merge(claims[best], s); err != nil {
			return err
		}
	}
	return nil
}

// nearestCenter returns the index of the center with minimal spectral
// distance to vec, scanning in ascending index order.
func (i *ISODATA) nearestCenter(vec []float64, centers [][]float64) (int, error) {
	best := -1
	bestDist := math.Inf(1)
	for k, center := range centers {
		d, err := i.spectralFn(vec, center)
		if err != nil {
			return 0, err
		}
		if d < bestDist {
			bestDist = d
			best = k
		}
	}
	return best, nil
}

// eliminate splits every segment smaller than the size threshold back into
// single-cell segments, returning its cells to the pool for re-merging.
func (i *ISODATA) eliminate(coll *segment.Collection) error {
	for _, s := range coll.Segments() {
		if !coll.Contains(s) {
			continue
		}
		if s.Count() < i.opts.ClusterSizeThreshold {
			if _, err := coll.Split(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeClusters repeats merge rounds until a round performs zero merges.
// Each round snapshots the live segment list, compares every unordered pair
// (scanning the higher index downward), and merges pairs whose aggregate
// distance is strictly below the threshold. Returns the number of rounds.
func (i *ISODATA) mergeClusters(ctx context.Context, coll *segment.Collection) (int, error) {
	var bufA, bufB []float64
	rounds := 0

	for {
		rounds++
		merged := 0
		segs := coll.Segments()

		for idx := 0; idx < len(segs); idx++ {
			if err := ctx.Err(); err != nil {
				return rounds, err
			}
			a := segs[idx]
			if !coll.Contains(a) {
				continue
			}
			for j := len(segs) - 1; j > idx; j-- {
				b := segs[j]
				if !coll.Contains(b) {
					continue
				}
				bufA = a.MeanVector(bufA)
				bufB = b.MeanVector(bufB)
				d, err := i.clusterFn(bufA, bufB)
				if err != nil {
					return rounds, err
				}
				if math.Abs(d) < i.opts.ClusterDistanceThreshold {
					if err := coll.Merge(a, b); err != nil {
						return rounds, err
					}
					merged++
					segs = append(segs[:j], segs[j+1:]...)
				}
			}
		}

		if merged == 0 {
			return rounds, nil
		}
	}
}

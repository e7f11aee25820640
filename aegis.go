package aegis

import (
	"context"
	"fmt"
	"time"

	"github.com/robertogiachetta/aegis-origin/cluster"
	"github.com/robertogiachetta/aegis-origin/config"
	"github.com/robertogiachetta/aegis-origin/distance"
	"github.com/robertogiachetta/aegis-origin/raster"
	"github.com/robertogiachetta/aegis-origin/segment"
)

// Pipeline ties a raster, a validated configuration and a segmentation
// strategy together for a single run. A Pipeline exclusively owns the
// collection it mutates; it is not safe for concurrent Run calls on the
// same initial collection.
type Pipeline struct {
	r    raster.Raster
	cfg  config.Config
	opts options
}

// New creates a segmentation pipeline. The configuration is validated here,
// before any raster access.
func New(r raster.Raster, cfg config.Config, optFns ...Option) (*Pipeline, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil raster", ErrIncompatibleRaster)
	}
	if r.Rows() < 1 || r.Cols() < 1 || r.Bands() < 1 {
		return nil, fmt.Errorf("%w: %dx%d cells, %d bands", ErrIncompatibleRaster, r.Rows(), r.Cols(), r.Bands())
	}
	if err := cfg.Validate(); err != nil {
		return nil, translateError(err)
	}

	return &Pipeline{
		r:    r,
		cfg:  cfg,
		opts: applyOptions(optFns),
	}, nil
}

// Run executes the configured strategy and returns the final partition.
// There is no partial-success result: either the run completes and the
// returned collection is structurally valid, or an error is returned.
func (p *Pipeline) Run(ctx context.Context) (*segment.Collection, error) {
	start := time.Now()

	coll := p.opts.initial
	if coll == nil {
		coll = segment.NewCollection(p.r)
	} else if coll.Rows() != p.r.Rows() || coll.Cols() != p.r.Cols() {
		return nil, fmt.Errorf("%w: initial collection is %dx%d, raster is %dx%d",
			ErrIncompatibleRaster, coll.Rows(), coll.Cols(), p.r.Rows(), p.r.Cols())
	}

	seg, err := p.newSegmenter()
	if err != nil {
		err = translateError(err)
		p.opts.metrics.RecordRun(string(p.cfg.Method), 0, time.Since(start), err)
		return nil, err
	}

	if err := seg.Segment(ctx, coll); err != nil {
		err = translateError(err)
		p.opts.metrics.RecordRun(string(p.cfg.Method), 0, time.Since(start), err)
		p.opts.logger.LogRun(ctx, string(p.cfg.Method), 0, time.Since(start), err)
		return nil, err
	}

	p.opts.metrics.RecordRun(string(p.cfg.Method), coll.Count(), time.Since(start), nil)
	p.opts.logger.LogRun(ctx, string(p.cfg.Method), coll.Count(), time.Since(start), nil)
	return coll, nil
}

// newSegmenter instantiates the strategy named by the configuration.
func (p *Pipeline) newSegmenter() (cluster.Segmenter, error) {
	switch p.cfg.Method {
	case config.MethodISODATA:
		spectral, err := distance.ParseKind(p.cfg.SpectralDistance)
		if err != nil {
			return nil, err
		}
		interCluster, err := distance.ParseKind(p.cfg.ClusterDistance)
		if err != nil {
			return nil, err
		}
		return cluster.NewISODATA(func(o *cluster.ISODATAOptions) {
			o.ClusterCenterCount = p.cfg.ClusterCenterCount
			o.ClusterDistanceThreshold = p.cfg.ClusterDistanceThreshold
			o.ClusterSizeThreshold = p.cfg.ClusterSizeThreshold
			o.SpectralDistance = spectral
			o.ClusterDistance = interCluster
			o.Seed = p.cfg.Seed
			o.Logger = p.opts.logger.Logger
		})

	case config.MethodBestMerge:
		metric, err := distance.ParseKind(p.cfg.ClusterDistance)
		if err != nil {
			return nil, err
		}
		return cluster.NewBestMerge(func(o *cluster.BestMergeOptions) {
			o.MergeThreshold = p.cfg.MergeThreshold
			o.MaxIterations = p.cfg.MaxIterations
			o.Metric = metric
			o.Logger = p.opts.logger.Logger
		})

	case config.MethodGraphMerge:
		metric, err := distance.ParseKind(p.cfg.ClusterDistance)
		if err != nil {
			return nil, err
		}
		return cluster.NewGraphMerge(func(o *cluster.GraphMergeOptions) {
			o.MergeThreshold = p.cfg.MergeThreshold
			o.Metric = metric
			o.Logger = p.opts.logger.Logger
		})

	case config.MethodSequentialCoupling:
		return cluster.NewSequentialCoupling(func(o *cluster.SequentialCouplingOptions) {
			o.HomogeneityThreshold = p.cfg.HomogeneityThreshold
			o.Logger = p.opts.logger.Logger
		})

	default:
		return nil, &config.ErrInvalid{Field: "method", Reason: fmt.Sprintf("unknown method %q", p.cfg.Method)}
	}
}

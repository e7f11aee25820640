// Package aegis provides unsupervised region segmentation and iterative
// clustering over multi-band raster data.
//
// A Pipeline partitions a raster's cells into disjoint segments and drives a
// configurable strategy (ISODATA clustering, best-merge, graph-based merge,
// or sequential coupling) over that partition until it converges. The final
// partition is returned as a segment.Collection, ready for an external
// labeler or writer.
//
// # Quick Start
//
//	r, _ := raster.NewMemoryFromValues(2, 2, []float64{1, 1, 100, 100})
//
//	cfg := config.Default()
//	cfg.ClusterDistanceThreshold = 50
//	cfg.Seed = 42
//
//	p, _ := aegis.New(r, cfg)
//	coll, _ := p.Run(context.Background())
//	fmt.Println(coll.Count()) // live segments after convergence
//
// # Persisting Results
//
// Finished partitions can be captured as compact label snapshots and stored
// through a blob store (in-memory, local filesystem, or S3-compatible):
//
//	snap, _ := snapshot.Capture(coll)
//	store, _ := blobstore.NewLocalStore("./out")
//	_ = snapshot.Save(ctx, store, "scene-42", snap, nil)
//
// # Structure
//
//   - raster: read-only accessor contract plus in-memory implementation
//   - segment: the mutable partition (merge/split primitives)
//   - distance: pluggable spectral distance metrics
//   - cluster: segmentation strategies (ISODATA and siblings)
//   - config: resolved parameter bundle, YAML-loadable
//   - snapshot, blobstore: partition persistence
package aegis

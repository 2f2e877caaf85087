// Package migrate converts a legacy flat-tag database into the normalized
// catalog schema.
//
// A run has three phases: the destination is initialised fresh, the
// dimension rows (tag groups, tags, models) are preloaded into lookup maps and
// written, and the legacy rows are streamed in image-path order and pivoted
// into images plus their model and tag links. Images are committed in fixed
// size batches; every commit is a durability checkpoint.
//
// Data-quality problems in the source never abort a run. They are counted in
// Stats and surfaced in the final report.
package migrate

// Package analysis implements the data-fusion and statistics pipeline behind
// the session performance dashboard.
//
// The pipeline is a single-shot batch transform: raw delimited text (or an
// Excel workbook sheet) becomes a header-indexed Table, column resolution
// maps semantic fields onto arbitrary header spellings, the success and
// duration parsers produce typed record sets, Fuse inner-joins them on
// session id, and Compute derives the statistics summary and smoothed series
// the charts consume.
//
// All entities are transient. The pipeline has no hidden state: the same
// inputs always produce the same fused records and the same summary, so
// callers enforce the reset-on-new-input rule simply by recomputing.
package analysis

// Package packing assigns rectangular items to container instances drawn
// from a catalog of container types. Every item receives an axis-aligned
// orientation and a non-overlapping position; containers never exceed their
// weight capacity. Placement is heuristic (first-fit and best-fit decreasing),
// searching candidate positions on a regular grid.
//
// The package is stateless: each call to Engine.Pack or Engine.Run owns the
// containers it creates and returns them in a RunResult.
package packing

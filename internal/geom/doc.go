// Package geom provides the planar geometry used to track a fuel grain port.
//
// The package defines:
//
//   - [Ring]: a closed outline stored without a repeated closing vertex
//   - [Polygon]: a set of disjoint counter-clockwise rings with union semantics
//   - [Buffer]: outward offsetting of a polygon with a round join
//   - [Intersect] and [Union]: boolean operations built on a winding overlay
//
// All operations return new values; inputs are never modified.
//
// # Join policy
//
// Buffer uses a round join. Arcs are tessellated with a maximum angular
// step of [DefaultArcStep] (20 segments per quarter turn). Convex turns no
// larger than one step are replaced by their mitre point, which keeps the
// vertex count of smooth outlines constant from one offset to the next.
package geom

package geom

import "errors"

// Domain errors for geometry operations.
var (
	// ErrDegenerateGeometry indicates a ring with fewer than three distinct vertices.
	ErrDegenerateGeometry = errors.New("geom: degenerate geometry (fewer than 3 distinct vertices)")

	// ErrBurnThrough indicates the port has reached the outer boundary.
	ErrBurnThrough = errors.New("geom: burn-through (port reached the outer boundary)")

	// ErrGeometryOffset indicates an offset that could not be resolved into valid rings.
	ErrGeometryOffset = errors.New("geom: offset produced an invalid polygon")
)

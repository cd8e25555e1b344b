// Package grid defines the logical structured grid used by all field storage
// and the rectangular decomposition of that grid across parallel ranks.
package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig reports a grid or decomposition request that cannot be
// satisfied: too few cells, non-positive extents, or owned spans narrower
// than the requested halo.
var ErrInvalidConfig = errors.New("invalid grid configuration")

// Periodicity selects wraparound behavior per horizontal axis.
type Periodicity struct {
	X bool
	Y bool
}

// Grid describes the global computational domain: cell counts, physical
// extent and spacing, vertical levels, and periodicity. A Grid is immutable
// after construction; spacing is derived from extent and count and never
// mutated afterwards.
type Grid struct {
	// Global cell counts
	Mx, My, Mz int

	// Physical origin and extents
	X0, Y0     float64
	Lx, Ly, Lz float64

	// Horizontal spacing, derived at construction
	Dx, Dy float64

	// Vertical levels, strictly increasing from 0 to Lz
	Z []float64

	Periodic Periodicity
}

// New creates a grid with equally spaced vertical levels.
//
// Counts must be at least 3 horizontally and 2 vertically, and all extents
// must be positive; otherwise the call fails with ErrInvalidConfig.
func New(x0, y0, lx, ly, lz float64, mx, my, mz int, p Periodicity) (*Grid, error) {
	z := make([]float64, mz)
	if mz > 1 {
		dz := lz / float64(mz-1)
		for k := range z {
			z[k] = float64(k) * dz
		}
		z[mz-1] = lz
	}
	return NewWithLevels(x0, y0, lx, ly, mx, my, z, p)
}

// NewWithLevels creates a grid with an explicit vertical level array.
// Levels must be strictly increasing, start at 0, and there must be at
// least two of them.
func NewWithLevels(x0, y0, lx, ly float64, mx, my int, z []float64, p Periodicity) (*Grid, error) {
	if mx < 3 || my < 3 {
		return nil, fmt.Errorf("%w: horizontal counts Mx=%d, My=%d must be at least 3", ErrInvalidConfig, mx, my)
	}
	if len(z) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 vertical levels, got %d", ErrInvalidConfig, len(z))
	}
	if lx <= 0 || ly <= 0 {
		return nil, fmt.Errorf("%w: extents Lx=%g, Ly=%g must be positive", ErrInvalidConfig, lx, ly)
	}
	if z[0] != 0 {
		return nil, fmt.Errorf("%w: first vertical level must be 0, got %g", ErrInvalidConfig, z[0])
	}
	for k := 1; k < len(z); k++ {
		if z[k] <= z[k-1] {
			return nil, fmt.Errorf("%w: vertical levels must be strictly increasing (level %d: %g <= %g)",
				ErrInvalidConfig, k, z[k], z[k-1])
		}
	}
	g := &Grid{
		Mx: mx, My: my, Mz: len(z),
		X0: x0, Y0: y0,
		Lx: lx, Ly: ly, Lz: z[len(z)-1],
		Z:        z,
		Periodic: p,
	}
	// On a periodic axis the last cell wraps to the first, so the extent
	// covers Mx cells rather than Mx-1 intervals.
	if p.X {
		g.Dx = lx / float64(mx)
	} else {
		g.Dx = lx / float64(mx-1)
	}
	if p.Y {
		g.Dy = ly / float64(my)
	} else {
		g.Dy = ly / float64(my-1)
	}
	return g, nil
}

// X returns the physical x coordinate of cell center i.
func (g *Grid) X(i int) float64 { return g.X0 + float64(i)*g.Dx }

// Y returns the physical y coordinate of cell center j.
func (g *Grid) Y(j int) float64 { return g.Y0 + float64(j)*g.Dy }

// PointNeighbors returns the global indices of the four grid points
// enclosing the physical point (x, y). The offsets ox, oy shift the grid
// points off cell centers; staggered fields pass half-spacing offsets.
// Indices are clamped so that a valid cell is always returned for points
// on or just outside the domain edge.
func (g *Grid) PointNeighbors(x, y, ox, oy float64) (iLeft, iRight, jBottom, jTop int) {
	iLeft = clampInt(floorDiv(x-g.X0-ox, g.Dx), 0, g.Mx-2)
	jBottom = clampInt(floorDiv(y-g.Y0-oy, g.Dy), 0, g.My-2)
	return iLeft, iLeft + 1, jBottom, jBottom + 1
}

// InterpWeights returns bilinear weights for the four points returned by
// PointNeighbors, ordered (left,bottom), (right,bottom), (right,top),
// (left,top). The weights sum to one.
func (g *Grid) InterpWeights(x, y, ox, oy float64) [4]float64 {
	iLeft, _, jBottom, _ := g.PointNeighbors(x, y, ox, oy)
	u := (x - g.X0 - ox - float64(iLeft)*g.Dx) / g.Dx
	v := (y - g.Y0 - oy - float64(jBottom)*g.Dy) / g.Dy
	u = clampFloat(u, 0, 1)
	v = clampFloat(v, 0, 1)
	return [4]float64{
		(1 - u) * (1 - v),
		u * (1 - v),
		u * v,
		(1 - u) * v,
	}
}

func floorDiv(a, b float64) int {
	q := a / b
	i := int(q)
	if q < 0 && float64(i) != q {
		i--
	}
	return i
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package grid

import (
	"fmt"
	"math"
)

// Span is a half-open range of global indices owned by one process column
// or row.
type Span struct {
	Start, Count int
}

// Decomposition partitions a grid across ranks into rectangular sub-domains
// with a halo of configurable width. The owned spans tile the global domain
// exactly once; halos overlap neighboring sub-domains by Halo cells.
type Decomposition struct {
	Grid *Grid
	Size int
	Halo int

	// Process grid shape: Size == Px*Py
	Px, Py int

	// Owned spans per process column / row
	XSpans []Span
	YSpans []Span
}

// Decompose tiles the grid across size ranks. The process grid is chosen
// deterministically: among divisor pairs (px, py) of size, the one whose
// blocks are closest to square wins, ties going to the smaller px.
// Remainder cells go to the first columns/rows. Every owned span must be
// at least max(halo, 1) cells wide, otherwise the halo of one rank would
// reach past its immediate neighbor.
func Decompose(g *Grid, size, halo int) (*Decomposition, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: rank count %d must be positive", ErrInvalidConfig, size)
	}
	if halo < 0 {
		return nil, fmt.Errorf("%w: halo width %d must be non-negative", ErrInvalidConfig, halo)
	}

	px, py := processGrid(size, g.Mx, g.My)
	d := &Decomposition{
		Grid:   g,
		Size:   size,
		Halo:   halo,
		Px:     px,
		Py:     py,
		XSpans: splitSpan(g.Mx, px),
		YSpans: splitSpan(g.My, py),
	}

	minSpan := halo
	if minSpan < 1 {
		minSpan = 1
	}
	for _, s := range d.XSpans {
		if s.Count < minSpan {
			return nil, fmt.Errorf("%w: %d ranks across Mx=%d leaves a span of %d cells (halo %d)",
				ErrInvalidConfig, px, g.Mx, s.Count, halo)
		}
	}
	for _, s := range d.YSpans {
		if s.Count < minSpan {
			return nil, fmt.Errorf("%w: %d ranks across My=%d leaves a span of %d cells (halo %d)",
				ErrInvalidConfig, py, g.My, s.Count, halo)
		}
	}
	return d, nil
}

// processGrid picks the near-square (px, py) factorization of size.
func processGrid(size, mx, my int) (px, py int) {
	best := math.Inf(1)
	px, py = 1, size
	for nx := 1; nx <= size; nx++ {
		if size%nx != 0 {
			continue
		}
		ny := size / nx
		score := math.Abs(float64(mx)/float64(nx) - float64(my)/float64(ny))
		if score < best {
			best = score
			px, py = nx, ny
		}
	}
	return px, py
}

// splitSpan divides m cells over n parts, remainder to the first parts.
func splitSpan(m, n int) []Span {
	spans := make([]Span, n)
	base := m / n
	rem := m % n
	start := 0
	for i := range spans {
		count := base
		if i < rem {
			count++
		}
		spans[i] = Span{Start: start, Count: count}
		start += count
	}
	return spans
}

// Coords returns the process-grid coordinates of rank.
func (d *Decomposition) Coords(rank int) (px, py int) {
	return rank % d.Px, rank / d.Px
}

// rankAt returns the rank at process-grid coordinates (px, py).
func (d *Decomposition) rankAt(px, py int) int {
	return py*d.Px + px
}

// Owned returns the owned index ranges of rank: xs, xm, ys, ym.
func (d *Decomposition) Owned(rank int) (xs, xm, ys, ym int) {
	px, py := d.Coords(rank)
	sx, sy := d.XSpans[px], d.YSpans[py]
	return sx.Start, sx.Count, sy.Start, sy.Count
}

// RankOf returns the rank owning global cell (i, j), or -1 if the indices
// are out of range.
func (d *Decomposition) RankOf(i, j int) int {
	if i < 0 || i >= d.Grid.Mx || j < 0 || j >= d.Grid.My {
		return -1
	}
	px := 0
	for px < d.Px-1 && i >= d.XSpans[px+1].Start {
		px++
	}
	py := 0
	for py < d.Py-1 && j >= d.YSpans[py+1].Start {
		py++
	}
	return d.rankAt(px, py)
}

// Neighbor returns the rank owning the sub-domain adjacent to rank in
// direction (di, dj), each in {-1, 0, +1}. Under periodic wraparound the
// result may be rank itself; at a non-periodic boundary it is -1.
func (d *Decomposition) Neighbor(rank, di, dj int) int {
	px, py := d.Coords(rank)
	px += di
	py += dj
	if d.Grid.Periodic.X {
		px = (px + d.Px) % d.Px
	} else if px < 0 || px >= d.Px {
		return -1
	}
	if d.Grid.Periodic.Y {
		py = (py + d.Py) % d.Py
	} else if py < 0 || py >= d.Py {
		return -1
	}
	return d.rankAt(px, py)
}

// Stats summarizes the load balance of a decomposition.
type Stats struct {
	Size      int
	MinCells  int
	MaxCells  int
	AvgCells  float64
	Imbalance float64 // MaxCells / AvgCells
}

// Statistics computes owned-cell counts across all ranks.
func (d *Decomposition) Statistics() Stats {
	s := Stats{
		Size:     d.Size,
		MinCells: math.MaxInt32,
		AvgCells: float64(d.Grid.Mx*d.Grid.My) / float64(d.Size),
	}
	for rank := 0; rank < d.Size; rank++ {
		_, xm, _, ym := d.Owned(rank)
		n := xm * ym
		if n < s.MinCells {
			s.MinCells = n
		}
		if n > s.MaxCells {
			s.MaxCells = n
		}
	}
	s.Imbalance = float64(s.MaxCells) / s.AvgCells
	return s
}

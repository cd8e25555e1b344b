package field

import (
	"math"

	"github.com/glacierflow/icesheet/grid"
)

// Scalar is a cell-centered field with one value per cell.
type Scalar struct {
	Field
}

// NewScalar allocates a scalar field.
func NewScalar(dec *grid.Decomposition, comm Communicator, name string, halo int) (*Scalar, error) {
	s := &Scalar{}
	if err := s.Create(dec, comm, name, Regular, 1, halo); err != nil {
		return nil, err
	}
	return s, nil
}

// At returns the value at global cell (i, j).
func (s *Scalar) At(i, j int) float64 { return s.AtC(i, j, 0) }

// Set stores a value at global cell (i, j).
func (s *Scalar) Set(i, j int, v float64) { s.SetC(i, j, 0, v) }

// AsInt returns the value at (i, j) truncated to int. Mask fields are
// stored as floating-point codes; this hides that detail.
func (s *Scalar) AsInt(i, j int) int { return int(s.At(i, j)) }

// SetInt stores an integer code at (i, j).
func (s *Scalar) SetInt(i, j, v int) { s.Set(i, j, float64(v)) }

// Star returns the 4-neighborhood of (i, j) without re-deriving offsets.
func (s *Scalar) Star(i, j int) Star {
	return Star{
		IJ: s.At(i, j),
		E:  s.At(i+1, j),
		W:  s.At(i-1, j),
		N:  s.At(i, j+1),
		S:  s.At(i, j-1),
	}
}

// Box returns the 8-neighborhood of (i, j).
func (s *Scalar) Box(i, j int) Box {
	return Box{
		IJ: s.At(i, j),
		N:  s.At(i, j+1),
		NW: s.At(i-1, j+1),
		W:  s.At(i-1, j),
		SW: s.At(i-1, j-1),
		S:  s.At(i, j-1),
		SE: s.At(i+1, j-1),
		E:  s.At(i+1, j),
		NE: s.At(i+1, j+1),
	}
}

// IntStar returns the 4-neighborhood as integer codes.
func (s *Scalar) IntStar(i, j int) IntStar {
	st := s.Star(i, j)
	return IntStar{IJ: int(st.IJ), E: int(st.E), W: int(st.W), N: int(st.N), S: int(st.S)}
}

// IntBox returns the 8-neighborhood as integer codes.
func (s *Scalar) IntBox(i, j int) IntBox {
	b := s.Box(i, j)
	return IntBox{
		IJ: int(b.IJ), N: int(b.N), NW: int(b.NW), W: int(b.W), SW: int(b.SW),
		S: int(b.S), SE: int(b.SE), E: int(b.E), NE: int(b.NE),
	}
}

// DiffX is the centered x-difference at (i, j); requires a one-cell halo.
func (s *Scalar) DiffX(i, j int) float64 {
	return (s.At(i+1, j) - s.At(i-1, j)) / (2 * s.Grid().Dx)
}

// DiffY is the centered y-difference at (i, j).
func (s *Scalar) DiffY(i, j int) float64 {
	return (s.At(i, j+1) - s.At(i, j-1)) / (2 * s.Grid().Dy)
}

// DiffXP is the x-difference using one-sided (inward) differences at
// non-periodic domain edges and centered differences elsewhere.
func (s *Scalar) DiffXP(i, j int) float64 {
	g := s.Grid()
	if !g.Periodic.X {
		if i == 0 {
			return (s.At(i+1, j) - s.At(i, j)) / g.Dx
		}
		if i == g.Mx-1 {
			return (s.At(i, j) - s.At(i-1, j)) / g.Dx
		}
	}
	return s.DiffX(i, j)
}

// DiffYP is the y-direction analogue of DiffXP.
func (s *Scalar) DiffYP(i, j int) float64 {
	g := s.Grid()
	if !g.Periodic.Y {
		if j == 0 {
			return (s.At(i, j+1) - s.At(i, j)) / g.Dy
		}
		if j == g.My-1 {
			return (s.At(i, j) - s.At(i, j-1)) / g.Dy
		}
	}
	return s.DiffY(i, j)
}

// SetToMagnitude fills s with the point-wise magnitude of v.
func (s *Scalar) SetToMagnitude(v *Vector) {
	xs, xm, ys, ym := s.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			s.Set(i, j, math.Hypot(v.U(i, j), v.V(i, j)))
		}
	}
}

// MaskBy sets s to fill wherever m is not positive, leaving other cells
// untouched. Used to blank diagnostics over bare ground.
func (s *Scalar) MaskBy(m *Scalar, fill float64) {
	xs, xm, ys, ym := s.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			if m.At(i, j) <= 0 {
				s.Set(i, j, fill)
			}
		}
	}
}

// Interpolate evaluates the field at an arbitrary physical point by
// bilinear interpolation of the four enclosing cell centers. The
// enclosing cell and its neighbors must lie within the local sub-domain
// plus halo; callers guarantee this.
func (s *Scalar) Interpolate(x, y float64) float64 {
	return s.interpolateC(x, y, 0, 0, 0)
}

// Vector is a cell-centered field with two components per cell, typically
// a horizontal velocity.
type Vector struct {
	Field
}

// NewVector allocates a two-component cell-centered field.
func NewVector(dec *grid.Decomposition, comm Communicator, name string, halo int) (*Vector, error) {
	v := &Vector{}
	if err := v.Create(dec, comm, name, Regular, 2, halo); err != nil {
		return nil, err
	}
	return v, nil
}

// U returns the x component at (i, j).
func (v *Vector) U(i, j int) float64 { return v.AtC(i, j, 0) }

// V returns the y component at (i, j).
func (v *Vector) V(i, j int) float64 { return v.AtC(i, j, 1) }

// SetUV stores both components at (i, j).
func (v *Vector) SetUV(i, j int, u, w float64) {
	v.SetC(i, j, 0, u)
	v.SetC(i, j, 1, w)
}

// Interpolate evaluates both components at a physical point.
func (v *Vector) Interpolate(x, y float64) (u, w float64) {
	return v.interpolateC(x, y, 0, 0, 0), v.interpolateC(x, y, 1, 0, 0)
}

// Stag is a staggered-grid field: component 0 at the east face (i+1/2, j),
// component 1 at the north face (i, j+1/2). Used for SIA flux quantities.
type Stag struct {
	Field
}

// NewStag allocates a staggered field.
func NewStag(dec *grid.Decomposition, comm Communicator, name string, halo int) (*Stag, error) {
	st := &Stag{}
	if err := st.Create(dec, comm, name, Staggered, 2, halo); err != nil {
		return nil, err
	}
	return st, nil
}

// EastFace returns the value at face (i+1/2, j).
func (st *Stag) EastFace(i, j int) float64 { return st.AtC(i, j, 0) }

// NorthFace returns the value at face (i, j+1/2).
func (st *Stag) NorthFace(i, j int) float64 { return st.AtC(i, j, 1) }

// SetEastFace stores the value at face (i+1/2, j).
func (st *Stag) SetEastFace(i, j int, v float64) { st.SetC(i, j, 0, v) }

// SetNorthFace stores the value at face (i, j+1/2).
func (st *Stag) SetNorthFace(i, j int, v float64) { st.SetC(i, j, 1, v) }

// Star returns the four face values of cell (i, j). IJ is set to zero
// since it has no meaning on the staggered grid.
func (st *Stag) Star(i, j int) Star {
	return Star{
		E: st.AtC(i, j, 0),
		W: st.AtC(i-1, j, 0),
		N: st.AtC(i, j, 1),
		S: st.AtC(i, j-1, 1),
	}
}

// Interpolate evaluates component c at a physical point, honoring the
// half-cell offset of the staggered positions.
func (st *Stag) Interpolate(x, y float64, c int) float64 {
	g := st.Grid()
	if c == 0 {
		return st.interpolateC(x, y, 0, g.Dx/2, 0)
	}
	return st.interpolateC(x, y, 1, 0, g.Dy/2)
}

// AbsMaxComponents returns the global maximum absolute value of each
// staggered component; the result is replicated on all ranks.
func (st *Stag) AbsMaxComponents() (east, north float64) {
	xs, xm, ys, ym := st.Owned()
	local := []float64{0, 0}
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			if a := math.Abs(st.AtC(i, j, 0)); a > local[0] {
				local[0] = a
			}
			if a := math.Abs(st.AtC(i, j, 1)); a > local[1] {
				local[1] = a
			}
		}
	}
	global := st.comm.AllReduce(local, OpMax)
	return global[0], global[1]
}

// Package field provides distributed arrays over a decomposed structured
// grid: local-plus-halo storage, staggered variants, ghost exchange,
// point interpolation, reductions, and regridding.
package field

import (
	"errors"
	"fmt"

	"github.com/glacierflow/icesheet/grid"
)

var (
	// ErrShapeMismatch reports a field reused against an incompatible
	// grid, halo, or dof. This is a programming error.
	ErrShapeMismatch = errors.New("field shape mismatch")

	// ErrMissingRegridSource reports a required regrid source that is
	// absent.
	ErrMissingRegridSource = errors.New("missing regrid source")
)

// Kind distinguishes cell-centered storage from staggered (face-centered)
// storage. A Staggered field has dof=2: component 0 lives at (i+1/2, j),
// component 1 at (i, j+1/2).
type Kind int

const (
	Regular Kind = iota
	Staggered
)

// Field is a distributed array over one rank's sub-domain: xm by ym owned
// cells with `halo` ghost cells on every side and dof values per cell.
// Values are stored contiguously, row-major in j with i fastest.
//
// Halo cells are read-only shadow copies of neighbor data and are only
// valid immediately after a completed Exchanger.Exchange; any write to
// owned cells makes them stale.
type Field struct {
	name     string
	units    string
	longName string

	dec  *grid.Decomposition
	comm Communicator
	kind Kind
	dof  int
	halo int

	// Owned global index ranges and local storage geometry
	xs, xm, ys, ym int
	stride         int // cells per storage row: xm + 2*halo

	data []float64

	stateCounter    int
	timeIndependent bool
}

// Create allocates local+halo storage against a decomposition. Creating
// an already allocated field is a no-op when the shape matches and fails
// with ErrShapeMismatch otherwise. Fresh storage reads zero everywhere.
func (f *Field) Create(dec *grid.Decomposition, comm Communicator, name string, kind Kind, dof, halo int) error {
	if dof < 1 {
		return fmt.Errorf("%w: field %q dof %d must be at least 1", ErrShapeMismatch, name, dof)
	}
	if kind == Staggered && dof != 2 {
		return fmt.Errorf("%w: staggered field %q requires dof=2, got %d", ErrShapeMismatch, name, dof)
	}
	if halo > dec.Halo {
		return fmt.Errorf("%w: field %q halo %d exceeds decomposition halo %d",
			ErrShapeMismatch, name, halo, dec.Halo)
	}
	if f.data != nil {
		if f.dec != dec || f.dof != dof || f.halo != halo || f.kind != kind {
			return fmt.Errorf("%w: field %q is already allocated with a different shape", ErrShapeMismatch, f.name)
		}
		return nil
	}
	xs, xm, ys, ym := dec.Owned(comm.Rank())
	f.name = name
	f.dec = dec
	f.comm = comm
	f.kind = kind
	f.dof = dof
	f.halo = halo
	f.xs, f.xm, f.ys, f.ym = xs, xm, ys, ym
	f.stride = xm + 2*halo
	f.data = make([]float64, f.stride*(ym+2*halo)*dof)
	return nil
}

// SetAttrs records descriptive metadata.
func (f *Field) SetAttrs(longName, units string) {
	f.longName = longName
	f.units = units
}

func (f *Field) Name() string     { return f.name }
func (f *Field) Units() string    { return f.units }
func (f *Field) LongName() string { return f.longName }

func (f *Field) Grid() *grid.Grid                   { return f.dec.Grid }
func (f *Field) Decomposition() *grid.Decomposition { return f.dec }
func (f *Field) Kind() Kind                         { return f.kind }
func (f *Field) Dof() int                           { return f.dof }
func (f *Field) Halo() int                          { return f.halo }

// Owned returns the global index ranges owned by this rank.
func (f *Field) Owned() (xs, xm, ys, ym int) { return f.xs, f.xm, f.ys, f.ym }

// StateCounter returns the current modification count. Dependents compare
// counters to decide whether derived quantities are stale; the counter is
// incremented explicitly by writers, never automatically.
func (f *Field) StateCounter() int { return f.stateCounter }

// IncStateCounter marks the field as modified.
func (f *Field) IncStateCounter() { f.stateCounter++ }

// SetTimeIndependent marks a field whose values never change during a run
// (e.g. externally owned bed topography in rigid-bed configurations).
func (f *Field) SetTimeIndependent(flag bool) { f.timeIndependent = flag }
func (f *Field) TimeIndependent() bool        { return f.timeIndependent }

// index maps a global cell index and component to a storage offset.
func (f *Field) index(i, j, c int) int {
	checkIndices(f, i, j, c)
	return ((j-f.ys+f.halo)*f.stride+(i-f.xs+f.halo))*f.dof + c
}

// AtC returns the value at global cell (i, j), component c. Valid for
// owned cells always and for halo cells after a completed exchange.
func (f *Field) AtC(i, j, c int) float64 { return f.data[f.index(i, j, c)] }

// SetC stores a value at global cell (i, j), component c.
func (f *Field) SetC(i, j, c int, v float64) { f.data[f.index(i, j, c)] = v }

// interiorRow returns the contiguous storage slice of owned row j
// (all components).
func (f *Field) interiorRow(j int) []float64 {
	start := f.index(f.xs, j, 0)
	return f.data[start : start+f.xm*f.dof]
}

// sameShape reports whether two fields can combine element-wise.
func (f *Field) sameShape(x *Field) bool {
	return f.dec == x.dec && f.dof == x.dof && f.halo == x.halo
}

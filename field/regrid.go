package field

import "fmt"

// RegridFlag controls what happens when a regrid source is absent.
type RegridFlag int

const (
	// RegridOptional falls back to a provided default value.
	RegridOptional RegridFlag = iota
	// RegridRequired fails with ErrMissingRegridSource.
	RegridRequired
)

// Regrid bilinearly resamples src, which may live on a grid of different
// resolution or extent, onto f's grid. Sample points outside src's domain
// are clamped to its edge. The source must be locally complete for the
// points sampled; in practice it is a single-rank bootstrap field.
//
// A nil src is an error under RegridRequired and a default fill under
// RegridOptional.
func (f *Field) Regrid(src *Field, flag RegridFlag, def float64) error {
	if src == nil {
		if flag == RegridRequired {
			return fmt.Errorf("%w: field %q requires regrid data", ErrMissingRegridSource, f.name)
		}
		f.SetAll(def)
		f.IncStateCounter()
		return nil
	}
	if src.dof != f.dof {
		return fmt.Errorf("%w: regrid source %q has dof %d, want %d",
			ErrShapeMismatch, src.name, src.dof, f.dof)
	}

	g := f.dec.Grid
	sg := src.dec.Grid
	for j := f.ys; j < f.ys+f.ym; j++ {
		for i := f.xs; i < f.xs+f.xm; i++ {
			for c := 0; c < f.dof; c++ {
				ox, oy := f.componentOffset(c)
				x := g.X(i) + ox
				y := g.Y(j) + oy
				// Clamp to the source domain so extent mismatches
				// extrapolate constantly from the nearest edge.
				sox, soy := src.componentOffset(c)
				x = clamp(x, sg.X(0)+sox, sg.X(sg.Mx-1)+sox)
				y = clamp(y, sg.Y(0)+soy, sg.Y(sg.My-1)+soy)
				f.SetC(i, j, c, src.interpolateC(x, y, c, sox, soy))
			}
		}
	}
	f.IncStateCounter()
	return nil
}

// componentOffset returns the physical offset of component c's sample
// positions from cell centers.
func (f *Field) componentOffset(c int) (ox, oy float64) {
	if f.kind != Staggered {
		return 0, 0
	}
	if c == 0 {
		return f.dec.Grid.Dx / 2, 0
	}
	return 0, f.dec.Grid.Dy / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

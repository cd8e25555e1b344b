package field

import "fmt"

// SetAll fills every local value, halo included, with c.
func (f *Field) SetAll(c float64) {
	for i := range f.data {
		f.data[i] = c
	}
}

// Scale multiplies every owned value by alpha.
func (f *Field) Scale(alpha float64) {
	for j := f.ys; j < f.ys+f.ym; j++ {
		row := f.interiorRow(j)
		for i := range row {
			row[i] *= alpha
		}
	}
}

// Shift adds alpha to every owned value.
func (f *Field) Shift(alpha float64) {
	for j := f.ys; j < f.ys+f.ym; j++ {
		row := f.interiorRow(j)
		for i := range row {
			row[i] += alpha
		}
	}
}

// Add computes f += alpha*x over owned cells.
func (f *Field) Add(alpha float64, x *Field) error {
	if !f.sameShape(x) {
		return fmt.Errorf("%w: cannot add %q to %q", ErrShapeMismatch, x.name, f.name)
	}
	for j := f.ys; j < f.ys+f.ym; j++ {
		dst, src := f.interiorRow(j), x.interiorRow(j)
		for i := range dst {
			dst[i] += alpha * src[i]
		}
	}
	return nil
}

// AddTo computes result = f + alpha*x over owned cells.
func (f *Field) AddTo(alpha float64, x, result *Field) error {
	if !f.sameShape(x) || !f.sameShape(result) {
		return fmt.Errorf("%w: cannot combine %q, %q into %q", ErrShapeMismatch, f.name, x.name, result.name)
	}
	for j := f.ys; j < f.ys+f.ym; j++ {
		a, b, dst := f.interiorRow(j), x.interiorRow(j), result.interiorRow(j)
		for i := range dst {
			dst[i] = a[i] + alpha*b[i]
		}
	}
	return nil
}

// CopyTo copies all local values, halo included, into dst.
func (f *Field) CopyTo(dst *Field) error {
	if !f.sameShape(dst) {
		return fmt.Errorf("%w: cannot copy %q into %q", ErrShapeMismatch, f.name, dst.name)
	}
	copy(dst.data, f.data)
	return nil
}

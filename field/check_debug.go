//go:build debug

package field

import "fmt"

// checkIndices validates global indices against the accessible local
// region (owned cells plus halo). Compiled in only under the debug build
// tag; release builds index unchecked on the hot per-cell path.
func checkIndices(f *Field, i, j, c int) {
	if i < f.xs-f.halo || i >= f.xs+f.xm+f.halo ||
		j < f.ys-f.halo || j >= f.ys+f.ym+f.halo ||
		c < 0 || c >= f.dof {
		panic(fmt.Sprintf("field %q: index (%d,%d,%d) outside local region x[%d,%d) y[%d,%d) halo %d dof %d",
			f.name, i, j, c, f.xs, f.xs+f.xm, f.ys, f.ys+f.ym, f.halo, f.dof))
	}
}

package field

// interpolateC is the shared bilinear interpolation kernel. The offsets
// ox, oy shift the sample positions off cell centers for staggered
// components. It does not check that the enclosing points are within the
// local sub-domain plus halo; callers must guarantee that (there is no
// cross-rank interpolation).
func (f *Field) interpolateC(x, y float64, c int, ox, oy float64) float64 {
	g := f.dec.Grid
	iLeft, iRight, jBottom, jTop := g.PointNeighbors(x, y, ox, oy)
	w := g.InterpWeights(x, y, ox, oy)
	return w[0]*f.AtC(iLeft, jBottom, c) +
		w[1]*f.AtC(iRight, jBottom, c) +
		w[2]*f.AtC(iRight, jTop, c) +
		w[3]*f.AtC(iLeft, jTop, c)
}

package field

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Reductions compute a local partial result over owned cells, then a
// collective combine; the returned value is identical on all ranks.

// Sum returns the global sum over all owned values.
func (f *Field) Sum() float64 {
	local := 0.0
	for j := f.ys; j < f.ys+f.ym; j++ {
		local += floats.Sum(f.interiorRow(j))
	}
	return f.comm.AllReduce([]float64{local}, OpSum)[0]
}

// Min returns the global minimum over all owned values.
func (f *Field) Min() float64 {
	local := math.Inf(1)
	for j := f.ys; j < f.ys+f.ym; j++ {
		if m := floats.Min(f.interiorRow(j)); m < local {
			local = m
		}
	}
	return f.comm.AllReduce([]float64{local}, OpMin)[0]
}

// Max returns the global maximum over all owned values.
func (f *Field) Max() float64 {
	local := math.Inf(-1)
	for j := f.ys; j < f.ys+f.ym; j++ {
		if m := floats.Max(f.interiorRow(j)); m > local {
			local = m
		}
	}
	return f.comm.AllReduce([]float64{local}, OpMax)[0]
}

// Range returns the global minimum and maximum in one pass of collectives.
func (f *Field) Range() (min, max float64) {
	return f.Min(), f.Max()
}

// Norm returns the global p-norm over all owned values. p must be
// positive or math.Inf(1) for the max norm.
func (f *Field) Norm(p float64) float64 {
	if math.IsInf(p, 1) {
		local := 0.0
		for j := f.ys; j < f.ys+f.ym; j++ {
			row := f.interiorRow(j)
			for _, v := range row {
				if a := math.Abs(v); a > local {
					local = a
				}
			}
		}
		return f.comm.AllReduce([]float64{local}, OpMax)[0]
	}
	local := 0.0
	for j := f.ys; j < f.ys+f.ym; j++ {
		for _, v := range f.interiorRow(j) {
			local += math.Pow(math.Abs(v), p)
		}
	}
	global := f.comm.AllReduce([]float64{local}, OpSum)[0]
	return math.Pow(global, 1/p)
}

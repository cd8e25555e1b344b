package geometry

import (
	"math"

	"github.com/glacierflow/icesheet/field"
)

// minThickEtaTransform floors the thickness inside the eta transform so
// the surface slope stays finite as H approaches zero at ice margins.
const minThickEtaTransform = 5.0 // m

// StressConfig carries the parameters of a driving-stress computation.
type StressConfig struct {
	IceDensity   float64
	Gravity      float64
	GlenExponent float64

	// EtaTransform differentiates eta = H^((2n+2)/n) instead of the
	// surface elevation on grounded ice, giving a better-behaved
	// gradient at margins.
	EtaTransform bool

	// InwardSlope uses one-sided differences pointing into the domain at
	// non-periodic edges instead of centered differences.
	InwardSlope bool
}

// ComputeDrivingStress fills taud with the gravitational driving stress
//
//	tau_d = -rho g H grad(h)
//
// on the regular grid. On grounded cells with the eta transform enabled
// the surface gradient is the chain-rule derivative of the transformed
// thickness plus the bed slope; on floating cells, or with the transform
// disabled, the surface elevation is differenced directly. Cells with
// non-positive pressure get exactly zero stress.
//
// This is a pure per-cell kernel needing a one-cell halo on thickness,
// surface, bed, and mask. No ghost exchange of taud is performed.
func ComputeDrivingStress(geo *Geometry, taud *field.Vector, cfg StressConfig) {
	n := cfg.GlenExponent
	etaPow := (2.0*n + 2.0) / n          // 8/3 for n = 3
	invPow := 1.0 / etaPow               // 3/8
	dInvPow := (-n - 2.0) / (2.0*n + 2.0) // -5/8

	H, h, bed := geo.Thickness, geo.Surface, geo.Bed
	g := H.Grid()
	dx, dy := g.Dx, g.Dy

	xs, xm, ys, ym := H.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			pressure := cfg.IceDensity * cfg.Gravity * H.At(i, j)
			if pressure <= 0 {
				taud.SetUV(i, j, 0, 0)
				continue
			}

			var hx, hy float64
			if geo.MaskAt(i, j).Grounded() && cfg.EtaTransform {
				// Differentiate eta = H^{8/3} by the chain rule, then
				// add the bed slope to recover grad(h).
				if thk := H.At(i, j); thk > 0 {
					floored := math.Max(thk, minThickEtaTransform)
					eta := math.Pow(floored, etaPow)
					factor := invPow * math.Pow(eta, dInvPow)
					hx = factor * (math.Pow(H.At(i+1, j), etaPow) - math.Pow(H.At(i-1, j), etaPow)) / (2 * dx)
					hy = factor * (math.Pow(H.At(i, j+1), etaPow) - math.Pow(H.At(i, j-1), etaPow)) / (2 * dy)
				}
				hx += bed.DiffX(i, j)
				hy += bed.DiffY(i, j)
			} else if cfg.InwardSlope {
				hx = h.DiffXP(i, j)
				hy = h.DiffYP(i, j)
			} else {
				hx = h.DiffX(i, j)
				hy = h.DiffY(i, j)
			}

			taud.SetUV(i, j, -pressure*hx, -pressure*hy)
		}
	}
}

package model

import (
	"fmt"
	"math"

	"github.com/glacierflow/icesheet/field"
	"github.com/glacierflow/icesheet/geometry"
)

// Superposition weighting constants: f(v) = 1 - (2/pi) atan(1e-4 a^2 |v|^2)
// with speeds in m/s and a = seconds per year, so the weight saturates for
// sliding speeds on the order of 100 m/year.
const (
	superposeInC  = 1.0e-4 * SecondsPerYear * SecondsPerYear
	superposeOutC = 2.0 / math.Pi
)

// StepStats carries the per-step diagnostics computed by collective
// reductions; values are identical on all ranks.
type StepStats struct {
	// IceCoveredCells is the global number of cells with H > 0 before
	// the update.
	IceCoveredCells float64
	// VolumeRateOfChange is d(volume)/dt in m^3/s.
	VolumeRateOfChange float64
	// AvgThickeningRate is the ice-covered average dH/dt in m/s.
	AvgThickeningRate float64
	// ExtendVertical signals that the maximum thickness has grown past
	// the vertical extent of the computational domain and the caller
	// should trigger a vertical regridding. This step only reports the
	// condition.
	ExtendVertical bool
}

// superposeWeight is the saturating SIA fraction for a squared sliding
// speed; it smoothly interpolates between shallow-ice transport (1 at
// rest) and sliding-dominated transport (toward 0 at high speed).
func superposeWeight(speedSq float64) float64 {
	return 1.0 - superposeOutC*math.Atan(superposeInC*speedSq)
}

// Step advances the ice thickness by dt years using the explicit
// finite-volume update
//
//	dH/dt = M - S - div(q),  q = -D grad h + U_b H.
//
// The diffusive (shallow-ice) part is differenced on the staggered grid
// with thickness averaged onto faces; the advective (sliding) part is
// split by the product rule, with first-order upwinding on U_b . grad H
// and a centered difference on (div U_b) H. Negative thickness is clamped
// to zero, then the ocean-kill and float-kill rules are applied. The new
// thickness is committed to the canonical field and halo-exchanged so
// that the immediately following mask and driving-stress updates see
// consistent values.
//
// Negative thickness on input is an invariant violation and is fatal.
func (m *Model) Step(t, dt float64) (StepStats, error) {
	var stats StepStats

	if m.Surface == nil {
		return stats, fmt.Errorf("%w: surface model is not set", ErrMissingCollaborator)
	}
	if m.Ocean == nil {
		return stats, fmt.Errorf("%w: ocean model is not set", ErrMissingCollaborator)
	}
	if err := m.Surface.IceSurfaceMassFlux(t, dt, m.SurfaceMassFlux); err != nil {
		return stats, fmt.Errorf("surface mass flux: %w", err)
	}
	if err := m.Ocean.ShelfBaseMassFlux(t, dt, m.ShelfBaseFlux); err != nil {
		return stats, fmt.Errorf("shelf base mass flux: %w", err)
	}

	cfg := &m.Config
	g := m.Grid
	dx, dy := g.Dx, g.Dy
	dtSec := dt * SecondsPerYear

	H := m.Geometry.Thickness
	Hnew := m.workThickness
	if err := H.CopyTo(&Hnew.Field); err != nil {
		return stats, err
	}

	ub, ssa := m.SlidingVelocity, m.SSAVelocity
	uvbar := m.SIAFlux

	iceCount := 0.0
	xs, xm, ys, ym := H.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			thk := H.At(i, j)
			if thk < 0 {
				return stats, fmt.Errorf("%w: thickness %g < 0 at cell (%d,%d) entering mass continuity",
					geometry.ErrGeometryInvariant, thk, i, j)
			}
			if thk > 0 {
				iceCount++
			}

			// Average thickness onto the four staggered faces. Under
			// superposition each neighbor's contribution is weighted by
			// the saturating function of its sliding speed, blending the
			// SIA and sliding transports on dragging cells.
			var hE, hW, hN, hS float64
			if cfg.Superpose && m.Geometry.MaskAt(i, j) == geometry.Dragging {
				fv := superposeWeight(sq(ssa.U(i, j)) + sq(ssa.V(i, j)))
				fvE := superposeWeight(sq(ssa.U(i+1, j)) + sq(ssa.V(i+1, j)))
				fvW := superposeWeight(sq(ssa.U(i-1, j)) + sq(ssa.V(i-1, j)))
				fvN := superposeWeight(sq(ssa.U(i, j+1)) + sq(ssa.V(i, j+1)))
				fvS := superposeWeight(sq(ssa.U(i, j-1)) + sq(ssa.V(i, j-1)))
				fvH := fv * thk
				hE = 0.5 * (fvH + fvE*H.At(i+1, j))
				hW = 0.5 * (fvW*H.At(i-1, j) + fvH)
				hN = 0.5 * (fvH + fvN*H.At(i, j+1))
				hS = 0.5 * (fvS*H.At(i, j-1) + fvH)
			} else {
				hE = 0.5 * (thk + H.At(i+1, j))
				hW = 0.5 * (H.At(i-1, j) + thk)
				hN = 0.5 * (thk + H.At(i, j+1))
				hS = 0.5 * (H.At(i, j-1) + thk)
			}

			// Diffusive part: staggered-grid divergence of the SIA flux,
			// uvbar * H_face = -D grad h on each face.
			divQ := 0.0
			if cfg.ComputeSIAVelocities {
				divQ = (uvbar.EastFace(i, j)*hE-uvbar.EastFace(i-1, j)*hW)/dx +
					(uvbar.NorthFace(i, j)*hN-uvbar.NorthFace(i, j-1)*hS)/dy
			}

			// Advective part, split by the product rule: first-order
			// upwinding on U_b . grad H (pick the upstream neighbor per
			// velocity sign, per axis) ...
			u, v := ub.U(i, j), ub.V(i, j)
			if u < 0 {
				divQ += u * (H.At(i+1, j) - thk) / dx
			} else {
				divQ += u * (thk - H.At(i-1, j)) / dx
			}
			if v < 0 {
				divQ += v * (H.At(i, j+1) - thk) / dy
			} else {
				divQ += v * (thk - H.At(i, j-1)) / dy
			}

			// ... and a centered difference on (div U_b) H.
			divQ += thk * ((ub.U(i+1, j)-ub.U(i-1, j))/(2*dx) +
				(ub.V(i, j+1)-ub.V(i, j-1))/(2*dy))

			next := Hnew.At(i, j) + (m.SurfaceMassFlux.At(i, j)-divQ)*dtSec

			if cfg.IncludeBasalMeltRate {
				if m.Geometry.MaskAt(i, j).Floating() {
					next -= m.ShelfBaseFlux.At(i, j) * dtSec
				} else {
					next -= m.BasalMeltRate.At(i, j) * dtSec
				}
			}

			// Free boundary rule: negative thickness becomes zero. Mass
			// removed here is not tracked separately; it is a hard floor.
			if next < 0 {
				next = 0
			}

			// Ocean kill: calving at the original calving front.
			if cfg.OceanKill && m.Geometry.MaskAt(i, j) == geometry.FixedOcean {
				next = 0
			}
			// Float kill: calving at the grounding line.
			if cfg.FloatKill && m.Geometry.MaskAt(i, j).Floating() {
				next = 0
			}

			Hnew.Set(i, j, next)
		}
	}

	// Thickening rate diagnostic: dH/dt = (Hnew - H)/dt, blanked to NaN
	// where the new thickness is zero.
	if err := Hnew.AddTo(-1.0, &H.Field, &m.ThickeningRate.Field); err != nil {
		return stats, err
	}
	m.ThickeningRate.Scale(1.0 / dtSec)

	sumDHDt := m.ThickeningRate.Sum()
	stats.IceCoveredCells = m.Comm.AllReduce([]float64{iceCount}, field.OpSum)[0]
	stats.VolumeRateOfChange = sumDHDt * dx * dy
	if stats.IceCoveredCells > 0 {
		stats.AvgThickeningRate = sumDHDt / stats.IceCoveredCells
	}

	m.ThickeningRate.MaskBy(Hnew, math.NaN())
	m.ThickeningRate.IncStateCounter()

	// Commit: the new thickness becomes canonical and ghosts are
	// refreshed before anyone reads neighbor values.
	if err := Hnew.CopyTo(&H.Field); err != nil {
		return stats, err
	}
	if err := m.Ex.Exchange(&H.Field); err != nil {
		return stats, err
	}
	H.IncStateCounter()

	// Report (do not perform) the vertical-extent check: regridding in z
	// is the caller's responsibility.
	stats.ExtendVertical = H.Max() > g.Lz
	return stats, nil
}

func sq(x float64) float64 { return x * x }

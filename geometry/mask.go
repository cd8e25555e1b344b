package geometry

import (
	"fmt"

	"github.com/glacierflow/icesheet/field"
)

// groundingHysteresis is the half-width of the band around exact
// flotation within which a cell keeps its previous classification,
// preventing chatter at the grounding line. A fixed length unit,
// deliberately not grid-relative.
const groundingHysteresis = 1.0 // m

// MaskConfig carries the parameters of a surface-and-mask update.
type MaskConfig struct {
	SeaLevel     float64
	IceDensity   float64
	OceanDensity float64

	// UseSSAVelocity and PlasticTill together select the
	// SSA-as-sliding-law regime in which newly grounded cells are known
	// to be Dragging; without PlasticTill they become Unresolved and are
	// settled by neighbor vote.
	UseSSAVelocity bool
	PlasticTill    bool

	// DrySimulation freezes the mask and sets h = bed + H everywhere.
	DrySimulation bool
}

// UpdateSurfaceAndMask re-derives surface elevation and cell
// classification after any geometry change.
//
// For each owned cell it computes the grounded and floating candidate
// surfaces and applies the flotation criterion with hysteresis. Cells
// tagged FixedOcean are never reclassified. Cells left Unresolved are
// settled by a single-pass vote over the 8-neighbor box stencil: with at
// most one Dragging neighbor and the rest Sheet the cell becomes Sheet;
// otherwise, including when any neighbor is still floating, it becomes
// Dragging. The pass does not iterate to a fixed point;
// mutually adjacent unresolved cells see partially updated neighbors,
// which is acceptable for the sparse sets that occur near grounding
// lines.
//
// Negative thickness on input is fatal: it means an upstream step
// violated the non-negativity invariant.
//
// Both the surface elevation and the mask are halo-exchanged before
// returning, since boundary classification feeds neighbor-dependent flux
// computations.
func UpdateSurfaceAndMask(geo *Geometry, ex *field.Exchanger, cfg MaskConfig) error {
	H, bed, h := geo.Thickness, geo.Bed, geo.Surface

	xs, xm, ys, ym := H.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			thk := H.At(i, j)
			if thk < 0 {
				return fmt.Errorf("%w: thickness %g < 0 at cell (%d,%d)", ErrGeometryInvariant, thk, i, j)
			}

			hGrounded := bed.At(i, j) + thk
			hFloating := cfg.SeaLevel + (1.0-cfg.IceDensity/cfg.OceanDensity)*thk

			switch {
			case cfg.DrySimulation:
				// No ocean: the mask is left alone and every cell sits
				// on the bed.
				h.Set(i, j, hGrounded)

			case geo.MaskAt(i, j) == FixedOcean:
				// Designated ocean cells ignore the bed entirely; the
				// kill rule in the continuity step owns their thickness.
				h.Set(i, j, hFloating)

			case geo.MaskAt(i, j) == Floating:
				if hGrounded > hFloating+groundingHysteresis {
					h.Set(i, j, hGrounded)
					if cfg.UseSSAVelocity {
						if cfg.PlasticTill {
							geo.SetMask(i, j, Dragging)
						} else {
							geo.SetMask(i, j, Unresolved)
						}
					} else {
						geo.SetMask(i, j, Sheet)
					}
				} else {
					h.Set(i, j, hFloating)
				}

			default: // currently grounded
				if hGrounded > hFloating-groundingHysteresis {
					h.Set(i, j, hGrounded)
					if cfg.UseSSAVelocity && cfg.PlasticTill {
						geo.SetMask(i, j, Dragging)
					}
				} else {
					h.Set(i, j, hFloating)
					geo.SetMask(i, j, Floating)
				}
			}

			if geo.MaskAt(i, j) == Unresolved {
				geo.SetMask(i, j, voteByNeighbors(geo, i, j))
			}
		}
	}

	if err := ex.Exchange(&h.Field, &geo.Mask.Field); err != nil {
		return err
	}
	h.IncStateCounter()
	geo.Mask.IncStateCounter()
	return nil
}

// voteByNeighbors settles a just-grounded cell by summing the box-stencil
// neighbor codes, with FixedOcean folded into Floating. All Sheet or at
// most one Dragging neighbor keeps the cell Sheet; a second Dragging
// neighbor or any floating neighbor pushes the sum past the threshold and
// the cell becomes Dragging.
func voteByNeighbors(geo *Geometry, i, j int) CellType {
	b := geo.Mask.IntBox(i, j)
	sum := 0
	for _, m := range [8]int{b.N, b.NW, b.W, b.SW, b.S, b.SE, b.E, b.NE} {
		if CellType(m) == FixedOcean {
			m = int(Floating)
		}
		sum += m
	}
	if sum <= 7*int(Sheet)+int(Dragging) {
		return Sheet
	}
	return Dragging
}

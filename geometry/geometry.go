// Package geometry maintains the mutually consistent ice geometry:
// thickness, bed elevation, surface elevation, and the per-cell
// grounded/floating classification, plus the gravitational driving
// stress derived from them.
package geometry

import (
	"errors"

	"github.com/glacierflow/icesheet/field"
)

// ErrGeometryInvariant reports a geometric inconsistency that indicates
// upstream numerical instability, such as negative ice thickness. It is
// fatal and never recovered.
var ErrGeometryInvariant = errors.New("geometry invariant violation")

// CellType classifies a cell by how its ice (if any) is supported.
type CellType int

const (
	// Unresolved marks a cell that just grounded and whose flow regime
	// is not yet decided. It is transient within one mask update and is
	// eliminated by neighbor vote before the update completes.
	Unresolved CellType = -1
	// Sheet is grounded ice moving by shallow-ice deformation only.
	Sheet CellType = 1
	// Dragging is grounded ice with basal sliding (SSA as sliding law).
	Dragging CellType = 2
	// Floating is ice in flotation equilibrium with the ocean.
	Floating CellType = 3
	// FixedOcean marks cells designated ocean at initialization; they
	// are never reclassified and are subject to the ocean-kill rule.
	FixedOcean CellType = 7
)

// Grounded reports whether a cell type rests on the bed.
func (t CellType) Grounded() bool { return t == Sheet || t == Dragging || t == Unresolved }

// Floating reports whether a cell type is ocean-supported.
func (t CellType) Floating() bool { return t == Floating || t == FixedOcean }

// Geometry bundles the fields that must stay mutually consistent whenever
// geometry is handed to or received from any collaborator: surface
// elevation is always recomputed from thickness, bed, mask, and sea
// level, never independently mutated.
type Geometry struct {
	Thickness *field.Scalar // H, non-negative
	Bed       *field.Scalar // bed elevation, externally owned
	Surface   *field.Scalar // h, derived
	Mask      *field.Scalar // CellType codes
}

// MaskAt returns the classification of cell (i, j).
func (g *Geometry) MaskAt(i, j int) CellType { return CellType(g.Mask.AsInt(i, j)) }

// SetMask stores the classification of cell (i, j).
func (g *Geometry) SetMask(i, j int, t CellType) { g.Mask.SetInt(i, j, int(t)) }

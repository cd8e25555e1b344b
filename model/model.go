// Package model assembles the simulation state of one rank (grid,
// decomposition, fields, configuration, collaborator handles) and runs
// the explicit mass-continuity update.
package model

import (
	"fmt"
	"log"

	"github.com/glacierflow/icesheet/field"
	"github.com/glacierflow/icesheet/geometry"
	"github.com/glacierflow/icesheet/grid"
)

// Model is the per-rank simulation state. All mutable fields live here;
// there are no package globals. One rank exclusively owns and mutates the
// interior cells of every field; halo cells are refreshed only through
// the exchanger.
type Model struct {
	Grid *grid.Grid
	Dec  *grid.Decomposition
	Comm field.Communicator
	Ex   *field.Exchanger

	Config        Config
	StressBalance StressBalance
	Hydrology     Hydrology

	// Geometry: thickness, bed, surface, mask, kept mutually consistent
	Geometry geometry.Geometry

	// Stress-balance output, consumed read-only:
	// SIAFlux holds the staggered-grid SIA flux velocities (uvbar):
	// SIAFlux * H_face = -D grad h on each face.
	SIAFlux *field.Stag
	// SlidingVelocity is the basal sliding velocity on the regular grid.
	SlidingVelocity *field.Vector
	// SSAVelocity is the vertically averaged SSA velocity, used by the
	// superposition weighting.
	SSAVelocity *field.Vector

	// Forcing fields filled by collaborators each step
	SurfaceMassFlux *field.Scalar
	ShelfBaseFlux   *field.Scalar
	BasalMeltRate   *field.Scalar

	// Diagnostics
	ThickeningRate *field.Scalar

	// Driving stress, recomputed on demand
	DrivingStress *field.Vector

	// Collaborators; nil handles fail with ErrMissingCollaborator at the
	// point of use.
	Surface SurfaceModel
	Ocean   OceanModel

	// Scratch thickness buffer for the step update
	workThickness *field.Scalar
}

// New allocates a model against a decomposition. Configuration strings
// selecting sub-models are validated here, never mid-step.
func New(dec *grid.Decomposition, comm field.Communicator, cfg Config) (*Model, error) {
	sb, err := ParseStressBalance(cfg.StressBalanceModel)
	if err != nil {
		return nil, err
	}
	hyd, err := ParseHydrology(cfg.HydrologyModel)
	if err != nil {
		return nil, err
	}
	if comm.Rank() == 0 {
		log.Printf("model: stress balance %q, hydrology %q", sb, hyd)
	}

	m := &Model{
		Grid:          dec.Grid,
		Dec:           dec,
		Comm:          comm,
		Ex:            field.NewExchanger(dec, comm),
		Config:        cfg,
		StressBalance: sb,
		Hydrology:     hyd,
	}

	halo := dec.Halo
	scalars := []struct {
		f        **field.Scalar
		name     string
		longName string
		units    string
	}{
		{&m.Geometry.Thickness, "thk", "land ice thickness", "m"},
		{&m.Geometry.Bed, "topg", "bedrock surface elevation", "m"},
		{&m.Geometry.Surface, "usurf", "ice upper surface elevation", "m"},
		{&m.Geometry.Mask, "mask", "grounded/dragging/floating integer mask", ""},
		{&m.SurfaceMassFlux, "acab", "ice-equivalent surface mass balance", "m s-1"},
		{&m.ShelfBaseFlux, "shelfbmassflux", "ice-equivalent sub-shelf melt flux", "m s-1"},
		{&m.BasalMeltRate, "bmelt", "ice-equivalent basal melt rate", "m s-1"},
		{&m.ThickeningRate, "dHdt", "rate of change of ice thickness", "m s-1"},
		{&m.workThickness, "thk_new", "working copy of ice thickness", "m"},
	}
	for _, s := range scalars {
		f, err := field.NewScalar(dec, comm, s.name, halo)
		if err != nil {
			return nil, fmt.Errorf("allocating %q: %w", s.name, err)
		}
		f.SetAttrs(s.longName, s.units)
		*s.f = f
	}

	if m.SIAFlux, err = field.NewStag(dec, comm, "uvbar", halo); err != nil {
		return nil, fmt.Errorf("allocating %q: %w", "uvbar", err)
	}
	m.SIAFlux.SetAttrs("vertically averaged SIA flux velocity on the staggered grid", "m s-1")

	vectors := []struct {
		f        **field.Vector
		name     string
		longName string
	}{
		{&m.SlidingVelocity, "vel_basal", "basal sliding velocity"},
		{&m.SSAVelocity, "vel_ssa", "vertically averaged SSA velocity"},
		{&m.DrivingStress, "taud", "gravitational driving stress"},
	}
	for _, v := range vectors {
		f, err := field.NewVector(dec, comm, v.name, halo)
		if err != nil {
			return nil, fmt.Errorf("allocating %q: %w", v.name, err)
		}
		f.SetAttrs(v.longName, "")
		*v.f = f
	}

	return m, nil
}

// maskConfig derives the geometry update parameters for the current sea
// level.
func (m *Model) maskConfig(seaLevel float64) geometry.MaskConfig {
	return geometry.MaskConfig{
		SeaLevel:       seaLevel,
		IceDensity:     m.Config.IceDensity,
		OceanDensity:   m.Config.OceanDensity,
		UseSSAVelocity: m.Config.UseSSAVelocity(m.StressBalance),
		PlasticTill:    m.Config.PlasticTill,
		DrySimulation:  m.Config.DrySimulation,
	}
}

// UpdateSurfaceAndMask re-derives surface elevation and the cell
// classification from the current thickness, bed, and sea level.
func (m *Model) UpdateSurfaceAndMask(t float64) error {
	if m.Ocean == nil {
		return fmt.Errorf("%w: ocean model is not set", ErrMissingCollaborator)
	}
	seaLevel, err := m.Ocean.SeaLevelElevation(t)
	if err != nil {
		return fmt.Errorf("sea level at t=%g: %w", t, err)
	}
	return geometry.UpdateSurfaceAndMask(&m.Geometry, m.Ex, m.maskConfig(seaLevel))
}

// ComputeDrivingStress refreshes the driving-stress diagnostic from the
// current geometry.
func (m *Model) ComputeDrivingStress() {
	geometry.ComputeDrivingStress(&m.Geometry, m.DrivingStress, geometry.StressConfig{
		IceDensity:   m.Config.IceDensity,
		Gravity:      m.Config.Gravity,
		GlenExponent: m.Config.GlenExponent,
		EtaTransform: m.Config.EtaTransform,
		InwardSlope:  m.Config.InwardSurfaceGradient,
	})
	m.DrivingStress.IncStateCounter()
}

package model

import "github.com/glacierflow/icesheet/field"

// SurfaceModel supplies the climatic surface mass balance. Implementations
// are external collaborators; the continuity step consumes them through
// this narrow numeric interface only.
type SurfaceModel interface {
	// IceSurfaceMassFlux fills out with the ice-equivalent surface mass
	// flux (m/s, any sign) for the step starting at time t (years) with
	// duration dt (years).
	IceSurfaceMassFlux(t, dt float64, out *field.Scalar) error
}

// OceanModel supplies sub-shelf forcing and the sea level.
type OceanModel interface {
	// ShelfBaseMassFlux fills out with the melt flux at the base of
	// floating ice (m/s, positive melts) for the given step.
	ShelfBaseMassFlux(t, dt float64, out *field.Scalar) error

	// SeaLevelElevation returns the sea surface elevation at time t.
	SeaLevelElevation(t float64) (float64, error)
}

// ConstantSurface is a reference SurfaceModel applying a uniform mass
// flux; used in tests and examples.
type ConstantSurface struct {
	Flux float64
}

func (s *ConstantSurface) IceSurfaceMassFlux(t, dt float64, out *field.Scalar) error {
	out.SetAll(s.Flux)
	out.IncStateCounter()
	return nil
}

// ConstantOcean is a reference OceanModel with fixed melt rate and sea
// level.
type ConstantOcean struct {
	MeltRate float64
	SeaLevel float64
}

func (o *ConstantOcean) ShelfBaseMassFlux(t, dt float64, out *field.Scalar) error {
	out.SetAll(o.MeltRate)
	out.IncStateCounter()
	return nil
}

func (o *ConstantOcean) SeaLevelElevation(t float64) (float64, error) {
	return o.SeaLevel, nil
}

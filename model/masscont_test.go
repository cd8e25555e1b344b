package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glacierflow/icesheet/field"
	"github.com/glacierflow/icesheet/geometry"
	"github.com/glacierflow/icesheet/grid"
)

// newTestModel builds a single-rank model on a 5x5 grid with dx=dy=1000
// and Lz=4000, with default collaborators doing nothing.
func newTestModel(t *testing.T, cfg Config) *Model {
	t.Helper()
	g, err := grid.New(0, 0, 4000, 4000, 4000, 5, 5, 3, grid.Periodicity{})
	require.NoError(t, err)
	d, err := grid.Decompose(g, 1, 1)
	require.NoError(t, err)

	m, err := New(d, field.NewSelfComm(), cfg)
	require.NoError(t, err)
	m.Surface = &ConstantSurface{}
	m.Ocean = &ConstantOcean{}

	xs, xm, ys, ym := m.Geometry.Mask.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			m.Geometry.SetMask(i, j, geometry.Sheet)
		}
	}
	return m
}

func TestStepMissingCollaborators(t *testing.T) {
	m := newTestModel(t, DefaultConfig())

	m.Surface = nil
	_, err := m.Step(0, 1)
	assert.ErrorIs(t, err, ErrMissingCollaborator)

	m.Surface = &ConstantSurface{}
	m.Ocean = nil
	_, err = m.Step(0, 1)
	assert.ErrorIs(t, err, ErrMissingCollaborator)

	err = m.UpdateSurfaceAndMask(0)
	assert.ErrorIs(t, err, ErrMissingCollaborator)
}

func TestStepZeroForcingConservesMass(t *testing.T) {
	// No velocities, no mass balance: thickness must come through a step
	// bit-for-bit unchanged.
	m := newTestModel(t, DefaultConfig())
	m.Geometry.Thickness.SetAll(100)

	stats, err := m.Step(0, 1)
	require.NoError(t, err)

	xs, xm, ys, ym := m.Geometry.Thickness.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			assert.Equal(t, 100.0, m.Geometry.Thickness.At(i, j), "cell (%d,%d)", i, j)
		}
	}
	assert.Equal(t, 25.0, stats.IceCoveredCells)
	assert.InDelta(t, 0.0, stats.VolumeRateOfChange, 1e-9)
	assert.InDelta(t, 0.0, stats.AvgThickeningRate, 1e-15)
	assert.False(t, stats.ExtendVertical)
}

func TestStepNegativeThicknessFatal(t *testing.T) {
	m := newTestModel(t, DefaultConfig())
	m.Geometry.Thickness.SetAll(10)
	m.Geometry.Thickness.Set(2, 2, -0.5)

	_, err := m.Step(0, 1)
	assert.ErrorIs(t, err, geometry.ErrGeometryInvariant)
}

func TestStepSurfaceAccumulationGrowsIce(t *testing.T) {
	m := newTestModel(t, DefaultConfig())
	m.Geometry.Thickness.SetAll(100)
	flux := 1.0 / SecondsPerYear // 1 m/year
	m.Surface = &ConstantSurface{Flux: flux}

	stats, err := m.Step(0, 2.5)
	require.NoError(t, err)

	assert.InDelta(t, 102.5, m.Geometry.Thickness.At(2, 2), 1e-9)
	assert.InDelta(t, flux, stats.AvgThickeningRate, 1e-18)
	assert.InDelta(t, flux*25*1000*1000, stats.VolumeRateOfChange, 1e-6)
}

func TestStepClampsNegativeThickness(t *testing.T) {
	// Ablation far exceeding the available ice leaves H = 0, never
	// negative, and the thickening-rate diagnostic is blanked there.
	m := newTestModel(t, DefaultConfig())
	m.Geometry.Thickness.SetAll(1)
	m.Surface = &ConstantSurface{Flux: -1e-4} // ~3156 m/year of melt

	_, err := m.Step(0, 1)
	require.NoError(t, err)

	xs, xm, ys, ym := m.Geometry.Thickness.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			assert.Equal(t, 0.0, m.Geometry.Thickness.At(i, j))
			assert.True(t, math.IsNaN(m.ThickeningRate.At(i, j)))
		}
	}
}

func TestStepOceanKill(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OceanKill = true
	m := newTestModel(t, cfg)
	m.Geometry.Thickness.SetAll(100)
	m.Geometry.SetMask(0, 0, geometry.FixedOcean)
	m.Geometry.SetMask(4, 4, geometry.FixedOcean)

	_, err := m.Step(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Geometry.Thickness.At(0, 0))
	assert.Equal(t, 0.0, m.Geometry.Thickness.At(4, 4))
	assert.Equal(t, 100.0, m.Geometry.Thickness.At(2, 2))

	// Applying the rule again changes nothing.
	_, err = m.Step(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Geometry.Thickness.At(0, 0))
	assert.Equal(t, 100.0, m.Geometry.Thickness.At(2, 2))
}

func TestStepFloatKill(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FloatKill = true
	m := newTestModel(t, cfg)
	m.Geometry.Thickness.SetAll(100)
	m.Geometry.SetMask(3, 1, geometry.Floating)

	_, err := m.Step(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Geometry.Thickness.At(3, 1))
	assert.Equal(t, 100.0, m.Geometry.Thickness.At(2, 2))
}

func TestStepBasalMeltSplitsByMask(t *testing.T) {
	// With basal melt enabled, floating cells lose mass at the shelf-base
	// rate and grounded cells at the basal melt rate.
	cfg := DefaultConfig()
	cfg.IncludeBasalMeltRate = true
	m := newTestModel(t, cfg)
	m.Geometry.Thickness.SetAll(100)
	m.Geometry.SetMask(1, 1, geometry.Floating)

	shelfRate := 2.0 / SecondsPerYear // 2 m/year
	basalRate := 0.5 / SecondsPerYear
	m.Ocean = &ConstantOcean{MeltRate: shelfRate}
	m.BasalMeltRate.SetAll(basalRate)

	_, err := m.Step(0, 1)
	require.NoError(t, err)

	assert.InDelta(t, 98.0, m.Geometry.Thickness.At(1, 1), 1e-9, "floating")
	assert.InDelta(t, 99.5, m.Geometry.Thickness.At(2, 2), 1e-9, "grounded")
}

func TestStepUpwindAdvection(t *testing.T) {
	// Uniform sliding over a linear thickness ramp: dH/dt = -u dH/dx
	// exactly, since div(U_b) = 0 and upwinding is exact on linear data.
	m := newTestModel(t, DefaultConfig())
	g := m.Grid
	xs, xm, ys, ym := m.Geometry.Thickness.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			m.Geometry.Thickness.Set(i, j, 100+0.01*g.X(i))
			m.SlidingVelocity.SetUV(i, j, 10.0/SecondsPerYear, 0)
		}
	}

	_, err := m.Step(0, 0.1)
	require.NoError(t, err)

	// u = 10 m/year, dH/dx = 0.01, dt = 0.1 year: dH = -0.01 m. Checked
	// at an interior cell whose whole stencil is interior.
	assert.InDelta(t, 120-0.01, m.Geometry.Thickness.At(2, 2), 1e-9)
}

func TestStepSuperposeBlendsFluxes(t *testing.T) {
	// On a dragging cell with fast sliding, superposition suppresses the
	// staggered SIA flux through the face-thickness weights; the same
	// setup without the flag transports mass at the full SIA rate. The
	// east face of cell (2,j) carries an outward flux so the cell thins.
	base := func(superpose bool) float64 {
		cfg := DefaultConfig()
		cfg.Superpose = superpose
		m := newTestModel(t, cfg)
		m.Geometry.Thickness.SetAll(100)

		xs, xm, ys, ym := m.Geometry.Thickness.Owned()
		for j := ys; j < ys+ym; j++ {
			for i := xs; i < xs+xm; i++ {
				m.Geometry.SetMask(i, j, geometry.Dragging)
				m.SSAVelocity.SetUV(i, j, 1000.0/SecondsPerYear, 0)
			}
			m.SIAFlux.SetEastFace(2, j, 5.0/SecondsPerYear)
		}

		_, err := m.Step(0, 1)
		require.NoError(t, err)
		return m.Geometry.Thickness.At(2, 2)
	}

	plain := base(false)
	blended := base(true)
	// At 1000 m/year the SIA fraction is essentially zero, so the blended
	// step moves far less mass through the faces.
	assert.Less(t, math.Abs(blended-100), math.Abs(plain-100))
}

func TestStepExtendVerticalSignal(t *testing.T) {
	m := newTestModel(t, DefaultConfig())
	m.Geometry.Thickness.SetAll(3999)
	m.Surface = &ConstantSurface{Flux: 10.0 / SecondsPerYear}

	stats, err := m.Step(0, 1)
	require.NoError(t, err)
	assert.True(t, stats.ExtendVertical, "H grew past Lz = %g", m.Grid.Lz)

	m2 := newTestModel(t, DefaultConfig())
	m2.Geometry.Thickness.SetAll(100)
	stats, err = m2.Step(0, 1)
	require.NoError(t, err)
	assert.False(t, stats.ExtendVertical)
}

package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glacierflow/icesheet/field"
)

func testStressConfig() StressConfig {
	return StressConfig{
		IceDensity:   910,
		Gravity:      9.81,
		GlenExponent: 3,
	}
}

func newTaud(t *testing.T, geo *Geometry) *field.Vector {
	t.Helper()
	taud, err := field.NewVector(geo.Thickness.Decomposition(), field.NewSelfComm(), "taud", 1)
	require.NoError(t, err)
	return taud
}

func TestZeroThicknessZeroStress(t *testing.T) {
	// A cell with H = 0 has zero pressure, so its driving stress is
	// exactly (0,0) regardless of surrounding gradients.
	geo, _ := testGeometry(t, 5, 5)
	fillMask(geo, Sheet)
	xs, xm, ys, ym := geo.Thickness.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			geo.Thickness.Set(i, j, 100)
			geo.Surface.Set(i, j, float64(100*i)) // steep surrounding gradient
		}
	}
	geo.Thickness.Set(2, 2, 0)

	taud := newTaud(t, geo)
	taud.SetUV(2, 2, 9e9, 9e9) // stale garbage that must be overwritten
	ComputeDrivingStress(geo, taud, testStressConfig())

	assert.Zero(t, taud.U(2, 2))
	assert.Zero(t, taud.V(2, 2))
	assert.NotZero(t, taud.U(2, 1))
}

func TestFloatingUsesSurfaceGradient(t *testing.T) {
	geo, _ := testGeometry(t, 5, 5)
	fillMask(geo, Floating)
	geo.Thickness.SetAll(100)
	xs, xm, ys, ym := geo.Surface.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			geo.Surface.Set(i, j, 0.01*float64(i)*geo.Surface.Grid().Dx)
		}
	}

	cfg := testStressConfig()
	cfg.EtaTransform = true // ignored on floating cells
	taud := newTaud(t, geo)
	ComputeDrivingStress(geo, taud, cfg)

	// tau_x = -rho g H dh/dx with dh/dx = 0.01.
	want := -910.0 * 9.81 * 100 * 0.01
	assert.InDelta(t, want, taud.U(2, 2), 1e-6)
	assert.InDelta(t, 0.0, taud.V(2, 2), 1e-9)
}

func TestGroundedEtaTransformFlatSurface(t *testing.T) {
	// Uniform thickness on a flat bed: the transformed gradient and the
	// bed slope both vanish, so the stress is zero despite the eta
	// machinery running.
	geo, _ := testGeometry(t, 5, 5)
	fillMask(geo, Sheet)
	geo.Thickness.SetAll(500)
	geo.Bed.SetAll(0)
	geo.Surface.SetAll(500)

	cfg := testStressConfig()
	cfg.EtaTransform = true
	taud := newTaud(t, geo)
	ComputeDrivingStress(geo, taud, cfg)

	assert.InDelta(t, 0.0, taud.U(2, 2), 1e-9)
	assert.InDelta(t, 0.0, taud.V(2, 2), 1e-9)
}

func TestGroundedBedSlopeContributes(t *testing.T) {
	// Uniform thickness over a tilted bed: the eta term vanishes and the
	// whole surface gradient is the bed slope.
	geo, _ := testGeometry(t, 5, 5)
	fillMask(geo, Sheet)
	geo.Thickness.SetAll(500)
	g := geo.Bed.Grid()
	xs, xm, ys, ym := geo.Bed.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			geo.Bed.Set(i, j, 0.02*float64(j)*g.Dy)
			geo.Surface.Set(i, j, 500+0.02*float64(j)*g.Dy)
		}
	}

	cfg := testStressConfig()
	cfg.EtaTransform = true
	taud := newTaud(t, geo)
	ComputeDrivingStress(geo, taud, cfg)

	want := -910.0 * 9.81 * 500 * 0.02
	assert.InDelta(t, 0.0, taud.U(2, 2), 1e-6)
	assert.InDelta(t, want, taud.V(2, 2), 1e-6)
}

func TestInwardSlopeAtDomainEdge(t *testing.T) {
	// With the inward option, edge cells difference one-sidedly into the
	// domain instead of reading (zero) ghost values.
	geo, _ := testGeometry(t, 5, 5)
	fillMask(geo, Floating)
	geo.Thickness.SetAll(100)
	g := geo.Surface.Grid()
	xs, xm, ys, ym := geo.Surface.Owned()
	for j := ys; j < ys+ym; j++ {
		for i := xs; i < xs+xm; i++ {
			geo.Surface.Set(i, j, 0.01*float64(i)*g.Dx)
		}
	}

	cfg := testStressConfig()
	cfg.InwardSlope = true
	taud := newTaud(t, geo)
	ComputeDrivingStress(geo, taud, cfg)

	want := -910.0 * 9.81 * 100 * 0.01
	assert.InDelta(t, want, taud.U(0, 2), 1e-6, "west edge")
	assert.InDelta(t, want, taud.U(4, 2), 1e-6, "east edge")
}

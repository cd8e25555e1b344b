package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVariant reports an unrecognized configuration string
	// selecting a sub-model. Surfaced at allocation time, never mid-step.
	ErrUnknownVariant = errors.New("unknown model variant")

	// ErrMissingCollaborator reports a required external model handle
	// that was never set. An assembly-time misconfiguration.
	ErrMissingCollaborator = errors.New("missing collaborator")
)

// StressBalance selects which stress-balance solver produces velocities.
type StressBalance int

const (
	StressBalanceSIA StressBalance = iota
	StressBalanceSSA
	StressBalanceSIASSA
)

// ParseStressBalance maps a configuration string to a variant, failing
// fast on anything unrecognized.
func ParseStressBalance(s string) (StressBalance, error) {
	switch s {
	case "sia":
		return StressBalanceSIA, nil
	case "ssa":
		return StressBalanceSSA, nil
	case "sia+ssa":
		return StressBalanceSIASSA, nil
	default:
		return 0, fmt.Errorf("%w: stress balance %q (want sia, ssa, or sia+ssa)", ErrUnknownVariant, s)
	}
}

func (v StressBalance) String() string {
	switch v {
	case StressBalanceSIA:
		return "sia"
	case StressBalanceSSA:
		return "ssa"
	case StressBalanceSIASSA:
		return "sia+ssa"
	}
	return "unknown"
}

// Hydrology selects the subglacial hydrology sub-model.
type Hydrology int

const (
	HydrologyNull Hydrology = iota
	HydrologyRouting
	HydrologyDistributed
)

// ParseHydrology maps a configuration string to a variant.
func ParseHydrology(s string) (Hydrology, error) {
	switch s {
	case "null":
		return HydrologyNull, nil
	case "routing":
		return HydrologyRouting, nil
	case "distributed":
		return HydrologyDistributed, nil
	default:
		return 0, fmt.Errorf("%w: hydrology %q (want null, routing, or distributed)", ErrUnknownVariant, s)
	}
}

func (v Hydrology) String() string {
	switch v {
	case HydrologyNull:
		return "null"
	case HydrologyRouting:
		return "routing"
	case HydrologyDistributed:
		return "distributed"
	}
	return "unknown"
}

// SecondsPerYear converts between SI seconds and the year-based units
// conventional in glaciology.
const SecondsPerYear = 3.15569259747e7

// Config selects the physics options and constants of a run. The zero
// value is not useful; start from DefaultConfig.
type Config struct {
	// Sub-model selection strings, validated at model construction
	StressBalanceModel string
	HydrologyModel     string

	// Physical constants
	IceDensity   float64 // kg m-3
	OceanDensity float64 // kg m-3
	Gravity      float64 // m s-2
	GlenExponent float64

	// Mass continuity options
	OceanKill            bool // force H = 0 on cells tagged ocean at time 0
	FloatKill            bool // force H = 0 on floating cells (calving at the grounding line)
	IncludeBasalMeltRate bool // subtract basal melt from the continuity equation
	Superpose            bool // velocity-dependent SIA/SSA flux blending on dragging cells
	ComputeSIAVelocities bool

	// Geometry options
	EtaTransform          bool
	InwardSurfaceGradient bool
	DrySimulation         bool
	PlasticTill           bool
}

// DefaultConfig returns the standard constants and a plain SIA setup.
func DefaultConfig() Config {
	return Config{
		StressBalanceModel:   "sia",
		HydrologyModel:       "null",
		IceDensity:           910.0,
		OceanDensity:         1028.0,
		Gravity:              9.81,
		GlenExponent:         3.0,
		ComputeSIAVelocities: true,
		EtaTransform:         true,
	}
}

// UseSSAVelocity reports whether the selected stress balance produces
// sliding velocities.
func (c *Config) UseSSAVelocity(v StressBalance) bool {
	return v == StressBalanceSSA || v == StressBalanceSIASSA
}

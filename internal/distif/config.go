package distif

import "github.com/sarchlab/distfluid/internal/fluid"

// ConfigData is the recognized configuration of spec.md §6: the options
// table a distributed interface link is constructed with.
type ConfigData struct {
	// IsPairMaster is the tie-breaker during the start-up dual-Supply
	// race; exactly one of the two peers must set this true.
	IsPairMaster bool

	// UseEnthalpy, if true, transports specific enthalpy in the Energy
	// field instead of temperature.
	UseEnthalpy bool

	// DemandOption, if true, omits the Demand Controller's one-step
	// damping resistor.
	DemandOption bool

	// ModingCapacitanceRatio is the hysteresis band for the Supply to
	// Demand flip on capacitance; must be > 1 (default 1.25).
	ModingCapacitanceRatio float64

	// DemandFilterConstA, DemandFilterConstB are the coefficients of the
	// lag-aware damping law A·B^latency (defaults 1.5, 0.75).
	DemandFilterConstA float64
	DemandFilterConstB float64

	// ForceDemandMode, ForceSupplyMode pin the role, disabling
	// arbitration. Both true is a configuration error.
	ForceDemandMode bool
	ForceSupplyMode bool

	// NumFluidOverride, NumTcOverride force the interface width to a
	// negotiated value independent of the local network's species count;
	// zero means use the local network's own counts, or the
	// PeerBulk/PeerTrace common prefix below when those are set.
	NumFluidOverride int
	NumTcOverride    int

	// PeerBulk, PeerTrace are the peer's species lists, when known ahead
	// of construction. When set, the interface width is the negotiated
	// common prefix of spec.md §3's "Interface Sizes" rather than the
	// local network's own count or NumFluidOverride/NumTcOverride.
	PeerBulk  []fluid.Species
	PeerTrace []fluid.Species

	// PascalsPerKpa and MolPerKmol apply the unit split spec.md §9's
	// Open Question calls load-bearing: the wire uses Pa and mol/s; the
	// local solver uses kPa and kmol/s.
	PascalsPerKpa float64
	MolPerKmol    float64

	// BlockageFraction scales the Demand Controller's conductance by
	// (1 - BlockageFraction); zero by default.
	BlockageFraction float64
}

// DefaultConfig returns a ConfigData with the defaults named throughout
// spec.md §6 and §4.3.
func DefaultConfig() ConfigData {
	return ConfigData{
		ModingCapacitanceRatio: 1.25,
		DemandFilterConstA:     1.5,
		DemandFilterConstB:     0.75,
		PascalsPerKpa:          1000,
		MolPerKmol:             1000,
	}
}

// Validate checks the configuration-error conditions of spec.md §7 item 1
// that belong to ConfigData itself (the capacitor-handle and node-mapping
// checks happen in New, where those values are available).
func (c ConfigData) Validate() error {
	if c.ForceDemandMode && c.ForceSupplyMode {
		return &ConfigurationError{Reason: "forceDemandMode and forceSupplyMode both set"}
	}

	if c.ModingCapacitanceRatio <= 1 {
		return &ConfigurationError{Reason: "modingCapacitanceRatio must be > 1"}
	}

	return nil
}

package fluid

// State is a node's (or a payload's) fluid content: pressure, an energy
// term that is either temperature or specific enthalpy depending on the
// owning link's configuration, and bulk/trace mole fractions. Grounded
// on the payload layout of spec.md §3 and §6.
type State struct {
	Config *Config

	Pressure float64 // kPa

	UseEnthalpy      bool
	Temperature      float64 // K, valid when !UseEnthalpy
	SpecificEnthalpy float64 // J/kg, valid when UseEnthalpy

	BulkMoleFractions  []float64
	TraceMoleFractions []float64

	// TotalMoles is the node's total bulk molar content, in kmol,
	// consistent with the solver's molar unit (spec.md §9 Open Question
	// on the Pa/kPa, mol/kmol split).
	TotalMoles float64
}

// NewState allocates a zeroed State sized to cfg's bulk and trace species
// counts.
func NewState(cfg *Config) *State {
	return &State{
		Config:             cfg,
		BulkMoleFractions:  make([]float64, cfg.NumBulk()),
		TraceMoleFractions: make([]float64, cfg.NumTrace()),
	}
}

// Energy returns the state's energy term for whichever representation it
// is configured to carry.
func (s *State) Energy() float64 {
	if s.UseEnthalpy {
		return s.SpecificEnthalpy
	}

	return s.Temperature
}

// SetEnergy sets the state's energy term, interpreting value according to
// s.UseEnthalpy.
func (s *State) SetEnergy(value float64) {
	if s.UseEnthalpy {
		s.SpecificEnthalpy = value
	} else {
		s.Temperature = value
	}
}

// BulkFractionSum returns the sum of the bulk mole fractions, the S term
// of spec.md §4.3's renormalization law.
func (s *State) BulkFractionSum() float64 {
	sum := 0.0
	for _, f := range s.BulkMoleFractions {
		sum += f
	}

	return sum
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	clone := &State{
		Config:           s.Config,
		Pressure:         s.Pressure,
		UseEnthalpy:      s.UseEnthalpy,
		Temperature:      s.Temperature,
		SpecificEnthalpy: s.SpecificEnthalpy,
		TotalMoles:       s.TotalMoles,
	}
	clone.BulkMoleFractions = append([]float64(nil), s.BulkMoleFractions...)
	clone.TraceMoleFractions = append([]float64(nil), s.TraceMoleFractions...)

	return clone
}

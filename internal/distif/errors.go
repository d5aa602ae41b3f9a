package distif

// ConfigurationError is spec.md §7 error kind 1: both force flags set
// simultaneously, modingCapacitanceRatio <= 1, a missing capacitor
// handle, or a link mapped to the ground node. Raised at initialization
// and fatal.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "distif: configuration error: " + e.Reason
}

// InvalidInterfaceData is spec.md §7 error kind 2: incoming bulk mole
// fractions sum to zero while in Demand mode. Raised per tick; fatal to
// the tick, with the caller deciding how to recover.
type InvalidInterfaceData struct {
	Reason string
}

func (e *InvalidInterfaceData) Error() string {
	return "distif: invalid interface data: " + e.Reason
}

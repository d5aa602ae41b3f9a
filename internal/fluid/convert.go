package fluid

// MoleToMassFractions converts bulk mole fractions to mass fractions
// given the config's per-species molecular weights. Entries of cfg.Bulk
// past len(mole) are ignored; the shorter length wins, matching the
// zero-fill-on-mismatch convention of spec.md §3's "Interface Sizes".
func MoleToMassFractions(cfg *Config, mole []float64) []float64 {
	n := len(mole)
	if len(cfg.Bulk) < n {
		n = len(cfg.Bulk)
	}

	mass := make([]float64, len(mole))
	total := 0.0
	for i := 0; i < n; i++ {
		mass[i] = mole[i] * cfg.Bulk[i].MolecularWeight
		total += mass[i]
	}

	if total <= 0 {
		return mass
	}

	for i := 0; i < n; i++ {
		mass[i] /= total
	}

	return mass
}

// MassToMoleFractions converts bulk mass fractions to mole fractions.
func MassToMoleFractions(cfg *Config, mass []float64) []float64 {
	n := len(mass)
	if len(cfg.Bulk) < n {
		n = len(cfg.Bulk)
	}

	mole := make([]float64, len(mass))
	total := 0.0
	for i := 0; i < n; i++ {
		if cfg.Bulk[i].MolecularWeight <= 0 {
			continue
		}

		mole[i] = mass[i] / cfg.Bulk[i].MolecularWeight
		total += mole[i]
	}

	if total <= 0 {
		return mole
	}

	for i := 0; i < n; i++ {
		mole[i] /= total
	}

	return mole
}

// mixtureCp returns the mole-fraction-weighted specific heat of the bulk
// mixture, used by the ideal-gas enthalpy relation below.
func mixtureCp(cfg *Config, moleFractions []float64) float64 {
	n := len(moleFractions)
	if len(cfg.Bulk) < n {
		n = len(cfg.Bulk)
	}

	cp := 0.0
	for i := 0; i < n; i++ {
		cp += moleFractions[i] * cfg.Bulk[i].SpecificHeatCp
	}

	return cp
}

// EnthalpyFromTemperature applies the ideal-gas simplification h = cp·T
// (spec.md §4.6) to decode a specific enthalpy from a temperature and a
// bulk mixture. Real fluid property tables are out of scope per
// spec.md §1.
func EnthalpyFromTemperature(cfg *Config, moleFractions []float64, temperature float64) float64 {
	return mixtureCp(cfg, moleFractions) * temperature
}

// TemperatureFromEnthalpy inverts EnthalpyFromTemperature. It returns 0 if
// the mixture's specific heat is non-positive (undefined mixture).
func TemperatureFromEnthalpy(cfg *Config, moleFractions []float64, enthalpy float64) float64 {
	cp := mixtureCp(cfg, moleFractions)
	if cp <= 0 {
		return 0
	}

	return enthalpy / cp
}

// Renormalize divides every entry of fractions by sum in place. It is a
// no-op if sum is not strictly positive; callers are expected to have
// already rejected that case (spec.md §4.3's InvalidInterfaceData).
func Renormalize(fractions []float64, sum float64) {
	if sum <= 0 {
		return
	}

	for i := range fractions {
		fractions[i] /= sum
	}
}

// Package units provides shared constants and conversion for NO2 column
// density units. Grids are stored in mol/m^2.
package units

// Unit constants
const (
	MolPerM2        = "mol/m2"
	UMolPerM2       = "umol/m2"
	MoleculesPerCM2 = "molec/cm2"
)

// Avogadro's number, molecules per mole.
const avogadro = 6.02214076e23

// ValidUnits contains all valid unit values
var ValidUnits = []string{MolPerM2, UMolPerM2, MoleculesPerCM2}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mol/m2, umol/m2, molec/cm2"
}

// Convert converts a column density from mol/m^2 to the target units.
func Convert(valueMolPerM2 float64, targetUnits string) float64 {
	switch targetUnits {
	case UMolPerM2:
		return valueMolPerM2 * 1e6
	case MoleculesPerCM2:
		// 1 m^2 = 1e4 cm^2
		return valueMolPerM2 * avogadro / 1e4
	case MolPerM2:
		return valueMolPerM2
	default:
		return valueMolPerM2 // default to mol/m^2 if unknown unit
	}
}

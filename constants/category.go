package constants

import (
	"strings"
)

// PropertyType is the canonical taxonomy for listing types.
type PropertyType string

const (
	Apartment  PropertyType = "Apartment"
	House      PropertyType = "House"
	Penthouse  PropertyType = "Penthouse"
	Studio     PropertyType = "Studio"
	Land       PropertyType = "Land"
	Commercial PropertyType = "Commercial"
	Farm       PropertyType = "Farm"
	OtherType  PropertyType = "Other"
)

var allPropertyTypes = []PropertyType{
	Apartment,
	House,
	Penthouse,
	Studio,
	Land,
	Commercial,
	Farm,
	OtherType,
}

func PropertyTypesAsStrings() []string {
	result := make([]string, len(allPropertyTypes))
	for i, t := range allPropertyTypes {
		result[i] = string(t)
	}
	return result
}

// CanonicalizePropertyType maps free-form model output onto the taxonomy.
// Returns (OtherType, false) when no match is found.
func CanonicalizePropertyType(input string) (PropertyType, bool) {
	if input == "" {
		return OtherType, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map, including the Portuguese labels portals commonly use
	synonyms := map[string]PropertyType{
		"apartamento": Apartment,
		"flat":        Apartment,
		"apto":        Apartment,
		"casa":        House,
		"sobrado":     House,
		"cobertura":   Penthouse,
		"kitnet":      Studio,
		"loft":        Studio,
		"terreno":     Land,
		"lote":        Land,
		"sala":        Commercial,
		"loja":        Commercial,
		"galpao":      Commercial,
		"sitio":       Farm,
		"chacara":     Farm,
		"fazenda":     Farm,
	}

	if t, ok := synonyms[normalized]; ok {
		return t, true
	}

	for _, t := range allPropertyTypes {
		if normalized == strings.ToLower(string(t)) {
			return t, true
		}
	}

	return OtherType, false
}

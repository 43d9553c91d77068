package domain

const (
	// GRAMS_PER_KILOGRAM converts certificate quantities (kg) to the on-chain mass unit (g)
	GRAMS_PER_KILOGRAM = 1000

	// SPECIES_VICUNA is the only species recorded on origin certificates
	SPECIES_VICUNA = "Vicugna vicugna"

	// UNIT_KILOGRAM is the fixed unit of origin certificate quantities
	UNIT_KILOGRAM = "kg"
)

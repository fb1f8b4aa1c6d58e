// Package synthetic generates market listing corpora that approximate
// observed Hong Kong used-car market pricing. All randomness flows
// through an injected *rand.Rand so corpora are reproducible in tests.
package synthetic

// makes is the full brand pool for general corpus generation.
var makes = []string{
	"Toyota", "Honda", "BMW", "Mercedes-Benz", "Audi", "Nissan", "Hyundai", "Kia",
	"Mazda", "Lexus", "Volkswagen", "Ford", "Chevrolet", "Subaru", "Mitsubishi",
	"Infiniti", "Acura", "Volvo", "Jaguar", "Land Rover", "Porsche", "Tesla",
	"MINI", "Suzuki", "Peugeot", "Renault", "Citroën", "Fiat", "Alfa Romeo",
}

// modelsByMake lists common models per brand. Brands absent from the map
// draw from genericBodies.
var modelsByMake = map[string][]string{
	"Toyota":        {"Camry", "Corolla", "RAV4", "Highlander", "Prius", "Vios", "Wish", "Alphard"},
	"Honda":         {"Civic", "Accord", "CR-V", "HR-V", "Fit", "Vezel", "Freed", "Odyssey"},
	"BMW":           {"X3", "X5", "3 Series", "5 Series", "1 Series", "X1", "X6", "7 Series"},
	"Mercedes-Benz": {"C200", "C300", "E200", "E300", "GLC", "GLE", "A200", "S500"},
	"Audi":          {"A4", "A6", "Q3", "Q5", "A3", "Q7", "A8", "TT"},
	"Nissan":        {"Altima", "X-Trail", "Qashqai", "Sentra", "Murano", "Juke", "Note"},
	"Hyundai":       {"Elantra", "Tucson", "Santa Fe", "i30", "Sonata", "Accent", "Kona"},
	"Kia":           {"Optima", "Sorento", "Sportage", "Rio", "Forte", "Soul", "Stinger"},
	"Mazda":         {"CX-5", "CX-3", "Mazda3", "Mazda6", "CX-9", "MX-5", "CX-30"},
	"Lexus":         {"IS", "ES", "RX", "NX", "GS", "LS", "UX", "LX"},
	"Tesla":         {"Model 3", "Model S", "Model X", "Model Y"},
	"Volkswagen":    {"Golf", "Passat", "Tiguan", "Polo", "Jetta", "Touareg"},
}

var genericBodies = []string{"Sedan", "SUV", "Hatchback", "Coupe", "Wagon"}

var colors = []string{
	"black", "white", "silver", "grey", "red", "blue", "green", "yellow",
	"orange", "purple", "brown", "gold", "bronze", "maroon", "navy",
	"beige", "cream", "charcoal", "pearl", "metallic",
}

// commonColors is the reduced palette used for biased near-clone listings.
var commonColors = []string{"black", "white", "silver", "grey", "red", "blue", "pearl", "metallic"}

// siblingModelsByMake drives same-make/different-model biased generation.
var siblingModelsByMake = map[string][]string{
	"Mercedes-Benz": {"C200", "C300", "E200", "E300", "GLC200", "GLC300", "A200", "CLA200", "CLA250"},
	"BMW":           {"320i", "328i", "520i", "X3", "X5", "118i", "318i"},
	"Audi":          {"A3", "A4", "A6", "Q3", "Q5", "Q7"},
	"Toyota":        {"Camry", "Corolla", "RAV4", "Prius", "Vios", "Wish"},
	"Honda":         {"Civic", "Accord", "CR-V", "Fit", "HR-V"},
}

// priceBand is an inclusive range of base (pre-depreciation) prices.
type priceBand struct {
	lo, hi int
}

// basePriceBand returns the new-car price band for a make/model pair,
// tiered by model within the major brands.
func basePriceBand(make, model string) priceBand {
	switch make {
	case "Mercedes-Benz":
		switch model {
		case "C200", "C300", "CLA200", "CLA250":
			return priceBand{120000, 250000}
		case "E200", "E300", "GLC":
			return priceBand{200000, 400000}
		case "S500", "GLE":
			return priceBand{300000, 600000}
		default:
			return priceBand{150000, 350000}
		}
	case "BMW":
		switch model {
		case "1 Series", "X1", "3 Series":
			return priceBand{150000, 300000}
		case "5 Series", "X3", "X5":
			return priceBand{250000, 500000}
		case "7 Series", "X6":
			return priceBand{400000, 800000}
		default:
			return priceBand{180000, 400000}
		}
	case "Audi":
		switch model {
		case "A3", "Q3":
			return priceBand{140000, 280000}
		case "A4", "A6", "Q5":
			return priceBand{200000, 400000}
		case "A8", "Q7":
			return priceBand{350000, 700000}
		default:
			return priceBand{170000, 350000}
		}
	case "Lexus":
		switch model {
		case "IS", "UX", "NX":
			return priceBand{160000, 320000}
		case "ES", "RX":
			return priceBand{220000, 450000}
		case "LS", "LX":
			return priceBand{400000, 800000}
		default:
			return priceBand{180000, 400000}
		}
	case "Tesla":
		switch model {
		case "Model 3":
			return priceBand{250000, 400000}
		case "Model S", "Model X":
			return priceBand{500000, 900000}
		case "Model Y":
			return priceBand{300000, 500000}
		default:
			return priceBand{300000, 600000}
		}
	case "Porsche":
		return priceBand{400000, 1200000}
	case "Toyota", "Honda":
		switch model {
		case "Camry", "Accord":
			return priceBand{80000, 180000}
		case "Corolla", "Civic", "Fit":
			return priceBand{60000, 140000}
		case "RAV4", "CR-V", "HR-V":
			return priceBand{100000, 220000}
		case "Prius":
			return priceBand{90000, 190000}
		case "Alphard", "Odyssey":
			return priceBand{200000, 400000}
		default:
			return priceBand{70000, 180000}
		}
	case "Nissan", "Mazda", "Hyundai", "Kia":
		switch model {
		case "X-Trail", "CX-5", "Tucson", "Sportage":
			return priceBand{90000, 200000}
		case "Altima", "Mazda6", "Sonata", "Optima":
			return priceBand{70000, 160000}
		default:
			return priceBand{60000, 150000}
		}
	case "Volkswagen", "Subaru", "Mitsubishi":
		return priceBand{70000, 200000}
	default:
		return priceBand{80000, 250000}
	}
}

// realisticNewPrice returns the estimated new-car price used for biased
// comparable generation. Coarser than basePriceBand: one point value per
// model tier.
func realisticNewPrice(make, model string) float64 {
	switch make {
	case "Mercedes-Benz":
		switch model {
		case "CLA200", "CLA250":
			return 450000
		case "C200", "C300":
			return 550000
		case "E200", "E300":
			return 700000
		case "GLC200", "GLC300":
			return 650000
		default:
			return 500000
		}
	case "BMW":
		switch model {
		case "118i", "318i":
			return 400000
		case "320i", "328i":
			return 500000
		case "520i":
			return 650000
		case "X3":
			return 600000
		case "X5":
			return 800000
		default:
			return 500000
		}
	case "Audi":
		switch model {
		case "A3":
			return 380000
		case "A4", "A6":
			return 550000
		case "Q3", "Q5":
			return 500000
		default:
			return 450000
		}
	case "Toyota":
		switch model {
		case "Corolla", "Vios":
			return 180000
		case "Camry":
			return 280000
		case "RAV4":
			return 320000
		case "Prius":
			return 250000
		default:
			return 220000
		}
	case "Honda":
		switch model {
		case "Fit":
			return 160000
		case "Civic":
			return 200000
		case "Accord":
			return 280000
		case "CR-V", "HR-V":
			return 300000
		default:
			return 220000
		}
	default:
		return 300000
	}
}

// realisticBasePrice depreciates the realistic new price at 12% per year,
// capped at 80%, flooring at 15% of the new price.
func realisticBasePrice(make, model string, age int) float64 {
	newPrice := realisticNewPrice(make, model)
	if age < 0 {
		age = 0
	}
	depreciation := 0.12 * float64(age)
	if depreciation > 0.80 {
		depreciation = 0.80
	}
	price := newPrice * (1 - depreciation)
	if floor := newPrice * 0.15; price < floor {
		price = floor
	}
	return price
}

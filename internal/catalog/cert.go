package catalog

import "strings"

// ratingAges maps certification board ratings to a minimum viewer age.
// Only the countries the kids policy understands are listed; certifications
// from other boards are ignored rather than guessed.
var ratingAges = map[string]map[string]int{
	"ES": {
		"APTA": 0, "TP": 0, "A": 0,
		"7": 7, "7I": 7, "10": 10, "12": 12, "13": 13,
		"16": 16, "18": 18, "X": 18,
	},
	"US": {
		"G": 0, "PG": 7, "PG-13": 13, "R": 16, "NC-17": 18,
		"TV-Y": 0, "TV-Y7": 7, "TV-G": 0, "TV-PG": 7, "TV-14": 14, "TV-MA": 18,
	},
	"GB": {
		"U": 0, "PG": 7, "12": 12, "12A": 12, "15": 15, "18": 18, "R18": 18,
	},
}

// certCountryOrder is the preference order when several boards rated the
// same title.
var certCountryOrder = []string{"ES", "US", "GB"}

// ageForRating resolves a country/rating pair to a minimum age.
func ageForRating(country, rating string) (int, bool) {
	ratings, ok := ratingAges[strings.ToUpper(strings.TrimSpace(country))]
	if !ok {
		return 0, false
	}
	age, ok := ratings[strings.ToUpper(strings.TrimSpace(rating))]
	return age, ok
}

// resolveCertAge picks the best age from a country→rating map, following
// the configured country preference order.
func resolveCertAge(byCountry map[string]string) (int, bool) {
	for _, country := range certCountryOrder {
		rating, ok := byCountry[country]
		if !ok {
			continue
		}
		if age, ok := ageForRating(country, rating); ok {
			return age, true
		}
	}
	return 0, false
}

// Package language translates between ISO 639 codes and the native language
// names Titlovi.com uses in its API.
package language

import "strings"

// toProvider accepts both ISO 639-1 and ISO 639-2 codes
var toProvider = map[string]string{
	"hr":  "Hrvatski",
	"hrv": "Hrvatski",
	"bs":  "Bosanski",
	"bos": "Bosanski",
	"en":  "English",
	"eng": "English",
	"mk":  "Makedonski",
	"mkd": "Makedonski",
	"sr":  "Srpski",
	"srp": "Srpski",
	"sl":  "Slovenski",
	"slv": "Slovenski",
	"cyr": "Cirilica",
	"cir": "Cirilica",
}

// fromProvider returns ISO 639-2 codes. Cirilica is Serbian written in
// Cyrillic script and collapses onto srp, so this is not the inverse of toProvider.
var fromProvider = map[string]string{
	"hrvatski":   "hrv",
	"bosanski":   "bos",
	"english":    "eng",
	"makedonski": "mkd",
	"srpski":     "srp",
	"slovenski":  "slv",
	"cirilica":   "srp",
}

// ToProvider converts an ISO language code to the catalog's language name.
// Unknown or blank codes yield "".
func ToProvider(code string) string {
	return toProvider[normalize(code)]
}

// FromProvider converts a catalog language name to an ISO 639-2 code.
// Unknown or blank names yield "".
func FromProvider(name string) string {
	return fromProvider[normalize(name)]
}

// Supported reports whether the catalog carries subtitles for the ISO code.
func Supported(code string) bool {
	return ToProvider(code) != ""
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

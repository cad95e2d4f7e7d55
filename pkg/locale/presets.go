package locale

import "strings"

// EnUS matches what browsers print for en-US: 1,234.5 and 3/14/2025.
func EnUS() *Format {
	return New()
}

// EnGB returns the British English format.
func EnGB() *Format {
	return New(
		WithTag("en-GB"),
		WithDateLayout("02/01/2006"),
	)
}

// DeDE returns the German format.
func DeDE() *Format {
	return New(
		WithTag("de-DE"),
		WithDecimalSeparator(","),
		WithThousandSeparator("."),
		WithDateLayout("2.1.2006"),
	)
}

// FrFR returns the French format.
func FrFR() *Format {
	return New(
		WithTag("fr-FR"),
		WithDecimalSeparator(","),
		WithThousandSeparator(" "),
		WithDateLayout("02/01/2006"),
	)
}

var presets = map[string]func() *Format{
	"en-us": EnUS,
	"en":    EnUS,
	"en-gb": EnGB,
	"de-de": DeDE,
	"de":    DeDE,
	"fr-fr": FrFR,
	"fr":    FrFR,
}

// ForTag returns the preset for a locale tag such as "en-GB" or "de_DE".
// Unknown tags fall back to en-US.
func ForTag(tag string) *Format {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
	if fn, ok := presets[key]; ok {
		return fn()
	}
	if base, _, found := strings.Cut(key, "-"); found {
		if fn, ok := presets[base]; ok {
			return fn()
		}
	}
	return EnUS()
}

package store

import (
	"fmt"
	"strings"
)

// Locale is a supported content language. The set is closed: definitions
// are stored in one column per locale, so an unsupported locale can be
// rejected at parse time instead of failing on a missing field later.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleSpanish Locale = "es"
	LocaleFrench  Locale = "fr"
	LocaleChinese Locale = "zh"
)

// Locales returns all supported locales.
func Locales() []Locale {
	return []Locale{LocaleEnglish, LocaleSpanish, LocaleFrench, LocaleChinese}
}

// ParseLocale validates a language token from a request.
func ParseLocale(s string) (Locale, error) {
	switch Locale(strings.ToLower(s)) {
	case LocaleEnglish:
		return LocaleEnglish, nil
	case LocaleSpanish:
		return LocaleSpanish, nil
	case LocaleFrench:
		return LocaleFrench, nil
	case LocaleChinese:
		return LocaleChinese, nil
	default:
		return "", fmt.Errorf("store: unsupported locale %q", s)
	}
}

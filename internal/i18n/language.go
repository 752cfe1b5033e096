package i18n

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLanguage is returned when a language code is not supported.
var ErrUnknownLanguage = errors.New("i18n: unknown language")

// Language is a supported dashboard language code.
type Language string

// Supported languages.
const (
	English Language = "en"
	Hindi   Language = "hi"
	Odia    Language = "od"
)

// DefaultLanguage is used when no language is requested.
const DefaultLanguage = English

// AllLanguages returns the supported languages in selector order.
func AllLanguages() []Language {
	return []Language{English, Hindi, Odia}
}

// ParseLanguage parses a language code, ignoring case and surrounding space.
// An empty string yields DefaultLanguage.
func ParseLanguage(s string) (Language, error) {
	code := Language(strings.ToLower(strings.TrimSpace(s)))
	if code == "" {
		return DefaultLanguage, nil
	}
	if !code.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
	return code, nil
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	switch l {
	case English, Hindi, Odia:
		return true
	}
	return false
}

// Name returns the language's name written in that language.
func (l Language) Name() string {
	switch l {
	case English:
		return "English"
	case Hindi:
		return "हिन्दी"
	case Odia:
		return "ଓଡ଼ିଆ"
	}
	return string(l)
}

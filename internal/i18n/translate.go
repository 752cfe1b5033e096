// Package i18n provides the static translation table for the Gram Jyoti
// dashboard vocabulary in English, Hindi and Odia.
//
// Lookups never fail: a key without a translation for the requested
// language is returned unchanged.
package i18n

import "sort"

// T returns the translation of key in lang, or key itself when the key
// is unknown or has no text for that language.
func T(lang Language, key string) string {
	e, ok := translations[key]
	if !ok {
		return key
	}
	if text := e.text(lang); text != "" {
		return text
	}
	return key
}

// Lookup returns a translation function bound to lang.
func Lookup(lang Language) func(string) string {
	return func(key string) string {
		return T(lang, key)
	}
}

// Table returns every key translated into lang. The map is a fresh copy.
func Table(lang Language) map[string]string {
	out := make(map[string]string, len(translations))
	for key := range translations {
		out[key] = T(lang, key)
	}
	return out
}

// Keys returns all known translation keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(translations))
	for key := range translations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is in the vocabulary.
func Has(key string) bool {
	_, ok := translations[key]
	return ok
}

package resolver

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"codeberg.org/eventnotify/server/internal/i18n"
)

// holds one resolver per loaded locale, built once at startup
type Registry struct {
	resolvers     map[string]*Resolver
	defaultLocale string
	locales       []string
}

// builds resolvers for every locale in catalog. a non-empty rulesDoc (YAML, see LoadRules)
// replaces the built-in rule table.
func NewRegistry(catalog *i18n.Catalog, defaultLocale string, rulesDoc []byte) (*Registry, error) {
	if catalog == nil {
		catalog = i18n.NewCatalog()
	}

	defaultLocale = i18n.Normalize(defaultLocale)
	if defaultLocale == "" {
		defaultLocale = "en"
	}

	locales := catalog.Locales()
	if !slices.Contains(locales, defaultLocale) {
		locales = append(locales, defaultLocale)
	}

	registry := &Registry{
		resolvers:     make(map[string]*Resolver, len(locales)),
		defaultLocale: defaultLocale,
		locales:       catalog.Locales(),
	}

	for _, locale := range locales {
		t := catalog.Translator(locale)

		if len(bytes.TrimSpace(rulesDoc)) == 0 {
			registry.resolvers[locale] = NewDefault(t)
			continue
		}

		rules, err := LoadRules(bytes.NewReader(rulesDoc), t)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules for locale %s: %w", locale, err)
		}

		registry.resolvers[locale] = NewWithRules(rules, t)
	}

	return registry, nil
}

// returns the resolver for locale, trying the language without region next, along
// with the locale it was registered under. an empty locale selects the default.
func (r *Registry) For(locale string) (*Resolver, string, bool) {
	locale = i18n.Normalize(locale)
	if locale == "" {
		return r.Default(), r.defaultLocale, true
	}

	if res, ok := r.resolvers[locale]; ok {
		return res, locale, true
	}

	if lang, _, found := strings.Cut(locale, "_"); found {
		if res, ok := r.resolvers[lang]; ok {
			return res, lang, true
		}
	}

	return nil, "", false
}

func (r *Registry) Default() *Resolver {
	return r.resolvers[r.defaultLocale]
}

func (r *Registry) DefaultLocale() string {
	return r.defaultLocale
}

// returns the locales with translations, sorted
func (r *Registry) Locales() []string {
	out := make([]string, len(r.locales))
	copy(out, r.locales)
	return out
}

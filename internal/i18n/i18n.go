package i18n

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// resolves a message key to localized text
type Translator func(key string) string

// returns the key unchanged; the keys are the English source strings
func Identity(key string) string {
	return key
}

//go:embed locales/*.yaml
var embedded embed.FS

// holds translations per locale, keyed by English source string
type Catalog struct {
	locales map[string]map[string]string
}

// returns a catalog with no translations; every lookup falls back to the key
func NewCatalog() *Catalog {
	return &Catalog{locales: make(map[string]map[string]string)}
}

// loads the locale files shipped with the binary
func LoadEmbedded() (*Catalog, error) {
	return LoadFS(embedded, "locales")
}

// loads every <locale>.yaml file found in dir
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read locales directory: %w", err)
	}

	catalog := NewCatalog()

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}

		f, err := fsys.Open(path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", entry.Name(), err)
		}

		locale := strings.TrimSuffix(entry.Name(), ".yaml")
		err = catalog.Add(locale, f)
		f.Close() //nolint:errcheck,gosec // read-only file

		if err != nil {
			return nil, err
		}
	}

	return catalog, nil
}

// parses a flat YAML mapping of source string to translation and merges it into locale
func (c *Catalog) Add(locale string, r io.Reader) error {
	var messages map[string]string

	if err := yaml.NewDecoder(r).Decode(&messages); err != nil && err != io.EOF {
		return fmt.Errorf("failed to parse locale %q: %w", locale, err)
	}

	locale = Normalize(locale)

	if c.locales[locale] == nil {
		c.locales[locale] = make(map[string]string, len(messages))
	}

	for key, value := range messages {
		if value == "" {
			continue
		}

		c.locales[locale][key] = value
	}

	return nil
}

// returns the loaded locale tags, sorted
func (c *Catalog) Locales() []string {
	locales := make([]string, 0, len(c.locales))

	for locale := range c.locales {
		locales = append(locales, locale)
	}

	sort.Strings(locales)
	return locales
}

// returns a translator for locale. missing locales and missing keys fall back to the key.
func (c *Catalog) Translator(locale string) Translator {
	messages := c.lookupLocale(locale)
	if messages == nil {
		return Identity
	}

	return func(key string) string {
		if value, ok := messages[key]; ok {
			return value
		}

		return key
	}
}

func (c *Catalog) lookupLocale(locale string) map[string]string {
	locale = Normalize(locale)
	if locale == "" {
		return nil
	}

	if messages, ok := c.locales[locale]; ok {
		return messages
	}

	// fr_CA -> fr
	if lang, _, found := strings.Cut(locale, "_"); found {
		return c.locales[lang]
	}

	return nil
}

// canonicalizes a locale tag: "fr-fr", "FR_fr" and "fr_FR" all become "fr_FR"
func Normalize(locale string) string {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "-", "_"))

	lang, region, found := strings.Cut(locale, "_")
	if !found {
		return strings.ToLower(lang)
	}

	return strings.ToLower(lang) + "_" + strings.ToUpper(region)
}

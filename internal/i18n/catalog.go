// Package i18n translates export column labels.
//
// A Catalog holds label translations per language and picks the best
// language for an Accept-Language header using golang.org/x/text/language.
package i18n

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/JonMunkholm/formlog/internal/export"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultLanguage is the fallback when no configured language matches.
const DefaultLanguage = "en"

//go:embed labels.yaml
var builtinLabels []byte

// Catalog maps language -> label key -> translation.
type Catalog struct {
	fallback  string
	languages []string // aligned with the matcher's tag list
	messages  map[string]map[string]string
	matcher   language.Matcher
}

// NewCatalog builds a catalog from messages. fallback is used when a request
// matches no language and when a key is missing in the matched language.
func NewCatalog(fallback string, messages map[string]map[string]string) (*Catalog, error) {
	if fallback == "" {
		fallback = DefaultLanguage
	}

	c := &Catalog{
		fallback: fallback,
		messages: make(map[string]map[string]string, len(messages)+1),
	}

	langs := make([]string, 0, len(messages))
	for lang, labels := range messages {
		c.messages[lang] = labels
		if lang != fallback {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	c.languages = append([]string{fallback}, langs...)

	tags := make([]language.Tag, len(c.languages))
	for i, lang := range c.languages {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("label language %q: %w", lang, err)
		}
		tags[i] = tag
	}
	c.matcher = language.NewMatcher(tags)

	return c, nil
}

// Default returns the catalog of built-in entry labels.
func Default() *Catalog {
	c, err := Parse(nil, DefaultLanguage)
	if err != nil {
		panic(fmt.Sprintf("built-in labels: %v", err))
	}
	return c
}

// Parse decodes YAML labels and merges them over the built-in labels.
func Parse(data []byte, fallback string) (*Catalog, error) {
	messages := make(map[string]map[string]string)
	if err := merge(messages, builtinLabels); err != nil {
		return nil, err
	}
	if err := merge(messages, data); err != nil {
		return nil, err
	}
	return NewCatalog(fallback, messages)
}

// Load reads a YAML label file. An empty path yields the built-in labels.
func Load(path, fallback string) (*Catalog, error) {
	if path == "" {
		return Parse(nil, fallback)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return Parse(data, fallback)
}

func merge(dst map[string]map[string]string, data []byte) error {
	var doc map[string]map[string]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse labels: %w", err)
	}
	for lang, labels := range doc {
		if dst[lang] == nil {
			dst[lang] = make(map[string]string, len(labels))
		}
		for key, label := range labels {
			dst[lang][key] = label
		}
	}
	return nil
}

// Languages returns the catalog languages, fallback first.
func (c *Catalog) Languages() []string {
	return append([]string(nil), c.languages...)
}

// Match returns the catalog language that best serves an Accept-Language
// header or a single language tag. Unparsable or unmatched input yields the
// fallback language.
func (c *Catalog) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.fallback
	}

	_, index, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return c.fallback
	}
	return c.languages[index]
}

// Translate returns the label for key in lang, falling back to the fallback
// language.
func (c *Catalog) Translate(lang, key string) (string, bool) {
	if label, ok := c.messages[lang][key]; ok && label != "" {
		return label, true
	}
	if label, ok := c.messages[c.fallback][key]; ok && label != "" {
		return label, true
	}
	return "", false
}

// Translator returns an export.Translator for the best match of lang.
func (c *Catalog) Translator(lang string) export.Translator {
	resolved := c.Match(lang)
	return export.TranslatorFunc(func(key string) (string, bool) {
		return c.Translate(resolved, key)
	})
}

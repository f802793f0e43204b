// Package i18n renders the onboarding conversation in the user's language.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"onboarder/internal/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// Separator joins the German and English texts for users without a language
const Separator = "\n\n"

var tags = map[domain.Language]language.Tag{
	domain.LanguageGerman:  language.German,
	domain.LanguageEnglish: language.English,
}

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// Catalog holds the conversation texts of all supported languages
type Catalog struct {
	messages map[domain.Language]map[string]string
	printers map[domain.Language]*message.Printer
}

// LoadEmbedded loads the catalogs compiled into the binary
func LoadEmbedded() (*Catalog, error) {
	return LoadFromFS(embeddedLocales)
}

// LoadFromFS loads locales/*.yaml from fsys. Every supported language needs a file.
func LoadFromFS(fsys fs.FS) (*Catalog, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	sort.Strings(paths)

	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	c := &Catalog{
		messages: make(map[domain.Language]map[string]string),
		printers: make(map[domain.Language]*message.Printer),
	}

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}

		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}

		lang := domain.Language(strings.TrimSpace(file.Locale))
		tag, ok := tags[lang]
		if !ok {
			return nil, fmt.Errorf("catalog %s: unsupported locale %q", path, file.Locale)
		}
		if _, exists := c.messages[lang]; exists {
			return nil, fmt.Errorf("catalog %s: locale %q already defined", path, lang)
		}

		c.messages[lang] = make(map[string]string, len(file.Messages))
		for key, text := range file.Messages {
			if err := builder.SetString(tag, key, text); err != nil {
				return nil, fmt.Errorf("catalog %s: key %q: %w", path, key, err)
			}
			c.messages[lang][key] = text
		}
	}

	for lang, tag := range tags {
		if _, ok := c.messages[lang]; !ok {
			return nil, fmt.Errorf("no catalog for locale %q", lang)
		}
		c.printers[lang] = message.NewPrinter(tag, message.Catalog(builder))
	}

	return c, nil
}

// Validate reports keys missing in any language
func (c *Catalog) Validate(keys ...string) error {
	var missing []string
	for _, lang := range []domain.Language{domain.LanguageGerman, domain.LanguageEnglish} {
		for _, key := range keys {
			if _, ok := c.messages[lang][key]; !ok {
				missing = append(missing, fmt.Sprintf("%s:%s", lang, key))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing texts: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Text renders key in lang. Users without a language get German and English.
func (c *Catalog) Text(lang domain.Language, key string, args ...any) string {
	if p, ok := c.printers[lang]; ok {
		return p.Sprintf(key, args...)
	}
	return c.printers[domain.LanguageGerman].Sprintf(key, args...) +
		Separator +
		c.printers[domain.LanguageEnglish].Sprintf(key, args...)
}

// Package i18n carries the bilingual (English/Arabic) message catalogs for
// user-facing notifications.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator resolves message keys against one language catalog.
type Translator struct {
	lang         string
	rtl          bool
	translations map[string]string
}

// NewTranslator loads locales/<langCode>.yaml from the given filesystem.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}

	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}

	return &Translator{
		lang:         langCode,
		rtl:          langCode == "ar",
		translations: translations,
	}, nil
}

// T translates a key, falling back to the key itself when unmapped.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

func (t *Translator) Lang() string { return t.lang }

// RTL reports whether the catalog's language renders right-to-left.
func (t *Translator) RTL() bool { return t.rtl }

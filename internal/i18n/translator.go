// Package i18n serves the user-facing strings of the client in Portuguese,
// English and Spanish.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var locales embed.FS

// DefaultLanguage is used when a requested language is not supported.
const DefaultLanguage = "pt"

var supported = []language.Tag{
	language.Portuguese, // first entry is the matcher's fallback
	language.English,
	language.Spanish,
}

var matcher = language.NewMatcher(supported)

// Translator looks up message keys in one language catalog.
type Translator struct {
	lang     string
	messages map[string]string
}

// New returns a Translator for the closest supported match to lang
// ("pt-BR" -> pt, "en_US" -> en, anything unknown -> pt).
func New(lang string) (*Translator, error) {
	code := Match(lang)

	b, err := locales.ReadFile(path.Join("locales", code+".json"))
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", code, err)
	}

	var messages map[string]string
	if err := json.Unmarshal(b, &messages); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", code, err)
	}

	return &Translator{lang: code, messages: messages}, nil
}

// MustNew is New for the embedded catalogs, which always parse.
func MustNew(lang string) *Translator {
	t, err := New(lang)
	if err != nil {
		panic(err)
	}
	return t
}

// Match maps a user-supplied language tag to a supported base code.
func Match(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// Language returns the base code of the loaded catalog.
func (t *Translator) Language() string {
	return t.lang
}

// T returns the message for key, or key itself when it has no entry.
func (t *Translator) T(key string) string {
	if msg, ok := t.messages[key]; ok {
		return msg
	}
	return key
}

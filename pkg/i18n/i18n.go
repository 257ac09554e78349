package i18n

import (
	"embed"
	"encoding/json"
	"sync"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	mu          sync.RWMutex
	bundle      *goi18n.Bundle
	defaultLang = language.Russian
)

// Init resets the bundle with the given default language and loads the
// embedded locales.
func Init(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Russian
	}

	b := goi18n.NewBundle(tag)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, name := range []string{"locales/active.ru.json", "locales/active.en.json"} {
		if _, err := b.LoadMessageFileFS(localeFS, name); err != nil {
			return err
		}
	}

	mu.Lock()
	bundle = b
	defaultLang = tag
	mu.Unlock()
	return nil
}

// Load adds an extra message file from disk, e.g. an operator override.
func Load(path string) error {
	mu.Lock()
	defer mu.Unlock()
	if bundle == nil {
		bundle = goi18n.NewBundle(defaultLang)
		bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	}
	_, err := bundle.LoadMessageFile(path)
	return err
}

// T localizes messageID for the Accept-Language style list langs. Unknown
// ids fall back to the id itself.
func T(messageID string, data map[string]interface{}, langs ...string) string {
	mu.RLock()
	b := bundle
	def := defaultLang
	mu.RUnlock()
	if b == nil {
		return messageID
	}

	localizer := goi18n.NewLocalizer(b, append(langs, def.String())...)
	msg, err := localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}

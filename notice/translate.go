package notice

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	LanguageEn = "en"
	LanguageFr = "fr"
)

//go:embed translation/*.toml
var translations embed.FS

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
)

func init() {
	if err := InitTranslator(LanguageEn); err != nil {
		panic(err)
	}
}

// InitTranslator loads the embedded translation files and makes lang the
// language notices are rendered in. English is the fallback.
func InitTranslator(lang string) error {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(translations, "translation/*.toml")
	if err != nil {
		return fmt.Errorf("failed to list translation files: %w", err)
	}
	for _, f := range files {
		if _, err := b.LoadMessageFileFS(translations, f); err != nil {
			return fmt.Errorf("failed to load translation file %s: %w", f, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	bundle = b
	localizer = i18n.NewLocalizer(b, lang, LanguageEn)
	return nil
}

// Translate renders msgID in the configured language. An id without a
// translation is returned as is.
func Translate(msgID string, data map[string]any) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
	if err != nil {
		zap.L().Warn("translation not found", zap.String("message_id", msgID), zap.Error(err))
		return msgID
	}
	return msg
}

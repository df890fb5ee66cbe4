package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// I18n manages translations loaded from toml message files
type I18n struct {
	bundle      *i18n.Bundle
	defaultLang language.Tag
}

// NewI18n creates a new I18n instance with the specified default language
func NewI18n(defaultLang language.Tag) *I18n {
	bundle := i18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	return &I18n{
		bundle:      bundle,
		defaultLang: defaultLang,
	}
}

// New builds a translator for the configured default language and loads dir.
// A missing directory is not an error: messages fall back to their defaults.
func New(defaultLang, dir string) (*I18n, error) {
	tag, err := language.Parse(defaultLang)
	if err != nil {
		tag = language.English
	}
	t := NewI18n(tag)
	if dir == "" {
		return t, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return t, nil
	}
	if err := t.LoadTranslations(dir); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTranslations loads every *.toml file in dir
func (i *I18n) LoadTranslations(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read translations directory: %w", err)
	}
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}
		if _, err := i.bundle.LoadMessageFile(filepath.Join(dir, file.Name())); err != nil {
			return fmt.Errorf("failed to load %s: %w", file.Name(), err)
		}
	}
	return nil
}

// AddMessages registers messages for lang in code, mostly for tests
func (i *I18n) AddMessages(lang language.Tag, messages map[string]string) error {
	msgs := make([]*i18n.Message, 0, len(messages))
	for id, other := range messages {
		msgs = append(msgs, &i18n.Message{ID: id, Other: other})
	}
	return i.bundle.AddMessages(lang, msgs...)
}

// Translate returns the localized message, or msgID when there is none
func (i *I18n) Translate(msgID string, lang string, templateData map[string]any) string {
	localizer := i18n.NewLocalizer(i.bundle, lang, i.defaultLang.String())
	lc := &i18n.LocalizeConfig{MessageID: msgID}
	if len(templateData) > 0 {
		lc.TemplateData = templateData
	}
	msg, err := localizer.Localize(lc)
	if err != nil {
		return msgID
	}
	return msg
}

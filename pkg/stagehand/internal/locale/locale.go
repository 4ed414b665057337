// Package locale holds the localized strings stagehand draws itself, such as
// the loading overlay caption.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Message IDs shipped with the package.
const (
	Loading     = "loading"
	LoadingView = "loading_view"
)

//go:embed messages/*.toml
var builtin embed.FS

// Catalog resolves message IDs for a locale. Unknown locales fall back to
// English and unknown IDs come back unchanged.
type Catalog struct {
	bundle *i18n.Bundle

	mu         sync.Mutex
	localizers map[string]*i18n.Localizer
}

// New creates a Catalog with the built-in messages loaded.
func New() (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	c := &Catalog{
		bundle:     bundle,
		localizers: make(map[string]*i18n.Localizer),
	}
	if err := c.AddMessages(builtin, "messages"); err != nil {
		return nil, err
	}
	return c, nil
}

// AddMessages loads every *.toml message file in dir. File names carry the
// language tag: "active.de.toml". Later files override earlier messages.
func (c *Catalog) AddMessages(fsys fs.FS, dir string) error {
	files, err := fs.Glob(fsys, path.Join(dir, "*.toml"))
	if err != nil {
		return fmt.Errorf("locale: list %s: %w", dir, err)
	}
	for _, file := range files {
		if _, err := c.bundle.LoadMessageFileFS(fsys, file); err != nil {
			return fmt.Errorf("locale: load %s: %w", file, err)
		}
	}

	c.mu.Lock()
	clear(c.localizers)
	c.mu.Unlock()
	return nil
}

// Languages returns the tags with at least one message, as strings.
func (c *Catalog) Languages() []string {
	tags := c.bundle.LanguageTags()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.String())
	}
	return out
}

// Text returns message id in locale, with data filling the template fields.
func (c *Catalog) Text(locale, id string, data map[string]any) string {
	msg, err := c.localizer(locale).Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}

func (c *Catalog) localizer(locale string) *i18n.Localizer {
	tag, err := language.Parse(locale)
	key := tag.String()
	if err != nil {
		key = language.English.String()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.localizers[key]; ok {
		return l
	}
	l := i18n.NewLocalizer(c.bundle, key, language.English.String())
	c.localizers[key] = l
	return l
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the shared built-in catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New()
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

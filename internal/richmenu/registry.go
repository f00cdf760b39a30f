// Package richmenu manages the per-language LINE rich menus: creating
// the menu artifacts on the LINE platform, remembering which menu ID
// belongs to which language, and keeping each user linked to the menu
// matching their language.
package richmenu

import (
	"sync"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
)

// Registry maps language codes to the rich menu IDs registered on the
// LINE platform. It is populated once at startup by Bootstrap and read
// concurrently by the sync path and the admin endpoints.
type Registry struct {
	mu    sync.RWMutex
	menus map[catalog.Code]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		menus: make(map[catalog.Code]string),
	}
}

// Get returns the menu ID registered for the given language.
func (r *Registry) Get(lang catalog.Code) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.menus[lang]
	return id, ok
}

// Set records the menu ID for a language, replacing any previous entry.
func (r *Registry) Set(lang catalog.Code, menuID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.menus[lang] = menuID
}

// LanguageFor performs the reverse lookup from a menu ID to its language.
func (r *Registry) LanguageFor(menuID string) (catalog.Code, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for lang, id := range r.menus {
		if id == menuID {
			return lang, true
		}
	}
	return "", false
}

// Snapshot returns a copy of the current language to menu ID mapping.
// Mutating the returned map does not affect the registry.
func (r *Registry) Snapshot() map[catalog.Code]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[catalog.Code]string, len(r.menus))
	for lang, id := range r.menus {
		out[lang] = id
	}
	return out
}

// Complete reports whether every supported language has a registered menu.
func (r *Registry) Complete() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, lang := range catalog.Codes() {
		if r.menus[lang] == "" {
			return false
		}
	}
	return true
}

package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Dialect registry
var (
	dialectsMu     sync.RWMutex
	dialects       = make(map[string]*Dialect)
	aliases        = make(map[string]string)
	defaultDialect *Dialect
)

// ErrDialectRequired is returned when a dialect is required but not provided.
var ErrDialectRequired = errors.New("dialect is required")

// ErrUnknownDialect is returned by Resolve for names nobody registered.
var ErrUnknownDialect = errors.New("unknown dialect")

// Get returns a dialect by registry name, alias or context class name
// ("mysql-8.0", "mysql", "MySql80000").
func Get(name string) (*Dialect, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	key := strings.ToLower(strings.TrimSpace(name))
	if target, ok := aliases[key]; ok {
		key = target
	}
	d, ok := dialects[key]
	return d, ok
}

// Resolve is like Get but returns an error; an empty name yields the default dialect.
func Resolve(name string) (*Dialect, error) {
	if strings.TrimSpace(name) == "" {
		if d := Default(); d != nil {
			return d, nil
		}
		return nil, ErrDialectRequired
	}
	d, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownDialect, name, strings.Join(List(), ", "))
	}
	return d, nil
}

// Register registers a dialect in the global registry, also under its
// context class name. Called by dialect packages in their init() functions.
func Register(d *Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	name := strings.ToLower(d.Name)
	dialects[name] = d
	if d.Version > 0 {
		aliases[strings.ToLower(d.ClassName())] = name
	}
}

// Alias registers an alternative name for an already registered dialect.
func Alias(alias, name string) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	aliases[strings.ToLower(alias)] = strings.ToLower(name)
}

// SetDefault sets the dialect returned by Default.
func SetDefault(d *Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	defaultDialect = d
}

// Default returns the default dialect, or nil if none was set.
func Default() *Dialect {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	return defaultDialect
}

// List returns all registered dialect names (sorted).
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aliases returns a copy of the alias table.
func Aliases() map[string]string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}

package storage

import (
	"fmt"
	"sort"
	"sync"
)

// Options carries backend-specific settings; each constructor reads only
// the fields it needs.
type Options struct {
	// SQLitePath is the database file path for the sqlite backend.
	SQLitePath string

	// PostgresURL is the connection string for the postgres backend.
	PostgresURL string
}

// Constructor builds a Store from Options. Implementations register
// themselves from init() functions.
type Constructor func(opts Options) (Store, error)

var (
	registry   = make(map[string]Constructor)
	registryMu sync.RWMutex
)

// Register registers a backend constructor under name.
//
// Example:
//
//	func init() {
//	    storage.Register("memory", NewMemory)
//	}
func Register(name string, constructor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if constructor == nil {
		panic(fmt.Sprintf("storage: Register constructor is nil for %q", name))
	}
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("storage: Register called twice for %q", name))
	}

	registry[name] = constructor
}

// Open constructs the backend registered under name.
func Open(name string, opts Options) (Store, error) {
	registryMu.RLock()
	constructor := registry[name]
	registryMu.RUnlock()

	if constructor == nil {
		return nil, fmt.Errorf("unknown storage backend %q (available: %v)", name, Backends())
	}
	return constructor(opts)
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

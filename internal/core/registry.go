package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownSchema is returned when no schema is registered under a key.
var ErrUnknownSchema = errors.New("unknown schema")

// ErrInvalidParam is returned by Bind functions for unusable session params.
var ErrInvalidParam = errors.New("invalid parameter")

var (
	registry   = make(map[string]SchemaDefinition)
	registryMu sync.RWMutex
)

// Register adds a schema definition to the registry.
// Panics if a schema with the same key is already registered or the
// definition has no columns or no Bind function.
func Register(def SchemaDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("schema already registered: %s", def.Info.Key))
	}
	if len(def.Info.Columns) == 0 {
		panic(fmt.Sprintf("schema has no columns: %s", def.Info.Key))
	}
	if def.Bind == nil {
		panic(fmt.Sprintf("schema has no bind function: %s", def.Info.Key))
	}

	// Title falls back to the key so template downloads always have a name
	if def.Info.Title == "" {
		def.Info.Title = def.Info.Key
	}

	registry[def.Info.Key] = def
}

// Get returns a schema definition by key.
// Returns false if not found.
func Get(key string) (SchemaDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// Lookup is Get with an error for unknown keys.
func Lookup(key string) (SchemaDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return SchemaDefinition{}, fmt.Errorf("%w: %s", ErrUnknownSchema, key)
	}
	return def, nil
}

// All returns all registered schema definitions.
// Sorted by group then by key for consistent ordering.
func All() []SchemaDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]SchemaDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Group != result[j].Info.Group {
			return result[i].Info.Group < result[j].Info.Group
		}
		return result[i].Info.Key < result[j].Info.Key
	})

	return result
}

// SchemaCount returns the number of registered schemas.
func SchemaCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered schemas.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]SchemaDefinition)
}

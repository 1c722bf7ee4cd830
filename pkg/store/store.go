// Package store is the persisted settings store port. Values are always
// stored and read as strings; callers JSON-encode arrays before Set.
package store

// Store persists namespaced string key-value settings.
type Store interface {
	// GetAll returns every key under the namespace. A missing namespace is
	// an empty map, not an error.
	GetAll(namespace string) (map[string]string, error)

	// Set upserts the given keys under the namespace. Keys not present in
	// values are left untouched.
	Set(namespace string, values map[string]string) error
}

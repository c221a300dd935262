// Package kvstore defines the key-value persistence abstraction and its
// backends. The store is synchronous, string-keyed and string-valued, with
// no expiry and no multi-key transactions.
package kvstore

// Store is the interface the notes model persists through. Implementations
// must be safe for concurrent use; the model itself assumes a single writer.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
	// Keys returns every key currently in the store. Order is
	// implementation-defined.
	Keys() ([]string, error)
	// Close releases any underlying resources.
	Close() error
}

// Store driver names accepted in configuration.
const (
	DriverMemory = "memory"
	DriverDir    = "dir"
	DriverSQLite = "sqlite"
)

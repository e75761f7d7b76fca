package base

// RequestStore is a durable key-value storage for requests awaiting later delivery
//
// Implementations must be safe for concurrent use. Values are opaque strings and a missing key is not an error.
type RequestStore interface {
	// Get returns the value of key, or false if it doesn't exist
	Get(key string) (string, bool, error)

	// Set creates or replaces the value of key
	Set(key string, value string) error

	// Remove deletes the key if it exists
	Remove(key string) error

	// Close releases the underlying resources
	Close() error
}

package store

// KV is the durable key-value interface the local store persists through.
//
// Implementations must make Put durable before returning: a record written
// through Put must survive process restart.
type KV interface {
	// Get returns the value for key. The second return is false when the
	// key has never been written.
	Get(key string) ([]byte, bool, error)

	// Put durably writes value under key, replacing any previous value.
	Put(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases underlying resources.
	Close() error
}

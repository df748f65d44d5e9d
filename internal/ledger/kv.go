package ledger

// KV is the opaque string-keyed storage port backing the ledger.
// It is implemented by the SQLite store for real clients and by Memory in tests.
type KV interface {
	// Get returns the stored value, or ok=false when the key is absent
	// (or unreadable; the ledger treats both the same way).
	Get(key string) (value string, ok bool)
	// Set stores value under key, overwriting any previous value.
	Set(key, value string) error
	// Remove deletes the key. Removing an absent key is a no-op.
	Remove(key string) error
}

// Memory is an in-process KV used by tests and throwaway sessions.
type Memory struct {
	m map[string]string
}

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, bool) {
	v, ok := s.m[key]
	return v, ok
}

func (s *Memory) Set(key, value string) error {
	s.m[key] = value
	return nil
}

func (s *Memory) Remove(key string) error {
	delete(s.m, key)
	return nil
}

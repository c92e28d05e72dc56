package cache

// retrieveFunc produces the response for a cache entry. It runs at most
// once per entry.
type retrieveFunc func() interface{}

// Store defines an interface describing an abstract cache store
type Store interface {
	LoadOrCreate(key string, retrieve retrieveFunc) *Entry
	Remove(key string, entry *Entry)
}

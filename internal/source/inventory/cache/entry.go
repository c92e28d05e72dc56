package cache

import (
	"context"
	"fmt"
	"sync"
)

// Entry represents a cache object whose response is retrieved asynchronously
// exactly once and shared by every caller waiting for it. The response may
// carry an error, a failed fetch is cached the same way a successful one is.
type Entry struct {
	key       string
	retrieve  *sync.Once
	fetch     retrieveFunc
	mux       *sync.RWMutex
	retrieved chan struct{}
	response  interface{}
}

func newCacheEntry(key string, fetch retrieveFunc) *Entry {
	return &Entry{
		key:       key,
		retrieve:  &sync.Once{},
		fetch:     fetch,
		mux:       &sync.RWMutex{},
		retrieved: make(chan struct{}),
	}
}

// IsResolved returns true if the entry already holds a response
func (e *Entry) IsResolved() bool {
	e.mux.RLock()
	defer e.mux.RUnlock()

	return e.response != nil
}

// Response returns whatever the retrieval stored on the entry
func (e *Entry) Response() interface{} {
	e.mux.RLock()
	defer e.mux.RUnlock()

	return e.response
}

// Retrieve performs a blocking retrieval of the entry response. The fetch
// runs once no matter how many callers arrive while it is in flight, each
// caller either shares the response or gives up when its context is done.
func (e *Entry) Retrieve(ctx context.Context) (interface{}, error) {
	e.retrieve.Do(func() { go e.retrieveWithFetch() })

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("retrieval context done: %w", ctx.Err())
	case <-e.retrieved:
		return e.Response(), nil
	}
}

func (e *Entry) retrieveWithFetch() {
	e.setResponse(e.fetch())
}

func (e *Entry) setResponse(response interface{}) {
	e.mux.Lock()
	defer e.mux.Unlock()

	e.response = response
	close(e.retrieved)
}

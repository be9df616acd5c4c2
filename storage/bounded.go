package storage

import (
	"context"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"
)

// Bounded is a size-capped in-memory backend using otter. Otter owns
// eviction, so Bounded does not enumerate keys: a manager over it tracks its
// keys in a manifest instead, and an evicted entry the manifest still lists
// resolves as an ordinary miss.
type Bounded struct {
	cache   *otter.Cache[string, []byte]
	counter *stats.Counter
}

// NewBounded creates a bounded backend holding at most maxSize entries.
func NewBounded(maxSize int) (*Bounded, error) {
	counter := stats.NewCounter()
	cache := otter.Must(&otter.Options[string, []byte]{
		MaximumSize:   maxSize,
		StatsRecorder: counter,
	})

	return &Bounded{
		cache:   cache,
		counter: counter,
	}, nil
}

// Get retrieves a value. Returns the value, whether it was found, and any
// error.
func (b *Bounded) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := b.cache.GetEntry(key)
	if !ok {
		return nil, false, nil
	}
	return entry.Value, true, nil
}

// Set stores a value.
func (b *Bounded) Set(ctx context.Context, key string, value []byte) error {
	b.cache.Set(key, value)
	return nil
}

// Remove deletes a key.
func (b *Bounded) Remove(ctx context.Context, key string) error {
	b.cache.Invalidate(key)
	return nil
}

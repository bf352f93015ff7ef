package congru

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// DenseSetStore is a content-addressed cache of DenseSet snapshots,
// keyed by an xxhash digest of their packed words. Interning equal sets
// (the same set of obs) yields one shared DenseSet instead of identical
// copies, mirroring the blob-store's dedup-by-digest discipline at
// in-memory granularity.
type DenseSetStore struct {
	mu      sync.RWMutex
	entries map[string]*DenseSet
}

// NewDenseSetStore creates an empty store.
func NewDenseSetStore() *DenseSetStore {
	return &DenseSetStore{entries: make(map[string]*DenseSet)}
}

// Digest returns the hex-encoded xxhash64 digest of s's packed words.
func Digest(s *DenseSet) string {
	h := xxhash.New()
	for _, w := range s.RawWords() {
		var b [8]byte
		for i := 0; i < 8; i++ {
			b[i] = byte(w >> (8 * i))
		}
		h.Write(b[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Intern returns the canonical stored DenseSet equal to s, storing s
// itself if no entry with its digest exists yet. If a digest collision
// is detected (same digest, unequal sets) Intern returns an error
// rather than silently aliasing two different sets.
func (store *DenseSetStore) Intern(s *DenseSet) (*DenseSet, error) {
	digest := Digest(s)

	store.mu.RLock()
	existing, ok := store.entries[digest]
	store.mu.RUnlock()
	if ok {
		if !existing.Equal(s) {
			return nil, fmt.Errorf("congru: DenseSetStore: digest collision at %s", digest)
		}
		return existing, nil
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if existing, ok := store.entries[digest]; ok {
		if !existing.Equal(s) {
			return nil, fmt.Errorf("congru: DenseSetStore: digest collision at %s", digest)
		}
		return existing, nil
	}
	store.entries[digest] = s
	return s, nil
}

// Len returns the number of distinct sets currently interned.
func (store *DenseSetStore) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.entries)
}

// Package queue holds the ordered asset queue and the generation result for
// each position.
//
// Assets and results are kept in parallel slices that are only ever changed
// together under one lock, so readers never observe them with different
// lengths. Positions are the public identity of an entry; each asset also
// carries an opaque token so long-running work can find an entry again after
// the queue has been reshaped.
package queue

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/zepiy/stockmeta/internal/models"
)

// NoSelection is the active index of an empty queue
const NoSelection = -1

// ErrIndexOutOfRange is returned for positions outside the queue
var ErrIndexOutOfRange = errors.New("queue index out of range")

// Entry is one position of the queue
type Entry struct {
	Index  int
	Asset  models.Asset
	Result *models.GenerationResult
}

// Processed reports whether the entry has a generation result
func (e Entry) Processed() bool {
	return e.Result != nil
}

// Snapshot is a consistent copy of the queue
type Snapshot struct {
	Assets  []models.Asset
	Results []*models.GenerationResult
	Active  int
	Version uint64
}

// Entries pairs assets with their results
func (s Snapshot) Entries() []Entry {
	entries := make([]Entry, len(s.Assets))
	for i := range s.Assets {
		entries[i] = Entry{Index: i, Asset: s.Assets[i], Result: s.Results[i]}
	}
	return entries
}

// ProcessedCount returns the number of entries with a result
func (s Snapshot) ProcessedCount() int {
	n := 0
	for _, r := range s.Results {
		if r != nil {
			n++
		}
	}
	return n
}

// Store is the canonical queue state. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	assets  []models.Asset
	results []*models.GenerationResult
	active  int
	version uint64
}

// New returns an empty store
func New() *Store {
	return &Store{active: NoSelection}
}

// Append adds assets to the end of the queue with no result. Assets without
// a token get one. If the queue was empty, the first new asset becomes active.
// It returns the indices assigned to the new assets.
func (s *Store) Append(assets ...models.Asset) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(assets) == 0 {
		return nil
	}

	wasEmpty := len(s.assets) == 0
	indices := make([]int, 0, len(assets))
	for _, a := range assets {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		indices = append(indices, len(s.assets))
		s.assets = append(s.assets, a)
		s.results = append(s.results, nil)
	}
	if wasEmpty {
		s.active = 0
	}
	s.version++
	return indices
}

// Remove deletes the entry at index. When the active entry is removed the
// selection stays at the same position if it is still valid, otherwise it
// moves to the new last entry, or to none when the queue becomes empty.
func (s *Store) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.validLocked(index) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	s.assets = append(s.assets[:index:index], s.assets[index+1:]...)
	s.results = append(s.results[:index:index], s.results[index+1:]...)

	switch {
	case len(s.assets) == 0:
		s.active = NoSelection
	case s.active == index:
		if s.active >= len(s.assets) {
			s.active = len(s.assets) - 1
		}
	case s.active > index:
		s.active--
	}
	s.version++
	return nil
}

// Clear empties the queue and resets the selection
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assets = nil
	s.results = nil
	s.active = NoSelection
	s.version++
}

// Select makes index the active entry. Out of range indices are ignored.
func (s *Store) Select(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.validLocked(index) {
		return false
	}
	s.active = index
	s.version++
	return true
}

// SetResult replaces the result at index; nil clears it
func (s *Store) SetResult(index int, result *models.GenerationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.validLocked(index) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	s.results[index] = result
	s.version++
	return nil
}

// SetResultByID replaces the result of the entry carrying the asset token.
// It returns the entry's current index, or false when the asset is gone.
func (s *Store) SetResultByID(id string, result *models.GenerationResult) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexOfLocked(id)
	if index < 0 {
		return NoSelection, false
	}
	s.results[index] = result
	s.version++
	return index, true
}

// IndexOf returns the current index of the asset token, or NoSelection
func (s *Store) IndexOf(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOfLocked(id)
}

// Get returns the entry at index
func (s *Store) Get(index int) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.validLocked(index) {
		return Entry{}, false
	}
	return Entry{Index: index, Asset: s.assets[index], Result: s.results[index]}, true
}

// Active returns the active entry
func (s *Store) Active() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.validLocked(s.active) {
		return Entry{}, false
	}
	return Entry{Index: s.active, Asset: s.assets[s.active], Result: s.results[s.active]}, true
}

// Len returns the number of queued assets
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}

// Unprocessed returns the entries without a result, in ascending index order
func (s *Store) Unprocessed() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []Entry
	for i, r := range s.results {
		if r == nil {
			entries = append(entries, Entry{Index: i, Asset: s.assets[i]})
		}
	}
	return entries
}

// Snapshot returns a copy of the queue taken under one lock
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Assets:  make([]models.Asset, len(s.assets)),
		Results: make([]*models.GenerationResult, len(s.results)),
		Active:  s.active,
		Version: s.version,
	}
	copy(snap.Assets, s.assets)
	copy(snap.Results, s.results)
	return snap
}

func (s *Store) validLocked(index int) bool {
	return index >= 0 && index < len(s.assets)
}

func (s *Store) indexOfLocked(id string) int {
	if id == "" {
		return NoSelection
	}
	for i, a := range s.assets {
		if a.ID == id {
			return i
		}
	}
	return NoSelection
}

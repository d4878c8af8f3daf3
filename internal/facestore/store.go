// Package facestore holds the trained face embeddings in memory and persists them to a single snapshot file.
package facestore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/kozaktomas/face-auth/internal/facematch"
)

// Record is one trained face.
type Record struct {
	Embedding []float32
	DriverID  int64
	Name      string
}

// Store keeps embeddings, names and driver ids in three index-aligned slices.
// Every mutation is persisted under the write lock, so the file always reflects
// a state that was visible in memory.
type Store struct {
	path   string
	logger *slog.Logger

	mu         sync.RWMutex
	embeddings [][]float32
	names      []string
	driverIDs  []int64
}

// New creates an empty store backed by the snapshot at path. Call Load to read existing state.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{path: path, logger: logger}
}

// Path returns the snapshot location.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory state with the snapshot on disk and returns the number of entries.
// A missing file yields an empty store. An unreadable file is moved to <path>.corrupt and
// the store starts empty.
func (s *Store) Load() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()

	snap, err := readSnapshot(s.path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Info("no face snapshot found, starting empty", "path", s.path)
		return 0
	default:
		s.logger.Warn("failed to load face snapshot, starting empty", "path", s.path, "error", err)
		s.quarantine()
		return 0
	}

	s.embeddings = snap.Embeddings
	s.names = snap.Names
	s.driverIDs = snap.DriverIDs
	s.logger.Info("loaded face snapshot", "path", s.path, "faces", len(s.driverIDs))
	return len(s.driverIDs)
}

func (s *Store) quarantine() {
	aside := s.path + ".corrupt"
	if err := os.Rename(s.path, aside); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to move corrupt snapshot aside", "path", s.path, "error", err)
		return
	}
	s.logger.Warn("moved corrupt snapshot aside", "path", aside)
}

// Save writes the full current state to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist()
}

// persist must be called with the write lock held.
func (s *Store) persist() error {
	snap := &snapshot{
		Version:    snapshotVersion,
		Embeddings: s.embeddings,
		Names:      s.names,
		DriverIDs:  s.driverIDs,
	}
	if err := writeSnapshot(s.path, snap); err != nil {
		return fmt.Errorf("failed to save face store: %w", err)
	}
	return nil
}

// Append adds one entry in memory without checking for an existing driver id.
// It does not persist; call Save afterwards.
func (s *Store) Append(embedding []float32, name string, driverID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(Record{Embedding: embedding, Name: name, DriverID: driverID})
}

func (s *Store) appendLocked(r Record) {
	s.embeddings = append(s.embeddings, slices.Clone(r.Embedding))
	s.names = append(s.names, r.Name)
	s.driverIDs = append(s.driverIDs, r.DriverID)
}

// Upsert replaces the entry for r.DriverID in place, or appends it when absent, and persists.
// On a persistence failure the in-memory change is rolled back. Reports whether an entry was replaced.
func (s *Store) Upsert(r Record) (replaced bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.Index(s.driverIDs, r.DriverID)
	if idx < 0 {
		s.appendLocked(r)
		if err := s.persist(); err != nil {
			s.truncate(len(s.driverIDs) - 1)
			return false, err
		}
		return false, nil
	}

	prevEmb, prevName := s.embeddings[idx], s.names[idx]
	s.embeddings[idx] = slices.Clone(r.Embedding)
	s.names[idx] = r.Name
	if err := s.persist(); err != nil {
		s.embeddings[idx], s.names[idx] = prevEmb, prevName
		return false, err
	}
	return true, nil
}

// AddNew appends the records whose driver ids are not yet stored, in the given order,
// and persists once if anything was added. Returns the ids that were added.
func (s *Store) AddNew(records []Record) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.driverIDs)
	var added []int64
	for _, r := range records {
		if slices.Contains(s.driverIDs, r.DriverID) {
			continue
		}
		s.appendLocked(r)
		added = append(added, r.DriverID)
	}
	if len(added) == 0 {
		return nil, nil
	}

	if err := s.persist(); err != nil {
		s.truncate(before)
		return nil, err
	}
	return added, nil
}

func (s *Store) truncate(n int) {
	s.embeddings = s.embeddings[:n]
	s.names = s.names[:n]
	s.driverIDs = s.driverIDs[:n]
}

// Reset clears memory and deletes the snapshot. A missing file is not an error.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove face snapshot: %w", err)
	}
	return nil
}

func (s *Store) clear() {
	s.embeddings = nil
	s.names = nil
	s.driverIDs = nil
}

// Size returns the number of stored entries.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.driverIDs)
}

// Has reports whether driverID is stored.
func (s *Store) Has(driverID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.driverIDs, driverID)
}

// Entries returns copies of the stored ids and names, taken under one read lock
// so both slices describe the same state.
func (s *Store) Entries() (driverIDs []int64, names []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.driverIDs), slices.Clone(s.names)
}

// View calls fn with the current gallery under the read lock.
// fn must not retain or modify the slices.
func (s *Store) View(fn func(g facematch.Gallery)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(facematch.Gallery{
		Embeddings: s.embeddings,
		Names:      s.names,
		DriverIDs:  s.driverIDs,
	})
}

// Match runs the matcher against the current contents under the read lock.
func (s *Store) Match(query []float32, threshold float64) (*facematch.Result, error) {
	var (
		res *facematch.Result
		err error
	)
	s.View(func(g facematch.Gallery) {
		res, err = facematch.BestMatch(g, query, threshold)
	})
	return res, err
}

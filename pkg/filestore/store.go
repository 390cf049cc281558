// Package filestore keeps the records of files registered for conversion.
package filestore

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/utfnorris/pkg/detect"
	"github.com/sdejongh/utfnorris/pkg/models"
)

// ErrFileNotFound is returned for unknown file ids
var ErrFileNotFound = errors.New("file not found")

// Store holds FileRecords keyed by id
type Store struct {
	mu      sync.RWMutex
	records map[string]*models.FileRecord
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		records: make(map[string]*models.FileRecord),
	}
}

// Add stores a copy of record. An empty ID is replaced by a new uuid and
// a zero UploadTime by the current time.
func (s *Store) Add(record models.FileRecord) (models.FileRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.UploadTime.IsZero() {
		record.UploadTime = time.Now()
	}
	if record.Status == "" {
		record.Status = models.FileUploaded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return models.FileRecord{}, fmt.Errorf("file id %s already registered", record.ID)
	}

	stored := record
	s.records[record.ID] = &stored
	return record, nil
}

// Get returns a copy of the record with the given id
func (s *Store) Get(id string) (models.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return models.FileRecord{}, fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	return *r, nil
}

// List returns copies of all records ordered by upload time
func (s *Store) List() []models.FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]models.FileRecord, 0, len(s.records))
	for _, r := range s.records {
		list = append(list, *r)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].UploadTime.Equal(list[j].UploadTime) {
			return list[i].ID < list[j].ID
		}
		return list[i].UploadTime.Before(list[j].UploadTime)
	})

	return list
}

// Update applies fn to the stored record under the store lock.
// fn must not call back into the store.
func (s *Store) Update(id string, fn func(*models.FileRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}

	fn(r)
	r.ID = id
	return nil
}

// Delete forgets a record
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	delete(s.records, id)
	return nil
}

// Lookup returns the batch inputs for the given ids, in order.
// The first unknown id aborts the lookup.
func (s *Store) Lookup(ids []string) ([]models.BatchFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]models.BatchFile, 0, len(ids))
	for _, id := range ids {
		r, ok := s.records[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, id)
		}
		files = append(files, r.BatchFile())
	}
	return files, nil
}

// MarkConverting flags the given files as part of a running batch
func (s *Store) MarkConverting(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if r, ok := s.records[id]; ok {
			r.Status = models.FileConverting
			r.ErrorMessage = ""
		}
	}
}

// ApplyOutcome records the result of converting one file
func (s *Store) ApplyOutcome(outcome models.ConversionOutcome) error {
	return s.Update(outcome.FileID, func(r *models.FileRecord) {
		if outcome.OriginalEncoding != "" {
			r.OriginalEncoding = outcome.OriginalEncoding
			r.EncodingDisplayName = detect.DisplayName(outcome.OriginalEncoding)
			r.NeedsConversion = detect.NeedsConversion(outcome.OriginalEncoding)
		}

		if outcome.Success {
			r.Status = models.FileConverted
			r.ConvertedPath = outcome.ConvertedPath
			r.ConvertedEncoding = outcome.ConvertedEncoding
			r.ErrorMessage = ""
			return
		}

		r.Status = models.FileError
		r.ConvertedPath = ""
		r.ConvertedEncoding = ""
		r.ErrorMessage = outcome.Error
	})
}

// Len returns the number of records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// SPDX-License-Identifier: MIT

package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrJobNotFound is returned when no job matches the given id.
var ErrJobNotFound = errors.New("job not found")

const jobKeyPrefix = "job:"

// jobRetention bounds how long finished job records stick around.
// Badger drops expired entries on compaction.
const jobRetention = 90 * 24 * time.Hour

// Store persists job records in a local Badger database so job history
// survives daemon restarts.
type Store struct {
	db *badger.DB
}

// OpenStore opens (or creates) the job database under dir.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(filepath.Join(dir, "jobs")).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open job database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func jobKey(id string) []byte {
	return []byte(jobKeyPrefix + id)
}

// Put writes (or overwrites) one job record.
func (s *Store) Put(job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(jobKey(job.ID), data).WithTTL(jobRetention)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("store job %s: %w", job.ID, err)
	}
	return nil
}

// Get loads the job with the given id.
func (s *Store) Get(id string) (Job, error) {
	var job Job
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(jobKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &job)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Job{}, ErrJobNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("load job %s: %w", id, err)
	}
	return job, nil
}

// List returns every stored job, newest submission first.
func (s *Store) List() ([]Job, error) {
	var out []Job
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(jobKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var job Job
				if err := json.Unmarshal(val, &job); err != nil {
					return err
				}
				out = append(out, job)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// Package storage persists the play history: one record per conductor
// tick, kept in a BoltDB file so past drifts can be inspected after the
// daemon exits.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	playsBucket        = "plays"
	defaultKeepRecords = 10000
)

// PlayRecord describes one completed tick: which file was selected, where
// playback was positioned, and the raw sample that drove the choice.
type PlayRecord struct {
	ID         string     `json:"id"`
	InstanceID string     `json:"instance_id"`
	Time       time.Time  `json:"time"`
	Path       string     `json:"path"`
	Index      int        `json:"index"`
	Sample     [4]float64 `json:"sample"`
	SeekPct    float64    `json:"seek_pct"`
}

// StorageConfig holds configuration for BoltStorage initialization.
type StorageConfig struct {
	DBPath      string
	KeepRecords int
	InstanceID  string
	Logger      *zap.Logger
}

// BoltStorage implements persistent play-history storage using BoltDB.
type BoltStorage struct {
	db          *bbolt.DB
	keepRecords int
	instanceID  string
	logger      *zap.Logger
}

// NewBoltStorage opens (or creates) the history database.
func NewBoltStorage(config StorageConfig) (*BoltStorage, error) {
	keep := config.KeepRecords
	if keep <= 0 {
		keep = defaultKeepRecords
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := bbolt.Open(config.DBPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(playsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStorage{
		db:          db,
		keepRecords: keep,
		instanceID:  config.InstanceID,
		logger:      logger,
	}, nil
}

// SaveRecord appends one play record. Records beyond the retention limit
// are pruned oldest-first.
func (s *BoltStorage) SaveRecord(rec *PlayRecord) error {
	if rec.InstanceID == "" {
		rec.InstanceID = s.instanceID
	}
	if rec.Time.IsZero() {
		rec.Time = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal play record: %w", err)
	}

	key := []byte(rec.Time.UTC().Format(time.RFC3339Nano) + "-" + rec.ID)

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(playsBucket))
		if err := b.Put(key, data); err != nil {
			return err
		}

		// Prune oldest entries past the retention limit. Keys sort by
		// time, so a forward cursor visits oldest first. Counting walks
		// the cursor rather than Stats() so the uncommitted put is seen.
		n := 0
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			n++
		}
		excess := n - s.keepRecords
		if excess <= 0 {
			return nil
		}
		var stale [][]byte
		for k, _ := c.First(); k != nil && len(stale) < excess; k, _ = c.Next() {
			stale = append(stale, append([]byte(nil), k...))
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save play record: %w", err)
	}

	s.logger.Debug("Play record saved",
		zap.String("id", rec.ID),
		zap.String("path", rec.Path),
		zap.Float64("seek_pct", rec.SeekPct))

	return nil
}

// RecentRecords returns up to limit records, newest first. A limit of 0
// returns everything.
func (s *BoltStorage) RecentRecords(limit int) ([]*PlayRecord, error) {
	var records []*PlayRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(playsBucket))
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec PlayRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				s.logger.Warn("Failed to unmarshal play record", zap.Error(err), zap.Binary("key", k))
				continue
			}
			records = append(records, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read play records: %w", err)
	}

	return records, nil
}

// Count returns the number of stored records.
func (s *BoltStorage) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(playsBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the underlying database.
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

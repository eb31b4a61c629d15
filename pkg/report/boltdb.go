package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var bucketReports = []byte("reports")

// BoltStore implements Store using an embedded BoltDB file, one JSON value
// per report keyed by its ID.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if absent) a reports database under
// dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "loom.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketReports)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucketReports, err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// SaveReport upserts r, keyed by its ID.
func (s *BoltStore) SaveReport(r *Report) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReports)
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		return b.Put([]byte(r.ID), data)
	})
}

// GetReport retrieves a single report by ID.
func (s *BoltStore) GetReport(id string) (*Report, error) {
	var r Report
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReports)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("report not found: %s", id)
		}
		return json.Unmarshal(data, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReports returns every stored report.
func (s *BoltStore) ListReports() ([]*Report, error) {
	var reports []*Report
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReports)
		return b.ForEach(func(k, v []byte) error {
			var r Report
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			reports = append(reports, &r)
			return nil
		})
	})
	return reports, err
}

// ListReportsByScenario returns every report for one scenario name.
func (s *BoltStore) ListReportsByScenario(scenario string) ([]*Report, error) {
	all, err := s.ListReports()
	if err != nil {
		return nil, err
	}
	var filtered []*Report
	for _, r := range all {
		if r.Scenario == scenario {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// ListReportsByOutcome returns every report that ended with outcome.
func (s *BoltStore) ListReportsByOutcome(outcome Outcome) ([]*Report, error) {
	all, err := s.ListReports()
	if err != nil {
		return nil, err
	}
	var filtered []*Report
	for _, r := range all {
		if r.Outcome == outcome {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

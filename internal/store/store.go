// Package store holds the canonical, read-only list of location records.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/couchcryptid/cat-map/internal/domain"
	"gopkg.in/yaml.v3"
)

// Store normalizes its seed exactly once and serves copies of the result.
type Store struct {
	raw []domain.RawRecord

	once    sync.Once
	mu      sync.RWMutex
	records []domain.LocationRecord
	ready   bool
}

// New creates a Store over the given seed rows. Normalization is deferred to
// the first call of Normalize or Records.
func New(raw []domain.RawRecord) *Store {
	seed := make([]domain.RawRecord, len(raw))
	copy(seed, raw)
	return &Store{raw: seed}
}

// Normalize converts the seed into records. Only the first call has any
// effect; later calls leave the records untouched.
func (s *Store) Normalize() {
	s.once.Do(func() {
		recs := domain.NormalizeAll(s.raw)
		s.mu.Lock()
		s.records = recs
		s.ready = true
		s.mu.Unlock()
	})
}

// Records returns a copy of the normalized list in seed order.
func (s *Store) Records() []domain.LocationRecord {
	s.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LocationRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.raw)
}

// EnrichPlaces labels every record with a reverse-geocoded place. It must run
// before the records are handed to viewers. A nil resolver is a no-op.
func (s *Store) EnrichPlaces(ctx context.Context, resolver domain.PlaceResolver, logger *slog.Logger) {
	if resolver == nil {
		return
	}
	s.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if ctx.Err() != nil {
			logger.Warn("place enrichment interrupted", "error", ctx.Err(), "enriched", i)
			return
		}
		s.records[i] = domain.EnrichWithPlace(ctx, s.records[i], resolver, logger)
	}
}

// CheckReadiness returns nil once the records have been normalized.
func (s *Store) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return errors.New("records have not been normalized yet")
	}
	return nil
}

// seedFile is the YAML layout accepted by LoadSeedFile.
type seedFile struct {
	Records []domain.RawRecord `yaml:"records"`
}

// LoadSeedFile reads seed rows from a YAML file.
func LoadSeedFile(path string) ([]domain.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if len(f.Records) == 0 {
		return nil, fmt.Errorf("seed file %s has no records", path)
	}
	return f.Records, nil
}

// WriteSeedFile writes seed rows in the layout LoadSeedFile reads.
func WriteSeedFile(path string, raw []domain.RawRecord) error {
	data, err := yaml.Marshal(seedFile{Records: raw})
	if err != nil {
		return fmt.Errorf("encode seed file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // seed files are not secret
		return fmt.Errorf("write seed file: %w", err)
	}
	return nil
}

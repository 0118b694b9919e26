package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hooplens/hooplens/internal/dataset"
)

// LocalStore persists snapshots on the local filesystem under a base
// directory: {base}/{prefix}/{table}_{timestamp}.{csv,json}.
type LocalStore struct {
	baseDir string
	logger  *slog.Logger
}

// NewLocalStore creates a filesystem-backed store rooted at baseDir.
func NewLocalStore(baseDir string, logger *slog.Logger) *LocalStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{baseDir: baseDir, logger: logger}
}

// Save writes CSV and JSON snapshots for every non-empty table, all
// sharing one timestamp.
func (s *LocalStore) Save(ctx context.Context, ds dataset.Dataset, prefix string) error {
	dir := filepath.Join(s.baseDir, prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory %s: %w", dir, err)
	}

	timestamp := time.Now().Format(timestampLayout)

	for _, name := range ds.TableNames() {
		table := ds[name]
		if table.Empty() {
			continue
		}

		csvPath := filepath.Join(dir, name+"_"+timestamp+csvExt)
		jsonPath := filepath.Join(dir, name+"_"+timestamp+jsonExt)

		var buf bytes.Buffer
		if err := table.WriteCSV(&buf); err != nil {
			return fmt.Errorf("encode table %s: %w", name, err)
		}
		if err := os.WriteFile(csvPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", csvPath, err)
		}

		records, err := table.MarshalRecords()
		if err != nil {
			return fmt.Errorf("encode table %s records: %w", name, err)
		}
		if err := os.WriteFile(jsonPath, records, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", jsonPath, err)
		}

		s.logger.Info("Saved table snapshot", "table", name, "csv", csvPath, "json", jsonPath)
	}
	return nil
}

// Load reads one CSV snapshot per table group under prefix.
func (s *LocalStore) Load(ctx context.Context, prefix string, latestOnly bool) (dataset.Dataset, error) {
	ds := dataset.Dataset{}

	groups, err := s.groupedSnapshots(prefix)
	if err != nil {
		return ds, err
	}

	for name, snaps := range groups {
		chosen := latestOf(snaps, latestOnly)
		data, err := os.ReadFile(chosen.Location)
		if err != nil {
			return ds, fmt.Errorf("read snapshot %s: %w", chosen.Location, err)
		}
		table, err := dataset.ReadCSV(bytes.NewReader(data))
		if err != nil {
			return ds, fmt.Errorf("parse snapshot %s: %w", chosen.Location, err)
		}
		ds[name] = table
		s.logger.Info("Loaded table snapshot", "table", name, "path", chosen.Location)
	}
	return ds, nil
}

// Snapshots lists all CSV artifacts under prefix.
func (s *LocalStore) Snapshots(ctx context.Context, prefix string) ([]Snapshot, error) {
	groups, err := s.groupedSnapshots(prefix)
	if err != nil {
		return nil, err
	}
	var all []Snapshot
	for _, snaps := range groups {
		all = append(all, snaps...)
	}
	return all, nil
}

// groupedSnapshots scans the prefix directory and groups CSV artifacts by
// inferred table name. A missing directory yields an empty map.
func (s *LocalStore) groupedSnapshots(prefix string) (map[string][]Snapshot, error) {
	dir := filepath.Join(s.baseDir, prefix)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		s.logger.Warn("Snapshot directory does not exist", "dir", dir)
		return map[string][]Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list snapshot directory %s: %w", dir, err)
	}

	groups := make(map[string][]Snapshot)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != csvExt {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat snapshot %s: %w", e.Name(), err)
		}
		name := tableNameOf(e.Name())
		groups[name] = append(groups[name], Snapshot{
			Table:    name,
			Location: filepath.Join(dir, e.Name()),
			Modified: info.ModTime(),
		})
	}
	return groups, nil
}

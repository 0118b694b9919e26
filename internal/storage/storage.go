// Package storage persists datasets as immutable, timestamped table
// snapshots under a logical prefix, on the local filesystem or an
// object-storage bucket.
//
// Every save writes two artifacts per table, {table}_{timestamp}.csv and
// {table}_{timestamp}.json, sharing one timestamp for the whole call.
// Loads group artifacts by the text preceding the first underscore in the
// filename; table names containing an underscore therefore collapse
// ("player_stats" loads back as "player"). That rule is load-bearing for
// existing snapshot layouts and must not change.
package storage

import (
	"context"
	"strings"
	"time"

	"github.com/hooplens/hooplens/internal/dataset"
)

// Store persists and loads datasets.
type Store interface {
	// Save writes one snapshot per non-empty table under prefix. A nil
	// error means the backend accepted every written table; empty tables
	// are skipped silently.
	Save(ctx context.Context, ds dataset.Dataset, prefix string) error

	// Load reads one snapshot per table group under prefix. With
	// latestOnly the most recently modified snapshot is chosen per group,
	// otherwise an arbitrary one. A missing prefix or empty listing
	// yields an empty dataset and no error. Snapshots are never merged.
	Load(ctx context.Context, prefix string, latestOnly bool) (dataset.Dataset, error)

	// Snapshots lists the row-oriented artifacts under prefix, for
	// operational inspection.
	Snapshots(ctx context.Context, prefix string) ([]Snapshot, error)
}

// Snapshot describes one persisted table artifact.
type Snapshot struct {
	Table    string    // inferred table name
	Location string    // backend path or object key
	Modified time.Time
}

// timestampLayout is the second-resolution snapshot timestamp embedded in
// artifact names.
const timestampLayout = "20060102_150405"

const (
	csvExt  = ".csv"
	jsonExt = ".json"
)

// tableNameOf infers the table name from an artifact filename: the
// substring before the first underscore, extension stripped.
func tableNameOf(filename string) string {
	name := strings.TrimSuffix(filename, csvExt)
	name, _, _ = strings.Cut(name, "_")
	return name
}

// latestOf picks the most recently modified snapshot, falling back to the
// first element when latestOnly is false.
func latestOf(snaps []Snapshot, latestOnly bool) Snapshot {
	if !latestOnly {
		return snaps[0]
	}
	latest := snaps[0]
	for _, s := range snaps[1:] {
		if s.Modified.After(latest.Modified) {
			latest = s
		}
	}
	return latest
}

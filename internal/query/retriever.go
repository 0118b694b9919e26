package query

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/hooplens/hooplens/internal/cache"
	"github.com/hooplens/hooplens/internal/dataset"
	"github.com/hooplens/hooplens/internal/stats"
	"github.com/hooplens/hooplens/internal/storage"
)

// Loaded-dataset table keys. Snapshot filenames are grouped by the text
// before the first underscore, so the "player_stats" and "team_stats"
// tables come back named "player" and "team".
const (
	playerTableKey = "player"
	teamTableKey   = "team"

	playerNameColumn = "PLAYER_NAME"
	teamNameColumn   = "TEAM_NAME"
	seasonColumn     = "season"
)

// defaultStat is ranked when a top-performers question names no stat.
const defaultStat = "points"

// Retriever loads the dataset (cache first, then store) and returns the
// table slice relevant to an analysis. Retrieval degrades gracefully:
// unknown intents and missing expected columns produce an empty table
// with a logged warning, never an error.
type Retriever struct {
	store    storage.Store
	cache    *cache.Cache
	resolver *stats.Resolver
	prefix   string
	logger   *slog.Logger

	// cachedData is a transient, non-authoritative copy of the last
	// loaded dataset, reused only within this instance's lifetime.
	// Written exactly once under loadOnce; one retriever serves
	// concurrent requests.
	loadOnce   sync.Once
	cachedData dataset.Dataset
}

// NewRetriever creates a retriever over the given store and process-wide
// cache, reading the dataset stored under prefix.
func NewRetriever(store storage.Store, c *cache.Cache, resolver *stats.Resolver, prefix string, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		store:    store,
		cache:    c,
		resolver: resolver,
		prefix:   prefix,
		logger:   logger,
	}
}

// Fetch returns the rows relevant to the analysis.
func (r *Retriever) Fetch(ctx context.Context, analysis QueryAnalysis) dataset.Table {
	r.ensureLoaded(ctx)

	switch analysis.Intent {
	case IntentPlayerStats, IntentPlayerComparison:
		r.logger.Info("Fetching player stats", "players", analysis.Players, "seasons", analysis.Seasons)
		return r.filterByNameAndSeason(playerTableKey, playerNameColumn, analysis.Players, analysis.Seasons)

	case IntentTeamStats, IntentTeamComparison:
		r.logger.Info("Fetching team stats", "teams", analysis.Teams, "seasons", analysis.Seasons)
		return r.filterByNameAndSeason(teamTableKey, teamNameColumn, analysis.Teams, analysis.Seasons)

	case IntentTopPerformers:
		stat := defaultStat
		if len(analysis.Stats) > 0 {
			stat = analysis.Stats[0]
		}
		r.logger.Info("Fetching top performers",
			"top_n", analysis.TopN, "stat", stat, "seasons", analysis.Seasons, "entity", analysis.Entity)
		return r.topPerformers(analysis, stat)

	default:
		r.logger.Info("Intent not recognized, returning empty table", "intent", analysis.Intent)
		return dataset.Table{}
	}
}

// ensureLoaded populates cachedData on first use. The Once both bounds
// the load to a single store round trip and publishes cachedData safely
// to every goroutine fetching through this instance.
func (r *Retriever) ensureLoaded(ctx context.Context) {
	r.loadOnce.Do(func() {
		r.cachedData = r.loadData(ctx, true)
	})
}

// loadData loads the dataset through the cache. A cache hit skips the
// store entirely; a miss loads and populates the cache with no TTL —
// caching exists for intra-process reuse, not staleness control.
func (r *Retriever) loadData(ctx context.Context, latestOnly bool) dataset.Dataset {
	key := DatasetCacheKey(r.prefix, latestOnly)

	if v, ok := r.cache.Get(key); ok {
		if ds, ok := v.(dataset.Dataset); ok {
			r.logger.Info("Loaded dataset from cache", "key", key)
			return ds
		}
	}

	ds, err := r.store.Load(ctx, r.prefix, latestOnly)
	if err != nil {
		r.logger.Error("Failed to load dataset from storage", "prefix", r.prefix, "error", err)
		return dataset.Dataset{}
	}
	if ds.Empty() {
		r.logger.Warn("No data loaded from storage", "prefix", r.prefix)
	}

	r.cache.Set(key, ds, cache.NoExpiry)
	return ds
}

// DatasetCacheKey is the cache key for a loaded dataset. Exposed so
// writers can seed or invalidate the entry after a dataset update.
func DatasetCacheKey(prefix string, latestOnly bool) string {
	if latestOnly {
		return fmt.Sprintf("dataset:%s:latest", prefix)
	}
	return fmt.Sprintf("dataset:%s:all", prefix)
}

// filterByNameAndSeason returns rows whose name column matches any of
// names (case-insensitive) and whose season is in seasons. Both
// predicates must hold; an empty names list matches nothing.
func (r *Retriever) filterByNameAndSeason(tableKey, nameColumn string, names, seasons []string) dataset.Table {
	table, ok := r.table(tableKey)
	if !ok {
		return dataset.Table{}
	}

	nameIdx := table.ColumnIndex(nameColumn)
	seasonIdx := table.ColumnIndex(seasonColumn)
	if nameIdx < 0 || seasonIdx < 0 {
		r.logger.Warn("Expected columns not found in table",
			"table", tableKey, "name_column", nameColumn, "season_column", seasonColumn)
		return dataset.Table{}
	}

	wantNames := lowerSet(names)
	wantSeasons := toSet(seasons)

	filtered := table.Filter(func(row []string) bool {
		_, nameOK := wantNames[strings.ToLower(row[nameIdx])]
		_, seasonOK := wantSeasons[row[seasonIdx]]
		return nameOK && seasonOK
	})

	r.logger.Info("Filtered stats", "table", tableKey, "records", filtered.Len())
	return filtered
}

// topPerformers ranks rows by the resolved stat column, per season:
// rows are stable-sorted by (season ascending, stat descending) and the
// top N of each season group are kept in rank order. The lexicographic
// season sort is chronological for "YYYY-YY" identifiers.
func (r *Retriever) topPerformers(analysis QueryAnalysis, stat string) dataset.Table {
	tableKey := playerTableKey
	if analysis.Entity == EntityTeam {
		tableKey = teamTableKey
	}
	table, ok := r.table(tableKey)
	if !ok {
		return dataset.Table{}
	}

	statColumn := r.resolver.Resolve(stat, string(analysis.StatsType))
	statIdx := table.ColumnIndex(statColumn)
	seasonIdx := table.ColumnIndex(seasonColumn)
	if statIdx < 0 || seasonIdx < 0 {
		r.logger.Warn("Expected columns not found in table",
			"table", tableKey, "stat_column", statColumn, "season_column", seasonColumn)
		return dataset.Table{}
	}

	wantSeasons := toSet(analysis.Seasons)
	inSeason := table.Filter(func(row []string) bool {
		_, ok := wantSeasons[row[seasonIdx]]
		return ok
	})

	// Stable sort keeps the original relative order of ties.
	sort.SliceStable(inSeason.Rows, func(i, j int) bool {
		si, sj := inSeason.Rows[i][seasonIdx], inSeason.Rows[j][seasonIdx]
		if si != sj {
			return si < sj
		}
		return statValue(inSeason, inSeason.Rows[i], statIdx) > statValue(inSeason, inSeason.Rows[j], statIdx)
	})

	out := dataset.Table{Columns: inSeason.Columns}
	perSeason := make(map[string]int)
	for _, row := range inSeason.Rows {
		season := row[seasonIdx]
		if perSeason[season] >= analysis.TopN {
			continue
		}
		perSeason[season]++
		out.Rows = append(out.Rows, row)
	}

	r.logger.Info("Ranked top performers", "table", tableKey, "stat_column", statColumn, "records", out.Len())
	return out
}

// table returns the named table from the loaded dataset, warning when it
// is absent or empty.
func (r *Retriever) table(key string) (dataset.Table, bool) {
	t, ok := r.cachedData[key]
	if !ok || t.Empty() {
		r.logger.Warn("Table is empty or missing", "table", key)
		return dataset.Table{}, false
	}
	return t, true
}

// statValue parses a stat cell, ranking unparseable values last.
func statValue(t dataset.Table, row []string, idx int) float64 {
	f, ok := t.Float(row, idx)
	if !ok {
		return math.Inf(-1)
	}
	return f
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}

package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/hooplens/hooplens/internal/config"
	"github.com/hooplens/hooplens/internal/dataset"
)

// Aggregation modes requested from the stats endpoints.
const (
	perModePerGame = "per_game"
	perModeTotals  = "totals"
)

// suffixedStats are the stat keys collected in both aggregation modes and
// stored with _PER_GAME / _TOTALS suffixes, in column order.
var suffixedStats = []string{
	"MIN", "FGM", "FGA", "FG3M", "FG3A", "FTM", "FTA",
	"OREB", "DREB", "REB", "AST", "STL", "BLK", "TOV", "PF",
	"PTS", "PLUS_MINUS",
}

// exemptStats are identical across aggregation modes (rates, percentages,
// counts) and stored once, unsuffixed.
var exemptStats = []string{"FG_PCT", "FG3_PCT", "FT_PCT", "DD2", "TD3"}

// Collector gathers the full dataset for a set of seasons.
type Collector struct {
	client *Client
	logger *slog.Logger
}

// NewCollector creates a collector over the given BDL client.
func NewCollector(client *Client, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{client: client, logger: logger}
}

// CollectResult tracks counts and errors from a collection run.
type CollectResult struct {
	Players        int
	Teams          int
	PlayerStatRows int
	TeamStatRows   int
	Errors         []string
}

// AddErrorf records a formatted error message.
func (r *CollectResult) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the collection run.
func (r *CollectResult) Summary() string {
	return fmt.Sprintf("players=%d teams=%d player_stat_rows=%d team_stat_rows=%d errors=%d",
		r.Players, r.Teams, r.PlayerStatRows, r.TeamStatRows, len(r.Errors))
}

// CollectDataset collects static player/team tables plus per-season stat
// tables for the given seasons, concatenated into one player_stats and
// one team_stats table. Failures for individual tables or seasons are
// recorded and skipped; whatever was collected is returned.
func (c *Collector) CollectDataset(ctx context.Context, seasons []string) (dataset.Dataset, CollectResult) {
	var result CollectResult
	ds := dataset.Dataset{}

	c.logger.Info("Collecting players and teams...")
	players, err := c.playersTable(ctx)
	if err != nil {
		result.AddErrorf("collect players: %v", err)
	} else {
		ds[config.PlayersTable] = players
		result.Players = players.Len()
	}

	teams, err := c.teamsTable(ctx)
	if err != nil {
		result.AddErrorf("collect teams: %v", err)
	} else {
		ds[config.TeamsTable] = teams
		result.Teams = teams.Len()
	}

	var playerStats, teamStats dataset.Table
	for _, season := range seasons {
		c.logger.Info("Collecting data for season...", "season", season)

		ps, err := c.playerStatsTable(ctx, season)
		if err != nil {
			result.AddErrorf("collect player stats for %s: %v", season, err)
		} else if !ps.Empty() {
			if playerStats.Empty() {
				playerStats = ps
			} else {
				playerStats.Concat(ps)
			}
		}

		ts, err := c.teamStatsTable(ctx, season)
		if err != nil {
			result.AddErrorf("collect team stats for %s: %v", season, err)
		} else if !ts.Empty() {
			if teamStats.Empty() {
				teamStats = ts
			} else {
				teamStats.Concat(ts)
			}
		}
	}

	if !playerStats.Empty() {
		ds[config.PlayerStatsTable] = playerStats
		result.PlayerStatRows = playerStats.Len()
	}
	if !teamStats.Empty() {
		ds[config.TeamStatsTable] = teamStats
		result.TeamStatRows = teamStats.Len()
	}

	c.logger.Info("Collection complete", "summary", result.Summary())
	return ds, result
}

// --------------------------------------------------------------------------
// Static tables
// --------------------------------------------------------------------------

type bdlTeamRaw struct {
	ID           int    `json:"id"`
	FullName     string `json:"full_name"`
	Abbreviation string `json:"abbreviation"`
	City         string `json:"city"`
	Conference   string `json:"conference"`
	Division     string `json:"division"`
}

func (c *Collector) teamsTable(ctx context.Context) (dataset.Table, error) {
	resp, err := c.client.get(ctx, "/teams", nil)
	if err != nil {
		return dataset.Table{}, err
	}
	var raw []bdlTeamRaw
	if err := json.Unmarshal(resp.Data, &raw); err != nil {
		return dataset.Table{}, fmt.Errorf("decode teams: %w", err)
	}

	table := dataset.NewTable("TEAM_ID", "TEAM_NAME", "TEAM_ABBREVIATION", "CITY", "CONFERENCE", "DIVISION")
	for _, t := range raw {
		table.AppendRow([]string{
			strconv.Itoa(t.ID), t.FullName, t.Abbreviation, t.City, t.Conference, t.Division,
		})
	}
	return table, nil
}

type bdlPlayerRaw struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
	Height    string `json:"height"`
	Weight    string `json:"weight"`
	Country   string `json:"country"`
	Team      *struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
}

func (c *Collector) playersTable(ctx context.Context) (dataset.Table, error) {
	table := dataset.NewTable("PLAYER_ID", "PLAYER_NAME", "POSITION", "HEIGHT", "WEIGHT", "COUNTRY", "TEAM_ABBREVIATION")

	err := c.client.getPaginated(ctx, "/players", nil, func(data json.RawMessage) error {
		var raw []bdlPlayerRaw
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode players: %w", err)
		}
		for _, p := range raw {
			team := ""
			if p.Team != nil {
				team = p.Team.Abbreviation
			}
			table.AppendRow([]string{
				strconv.Itoa(p.ID),
				p.FirstName + " " + p.LastName,
				p.Position, p.Height, p.Weight, p.Country, team,
			})
		}
		return nil
	})
	if err != nil {
		return dataset.Table{}, err
	}
	return table, nil
}

// --------------------------------------------------------------------------
// Seasonal stat tables — per-game and totals fetched separately and
// merged on player/team identity, mirroring the published dataset layout
// --------------------------------------------------------------------------

type bdlPlayerSeasonRaw struct {
	Player struct {
		ID        int    `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"player"`
	Team struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
	GamesPlayed int                `json:"games_played"`
	Age         float64            `json:"age"`
	Stats       map[string]float64 `json:"stats"`
}

func (c *Collector) fetchPlayerSeason(ctx context.Context, season, perMode string) ([]bdlPlayerSeasonRaw, error) {
	startYear, err := config.SeasonStartYear(season)
	if err != nil {
		return nil, err
	}

	var rows []bdlPlayerSeasonRaw
	params := url.Values{
		"season":      {strconv.Itoa(startYear)},
		"season_type": {"regular"},
		"per_mode":    {perMode},
	}
	err = c.client.getPaginated(ctx, "/season_averages/general", params, func(data json.RawMessage) error {
		var page []bdlPlayerSeasonRaw
		if err := json.Unmarshal(data, &page); err != nil {
			return fmt.Errorf("decode season averages: %w", err)
		}
		rows = append(rows, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// playerStatsTable merges the per-game and totals fetches for one season
// into a single table: identity columns once, exempt stats once, and one
// suffixed column pair per stat. Players present in only one mode are
// dropped.
func (c *Collector) playerStatsTable(ctx context.Context, season string) (dataset.Table, error) {
	c.logger.Info("Fetching player stats", "season", season)

	perGame, err := c.fetchPlayerSeason(ctx, season, perModePerGame)
	if err != nil {
		return dataset.Table{}, err
	}
	totals, err := c.fetchPlayerSeason(ctx, season, perModeTotals)
	if err != nil {
		return dataset.Table{}, err
	}

	totalsByID := make(map[int]bdlPlayerSeasonRaw, len(totals))
	for _, r := range totals {
		totalsByID[r.Player.ID] = r
	}

	columns := []string{"PLAYER_ID", "PLAYER_NAME", "TEAM_ABBREVIATION", "AGE", "GP"}
	columns = append(columns, exemptStats...)
	for _, s := range suffixedStats {
		columns = append(columns, s+"_PER_GAME", s+"_TOTALS")
	}
	columns = append(columns, "season")

	table := dataset.NewTable(columns...)
	for _, pg := range perGame {
		tot, ok := totalsByID[pg.Player.ID]
		if !ok {
			continue
		}
		row := []string{
			strconv.Itoa(pg.Player.ID),
			pg.Player.FirstName + " " + pg.Player.LastName,
			pg.Team.Abbreviation,
			formatFloat(pg.Age),
			strconv.Itoa(pg.GamesPlayed),
		}
		for _, s := range exemptStats {
			row = append(row, formatFloat(statOf(pg.Stats, s)))
		}
		for _, s := range suffixedStats {
			row = append(row, formatFloat(statOf(pg.Stats, s)), formatFloat(statOf(tot.Stats, s)))
		}
		row = append(row, season)
		table.AppendRow(row)
	}
	return table, nil
}

type bdlTeamSeasonRaw struct {
	Team struct {
		ID           int    `json:"id"`
		FullName     string `json:"full_name"`
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
	GamesPlayed int                `json:"games_played"`
	Wins        int                `json:"wins"`
	Losses      int                `json:"losses"`
	Stats       map[string]float64 `json:"stats"`
}

func (c *Collector) fetchTeamSeason(ctx context.Context, season, perMode string) ([]bdlTeamSeasonRaw, error) {
	startYear, err := config.SeasonStartYear(season)
	if err != nil {
		return nil, err
	}

	var rows []bdlTeamSeasonRaw
	params := url.Values{
		"season":      {strconv.Itoa(startYear)},
		"season_type": {"regular"},
		"per_mode":    {perMode},
	}
	err = c.client.getPaginated(ctx, "/team_season_averages/general", params, func(data json.RawMessage) error {
		var page []bdlTeamSeasonRaw
		if err := json.Unmarshal(data, &page); err != nil {
			return fmt.Errorf("decode team season averages: %w", err)
		}
		rows = append(rows, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// teamStatsTable mirrors playerStatsTable for teams, with win/loss
// identity columns and a derived W_PCT.
func (c *Collector) teamStatsTable(ctx context.Context, season string) (dataset.Table, error) {
	c.logger.Info("Fetching team stats", "season", season)

	perGame, err := c.fetchTeamSeason(ctx, season, perModePerGame)
	if err != nil {
		return dataset.Table{}, err
	}
	totals, err := c.fetchTeamSeason(ctx, season, perModeTotals)
	if err != nil {
		return dataset.Table{}, err
	}

	totalsByID := make(map[int]bdlTeamSeasonRaw, len(totals))
	for _, r := range totals {
		totalsByID[r.Team.ID] = r
	}

	columns := []string{"TEAM_ID", "TEAM_NAME", "TEAM_ABBREVIATION", "GP", "W", "L", "W_PCT"}
	for _, s := range suffixedStats {
		columns = append(columns, s+"_PER_GAME", s+"_TOTALS")
	}
	columns = append(columns, "season")

	table := dataset.NewTable(columns...)
	for _, pg := range perGame {
		tot, ok := totalsByID[pg.Team.ID]
		if !ok {
			continue
		}
		winPct := 0.0
		if pg.GamesPlayed > 0 {
			winPct = float64(pg.Wins) / float64(pg.GamesPlayed)
		}
		row := []string{
			strconv.Itoa(pg.Team.ID),
			pg.Team.FullName,
			pg.Team.Abbreviation,
			strconv.Itoa(pg.GamesPlayed),
			strconv.Itoa(pg.Wins),
			strconv.Itoa(pg.Losses),
			formatFloat(winPct),
		}
		for _, s := range suffixedStats {
			row = append(row, formatFloat(statOf(pg.Stats, s)), formatFloat(statOf(tot.Stats, s)))
		}
		row = append(row, season)
		table.AppendRow(row)
	}
	return table, nil
}

// statOf reads a canonical stat key from an API stats map, tolerating the
// API's lower-case keys.
func statOf(stats map[string]float64, key string) float64 {
	if v, ok := stats[key]; ok {
		return v
	}
	return stats[strings.ToLower(key)]
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

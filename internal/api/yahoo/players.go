package yahoo

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

// playerBatch is the upstream cap on player keys per request.
const playerBatch = 25

// FetchPlayers returns season stats for the given players, requested in
// batches. Keys the upstream does not know are absent from the result.
func (l *League) FetchPlayers(ctx context.Context, keys []string) ([]models.Player, error) {
	players := make([]models.Player, 0, len(keys))
	for batch := range slices.Chunk(keys, playerBatch) {
		path := fmt.Sprintf("/league/%s/players;player_keys=%s/stats", l.info.Key, strings.Join(batch, ","))
		page, err := l.getPlayers(ctx, path, "league", "players")
		if err != nil {
			return nil, fmt.Errorf("fetching players: %w", err)
		}
		players = append(players, page...)
	}
	return players, nil
}

// FetchTopPlayersByPosition pages through the season points leaders of a
// position group. "F" stands for every forward position.
func (l *League) FetchTopPlayersByPosition(ctx context.Context, n int, group string) ([]models.Player, error) {
	positions := group
	if group == "F" {
		positions = "C,LW,RW"
	}

	var players []models.Player
	for start := 0; start < n; start += playerBatch {
		count := min(playerBatch, n-start)
		path := fmt.Sprintf("/league/%s/players;sort=PTS;sort_type=season;position=%s;start=%d;count=%d/stats",
			l.info.Key, positions, start, count)
		page, err := l.getPlayers(ctx, path, "league", "players")
		if err != nil {
			return nil, fmt.Errorf("fetching top %s players: %w", group, err)
		}
		players = append(players, page...)
		if len(page) < count {
			break
		}
	}
	if len(players) > n {
		players = players[:n]
	}
	return players, nil
}

// FetchWeeklyRoster returns the players on a team's roster in week with their
// stats for that week.
func (l *League) FetchWeeklyRoster(ctx context.Context, teamKey string, week int) ([]models.Player, error) {
	path := fmt.Sprintf("/team/%s/roster;week=%d/players/stats;type=week;week=%d", teamKey, week, week)
	players, err := l.getPlayers(ctx, path, "team", "roster", "players")
	if err != nil {
		return nil, fmt.Errorf("fetching roster for %s week %d: %w", teamKey, week, err)
	}
	return players, nil
}

// FetchPlayerPointsByDate sums each player's points over dates. Totals are
// rounded to one decimal once, after summing.
func (l *League) FetchPlayerPointsByDate(ctx context.Context, keys, dates []string) (map[string]models.PlayerTally, error) {
	tallies := make(map[string]models.PlayerTally, len(keys))
	if len(keys) == 0 || len(dates) == 0 {
		return tallies, nil
	}

	dateList := strings.Join(dates, ",")
	for batch := range slices.Chunk(keys, playerBatch) {
		path := fmt.Sprintf("/league/%s/players;player_keys=%s/stats_collection;types=date;date=%s",
			l.info.Key, strings.Join(batch, ","), dateList)
		page, err := l.getPlayers(ctx, path, "league", "players")
		if err != nil {
			return nil, fmt.Errorf("fetching player points by date: %w", err)
		}
		for _, p := range page {
			t, seen := tallies[p.Key]
			if !seen {
				t = models.PlayerTally{Name: p.Name, ImageURL: p.ImageURL}
			}
			t.Points += p.TotalPoints()
			tallies[p.Key] = t
		}
	}

	for key, t := range tallies {
		t.Points = models.Round1(t.Points)
		tallies[key] = t
	}
	return tallies, nil
}

// FetchTransactions returns the league's transaction log oldest first.
func (l *League) FetchTransactions(ctx context.Context) ([]models.Transaction, error) {
	path := fmt.Sprintf("/league/%s/transactions", l.info.Key)
	body, err := l.client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}

	sh := &shape{path: path}
	raw := node{body}.path("league", "transactions").items("transaction")
	txs := make([]models.Transaction, 0, len(raw))
	for _, t := range raw {
		tx := models.Transaction{
			Key:    t.child("transaction_key").str(),
			Type:   models.TransactionType(t.child("type").str()),
			Status: t.child("status").str(),
		}
		ts, err := strconv.ParseInt(sh.str(t.child("timestamp"), "timestamp"), 10, 64)
		if err != nil {
			sh.fail("timestamp")
		}
		tx.Timestamp = ts
		for _, p := range t.child("players").items("player") {
			data := p.child("transaction_data")
			tx.Players = append(tx.Players, models.TransactionPlayer{
				PlayerKey:          sh.str(p.child("player_key"), "player_key"),
				Name:               p.path("name", "full").str(),
				Type:               models.TransactionType(data.child("type").str()),
				SourceTeamKey:      data.child("source_team_key").str(),
				DestinationTeamKey: data.child("destination_team_key").str(),
			})
		}
		txs = append(txs, tx)
	}
	if sh.err != nil {
		return nil, sh.err
	}

	// Upstream lists newest first.
	slices.Reverse(txs)
	return txs, nil
}

// FetchDraftResults returns the league's draft picks. Picks without a player
// (unfilled keeper slots) are dropped.
func (l *League) FetchDraftResults(ctx context.Context) ([]models.DraftResult, error) {
	path := fmt.Sprintf("/league/%s/draftresults", l.info.Key)
	body, err := l.client.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("fetching draft results: %w", err)
	}

	var picks []models.DraftResult
	for _, d := range (node{body}).path("league", "draft_results").items("draft_result") {
		playerKey := d.child("player_key").str()
		if playerKey == "" {
			continue
		}
		pick, _ := d.child("pick").integer()
		round, _ := d.child("round").integer()
		picks = append(picks, models.DraftResult{
			Pick:      pick,
			Round:     round,
			TeamKey:   d.child("team_key").str(),
			PlayerKey: playerKey,
		})
	}
	return picks, nil
}

func (l *League) getPlayers(ctx context.Context, path string, tags ...string) ([]models.Player, error) {
	body, err := l.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}

	sh := &shape{path: path}
	raw := node{body}.path(tags...).items("player")
	players := make([]models.Player, 0, len(raw))
	for _, p := range raw {
		players = append(players, parsePlayer(sh, p))
	}
	if sh.err != nil {
		return nil, sh.err
	}
	return players, nil
}

func parsePlayer(sh *shape, n node) models.Player {
	p := models.Player{
		Key:             sh.str(n.child("player_key"), "player_key"),
		Name:            n.path("name", "full").str(),
		ImageURL:        n.child("image_url").str(),
		PrimaryPosition: n.child("primary_position").str(),
		Stats:           make(map[string]string),
	}
	if pts := n.child("player_points"); pts.exists() {
		p.Points = append(p.Points, periodPoints(pts))
	}
	for _, pts := range n.child("player_stats_collection").items("player_points") {
		p.Points = append(p.Points, periodPoints(pts))
	}
	for _, st := range n.path("player_stats", "stats").items("stat") {
		p.Stats[st.child("stat_id").str()] = st.child("value").str()
	}
	return p
}

func periodPoints(n node) models.PeriodPoints {
	period := n.child("date").str()
	if period == "" {
		period = n.child("week").str()
	}
	if period == "" {
		period = n.child("season").str()
	}
	return models.PeriodPoints{Period: period, Total: n.child("total").float()}
}

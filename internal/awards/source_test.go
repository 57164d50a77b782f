package awards

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

// fakeSource serves canned league data. Every Fetch method fails with err
// when it is set.
type fakeSource struct {
	info     models.League
	teams    []models.Team
	matchups []models.Matchup

	players      map[string]models.Player
	top          map[string][]models.Player
	rosters      map[string]map[int][]models.Player
	daily        models.DailyTeamPoints
	pointsByDate map[string]map[string]float64
	txs          []models.Transaction
	picks        []models.DraftResult
	weeks        map[int][]string
	err          error

	mu         sync.Mutex
	topCalls   []string
	rosterReqs []string
	dateReqs   [][]string
}

func (f *fakeSource) Info() models.League        { return f.info }
func (f *fakeSource) Teams() []models.Team       { return f.teams }
func (f *fakeSource) Matchups() []models.Matchup { return f.matchups }

func (f *fakeSource) Team(key string) (models.Team, bool) {
	for _, t := range f.teams {
		if t.Key == key {
			return t, true
		}
	}
	return models.Team{}, false
}

func (f *fakeSource) TeamName(key string) string {
	if t, ok := f.Team(key); ok {
		return t.Name
	}
	return "Unknown"
}

func (f *fakeSource) Opponent(teamKey string, week int) (string, bool) {
	for _, m := range f.matchups {
		if m.Week != week {
			continue
		}
		if _, opp, ok := m.Side(teamKey); ok {
			return opp.TeamKey, true
		}
	}
	return "", false
}

func (f *fakeSource) WeekDates(_ context.Context, week int) ([]string, error) {
	dates, ok := f.weeks[week]
	if !ok {
		return nil, fmt.Errorf("week %d not in game calendar", week)
	}
	return dates, nil
}

func (f *fakeSource) FetchPlayers(_ context.Context, keys []string) ([]models.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Player, 0, len(keys))
	for _, k := range keys {
		if p, ok := f.players[k]; ok {
			out = append(out, p)
		}
	}
	// Upstream order is not guaranteed to follow the request.
	slices.Reverse(out)
	return out, nil
}

func (f *fakeSource) FetchTopPlayersByPosition(_ context.Context, n int, group string) ([]models.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.topCalls = append(f.topCalls, fmt.Sprintf("%s:%d", group, n))
	f.mu.Unlock()
	top := f.top[group]
	return top[:min(n, len(top))], nil
}

func (f *fakeSource) FetchWeeklyRoster(_ context.Context, teamKey string, week int) ([]models.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.rosterReqs = append(f.rosterReqs, fmt.Sprintf("%s/%d", teamKey, week))
	f.mu.Unlock()
	return f.rosters[teamKey][week], nil
}

func (f *fakeSource) FetchPlayerPointsByDate(_ context.Context, keys, dates []string) (map[string]models.PlayerTally, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.dateReqs = append(f.dateReqs, dates)
	f.mu.Unlock()
	out := make(map[string]models.PlayerTally, len(keys))
	for _, k := range keys {
		var total float64
		for _, d := range dates {
			total += f.pointsByDate[k][d]
		}
		p := f.players[k]
		out[k] = models.PlayerTally{Name: p.Name, ImageURL: p.ImageURL, Points: models.Round1(total)}
	}
	return out, nil
}

func (f *fakeSource) FetchTransactions(context.Context) ([]models.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.txs, nil
}

func (f *fakeSource) FetchDraftResults(context.Context) ([]models.DraftResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.picks, nil
}

func (f *fakeSource) DailyTeamPoints(context.Context) (models.DailyTeamPoints, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.daily, nil
}

func date(s string) time.Time {
	t, err := time.ParseInLocation(models.DateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func team(key, name string) models.Team {
	return models.Team{Key: key, Name: name, LogoURL: "http://logo/" + key}
}

func side(key, name string, points float64) models.TeamSide {
	return models.TeamSide{TeamKey: key, Name: name, Points: points}
}

func matchup(week int, a, b models.TeamSide) models.Matchup {
	m := models.Matchup{Week: week, Teams: [2]models.TeamSide{a, b}}
	switch {
	case a.Points > b.Points:
		m.WinnerTeamKey = a.TeamKey
	case b.Points > a.Points:
		m.WinnerTeamKey = b.TeamKey
	default:
		m.IsTied = true
	}
	return m
}

func player(key, name, position string, points float64) models.Player {
	return models.Player{
		Key:             key,
		Name:            name,
		ImageURL:        "http://img/" + key,
		PrimaryPosition: position,
		Points:          []models.PeriodPoints{{Period: "season", Total: points}},
		Stats:           map[string]string{},
	}
}

func listItems(r models.Result) []models.ListItem {
	return r.Data.([]models.ListItem)
}

func resultByID(results []models.Result, id string) models.Result {
	for _, r := range results {
		if r.ID == id {
			return r
		}
	}
	panic("no result " + id)
}

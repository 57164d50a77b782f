// Package awards computes season awards from a league's data. Every award is
// produced by an independent computation; computations share nothing but the
// read-only league data exposed by Source and may run concurrently.
package awards

import (
	"context"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

// Source is the league data an award computation reads. League, team and
// matchup data is loaded up front; the Fetch methods go upstream.
type Source interface {
	Info() models.League
	Teams() []models.Team
	Matchups() []models.Matchup
	Team(key string) (models.Team, bool)
	TeamName(key string) string
	Opponent(teamKey string, week int) (string, bool)
	WeekDates(ctx context.Context, week int) ([]string, error)

	FetchPlayers(ctx context.Context, keys []string) ([]models.Player, error)
	FetchTopPlayersByPosition(ctx context.Context, n int, group string) ([]models.Player, error)
	FetchWeeklyRoster(ctx context.Context, teamKey string, week int) ([]models.Player, error)
	FetchPlayerPointsByDate(ctx context.Context, keys, dates []string) (map[string]models.PlayerTally, error)
	FetchTransactions(ctx context.Context) ([]models.Transaction, error)
	FetchDraftResults(ctx context.Context) ([]models.DraftResult, error)
	DailyTeamPoints(ctx context.Context) (models.DailyTeamPoints, error)
}

// Computation is one unit of concurrent work. It yields one result per id
// in IDs.
type Computation struct {
	Name string
	IDs  []string
	Run  func(ctx context.Context, src Source) ([]models.Result, error)
}

type Options struct {
	// RosterConcurrency bounds concurrent weekly roster fetches.
	RosterConcurrency int
}

type Engine struct {
	rosterConcurrency int
}

func New(opts Options) *Engine {
	return &Engine{rosterConcurrency: max(opts.RosterConcurrency, 1)}
}

// Computations lists every award computation. Callers must not rely on
// this order for emission.
func (e *Engine) Computations() []Computation {
	return []Computation{
		{Name: "standings", IDs: []string{IDStandings}, Run: Standings},
		{Name: "alternative_realities", IDs: []string{IDAlternativeRealities}, Run: AlternativeRealities},
		{Name: "draft", IDs: []string{IDDraftBusts, IDDraftSteals, IDDraftGuru}, Run: Draft},
		{Name: "team_season", IDs: []string{IDOneManArmy, IDTeamTormentor, IDMostHits}, Run: e.TeamSeason},
		{Name: "comebacks", IDs: []string{IDBiggestComeback}, Run: BiggestComebacks},
		{Name: "worst_drops", IDs: []string{IDWorstDrops}, Run: WorstDrops},
		{Name: "most_dropped", IDs: []string{IDMostDropped}, Run: MostDropped},
		{Name: "matchups", IDs: []string{IDClosestMatchups, IDBiggestBlowouts, IDRivalryDominance}, Run: MatchupRecords},
	}
}

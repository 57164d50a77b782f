package awards

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

// hitsStatID is the upstream stat id for hits.
const hitsStatID = "31"

// tally accumulates player points keyed by player key, remembering the order
// players were first seen so ties resolve deterministically.
type tally struct {
	order []string
	byKey map[string]*models.PlayerTally
	total float64
}

func newTally() *tally {
	return &tally{byKey: make(map[string]*models.PlayerTally)}
}

func (t *tally) add(p models.Player, points float64) {
	entry, ok := t.byKey[p.Key]
	if !ok {
		entry = &models.PlayerTally{Name: p.Name, ImageURL: p.ImageURL}
		t.byKey[p.Key] = entry
		t.order = append(t.order, p.Key)
	}
	entry.Points += points
	t.total += points
}

// top returns the highest-scoring player; the earliest seen wins ties.
func (t *tally) top() (models.PlayerTally, bool) {
	var best *models.PlayerTally
	for _, key := range t.order {
		if entry := t.byKey[key]; best == nil || entry.Points > best.Points {
			best = entry
		}
	}
	if best == nil {
		return models.PlayerTally{}, false
	}
	return *best, true
}

type rosterWeek struct {
	teamKey string
	oppKey  string
	week    int
	players []models.Player
}

type teamLeader struct {
	teamKey string
	player  models.PlayerTally
	pct     int
}

// TeamSeason walks every team's weekly rosters once and derives the
// one-man-army, team-tormentor and hit totals from the traversal.
func (e *Engine) TeamSeason(ctx context.Context, src Source) ([]models.Result, error) {
	weeks, err := e.fetchRosters(ctx, src)
	if err != nil {
		return nil, err
	}

	teams := src.Teams()
	own := make(map[string]*tally, len(teams))
	against := make(map[string]*tally, len(teams))
	hits := make(map[string]int, len(teams))
	for _, team := range teams {
		own[team.Key] = newTally()
		against[team.Key] = newTally()
	}

	for _, rw := range weeks {
		for _, p := range rw.players {
			if n, ok := p.StatInt(hitsStatID); ok {
				hits[rw.teamKey] += n
			}
			points := p.TotalPoints()
			if points == 0 {
				continue
			}
			own[rw.teamKey].add(p, points)
			if opp, ok := against[rw.oppKey]; ok {
				opp.add(p, points)
			}
		}
	}

	return []models.Result{
		result(IDOneManArmy, oneManArmy(src, teams, own)),
		result(IDTeamTormentor, tormentors(src, teams, against)),
		result(IDMostHits, mostHits(teams, hits)),
	}, nil
}

// fetchRosters loads every (team, week) roster with bounded concurrency and
// returns them in team then week order. Bye weeks are skipped.
func (e *Engine) fetchRosters(ctx context.Context, src Source) ([]rosterWeek, error) {
	info := src.Info()
	var weeks []rosterWeek
	for _, team := range src.Teams() {
		for week := info.StartWeek; week <= info.EndWeek; week++ {
			opp, ok := src.Opponent(team.Key, week)
			if !ok {
				continue
			}
			weeks = append(weeks, rosterWeek{teamKey: team.Key, oppKey: opp, week: week})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.rosterConcurrency)
	for i := range weeks {
		rw := &weeks[i]
		g.Go(func() error {
			players, err := src.FetchWeeklyRoster(gctx, rw.teamKey, rw.week)
			if err != nil {
				return fmt.Errorf("fetching roster: %w", err)
			}
			rw.players = players
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return weeks, nil
}

func oneManArmy(src Source, teams []models.Team, own map[string]*tally) []models.ListItem {
	var leaders []teamLeader
	for _, team := range teams {
		t := own[team.Key]
		top, ok := t.top()
		if !ok || t.total == 0 {
			continue
		}
		leaders = append(leaders, teamLeader{
			teamKey: team.Key,
			player:  top,
			pct:     int(math.RoundToEven(top.Points / t.total * 100)),
		})
	}
	slices.SortStableFunc(leaders, func(a, b teamLeader) int { return cmp.Compare(b.pct, a.pct) })

	items := make([]models.ListItem, 0, len(leaders))
	for _, l := range leaders {
		items = append(items, models.ListItem{
			ImageURL: l.player.ImageURL,
			MainText: l.player.Name,
			SubText:  src.TeamName(l.teamKey),
			Stat:     fmt.Sprintf("%d%%", l.pct),
		})
	}
	return ranked(items, 0)
}

func tormentors(src Source, teams []models.Team, against map[string]*tally) []models.ListItem {
	var leaders []teamLeader
	for _, team := range teams {
		if top, ok := against[team.Key].top(); ok {
			leaders = append(leaders, teamLeader{teamKey: team.Key, player: top})
		}
	}
	slices.SortStableFunc(leaders, func(a, b teamLeader) int {
		return cmp.Compare(b.player.Points, a.player.Points)
	})

	items := make([]models.ListItem, 0, len(leaders))
	for _, l := range leaders {
		items = append(items, models.ListItem{
			ImageURL: l.player.ImageURL,
			MainText: l.player.Name,
			SubText:  src.TeamName(l.teamKey),
			Stat:     pts(l.player.Points),
		})
	}
	return ranked(items, 0)
}

func mostHits(teams []models.Team, hits map[string]int) []models.ListItem {
	sorted := slices.Clone(teams)
	slices.SortStableFunc(sorted, func(a, b models.Team) int { return cmp.Compare(hits[b.Key], hits[a.Key]) })

	items := make([]models.ListItem, 0, len(sorted))
	for _, team := range sorted {
		items = append(items, models.ListItem{
			ImageURL: team.LogoURL,
			MainText: team.Name,
			Stat:     fmt.Sprintf("%d hits", hits[team.Key]),
		})
	}
	return ranked(items, 0)
}

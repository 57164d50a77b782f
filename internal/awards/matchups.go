package awards

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

const matchupTop = 10

type matchupRecord struct {
	winner   models.TeamSide
	loser    models.TeamSide
	diff     float64
	tied     bool
	playoffs bool
}

type rivalry struct {
	teams    [2]models.TeamSide
	playoffs bool
}

// MatchupRecords derives the closest matchups, the biggest blowouts and the
// most lopsided head-to-head rivalries from the season's matchups.
func MatchupRecords(_ context.Context, src Source) ([]models.Result, error) {
	records := completedMatchups(src)

	closest := slices.Clone(records)
	slices.SortStableFunc(closest, func(a, b matchupRecord) int { return cmp.Compare(a.diff, b.diff) })
	blowouts := slices.Clone(records)
	slices.SortStableFunc(blowouts, func(a, b matchupRecord) int { return cmp.Compare(b.diff, a.diff) })

	return []models.Result{
		result(IDClosestMatchups, ranked(matchupItems(closest), matchupTop)),
		result(IDBiggestBlowouts, ranked(matchupItems(blowouts), matchupTop)),
		result(IDRivalryDominance, ranked(rivalryItems(src), matchupTop)),
	}, nil
}

// completedMatchups orients every played matchup winner first. Matchups in
// which neither side has scored yet are skipped.
func completedMatchups(src Source) []matchupRecord {
	var records []matchupRecord
	for _, m := range src.Matchups() {
		a, b := withLogo(src, m.Teams[0]), withLogo(src, m.Teams[1])
		if a.Points == 0 && b.Points == 0 {
			continue
		}
		if b.Points > a.Points {
			a, b = b, a
		}
		records = append(records, matchupRecord{
			winner:   a,
			loser:    b,
			diff:     round2(math.Abs(a.Points - b.Points)),
			tied:     m.IsTied,
			playoffs: m.IsPlayoffs,
		})
	}
	return records
}

func withLogo(src Source, side models.TeamSide) models.TeamSide {
	if side.LogoURL == "" {
		if team, ok := src.Team(side.TeamKey); ok {
			side.LogoURL = team.LogoURL
		}
	}
	return side
}

func matchupItems(records []matchupRecord) []models.ListItem {
	items := make([]models.ListItem, 0, len(records))
	for _, r := range records {
		text := fmt.Sprintf("%s (%s) def. %s (%s)", r.winner.Name, score(r.winner.Points), r.loser.Name, score(r.loser.Points))
		if r.tied {
			text = fmt.Sprintf("%s and %s tied", r.winner.Name, r.loser.Name)
		}
		items = append(items, models.ListItem{
			ImageURL: r.winner.LogoURL,
			MainText: text,
			SubText:  playoffsLabel(r.playoffs),
			Stat:     score(r.diff),
		})
	}
	return items
}

// rivalryItems totals each pairing's points across all of its matchups and
// ranks pairings by the leader's margin.
func rivalryItems(src Source) []models.ListItem {
	index := make(map[[2]string]int)
	var rivalries []rivalry
	for _, m := range src.Matchups() {
		a, b := withLogo(src, m.Teams[0]), withLogo(src, m.Teams[1])
		if a.Points == 0 && b.Points == 0 {
			continue
		}
		key := [2]string{a.TeamKey, b.TeamKey}
		if key[1] < key[0] {
			key = [2]string{b.TeamKey, a.TeamKey}
		}
		i, seen := index[key]
		if !seen {
			i = len(rivalries)
			index[key] = i
			first, second := a, b
			first.Points, second.Points = 0, 0
			rivalries = append(rivalries, rivalry{teams: [2]models.TeamSide{first, second}})
		}
		r := &rivalries[i]
		for _, side := range m.Teams {
			if r.teams[0].TeamKey == side.TeamKey {
				r.teams[0].Points += side.Points
			} else {
				r.teams[1].Points += side.Points
			}
		}
		r.playoffs = r.playoffs || m.IsPlayoffs
	}

	for i := range rivalries {
		if rivalries[i].teams[1].Points > rivalries[i].teams[0].Points {
			rivalries[i].teams[0], rivalries[i].teams[1] = rivalries[i].teams[1], rivalries[i].teams[0]
		}
	}
	margin := func(r rivalry) float64 { return round2(r.teams[0].Points - r.teams[1].Points) }
	slices.SortStableFunc(rivalries, func(a, b rivalry) int { return cmp.Compare(margin(b), margin(a)) })

	items := make([]models.ListItem, 0, len(rivalries))
	for _, r := range rivalries {
		leader, trailer := r.teams[0], r.teams[1]
		items = append(items, models.ListItem{
			ImageURL: leader.LogoURL,
			MainText: fmt.Sprintf("%s (%s) def. %s (%s)", leader.Name, score(leader.Points), trailer.Name, score(trailer.Points)),
			SubText:  playoffsLabel(r.playoffs),
			Stat:     score(margin(r)),
		})
	}
	return items
}

func playoffsLabel(playoffs bool) string {
	if playoffs {
		return "playoffs"
	}
	return ""
}

package awards

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

const comebackTop = 5

type comeback struct {
	week    int
	winner  models.TeamSide
	loser   models.TeamSide
	deficit float64
}

func (c comeback) key() string {
	return fmt.Sprintf("%d.%s", c.week, c.winner.TeamKey)
}

// BiggestComebacks finds the largest running deficit each eventual winner
// overcame within a week. The final day of a matchup is not counted.
func BiggestComebacks(ctx context.Context, src Source) ([]models.Result, error) {
	daily, err := src.DailyTeamPoints(ctx)
	if err != nil {
		return nil, err
	}

	var records []comeback
	for _, m := range src.Matchups() {
		winner, loser, ok := m.Winner()
		if !ok {
			continue
		}
		dates, err := matchupDates(ctx, src, m)
		if err != nil {
			return nil, err
		}
		var deficit float64
		for _, date := range dates[:max(len(dates)-1, 0)] {
			winnerPts, _ := daily.On(winner.TeamKey, date)
			loserPts, _ := daily.On(loser.TeamKey, date)
			deficit = models.Round1(deficit + loserPts - winnerPts)
			if deficit > 0 {
				records = append(records, comeback{week: m.Week, winner: winner, loser: loser, deficit: deficit})
			}
		}
	}

	records = dedupeComebacks(records)
	slices.SortStableFunc(records, func(a, b comeback) int { return cmp.Compare(b.deficit, a.deficit) })

	items := make([]models.ListItem, 0, len(records))
	for _, c := range records {
		image := c.winner.LogoURL
		if image == "" {
			if team, ok := src.Team(c.winner.TeamKey); ok {
				image = team.LogoURL
			}
		}
		items = append(items, models.ListItem{
			ImageURL: image,
			MainText: c.winner.Name,
			SubText:  fmt.Sprintf("Week %d vs %s", c.week, c.loser.Name),
			Stat:     pts(c.deficit),
		})
	}
	return []models.Result{result(IDBiggestComeback, ranked(items, comebackTop))}, nil
}

// matchupDates lists the scoring dates of a matchup. Matchups that carry no
// week bounds fall back to the league's game-week calendar.
func matchupDates(ctx context.Context, src Source, m models.Matchup) ([]string, error) {
	if !m.WeekStart.IsZero() && !m.WeekEnd.IsZero() {
		return models.Dates(m.WeekStart, m.WeekEnd), nil
	}
	dates, err := src.WeekDates(ctx, m.Week)
	if err != nil {
		return nil, fmt.Errorf("dating week %d: %w", m.Week, err)
	}
	return dates, nil
}

// dedupeComebacks keeps the largest deficit per (week, winner), in order of
// first appearance.
func dedupeComebacks(records []comeback) []comeback {
	index := make(map[string]int, len(records))
	var out []comeback
	for _, r := range records {
		i, seen := index[r.key()]
		if !seen {
			index[r.key()] = len(out)
			out = append(out, r)
			continue
		}
		if r.deficit > out[i].deficit {
			out[i] = r
		}
	}
	return out
}

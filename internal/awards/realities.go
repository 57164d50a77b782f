package awards

import (
	"context"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

type weekScore struct {
	own      float64
	oppKey   string
	oppScore float64
}

// AlternativeRealities builds the schedule-swap matrix. Cell (A, B) is the
// share of B's regular-season opponents that A's weekly score would have
// beaten, ties counting half. Weeks in which B faced A are left out; a cell
// with no eligible weeks is null.
func AlternativeRealities(_ context.Context, src Source) ([]models.Result, error) {
	info := src.Info()
	teams := src.Teams()

	schedules := make(map[string]map[int]weekScore, len(teams))
	for _, m := range src.Matchups() {
		if m.Week < info.StartWeek || m.Week >= info.PlayoffStartWeek {
			continue
		}
		a, b := m.Teams[0], m.Teams[1]
		record(schedules, a.TeamKey, m.Week, weekScore{own: a.Points, oppKey: b.TeamKey, oppScore: b.Points})
		record(schedules, b.TeamKey, m.Week, weekScore{own: b.Points, oppKey: a.TeamKey, oppScore: a.Points})
	}

	matrix := make([][]*string, len(teams))
	headers := make([]string, len(teams))
	for i, a := range teams {
		headers[i] = a.Name
		matrix[i] = make([]*string, len(teams))
		for j, b := range teams {
			matrix[i][j] = swapRecord(a.Key, schedules[a.Key], schedules[b.Key])
		}
	}

	return []models.Result{{ID: IDAlternativeRealities, Data: matrix, Headers: headers}}, nil
}

func record(schedules map[string]map[int]weekScore, teamKey string, week int, s weekScore) {
	weeks, ok := schedules[teamKey]
	if !ok {
		weeks = make(map[int]weekScore)
		schedules[teamKey] = weeks
	}
	weeks[week] = s
}

// swapRecord plays team a's weekly scores against b's schedule.
func swapRecord(aKey string, a, b map[int]weekScore) *string {
	var wins float64
	var weeks int
	for week, bWeek := range b {
		if bWeek.oppKey == aKey {
			continue
		}
		aWeek, ok := a[week]
		if !ok {
			continue
		}
		switch {
		case aWeek.own > bWeek.oppScore:
			wins++
		case aWeek.own == bWeek.oppScore:
			wins += 0.5
		}
		weeks++
	}
	if weeks == 0 {
		return nil
	}
	pct := models.Fixed(wins/float64(weeks), 3)
	return &pct
}

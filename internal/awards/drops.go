package awards

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

const (
	worstDropsTop  = 10
	mostDroppedTop = 10
)

type dropKey struct {
	playerKey string
	teamKey   string
}

type dropTally struct {
	dropKey
	name   string
	image  string
	points float64
}

// dropReplay replays the transaction log, scoring every dropped player's
// points to each team that dropped them until that team adds them back.
type dropReplay struct {
	src     Source
	tracked map[string]map[string]bool
	order   []dropKey
	totals  map[dropKey]*dropTally
}

func newDropReplay(src Source) *dropReplay {
	return &dropReplay{
		src:     src,
		tracked: make(map[string]map[string]bool),
		totals:  make(map[dropKey]*dropTally),
	}
}

func (r *dropReplay) apply(p models.TransactionPlayer) {
	switch p.Type {
	case models.TransactionDrop:
		if p.SourceTeamKey == "" {
			return
		}
		teams, ok := r.tracked[p.PlayerKey]
		if !ok {
			teams = make(map[string]bool)
			r.tracked[p.PlayerKey] = teams
		}
		teams[p.SourceTeamKey] = true
	case models.TransactionAdd:
		teams, ok := r.tracked[p.PlayerKey]
		if !ok {
			return
		}
		delete(teams, p.DestinationTeamKey)
		if len(teams) == 0 {
			delete(r.tracked, p.PlayerKey)
		}
	}
}

// settle credits every tracked player's points from..to (inclusive) to the
// teams currently tracking them.
func (r *dropReplay) settle(ctx context.Context, from, to time.Time) error {
	if from.After(to) || len(r.tracked) == 0 {
		return nil
	}
	keys := slices.Sorted(maps.Keys(r.tracked))
	tallies, err := r.src.FetchPlayerPointsByDate(ctx, keys, models.Dates(from, to))
	if err != nil {
		return err
	}
	for _, playerKey := range keys {
		t, ok := tallies[playerKey]
		if !ok {
			continue
		}
		for _, teamKey := range slices.Sorted(maps.Keys(r.tracked[playerKey])) {
			k := dropKey{playerKey: playerKey, teamKey: teamKey}
			acc, ok := r.totals[k]
			if !ok {
				acc = &dropTally{dropKey: k, name: t.Name, image: t.ImageURL}
				r.totals[k] = acc
				r.order = append(r.order, k)
			}
			acc.points += t.Points
		}
	}
	return nil
}

// WorstDrops ranks dropped players by the points they scored after being
// dropped, credited to the dropping team. Each day is scored against the
// roster state at the end of that day. Drops before the season start are
// tracked but only scored from the start date.
func WorstDrops(ctx context.Context, src Source) ([]models.Result, error) {
	txs, err := src.FetchTransactions(ctx)
	if err != nil {
		return nil, err
	}
	info := src.Info()
	loc := info.Location
	if loc == nil {
		loc = time.UTC
	}

	r := newDropReplay(src)
	cursor, end := info.StartDate, info.EndDate
	done := false
	for _, tx := range txs {
		if !tx.Successful() {
			continue
		}
		day := dayOf(tx.Timestamp, loc)
		if day.After(cursor) {
			through := day.AddDate(0, 0, -1)
			if through.After(end) {
				through = end
			}
			if err := r.settle(ctx, cursor, through); err != nil {
				return nil, fmt.Errorf("scoring dropped players: %w", err)
			}
			if day.After(end) {
				done = true
				break
			}
			cursor = day
		}
		for _, p := range tx.Players {
			r.apply(p)
		}
	}
	if !done {
		if err := r.settle(ctx, cursor, end); err != nil {
			return nil, fmt.Errorf("scoring dropped players: %w", err)
		}
	}

	drops := make([]*dropTally, 0, len(r.order))
	for _, k := range r.order {
		drops = append(drops, r.totals[k])
	}
	slices.SortStableFunc(drops, func(a, b *dropTally) int { return cmp.Compare(b.points, a.points) })

	items := make([]models.ListItem, 0, len(drops))
	for _, d := range drops {
		items = append(items, models.ListItem{
			ImageURL: d.image,
			MainText: d.name,
			SubText:  src.TeamName(d.teamKey),
			Stat:     pts(d.points),
		})
	}
	return []models.Result{result(IDWorstDrops, ranked(items, worstDropsTop))}, nil
}

func dayOf(timestamp int64, loc *time.Location) time.Time {
	t := time.Unix(timestamp, 0).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

type dropCount struct {
	playerKey string
	name      string
	count     int
}

// MostDropped counts how often each player was dropped in successful drop
// and add/drop transactions.
func MostDropped(ctx context.Context, src Source) ([]models.Result, error) {
	txs, err := src.FetchTransactions(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var counts []dropCount
	for _, tx := range txs {
		if !tx.Successful() || (tx.Type != models.TransactionDrop && tx.Type != models.TransactionAddDrop) {
			continue
		}
		for _, p := range tx.Players {
			if p.Type != models.TransactionDrop {
				continue
			}
			i, seen := index[p.PlayerKey]
			if !seen {
				i = len(counts)
				index[p.PlayerKey] = i
				counts = append(counts, dropCount{playerKey: p.PlayerKey, name: p.Name})
			}
			counts[i].count++
		}
	}
	slices.SortStableFunc(counts, func(a, b dropCount) int { return cmp.Compare(b.count, a.count) })
	if len(counts) > mostDroppedTop {
		counts = counts[:mostDroppedTop]
	}

	keys := make([]string, 0, len(counts))
	for _, c := range counts {
		keys = append(keys, c.playerKey)
	}
	players, err := src.FetchPlayers(ctx, keys)
	if err != nil {
		return nil, err
	}
	images := make(map[string]string, len(players))
	for _, p := range players {
		images[p.Key] = p.ImageURL
	}

	items := make([]models.ListItem, 0, len(counts))
	for _, c := range counts {
		items = append(items, models.ListItem{
			ImageURL: images[c.playerKey],
			MainText: c.name,
			Stat:     fmt.Sprintf("%d add/drops", c.count),
		})
	}
	return []models.Result{result(IDMostDropped, ranked(items, 0))}, nil
}

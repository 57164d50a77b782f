package awards

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

const draftTop = 5

// positionGroups maps a primary position to the bucket drafted players are
// ranked within.
var positionGroups = map[string]string{
	"C":  "F",
	"LW": "F",
	"RW": "F",
	"D":  "D",
	"G":  "G",
}

var groupOrder = []string{"F", "D", "G"}

type draftedPlayer struct {
	player  models.Player
	teamKey string
}

type draftDiff struct {
	diff float64
	draftedPlayer
}

// Draft ranks every drafted player against the player of equal rank in the
// same position group and reports the five biggest busts and steals. It also
// ranks each team's draft by the season points its picks produced.
func Draft(ctx context.Context, src Source) ([]models.Result, error) {
	picks, err := src.FetchDraftResults(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(picks))
	for _, pick := range picks {
		keys = append(keys, pick.PlayerKey)
	}
	players, err := src.FetchPlayers(ctx, keys)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]models.Player, len(players))
	for _, p := range players {
		byKey[p.Key] = p
	}

	// Buckets keep draft order so the Kth pick of a group meets the Kth best.
	buckets := make(map[string][]draftedPlayer, len(groupOrder))
	for _, pick := range picks {
		p, ok := byKey[pick.PlayerKey]
		if !ok {
			slog.Debug("Drafted player missing from upstream", "player", pick.PlayerKey)
			continue
		}
		group, ok := positionGroups[p.PrimaryPosition]
		if !ok {
			slog.Debug("Drafted player has no position group", "player", p.Key, "position", p.PrimaryPosition)
			continue
		}
		buckets[group] = append(buckets[group], draftedPlayer{player: p, teamKey: pick.TeamKey})
	}

	var diffs []draftDiff
	for _, group := range groupOrder {
		drafted := buckets[group]
		if len(drafted) == 0 {
			continue
		}
		top, err := src.FetchTopPlayersByPosition(ctx, len(drafted), group)
		if err != nil {
			return nil, fmt.Errorf("ranking %s players: %w", group, err)
		}
		diffs = append(diffs, pairByRank(drafted, top)...)
	}

	busts := slices.Clone(diffs)
	slices.SortStableFunc(busts, func(a, b draftDiff) int { return cmp.Compare(a.diff, b.diff) })
	steals := slices.Clone(diffs)
	slices.SortStableFunc(steals, func(a, b draftDiff) int { return cmp.Compare(b.diff, a.diff) })

	return []models.Result{
		result(IDDraftBusts, ranked(draftItems(src, busts, pts), draftTop)),
		result(IDDraftSteals, ranked(draftItems(src, steals, signedPts), draftTop)),
		result(IDDraftGuru, draftGuru(src, picks, byKey)),
	}, nil
}

// pairByRank compares the Kth drafted player with the Kth top player.
func pairByRank(drafted []draftedPlayer, top []models.Player) []draftDiff {
	n := min(len(drafted), len(top))
	diffs := make([]draftDiff, 0, n)
	for i := range n {
		diffs = append(diffs, draftDiff{
			diff:          models.Round1(drafted[i].player.TotalPoints() - top[i].TotalPoints()),
			draftedPlayer: drafted[i],
		})
	}
	return diffs
}

func draftItems(src Source, diffs []draftDiff, stat func(float64) string) []models.ListItem {
	items := make([]models.ListItem, 0, len(diffs))
	for _, d := range diffs {
		items = append(items, models.ListItem{
			ImageURL: d.player.ImageURL,
			MainText: d.player.Name,
			SubText:  src.TeamName(d.teamKey),
			Stat:     stat(d.diff),
		})
	}
	return items
}

// draftGuru sums the season points of every team's picks.
func draftGuru(src Source, picks []models.DraftResult, byKey map[string]models.Player) []models.ListItem {
	totals := make(map[string]float64)
	for _, pick := range picks {
		if p, ok := byKey[pick.PlayerKey]; ok {
			totals[pick.TeamKey] += p.TotalPoints()
		}
	}

	teams := slices.Clone(src.Teams())
	slices.SortStableFunc(teams, func(a, b models.Team) int {
		return cmp.Compare(totals[b.Key], totals[a.Key])
	})

	items := make([]models.ListItem, 0, len(teams))
	for _, team := range teams {
		items = append(items, models.ListItem{
			ImageURL: team.LogoURL,
			MainText: team.Name,
			Stat:     pts(totals[team.Key]),
		})
	}
	return ranked(items, 0)
}

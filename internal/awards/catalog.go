package awards

import (
	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

const (
	IDStandings            = "official_standings"
	IDAlternativeRealities = "alternative_realities"
	IDDraftSteals          = "draft_steals"
	IDDraftBusts           = "draft_busts"
	IDDraftGuru            = "best_worst_drafts"
	IDOneManArmy           = "one_man_army"
	IDTeamTormentor        = "team_tormentor"
	IDMostHits             = "most_hits"
	IDBiggestComeback      = "biggest_comeback"
	IDWorstDrops           = "the_one_that_got_away"
	IDMostDropped          = "most_dropped"
	IDClosestMatchups      = "closest_matchups"
	IDBiggestBlowouts      = "biggest_blowouts"
	IDRivalryDominance     = "rivalry_dominance"
)

// catalogOrder is the presentation order used when listing awards.
var catalogOrder = []string{
	IDStandings,
	IDAlternativeRealities,
	IDDraftSteals,
	IDDraftBusts,
	IDDraftGuru,
	IDOneManArmy,
	IDTeamTormentor,
	IDMostHits,
	IDBiggestComeback,
	IDWorstDrops,
	IDMostDropped,
	IDClosestMatchups,
	IDBiggestBlowouts,
	IDRivalryDominance,
}

var catalog = map[string]models.AwardMeta{
	IDStandings: {
		Title:       `"Official" Results`,
		Description: "Sure, these are the official results. But were they really the best team? The luckiest? The biggest flop? Keep scrolling to uncover the real winners and losers of the season.",
		Type:        models.DisplayList,
	},
	IDAlternativeRealities: {
		Title:       "Alternative Realities",
		Description: "What if your team had a different schedule? This matrix reimagines the season by swapping team schedules, showing how records would have changed in an alternate universe. Did bad luck hold you back, or were you truly dominant no matter the matchups?",
		Type:        models.DisplayTable,
	},
	IDDraftSteals: {
		Title:       "Draft Steal",
		Description: "Some picks turn out to be absolute gems! This metric highlights the player who delivered the biggest return on investment, massively outperforming their draft position. Whether it was a late-round sleeper who dominated or a mid-round pick who played like a first-rounder, this is your league's ultimate steal of the draft.",
		Type:        models.DisplayList,
	},
	IDDraftBusts: {
		Title:       "Draft Bust",
		Description: "Not all picks live up to the hype. This metric identifies the player who fell the hardest from expectations, drastically underperforming their draft position. Whether it was due to injuries, poor form, or just bad luck, this was the pick that stung the most for fantasy managers.",
		Type:        models.DisplayList,
	},
	IDDraftGuru: {
		Title:       "Draft Guru",
		Description: "Some managers are elite scouts and have a keen eye for talent! Let's take a look at who had the best drafts in your league (let's just hope they didn't drop their drafted players).",
		Type:        models.DisplayList,
	},
	IDOneManArmy: {
		Title:       "One-Man Army",
		Description: "This metric highlights the player who carried the biggest scoring burden for their team by contributing the highest percentage of their team's total points. A high percentage means this player was the go-to option, shouldering most of the team's fantasy production.",
		Type:        models.DisplayList,
	},
	IDTeamTormentor: {
		Title:       "Team Tormentor",
		Description: "This metric identifies the player who scored the most total points against a single team, revealing their toughest matchup.",
		Type:        models.DisplayList,
	},
	IDMostHits: {
		Title:       "Hit Parade",
		Description: "Some teams play the body. These are the teams whose rosters threw the most hits over the season.",
		Type:        models.DisplayList,
	},
	IDBiggestComeback: {
		Title:       "Greatest Comebacks",
		Description: "The most impressive turnarounds of the season! This stat highlights the teams that overcame the largest point deficits to secure a victory in a single week, proving that no lead is ever safe.",
		Type:        models.DisplayList,
	},
	IDWorstDrops: {
		Title:       "The One That Got Away",
		Description: `These players were the ultimate "what could have been" stories of the season. After being dropped, they went on to rack up the most points, leaving their former managers with major regret.`,
		Type:        models.DisplayList,
	},
	IDMostDropped: {
		Title:       "Hot Potato",
		Description: "These players just couldn't find a permanent home! This metric highlights the most frequently added and dropped players of the season, showing which names cycled through the league the most.",
		Type:        models.DisplayList,
	},
	IDClosestMatchups: {
		Title:       "A Win is a Win",
		Description: "There were some real barn burner matchups this year! Here is a look at this year's closest weekly matchups.",
		Type:        models.DisplayList,
	},
	IDBiggestBlowouts: {
		Title:       "Biggest Blowouts",
		Description: "Now looking at the opposite of barn burners, let's take a look at who got boat raced this year.",
		Type:        models.DisplayList,
	},
	IDRivalryDominance: {
		Title:       "Pure Dominance",
		Description: "Some teams never stood a chance against their rival. Take a look at these matchups with one team completely dominating the other (don't forget to give your friend a hard time for this one).",
		Type:        models.DisplayList,
	},
}

// Meta returns the static metadata for an award id.
func Meta(id string) (models.AwardMeta, bool) {
	meta, ok := catalog[id]
	return meta, ok
}

// IDs lists every award id in presentation order.
func IDs() []string {
	return append([]string(nil), catalogOrder...)
}

// Describe attaches static metadata to a computed result.
func Describe(r models.Result) models.Award {
	meta, ok := catalog[r.ID]
	if !ok {
		meta = models.AwardMeta{Title: r.ID, Type: models.DisplayList}
	}
	return models.Award{
		ID:          r.ID,
		Title:       meta.Title,
		Description: meta.Description,
		Type:        meta.Type,
		Data:        r.Data,
		Headers:     r.Headers,
	}
}

// Failed builds the record emitted in place of an award whose computation
// failed.
func Failed(id string, err error) models.Award {
	meta, ok := catalog[id]
	if !ok {
		meta.Title = id
	}
	return models.Award{
		ID:          id,
		Title:       meta.Title,
		Description: meta.Description,
		Type:        models.DisplayError,
		Error:       err.Error(),
	}
}

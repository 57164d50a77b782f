package service

import (
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/omarshaarawi/fantasywrapped/internal/models"
)

const awardMatchThreshold = 0.6

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// FormatSummary renders the leader of every award as one Telegram message.
func FormatSummary(leagueKey string, list []models.Award) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎁 *Season Wrapped* for `%s`\n\n", leagueKey))

	for _, a := range list {
		sb.WriteString(fmt.Sprintf("*%s*\n", esc(a.Title)))
		switch a.Type {
		case models.DisplayError:
			sb.WriteString("   _unavailable_\n\n")
			continue
		case models.DisplayTable:
			sb.WriteString("   Use /award to see the full table\n\n")
			continue
		}
		items, err := listItems(a)
		if err != nil || len(items) == 0 {
			sb.WriteString("   _no entries_\n\n")
			continue
		}
		sb.WriteString(fmt.Sprintf("   🥇 %s\n\n", itemLine(items[0])))
	}

	sb.WriteString("Use /award <league> <name> for the full list.")
	return sb.String()
}

// FormatAward renders every row of one award.
func FormatAward(a models.Award) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 *%s*\n", esc(a.Title)))
	if a.Description != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n", esc(a.Description)))
	}
	sb.WriteString("\n")

	switch a.Type {
	case models.DisplayError:
		sb.WriteString(fmt.Sprintf("Could not compute this award: %s\n", esc(a.Error)))
	case models.DisplayTable:
		rows, err := tableRows(a)
		if err != nil {
			sb.WriteString("Could not read this table.\n")
			break
		}
		for i, row := range rows {
			if i >= len(a.Headers) {
				break
			}
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				if cell == nil {
					cells = append(cells, "-")
					continue
				}
				cells = append(cells, *cell)
			}
			sb.WriteString(fmt.Sprintf("*%s*: %s\n", esc(a.Headers[i]), strings.Join(cells, " | ")))
		}
	default:
		items, err := listItems(a)
		if err != nil {
			sb.WriteString("Could not read this list.\n")
			break
		}
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("%d. %s\n", item.Rank, itemLine(item)))
		}
	}
	return sb.String()
}

func itemLine(item models.ListItem) string {
	line := "*" + esc(item.MainText) + "*"
	if item.SubText != "" {
		line += " (" + esc(item.SubText) + ")"
	}
	if item.Stat != "" {
		line += " - " + esc(item.Stat)
	}
	return line
}

// FindAward picks the award whose id or title best matches query.
func FindAward(list []models.Award, query string) (models.Award, bool) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return models.Award{}, false
	}

	var best models.Award
	bestScore := -1.0
	for _, a := range list {
		for _, name := range []string{a.ID, strings.ReplaceAll(a.ID, "_", " "), a.Title} {
			name = strings.ToLower(name)
			score := similarity(query, name)
			if d := fuzzy.RankMatch(query, name); d >= 0 {
				score = max(score, awardMatchThreshold+(1-awardMatchThreshold)*(1-float64(d)/float64(len(name))))
			}
			if score > bestScore {
				bestScore = score
				best = a
			}
		}
	}
	if bestScore < awardMatchThreshold {
		return models.Award{}, false
	}
	return best, true
}

func similarity(a, b string) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 0
	}
	return 1 - float64(fuzzy.LevenshteinDistance(a, b))/float64(maxLen)
}

// Awards replayed from a persistent cache carry generically decoded data,
// so both shapes go through JSON.
func listItems(a models.Award) ([]models.ListItem, error) {
	if items, ok := a.Data.([]models.ListItem); ok {
		return items, nil
	}
	var items []models.ListItem
	return items, redecode(a.Data, &items)
}

func tableRows(a models.Award) ([][]*string, error) {
	if rows, ok := a.Data.([][]*string); ok {
		return rows, nil
	}
	var rows [][]*string
	return rows, redecode(a.Data, &rows)
}

func redecode(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

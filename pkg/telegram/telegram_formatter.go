package telegram

import (
	"fmt"
	"math"
	"strings"

	"golang-stock-ranker/internal/entity"
)

// FormatRankingTable formats the top rows of a ranking table into Markdown
// messages for Telegram, splitting so no message exceeds the API limit.
func FormatRankingTable(table *entity.RankingTable, topN int) []string {
	if len(table.Rows) == 0 {
		return []string{"No symbols survived the ranking run."}
	}

	const maxLen = 4090
	var messages []string
	var currentMessage strings.Builder
	part := 1

	startNewPart := func() {
		currentMessage.Reset()
		var header string
		if part == 1 {
			header = fmt.Sprintf("📊 *Relative Strength Rankings* (%s)\n\n", table.AsOf.Format("2006-01-02"))
		} else {
			header = fmt.Sprintf("---*Rankings continued, part %d*---\n\n", part)
		}
		currentMessage.WriteString(header)
	}

	startNewPart()

	for i, row := range table.Top(topN) {
		var entryBuilder strings.Builder
		entryBuilder.WriteString(fmt.Sprintf("*%d. %s*", i+1, row.Symbol))
		if row.Name != "" {
			entryBuilder.WriteString(fmt.Sprintf(" — %s", row.Name))
		}
		entryBuilder.WriteString("\n")

		if rating, ok := row.Ratings[table.LeadMethod]; ok && rating.Valid {
			entryBuilder.WriteString(fmt.Sprintf("⭐ Rating: *%d*", rating.Value))
			if !math.IsNaN(row.RS) {
				entryBuilder.WriteString(fmt.Sprintf("  (RS %.2f)", row.RS))
			}
			entryBuilder.WriteString("\n")
		}
		entryBuilder.WriteString(fmt.Sprintf("💰 Price: %.2f", row.Price))
		if row.WeeksUp > 0 {
			entryBuilder.WriteString(fmt.Sprintf("  📈 %d weeks up", row.WeeksUp))
		}
		entryBuilder.WriteString("\n\n")

		if currentMessage.Len()+entryBuilder.Len() > maxLen {
			messages = append(messages, currentMessage.String())
			part++
			startNewPart()
		}
		currentMessage.WriteString(entryBuilder.String())
	}

	if len(table.Exclusions) > 0 {
		footer := fmt.Sprintf("_%d symbols excluded (insufficient data or fetch failures)._\n", len(table.Exclusions))
		if currentMessage.Len()+len(footer) > maxLen {
			messages = append(messages, currentMessage.String())
			part++
			startNewPart()
		}
		currentMessage.WriteString(footer)
	}

	messages = append(messages, currentMessage.String())
	return messages
}

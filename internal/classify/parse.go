package classify

import (
	"regexp"
	"strings"

	"github.com/brandpulse/brandpulse/pkg/models"
)

var nonLetter = regexp.MustCompile(`[^a-z]`)

// parseBrandReply parses the two-line brand classification reply:
// line 1 answers yes/no for top recommendation, line 2 names the sentiment.
// A single-line reply is tolerated by scanning it for a sentiment keyword.
func parseBrandReply(reply string) (Classification, bool) {
	lines := nonEmptyLines(strings.ToLower(reply))
	if len(lines) == 0 {
		return Classification{}, false
	}

	result := Classification{
		Sentiment:           models.SentimentNeutral,
		IsTopRecommendation: strings.Contains(lines[0], "yes"),
	}

	if len(lines) >= 2 {
		for _, word := range strings.Fields(lines[1]) {
			cleaned := models.Sentiment(nonLetter.ReplaceAllString(word, ""))
			if cleaned.Valid() {
				result.Sentiment = cleaned
				return result, true
			}
		}
	}

	// Fallback: look in the first line for a sentiment keyword.
	for _, s := range []models.Sentiment{models.SentimentPositive, models.SentimentNegative, models.SentimentMixed, models.SentimentNeutral} {
		if strings.Contains(lines[0], string(s)) {
			result.Sentiment = s
			break
		}
	}
	return result, true
}

// parseCompetitorReply parses "Name: sentiment, yes|no" lines and maps each
// entry back to one of the submitted names. Unmatched or malformed lines are
// dropped; names absent from the returned map are the caller's soft failures.
func parseCompetitorReply(reply string, names []string) map[string]Classification {
	results := make(map[string]Classification, len(names))

	for _, line := range nonEmptyLines(reply) {
		rawName, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		matched, ok := matchName(strings.TrimSpace(rawName), names)
		if !ok {
			continue
		}

		sentimentPart, topPart, _ := strings.Cut(rest, ",")
		sentiment := models.Sentiment(nonLetter.ReplaceAllString(strings.ToLower(sentimentPart), ""))
		if !sentiment.Valid() {
			continue
		}

		results[matched] = Classification{
			Sentiment:           sentiment,
			IsTopRecommendation: strings.Contains(strings.ToLower(topPart), "yes"),
		}
	}

	return results
}

// matchName maps a classifier-returned name back to a submitted name:
// exact case-insensitive match first, then containment either way.
func matchName(raw string, names []string) (string, bool) {
	rawLower := strings.ToLower(strings.TrimSpace(raw))
	for _, name := range names {
		if strings.ToLower(name) == rawLower {
			return name, true
		}
	}
	for _, name := range names {
		nameLower := strings.ToLower(name)
		if strings.Contains(rawLower, nameLower) || strings.Contains(nameLower, rawLower) {
			return name, true
		}
	}
	return "", false
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}

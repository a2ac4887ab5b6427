// Package analyzer turns one raw engine answer into a structured
// visibility record: deterministic mention detection followed by scoped
// classification of the entities actually present.
package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/brandpulse/brandpulse/pkg/models"
)

// FirstMentionFraction is the share of the text, measured in characters from
// the start, within which a first mention is bucketed as "first" rather than
// "early". Trend comparability depends on this staying stable across runs.
const FirstMentionFraction = 0.10

// DetectMention scans text for a word-boundary, case-insensitive match of any
// of the given names and returns the smallest match offset together with the
// offset just past that match. A name must not match as a strict substring of
// a longer word: "Notion" never matches inside "notional". Returns
// (false, -1, -1) when no name matches.
func DetectMention(text string, names []string) (bool, int, int) {
	lowered := strings.ToLower(text)
	earliest, end := -1, -1

	for _, name := range names {
		needle := strings.ToLower(strings.TrimSpace(name))
		if needle == "" {
			continue
		}
		if idx := firstBoundedIndex(lowered, needle); idx >= 0 {
			if earliest == -1 || idx < earliest {
				earliest = idx
				end = idx + len(needle)
			}
		}
	}

	return earliest >= 0, earliest, end
}

// firstBoundedIndex returns the offset of the first occurrence of needle in
// haystack that has a non-alphanumeric character (or the string edge) on
// both sides, or -1.
func firstBoundedIndex(haystack, needle string) int {
	for from := 0; ; {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return -1
		}
		start := from + idx
		end := start + len(needle)

		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			return start
		}
		from = start + 1
	}
}

func boundaryBefore(s string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:start])
	return !isWordRune(r)
}

func boundaryAfter(s string, end int) bool {
	if end >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// BucketPosition maps a first mention to its coarse position bucket from the
// offset just past the match, so a name straddling a quartile boundary counts
// toward the later bucket. A mention fully inside the first 10% of the text
// is "first", the rest of the first quartile is "early", the second and third
// quartiles are "middle", and the final quartile is "late".
func BucketPosition(end, textLen int) models.Position {
	if end < 0 || textLen <= 0 {
		return models.PositionNotMentioned
	}
	switch {
	case float64(end) <= float64(textLen)*FirstMentionFraction:
		return models.PositionFirst
	case end <= textLen/4:
		return models.PositionEarly
	case end <= 3*textLen/4:
		return models.PositionMiddle
	default:
		return models.PositionLate
	}
}

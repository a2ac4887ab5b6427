package analyzer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brandpulse/brandpulse/internal/analyzer"
	"github.com/brandpulse/brandpulse/pkg/models"
)

func TestDetectMention_WordBoundary(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		names     []string
		mentioned bool
	}{
		{"exact match", "I use Notion daily.", []string{"Notion"}, true},
		{"case insensitive", "NOTION is popular.", []string{"Notion"}, true},
		{"substring of longer word", "That is a notional concern.", []string{"Notion"}, false},
		{"substring mid-word", "An emotional decision.", []string{"motion"}, false},
		{"adjacent punctuation", "Try Notion, it's good.", []string{"Notion"}, true},
		{"possessive", "Notion's templates are great.", []string{"Notion"}, true},
		{"parenthesized", "(Notion)", []string{"Notion"}, true},
		{"hyphenated alias", "Try test-brand today.", []string{"test-brand"}, true},
		{"short name inside word", "It is a good language.", []string{"Go"}, false},
		{"short name standalone", "Go is a good language.", []string{"Go"}, true},
		{"not present", "There are many great tools.", []string{"Notion"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mentioned, _, _ := analyzer.DetectMention(tt.text, tt.names)
			assert.Equal(t, tt.mentioned, mentioned)
		})
	}
}

func TestDetectMention_SmallestOffsetAcrossAliases(t *testing.T) {
	text := "Coda is fine, but Notion wins."

	mentioned, offset, end := analyzer.DetectMention(text, []string{"Notion", "Coda"})
	assert.True(t, mentioned)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 4, end)
}

func TestDetectMention_NotFoundOffsets(t *testing.T) {
	mentioned, offset, end := analyzer.DetectMention("nothing relevant here", []string{"Notion"})
	assert.False(t, mentioned)
	assert.Equal(t, -1, offset)
	assert.Equal(t, -1, end)
}

func TestDetectMention_BlankNamesIgnored(t *testing.T) {
	mentioned, _, _ := analyzer.DetectMention("Notion is here.", []string{"", "  ", "Notion"})
	assert.True(t, mentioned)

	mentioned, _, _ = analyzer.DetectMention("Notion is here.", []string{"", "  "})
	assert.False(t, mentioned)
}

func TestDetectMention_SkipsUnboundedThenFindsLater(t *testing.T) {
	// The first occurrence is inside a longer word; the detector must keep
	// scanning and report the later standalone occurrence.
	text := "A notional plan, but Notion itself delivers."

	mentioned, offset, _ := analyzer.DetectMention(text, []string{"Notion"})
	assert.True(t, mentioned)
	assert.Equal(t, strings.Index(text, "Notion itself"), offset)
}

func TestFirstMentionFraction_Pinned(t *testing.T) {
	// Trend comparability depends on this constant staying put.
	assert.Equal(t, 0.10, analyzer.FirstMentionFraction)
}

func TestBucketPosition(t *testing.T) {
	// 200-char text: first <= 20, early <= 50, middle <= 150, late beyond.
	tests := []struct {
		name    string
		end     int
		textLen int
		want    models.Position
	}{
		{"opening clause", 10, 200, models.PositionFirst},
		{"first boundary inclusive", 20, 200, models.PositionFirst},
		{"first quartile", 40, 200, models.PositionEarly},
		{"quartile boundary inclusive", 50, 200, models.PositionEarly},
		{"second quartile", 90, 200, models.PositionMiddle},
		{"third quartile boundary", 150, 200, models.PositionMiddle},
		{"final quartile", 151, 200, models.PositionLate},
		{"text end", 200, 200, models.PositionLate},
		{"no match", -1, 200, models.PositionNotMentioned},
		{"empty text", 5, 0, models.PositionNotMentioned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analyzer.BucketPosition(tt.end, tt.textLen))
		})
	}
}

func TestBucketPosition_TwoBrandAnswer(t *testing.T) {
	text := "Notion is the best tool for small teams, though Airtable is also solid."

	mentioned, _, end := analyzer.DetectMention(text, []string{"Notion"})
	assert.True(t, mentioned)
	assert.Equal(t, models.PositionFirst, analyzer.BucketPosition(end, len(text)))

	mentioned, _, end = analyzer.DetectMention(text, []string{"Airtable"})
	assert.True(t, mentioned)
	assert.Equal(t, models.PositionLate, analyzer.BucketPosition(end, len(text)))
}

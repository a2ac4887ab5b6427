// Package models contains shared data models used across the brandpulse codebase.
package models

// Engine identifies one external AI assistant provider.
type Engine string

const (
	EngineOpenAI     Engine = "openai"
	EngineAnthropic  Engine = "anthropic"
	EnginePerplexity Engine = "perplexity"
	EngineGemini     Engine = "gemini"
)

// KnownEngines is the fixed set of engines the system can query, in display order.
var KnownEngines = []Engine{EngineOpenAI, EngineAnthropic, EnginePerplexity, EngineGemini}

// Valid reports whether e is one of the known engines.
func (e Engine) Valid() bool {
	for _, k := range KnownEngines {
		if e == k {
			return true
		}
	}
	return false
}

// Sentiment is the classifier's judgment of how an entity is portrayed.
// A nil *Sentiment means the entity was not mentioned or classification failed.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
	SentimentMixed    Sentiment = "mixed"
)

// Valid reports whether s is one of the four sentiment values.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative, SentimentMixed:
		return true
	}
	return false
}

// SentimentPtr returns a pointer to s. Convenience for building records.
func SentimentPtr(s Sentiment) *Sentiment { return &s }

// Position is the coarse location of the first mention within a response.
type Position string

const (
	PositionFirst        Position = "first"
	PositionEarly        Position = "early"
	PositionMiddle       Position = "middle"
	PositionLate         Position = "late"
	PositionNotMentioned Position = "not_mentioned"
)

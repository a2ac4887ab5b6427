package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandpulse/brandpulse/internal/classify"
	"github.com/brandpulse/brandpulse/internal/classify/mock"
	"github.com/brandpulse/brandpulse/pkg/models"
)

func TestNewClassifier(t *testing.T) {
	c := mock.NewClassifier(classify.Classification{
		Sentiment:           models.SentimentPositive,
		IsTopRecommendation: true,
	})

	result, err := c.ClassifyBrand(context.Background(), "some answer", "Notion")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, result.Sentiment)
	assert.True(t, result.IsTopRecommendation)

	batch, err := c.ClassifyCompetitors(context.Background(), "some answer", []string{"Airtable", "Coda"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, models.SentimentPositive, batch["Airtable"].Sentiment)
}

func TestNewFailingClassifier(t *testing.T) {
	customErr := errors.New("custom classifier error")
	c := mock.NewFailingClassifier(customErr)

	_, err := c.ClassifyBrand(context.Background(), "text", "Notion")
	assert.ErrorIs(t, err, customErr)

	_, err = c.ClassifyCompetitors(context.Background(), "text", []string{"Airtable"})
	assert.ErrorIs(t, err, customErr)
}

func TestClassifier_CountsCalls(t *testing.T) {
	c := mock.NewClassifier(classify.Classification{Sentiment: models.SentimentNeutral})

	_, err := c.ClassifyBrand(context.Background(), "text", "Notion")
	require.NoError(t, err)
	_, err = c.ClassifyBrand(context.Background(), "text", "Notion")
	require.NoError(t, err)
	_, err = c.ClassifyCompetitors(context.Background(), "text", []string{"Airtable"})
	require.NoError(t, err)

	assert.Equal(t, 2, c.BrandCalls())
	assert.Equal(t, 1, c.CompetitorCalls())
}

func TestClassifier_RecordsSubmittedNames(t *testing.T) {
	c := mock.NewClassifier(classify.Classification{Sentiment: models.SentimentNeutral})

	_, err := c.ClassifyCompetitors(context.Background(), "text", []string{"Airtable", "Coda"})
	require.NoError(t, err)
	_, err = c.ClassifyCompetitors(context.Background(), "text", []string{"Trello"})
	require.NoError(t, err)

	submitted := c.SubmittedNames()
	require.Len(t, submitted, 2)
	assert.Equal(t, []string{"Airtable", "Coda"}, submitted[0])
	assert.Equal(t, []string{"Trello"}, submitted[1])
}

func TestClassifier_NilFuncs(t *testing.T) {
	c := &mock.Classifier{}

	result, err := c.ClassifyBrand(context.Background(), "text", "Notion")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, result.Sentiment)
	assert.False(t, result.IsTopRecommendation)

	batch, err := c.ClassifyCompetitors(context.Background(), "text", []string{"Airtable"})
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, batch["Airtable"].Sentiment)
}

package analysis

import (
	"testing"

	"workpulse/internal/models"
)

func TestCountSentiments(t *testing.T) {
	posts := []models.RedditPostWithComments{
		{Sentiment: "positive"},
		{Sentiment: "negative"},
		{Sentiment: "positive"},
		{Sentiment: "neutral"},
		{Sentiment: ""},
		{Sentiment: "mixed"},
	}

	got := CountSentiments(posts)
	want := models.SentimentCounts{Positive: 2, Neutral: 1, Negative: 1}
	if got != want {
		t.Errorf("CountSentiments = %+v, want %+v", got, want)
	}
}

func TestCountSentimentsEmptyBatch(t *testing.T) {
	if got := CountSentiments(nil); got != (models.SentimentCounts{}) {
		t.Errorf("CountSentiments(nil) = %+v, want zeros", got)
	}
}

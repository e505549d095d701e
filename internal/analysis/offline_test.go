package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"workpulse/internal/apperrors"
	"workpulse/internal/models"
)

func TestOfflineSentiments(t *testing.T) {
	analyzer := NewOfflineAnalyzer()

	posts := []models.RedditPostWithComments{
		{Title: "Great place", Text: "I love working here, amazing team and wonderful benefits."},
		{Title: "Awful experience", Text: "I hate this company, terrible management and horrible pay."},
	}

	labeled, err := analyzer.Sentiments(context.Background(), posts, "Initech")
	if err != nil {
		t.Fatalf("Sentiments: %v", err)
	}
	if labeled[0].Sentiment != "positive" {
		t.Errorf("post 0 sentiment = %q, want positive", labeled[0].Sentiment)
	}
	if labeled[1].Sentiment != "negative" {
		t.Errorf("post 1 sentiment = %q, want negative", labeled[1].Sentiment)
	}
}

func TestOfflineCompanySummaryRequiresName(t *testing.T) {
	analyzer := NewOfflineAnalyzer()

	_, err := analyzer.CompanySummary(context.Background(), nil, "")
	if !errors.Is(err, apperrors.ErrMissingParameter) {
		t.Fatalf("err = %v, want ErrMissingParameter", err)
	}
}

func TestOfflineSentimentWords(t *testing.T) {
	analyzer := NewOfflineAnalyzer()

	posts := []models.RedditPostWithComments{
		{Title: "salary salary salary", Text: "the and for it is"},
		{Title: "burnout burnout", Text: "salary"},
	}

	words, err := analyzer.SentimentWords(context.Background(), posts)
	if err != nil {
		t.Fatalf("SentimentWords: %v", err)
	}
	if len(words) == 0 {
		t.Fatal("no words returned")
	}
	if words[0].Word != "salary" || words[0].Count != 4 {
		t.Errorf("top word = %+v, want salary:4", words[0])
	}
	for _, w := range words {
		if _, stop := stopwords[w.Word]; stop {
			t.Errorf("stopword %q leaked into frequencies", w.Word)
		}
	}
}

func TestConvertMarkdownToText(t *testing.T) {
	input := "# Heading\n\nSome **bold** text with a [link](https://example.com/page) and https://bare.example.com/x trailing."

	got := ConvertMarkdownToText(input)
	if strings.Contains(got, "<") || strings.Contains(got, "**") || strings.Contains(got, "#") {
		t.Errorf("markup survived conversion: %q", got)
	}
	if strings.Contains(got, "http") {
		t.Errorf("URL survived conversion: %q", got)
	}
	if !strings.Contains(got, "link") {
		t.Errorf("link text dropped: %q", got)
	}
}

func TestRemoveLinks(t *testing.T) {
	got := RemoveLinks("see [docs](https://example.com/docs) or www.example.com now")
	if strings.Contains(got, "example.com") {
		t.Errorf("RemoveLinks left a URL: %q", got)
	}
	if !strings.Contains(got, "docs") {
		t.Errorf("RemoveLinks dropped link text: %q", got)
	}
}

package analysis

import (
	"context"
	"errors"
	"testing"

	"workpulse/internal/apperrors"
	"workpulse/internal/models"
)

type fakeGenerator struct {
	content string
	err     error

	calls   int
	prompts []string
	params  []ModelParams
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, params ModelParams) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.params = append(f.params, params)
	return f.content, f.err
}

func samplePosts() []models.RedditPostWithComments {
	return []models.RedditPostWithComments{
		{PostID: "a1", Title: "Pay at Initech", Text: "Is it good?", Comments: []string{"Great pay", "Bad culture"}},
		{PostID: "b2", Title: "Layoffs again", Text: "Third round this year."},
		{PostID: "c3", Title: "Interview loop", Text: "Six rounds.", Comments: []string{"Too many"}},
	}
}

func TestSerializePosts(t *testing.T) {
	posts := []models.RedditPostWithComments{
		{Title: "Pay at Initech", Text: "Is it good?", Comments: []string{"Great pay", "Bad culture"}},
		{Title: "Layoffs", Text: "Third round."},
	}

	want := "Post 1 title: Pay at Initech\n" +
		"Post 1 body: Is it good?\n" +
		"Post 1 comments:\n" +
		"Comment 1: Great pay\n" +
		"Comment 2: Bad culture\n" +
		"Post 1 end.\n\n" +
		"\n" +
		"Post 2 title: Layoffs\n" +
		"Post 2 body: Third round.\n" +
		"Post 2 comments:\n" +
		"\n" +
		"Post 2 end.\n\n"

	if got := serializePosts(posts); got != want {
		t.Errorf("serializePosts mismatch\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestSentimentsAssignsLabelsInOrder(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []string
	}{
		{"labels", "positive, negative, positive", []string{"positive", "negative", "positive"}},
		{"indices", "0,1,2", []string{"positive", "neutral", "negative"}},
		{"mixed case", "Positive, NEUTRAL, negative", []string{"positive", "neutral", "negative"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{content: tt.response}
			engine := NewEngine(gen)

			posts := samplePosts()
			labeled, err := engine.Sentiments(context.Background(), posts, "Initech")
			if err != nil {
				t.Fatalf("Sentiments: %v", err)
			}
			for i, want := range tt.want {
				if labeled[i].Sentiment != want {
					t.Errorf("post %d sentiment = %q, want %q", i, labeled[i].Sentiment, want)
				}
			}
			// input batch must stay untouched
			for i, post := range posts {
				if post.Sentiment != "" {
					t.Errorf("input post %d was mutated: %q", i, post.Sentiment)
				}
			}
		})
	}
}

func TestSentimentsTooFewTokens(t *testing.T) {
	engine := NewEngine(&fakeGenerator{content: "positive, negative"})

	_, err := engine.Sentiments(context.Background(), samplePosts(), "Initech")
	if !errors.Is(err, apperrors.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestSentimentsUnknownTokenLeavesPostUnlabeled(t *testing.T) {
	engine := NewEngine(&fakeGenerator{content: "positive, maybe, negative"})

	labeled, err := engine.Sentiments(context.Background(), samplePosts(), "")
	if err != nil {
		t.Fatalf("Sentiments: %v", err)
	}
	if labeled[1].Sentiment != "" {
		t.Errorf("unknown token produced label %q, want empty", labeled[1].Sentiment)
	}
}

func TestGenerateRejectsEmptyContent(t *testing.T) {
	engine := NewEngine(&fakeGenerator{content: "   \n"})

	if _, err := engine.IndustrySummary(context.Background(), samplePosts()); !errors.Is(err, apperrors.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestCompanySummaryRequiresName(t *testing.T) {
	gen := &fakeGenerator{content: "some summary"}
	engine := NewEngine(gen)

	_, err := engine.CompanySummary(context.Background(), samplePosts(), "")
	if !errors.Is(err, apperrors.ErrMissingParameter) {
		t.Fatalf("err = %v, want ErrMissingParameter", err)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times before validation, want 0", gen.calls)
	}
}

func TestModelParamsPerKind(t *testing.T) {
	gen := &fakeGenerator{content: "0,0,0"}
	engine := NewEngine(gen)

	if _, err := engine.Sentiments(context.Background(), samplePosts(), "Initech"); err != nil {
		t.Fatalf("Sentiments: %v", err)
	}

	got := gen.params[0]
	if got.Model != "gpt-4o-mini" || got.MaxTokens != 100 || got.Temperature != 0.3 {
		t.Errorf("sentiment params = %+v", got)
	}

	gen.content = "a summary"
	if _, err := engine.CompanySummary(context.Background(), samplePosts(), "Initech"); err != nil {
		t.Fatalf("CompanySummary: %v", err)
	}
	got = gen.params[1]
	if got.MaxTokens != 300 || got.Temperature != 1.0 {
		t.Errorf("company summary params = %+v", got)
	}
}

func TestSentimentWordsParsing(t *testing.T) {
	gen := &fakeGenerator{content: "burnout:9\nremote:12\n\nbadword\n"}
	engine := NewEngine(gen)

	words, err := engine.SentimentWords(context.Background(), samplePosts())
	if err != nil {
		t.Fatalf("SentimentWords: %v", err)
	}

	want := []models.WordFrequency{
		{Word: "remote", Count: 12},
		{Word: "burnout", Count: 9},
		{Word: "badword", Count: 0},
	}
	if len(words) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(words), len(want), words)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, words[i], want[i])
		}
	}
}

// Package analysis builds natural-language prompts from normalized Reddit
// content, invokes a text-generation API, and parses the returned text back
// into typed results.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"workpulse/internal/apperrors"
	"workpulse/internal/models"
)

// Kind selects which analysis the engine performs over a batch.
type Kind string

const (
	KindSentiments             Kind = "sentiments"
	KindCompanySummary         Kind = "companySummary"
	KindIndustrySummary        Kind = "industrySummary"
	KindSentimentWordFrequency Kind = "sentimentWordFrequency"
)

// ModelParams are fixed per analysis kind: low temperature for
// classification, high for narrative generation.
type ModelParams struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

var modelParams = map[Kind]ModelParams{
	KindSentiments:             {Model: "gpt-4o-mini", MaxTokens: 100, Temperature: 0.3},
	KindCompanySummary:         {Model: "gpt-4o-mini", MaxTokens: 300, Temperature: 1.0},
	KindIndustrySummary:        {Model: "gpt-4o-mini", MaxTokens: 2000, Temperature: 1.0},
	KindSentimentWordFrequency: {Model: "gpt-4o-mini", MaxTokens: 200, Temperature: 0.3},
}

// TextGenerator is the text-generation API contract. The returned string is
// the first choice's message content; empty means the model produced nothing.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, params ModelParams) (string, error)
}

type Engine struct {
	gen TextGenerator
}

func NewEngine(gen TextGenerator) *Engine {
	return &Engine{gen: gen}
}

// Sentiments classifies each post in the batch and returns a labeled copy.
// The model answers with comma-separated tokens mirroring input order; item
// i receives label i. Unrecognized tokens leave the post unlabeled.
func (e *Engine) Sentiments(ctx context.Context, posts []models.RedditPostWithComments, companyName string) ([]models.RedditPostWithComments, error) {
	content, err := e.generate(ctx, KindSentiments, sentimentsPrompt(posts, companyName))
	if err != nil {
		return nil, err
	}
	return parseSentiments(content, posts)
}

// CompanySummary synthesizes a narrative summary for the company. The
// company name is required and validated before any network call.
func (e *Engine) CompanySummary(ctx context.Context, posts []models.RedditPostWithComments, companyName string) (string, error) {
	if companyName == "" {
		return "", fmt.Errorf("[AnalysisEngine] company name: %w", apperrors.ErrMissingParameter)
	}
	return e.generate(ctx, KindCompanySummary, companySummaryPrompt(posts, companyName))
}

// IndustrySummary synthesizes a narrative summary across the industry batch.
func (e *Engine) IndustrySummary(ctx context.Context, posts []models.RedditPostWithComments) (string, error) {
	return e.generate(ctx, KindIndustrySummary, industrySummaryPrompt(posts))
}

// SentimentWords extracts a ranked word-frequency table from the batch.
func (e *Engine) SentimentWords(ctx context.Context, posts []models.RedditPostWithComments) ([]models.WordFrequency, error) {
	content, err := e.generate(ctx, KindSentimentWordFrequency, wordFrequencyPrompt(posts))
	if err != nil {
		return nil, err
	}
	return parseWordFrequencies(content), nil
}

func (e *Engine) generate(ctx context.Context, kind Kind, prompt string) (string, error) {
	content, err := e.gen.Generate(ctx, prompt, modelParams[kind])
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("[AnalysisEngine] no content received for %s: %w", kind, apperrors.ErrMalformedResponse)
	}
	return content, nil
}

var sentimentTokens = map[string]string{
	"0": "positive", "1": "neutral", "2": "negative",
	"positive": "positive", "neutral": "neutral", "negative": "negative",
}

func parseSentiments(content string, posts []models.RedditPostWithComments) ([]models.RedditPostWithComments, error) {
	tokens := strings.Split(strings.TrimSpace(content), ",")
	if len(tokens) < len(posts) {
		return nil, fmt.Errorf("[AnalysisEngine] got %d classifications for %d posts: %w",
			len(tokens), len(posts), apperrors.ErrMalformedResponse)
	}

	labeled := make([]models.RedditPostWithComments, len(posts))
	copy(labeled, posts)
	for i := range labeled {
		labeled[i].Sentiment = sentimentTokens[strings.ToLower(strings.TrimSpace(tokens[i]))]
	}
	return labeled, nil
}

// parseWordFrequencies reads "word:count" lines. Malformed counts degrade to
// zero rather than failing the whole call.
func parseWordFrequencies(content string) []models.WordFrequency {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	frequencies := make([]models.WordFrequency, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		word, countText, _ := strings.Cut(line, ":")
		count, err := strconv.Atoi(strings.TrimSpace(countText))
		if err != nil {
			count = 0
		}
		frequencies = append(frequencies, models.WordFrequency{
			Word:  strings.TrimSpace(word),
			Count: count,
		})
	}

	sort.SliceStable(frequencies, func(i, j int) bool {
		return frequencies[i].Count > frequencies[j].Count
	})
	return frequencies
}

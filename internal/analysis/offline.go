package analysis

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"workpulse/internal/apperrors"
	"workpulse/internal/models"
)

// OfflineAnalyzer produces sentiment labels, digest summaries, and word
// frequencies without a text-generation API, using VADER over
// markdown-stripped post text. Used when no API key is configured (dev
// mode); it implements the same contract as Engine, including the
// missing-company-name check.
type OfflineAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewOfflineAnalyzer() *OfflineAnalyzer {
	return &OfflineAnalyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (a *OfflineAnalyzer) Sentiments(_ context.Context, posts []models.RedditPostWithComments, _ string) ([]models.RedditPostWithComments, error) {
	labeled := make([]models.RedditPostWithComments, len(posts))
	copy(labeled, posts)
	for i := range labeled {
		labeled[i].Sentiment = a.label(postText(labeled[i]))
	}
	return labeled, nil
}

func (a *OfflineAnalyzer) CompanySummary(ctx context.Context, posts []models.RedditPostWithComments, companyName string) (string, error) {
	if companyName == "" {
		return "", fmt.Errorf("[OfflineAnalyzer] company name: %w", apperrors.ErrMissingParameter)
	}
	return a.digest(ctx, posts, fmt.Sprintf("discussions about %s as an employer", companyName))
}

func (a *OfflineAnalyzer) IndustrySummary(ctx context.Context, posts []models.RedditPostWithComments) (string, error) {
	return a.digest(ctx, posts, "tech industry discussions")
}

func (a *OfflineAnalyzer) SentimentWords(_ context.Context, posts []models.RedditPostWithComments) ([]models.WordFrequency, error) {
	counts := make(map[string]int)
	for _, post := range posts {
		for _, word := range tokenize(ConvertMarkdownToText(postText(post))) {
			counts[word]++
		}
	}

	frequencies := make([]models.WordFrequency, 0, len(counts))
	for word, count := range counts {
		frequencies = append(frequencies, models.WordFrequency{Word: word, Count: count})
	}
	sort.Slice(frequencies, func(i, j int) bool {
		if frequencies[i].Count != frequencies[j].Count {
			return frequencies[i].Count > frequencies[j].Count
		}
		return frequencies[i].Word < frequencies[j].Word
	})
	if len(frequencies) > 10 {
		frequencies = frequencies[:10]
	}
	return frequencies, nil
}

func (a *OfflineAnalyzer) digest(ctx context.Context, posts []models.RedditPostWithComments, subject string) (string, error) {
	labeled, err := a.Sentiments(ctx, posts, "")
	if err != nil {
		return "", err
	}
	counts := CountSentiments(labeled)
	return fmt.Sprintf("Offline digest of %d %s: %d positive, %d neutral, %d negative. "+
		"Configure a text-generation API key for a narrative summary.",
		len(posts), subject, counts.Positive, counts.Neutral, counts.Negative), nil
}

func (a *OfflineAnalyzer) label(text string) string {
	score := a.analyzer.PolarityScores(ConvertMarkdownToText(text)).Compound
	switch {
	case score >= 0.20:
		return "positive"
	case score <= -0.20:
		return "negative"
	default:
		return "neutral"
	}
}

func postText(post models.RedditPostWithComments) string {
	parts := append([]string{post.Title, post.Text}, post.Comments...)
	return strings.Join(parts, " ")
}

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	bareURLPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]+>`)
	wordPattern         = regexp.MustCompile(`[a-z][a-z'-]+`)
)

func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return bareURLPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText flattens Reddit markdown into plain text before
// scoring or counting.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	stripped := htmlTagPattern.ReplaceAllString(string(output), " ")
	plainText := strings.Join(strings.Fields(stripped), " ")

	return RemoveLinks(plainText)
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "that": {}, "this": {}, "with": {},
	"you": {}, "your": {}, "have": {}, "has": {}, "had": {}, "was": {},
	"are": {}, "but": {}, "not": {}, "they": {}, "them": {}, "their": {},
	"about": {}, "from": {}, "just": {}, "like": {}, "what": {}, "when": {},
	"there": {}, "been": {}, "were": {}, "would": {}, "will": {}, "can": {},
	"could": {}, "should": {}, "get": {}, "got": {}, "into": {}, "out": {},
	"all": {}, "more": {}, "some": {}, "its": {}, "it's": {}, "i'm": {},
	"don't": {}, "doesn't": {}, "because": {}, "very": {}, "than": {},
	"then": {}, "also": {}, "how": {}, "who": {}, "which": {}, "where": {},
}

func tokenize(text string) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) < 3 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

package analysis

import "workpulse/internal/models"

// CountSentiments tallies sentiment labels across a batch. Posts with an
// absent or unrecognized label increment nothing. Never fails; an empty
// batch yields all zeros.
func CountSentiments(posts []models.RedditPostWithComments) models.SentimentCounts {
	var counts models.SentimentCounts
	for _, post := range posts {
		switch post.Sentiment {
		case "positive":
			counts.Positive++
		case "neutral":
			counts.Neutral++
		case "negative":
			counts.Negative++
		}
	}
	return counts
}

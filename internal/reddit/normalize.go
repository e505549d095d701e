package reddit

import "workpulse/internal/models"

// Comment caps differ by fetch context: a targeted company search keeps
// fewer comments per post than an industry-wide top listing. This is a
// deliberate cost/quality tradeoff.
const (
	SearchCommentCap = 5
	TopCommentCap    = 15
)

const (
	removedSentinel = "[removed]"
	deletedSentinel = "[deleted]"
)

// NormalizePost converts raw source-API objects into the canonical record.
// Engagement and timestamp fields map one-to-one; comment bodies are
// filtered of removal sentinels and empties, then capped. Sentiment is
// never set here.
func NormalizePost(post models.RedditAPIPost, comments []models.RedditAPIComment, subreddit string, commentCap int) models.RedditPostWithComments {
	return models.RedditPostWithComments{
		PostID:    post.ID,
		Created:   int64(post.CreatedUTC),
		Upvotes:   post.Ups,
		Downvotes: post.Downs,
		Subreddit: subreddit,
		URL:       post.URL,
		Title:     post.Title,
		Text:      post.Selftext,
		Comments:  filterComments(comments, commentCap),
	}
}

// filterComments drops removed/deleted/empty bodies, then truncates to the
// first cap survivors. Insertion order is preserved; the cap applies after
// filtering.
func filterComments(comments []models.RedditAPIComment, limit int) []string {
	bodies := make([]string, 0, limit)
	for _, comment := range comments {
		if comment.Body == "" || comment.Body == removedSentinel || comment.Body == deletedSentinel {
			continue
		}
		if len(bodies) == limit {
			break
		}
		bodies = append(bodies, comment.Body)
	}
	return bodies
}

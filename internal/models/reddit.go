package models

// TimeWindow is the listing time filter accepted by the content API.
type TimeWindow string

const (
	TimeHour  TimeWindow = "hour"
	TimeDay   TimeWindow = "day"
	TimeWeek  TimeWindow = "week"
	TimeMonth TimeWindow = "month"
	TimeYear  TimeWindow = "year"
	TimeAll   TimeWindow = "all"
)

// SortOrder is the search result ordering accepted by the content API.
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortHot       SortOrder = "hot"
	SortTop       SortOrder = "top"
	SortNew       SortOrder = "new"
	SortComments  SortOrder = "comments"
)

type RedditAPIPost struct {
	ID         string  `json:"id"`
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	URL        string  `json:"url"`
	Ups        int     `json:"ups"`
	Downs      int     `json:"downs"`
	CreatedUTC float64 `json:"created_utc"`
}

type RedditAPIComment struct {
	ID         string  `json:"id"`
	Body       string  `json:"body"`
	Ups        int     `json:"ups"`
	Downs      int     `json:"downs"`
	CreatedUTC float64 `json:"created_utc"`
}

type RedditPostListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string        `json:"kind"`
			Data RedditAPIPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type RedditCommentListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string           `json:"kind"`
			Data RedditAPIComment `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// RedditPostWithComments is the normalized post-plus-comments record the
// pipeline operates on. Sentiment stays empty until the analysis engine
// labels the post; everything else is immutable once persisted.
type RedditPostWithComments struct {
	PostID    string   `json:"id" dynamodbav:"id"`
	Created   int64    `json:"created" dynamodbav:"created"`
	Upvotes   int      `json:"upvotes" dynamodbav:"upvotes"`
	Downvotes int      `json:"downvotes" dynamodbav:"downvotes"`
	Subreddit string   `json:"subreddit" dynamodbav:"subreddit"`
	URL       string   `json:"url" dynamodbav:"url"`
	Title     string   `json:"title" dynamodbav:"title"`
	Text      string   `json:"text" dynamodbav:"text"`
	Sentiment string   `json:"sentiment,omitempty" dynamodbav:"sentiment,omitempty"`
	Comments  []string `json:"comments" dynamodbav:"comments"`
}

// ReducedRedditPost is the projection returned in page payloads.
type ReducedRedditPost struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

func ReducePosts(posts []RedditPostWithComments) []ReducedRedditPost {
	reduced := make([]ReducedRedditPost, 0, len(posts))
	for _, p := range posts {
		reduced = append(reduced, ReducedRedditPost{Title: p.Title, Text: p.Text, URL: p.URL})
	}
	return reduced
}

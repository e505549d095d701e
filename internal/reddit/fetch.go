// Package reddit turns raw content-API listings into normalized
// post-plus-comments records.
package reddit

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"workpulse/internal/apperrors"
	"workpulse/internal/models"
)

const (
	DefaultSubreddit  = "cscareerquestions"
	DefaultTimeWindow = models.TimeYear
	DefaultSortOrder  = models.SortNew

	maxConcurrentCommentFetches = 8
)

// FetchOptions selects what to fetch. A non-empty SearchTerm switches from
// the ranked top listing to a subreddit search.
type FetchOptions struct {
	Subreddit  string
	SearchTerm string
	Window     models.TimeWindow
	Sort       models.SortOrder
}

// SourceClient is the content-API contract the fetcher needs.
type SourceClient interface {
	FetchTopPosts(ctx context.Context, subreddit string, window models.TimeWindow) ([]models.RedditAPIPost, error)
	SearchPosts(ctx context.Context, subreddit, searchTerm string, window models.TimeWindow, sort models.SortOrder) ([]models.RedditAPIPost, error)
	FetchComments(ctx context.Context, subreddit, postID string) ([]models.RedditAPIComment, error)
}

type Fetcher struct {
	client SourceClient
}

func NewFetcher(client SourceClient) *Fetcher {
	return &Fetcher{client: client}
}

// PostsWithComments fetches a listing, then the comments of every post
// concurrently, and normalizes the result. Listing order is preserved. A
// failed fetch aborts the whole call; there is no partial result.
func (f *Fetcher) PostsWithComments(ctx context.Context, opts FetchOptions) ([]models.RedditPostWithComments, error) {
	if opts.Subreddit == "" {
		opts.Subreddit = DefaultSubreddit
	}
	if opts.Window == "" {
		opts.Window = DefaultTimeWindow
	}
	if opts.Sort == "" {
		opts.Sort = DefaultSortOrder
	}

	var posts []models.RedditAPIPost
	var err error
	commentCap := TopCommentCap
	if opts.SearchTerm != "" {
		commentCap = SearchCommentCap
		posts, err = f.client.SearchPosts(ctx, opts.Subreddit, opts.SearchTerm, opts.Window, opts.Sort)
	} else {
		posts, err = f.client.FetchTopPosts(ctx, opts.Subreddit, opts.Window)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching posts for r/%s: %w", opts.Subreddit, err)
	}

	normalized := make([]models.RedditPostWithComments, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCommentFetches)
	for i, post := range posts {
		g.Go(func() error {
			comments, err := f.client.FetchComments(gctx, opts.Subreddit, post.ID)
			if err != nil {
				return fmt.Errorf("fetching comments for post %s: %w", post.ID, err)
			}
			normalized[i] = NormalizePost(post, comments, opts.Subreddit, commentCap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUpstream, err)
	}

	slog.Debug("[RedditFetcher] fetched posts with comments",
		slog.String("subreddit", opts.Subreddit),
		slog.Int("count", len(normalized)))
	return normalized, nil
}

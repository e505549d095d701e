package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"workpulse/internal/apperrors"
	"workpulse/internal/models"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"
)

// RedditClient wraps the OAuth-authenticated Reddit API. Construct it once
// and inject it wherever posts are fetched; there is no package singleton.
type RedditClient struct {
	conf      *clientcredentials.Config
	client    *http.Client
	postLimit int
	mu        sync.Mutex
}

func NewRedditClient(clientID, clientSecret string, postLimit int) *RedditClient {
	oauthConf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     REDDIT_AUTH_URL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	if postLimit <= 0 {
		postLimit = 25
	}

	return &RedditClient{
		conf:      oauthConf,
		client:    oauthConf.Client(context.Background()),
		postLimit: postLimit,
	}
}

func (rc *RedditClient) refreshClient() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.client = rc.conf.Client(context.Background())
}

// FetchTopPosts returns the subreddit's top posts for the given time window.
func (rc *RedditClient) FetchTopPosts(ctx context.Context, subreddit string, window models.TimeWindow) ([]models.RedditAPIPost, error) {
	endpoint := fmt.Sprintf("%s/r/%s/top", REDDIT_API_URL, subreddit)
	query := url.Values{}
	query.Set("t", string(window))
	query.Set("limit", strconv.Itoa(rc.postLimit))

	body, err := rc.getWithRetry(ctx, endpoint, query, 0)
	if err != nil {
		return nil, err
	}
	return parsePostListing(body)
}

// SearchPosts searches a subreddit for posts matching the query.
func (rc *RedditClient) SearchPosts(ctx context.Context, subreddit, searchTerm string, window models.TimeWindow, sort models.SortOrder) ([]models.RedditAPIPost, error) {
	endpoint := fmt.Sprintf("%s/r/%s/search", REDDIT_API_URL, subreddit)
	query := url.Values{}
	query.Set("q", searchTerm)
	query.Set("restrict_sr", "1")
	query.Set("t", string(window))
	query.Set("sort", string(sort))
	query.Set("limit", strconv.Itoa(rc.postLimit))

	body, err := rc.getWithRetry(ctx, endpoint, query, 0)
	if err != nil {
		return nil, err
	}
	return parsePostListing(body)
}

// FetchComments returns the top-level comments of a post.
func (rc *RedditClient) FetchComments(ctx context.Context, subreddit, postID string) ([]models.RedditAPIComment, error) {
	endpoint := fmt.Sprintf("%s/r/%s/comments/%s", REDDIT_API_URL, subreddit, postID)
	query := url.Values{}
	query.Set("depth", "1")
	query.Set("limit", "100")

	body, err := rc.getWithRetry(ctx, endpoint, query, 0)
	if err != nil {
		return nil, err
	}
	return parseCommentListing(body)
}

func (rc *RedditClient) getWithRetry(ctx context.Context, endpoint string, query url.Values, attempt int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := rc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] request failed: %w: %w", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return io.ReadAll(resp.Body)
	case http.StatusUnauthorized:
		if attempt >= MAX_RETRIES {
			return nil, fmt.Errorf("[RedditClient] token refresh exhausted: %w", apperrors.ErrUpstream)
		}
		slog.Warn("[RedditClient] Token expired - Refreshing and Retrying...")
		rc.refreshClient()
		return rc.getWithRetry(ctx, endpoint, query, attempt+1)
	case http.StatusTooManyRequests:
		if attempt >= MAX_RETRIES {
			return nil, fmt.Errorf("[RedditClient] max retries reached: %w", apperrors.ErrUpstream)
		}
		backoff := INITIAL_BACKOFF << attempt
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
		slog.Warn("[RedditClient] 429 Too Many Requests - Retrying with backoff",
			slog.Int("attempt", attempt+1), slog.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		return rc.getWithRetry(ctx, endpoint, query, attempt+1)
	default:
		return nil, fmt.Errorf("[RedditClient] unexpected status %d: %w", resp.StatusCode, apperrors.ErrUpstream)
	}
}

func parsePostListing(body []byte) ([]models.RedditAPIPost, error) {
	var listing models.RedditPostListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("[RedditClient] failed to decode listing: %w", err)
	}

	posts := make([]models.RedditAPIPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		posts = append(posts, child.Data)
	}
	return posts, nil
}

// The comments endpoint returns a two-element array: the post listing
// followed by the comment listing.
func parseCommentListing(body []byte) ([]models.RedditAPIComment, error) {
	var listings []json.RawMessage
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, fmt.Errorf("[RedditClient] failed to decode comments payload: %w", err)
	}
	if len(listings) < 2 {
		return nil, nil
	}

	var listing models.RedditCommentListing
	if err := json.Unmarshal(listings[1], &listing); err != nil {
		return nil, fmt.Errorf("[RedditClient] failed to decode comment listing: %w", err)
	}

	comments := make([]models.RedditAPIComment, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		comments = append(comments, child.Data)
	}
	return comments, nil
}

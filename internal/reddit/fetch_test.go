package reddit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"workpulse/internal/apperrors"
	"workpulse/internal/models"
)

type fakeSourceClient struct {
	posts    []models.RedditAPIPost
	comments map[string][]models.RedditAPIComment
	err      error

	topCalls    int
	searchCalls int
	searchTerm  string
}

func (f *fakeSourceClient) FetchTopPosts(_ context.Context, _ string, _ models.TimeWindow) ([]models.RedditAPIPost, error) {
	f.topCalls++
	return f.posts, f.err
}

func (f *fakeSourceClient) SearchPosts(_ context.Context, _ string, searchTerm string, _ models.TimeWindow, _ models.SortOrder) ([]models.RedditAPIPost, error) {
	f.searchCalls++
	f.searchTerm = searchTerm
	return f.posts, f.err
}

func (f *fakeSourceClient) FetchComments(_ context.Context, _ string, postID string) ([]models.RedditAPIComment, error) {
	return f.comments[postID], nil
}

func manyComments(n int) []models.RedditAPIComment {
	comments := make([]models.RedditAPIComment, n)
	for i := range comments {
		comments[i] = models.RedditAPIComment{Body: fmt.Sprintf("comment %d", i)}
	}
	return comments
}

func TestPostsWithCommentsSearchUsesSearchListingAndCap(t *testing.T) {
	client := &fakeSourceClient{
		posts:    []models.RedditAPIPost{{ID: "p1", Title: "one"}},
		comments: map[string][]models.RedditAPIComment{"p1": manyComments(20)},
	}
	fetcher := NewFetcher(client)

	posts, err := fetcher.PostsWithComments(context.Background(), FetchOptions{SearchTerm: "Initech"})
	if err != nil {
		t.Fatalf("PostsWithComments: %v", err)
	}
	if client.searchCalls != 1 || client.topCalls != 0 {
		t.Errorf("search=%d top=%d, want 1/0", client.searchCalls, client.topCalls)
	}
	if client.searchTerm != "Initech" {
		t.Errorf("searchTerm = %q", client.searchTerm)
	}
	if len(posts[0].Comments) != SearchCommentCap {
		t.Errorf("comment count = %d, want %d", len(posts[0].Comments), SearchCommentCap)
	}
}

func TestPostsWithCommentsTopListingCapAndOrder(t *testing.T) {
	client := &fakeSourceClient{
		posts: []models.RedditAPIPost{
			{ID: "p1", Title: "first"},
			{ID: "p2", Title: "second"},
			{ID: "p3", Title: "third"},
		},
		comments: map[string][]models.RedditAPIComment{
			"p1": manyComments(20),
			"p2": manyComments(1),
		},
	}
	fetcher := NewFetcher(client)

	posts, err := fetcher.PostsWithComments(context.Background(), FetchOptions{})
	if err != nil {
		t.Fatalf("PostsWithComments: %v", err)
	}
	if client.topCalls != 1 || client.searchCalls != 0 {
		t.Errorf("top=%d search=%d, want 1/0", client.topCalls, client.searchCalls)
	}
	for i, want := range []string{"first", "second", "third"} {
		if posts[i].Title != want {
			t.Errorf("post %d title = %q, want %q (listing order must be preserved)", i, posts[i].Title, want)
		}
	}
	if len(posts[0].Comments) != TopCommentCap {
		t.Errorf("comment count = %d, want %d", len(posts[0].Comments), TopCommentCap)
	}
	if len(posts[2].Comments) != 0 {
		t.Errorf("post without comments got %v", posts[2].Comments)
	}
}

func TestPostsWithCommentsListingFailure(t *testing.T) {
	client := &fakeSourceClient{err: fmt.Errorf("boom: %w", apperrors.ErrUpstream)}
	fetcher := NewFetcher(client)

	_, err := fetcher.PostsWithComments(context.Background(), FetchOptions{})
	if !errors.Is(err, apperrors.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

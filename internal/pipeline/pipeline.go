// Package pipeline orchestrates page assembly: cache lookup, content fetch,
// analysis fan-out, and the transactional write-back.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"workpulse/internal/analysis"
	"workpulse/internal/db"
	"workpulse/internal/models"
	"workpulse/internal/reddit"
)

// Repository is the persistence contract the pipeline needs.
type Repository interface {
	GetBySlug(ctx context.Context, slug string) (models.Company, error)
	SaveAnalysis(ctx context.Context, companyID, summary string, counts models.SentimentCounts, posts []models.RedditPostWithComments) error
	CachedPosts(ctx context.Context, companyID string) ([]models.RedditPostWithComments, error)
	GetIndustry(ctx context.Context) (models.IndustryAnalysis, error)
	SaveIndustryAnalysis(ctx context.Context, analysis models.IndustryAnalysis, posts []models.RedditPostWithComments) error
	IndustryPosts(ctx context.Context) ([]models.RedditPostWithComments, error)
}

// ContentFetcher yields normalized posts with comments.
type ContentFetcher interface {
	PostsWithComments(ctx context.Context, opts reddit.FetchOptions) ([]models.RedditPostWithComments, error)
}

// Analyzer is the analysis contract; satisfied by the engine and its offline
// fallback.
type Analyzer interface {
	Sentiments(ctx context.Context, posts []models.RedditPostWithComments, companyName string) ([]models.RedditPostWithComments, error)
	CompanySummary(ctx context.Context, posts []models.RedditPostWithComments, companyName string) (string, error)
	IndustrySummary(ctx context.Context, posts []models.RedditPostWithComments) (string, error)
	SentimentWords(ctx context.Context, posts []models.RedditPostWithComments) ([]models.WordFrequency, error)
}

type Pipeline struct {
	repo     Repository
	fetcher  ContentFetcher
	analyzer Analyzer

	// group collapses concurrent requests for the same document so the
	// fetch-analyze-save cycle runs at most once per key at a time.
	group singleflight.Group
}

func New(repo Repository, fetcher ContentFetcher, analyzer Analyzer) *Pipeline {
	return &Pipeline{repo: repo, fetcher: fetcher, analyzer: analyzer}
}

// CompanyPage is everything a company detail view needs.
type CompanyPage struct {
	Company models.Company                  `json:"company"`
	Posts   []models.RedditPostWithComments `json:"redditPosts"`
}

// IndustryPage is everything the home view needs.
type IndustryPage struct {
	Analysis models.IndustryAnalysis         `json:"analysis"`
	Posts    []models.RedditPostWithComments `json:"redditPosts"`
}

// CompanyPage assembles the page for one company. A stored non-empty summary
// is a cache hit and short-circuits all external calls; otherwise posts are
// fetched, analyzed, and committed atomically before returning.
//
// On fetch or analysis failure the company entity is still returned beside
// the error so callers can degrade rather than fail the whole page.
func (p *Pipeline) CompanyPage(ctx context.Context, slug string) (CompanyPage, error) {
	company, err := p.repo.GetBySlug(ctx, slug)
	if err != nil {
		return CompanyPage{}, err
	}

	v, err, _ := p.group.Do(db.DocPath("companies", company.ID), func() (any, error) {
		return p.buildCompanyPage(ctx, company)
	})
	page, _ := v.(CompanyPage)
	if page.Company.ID == "" {
		page.Company = company
	}
	return page, err
}

func (p *Pipeline) buildCompanyPage(ctx context.Context, company models.Company) (CompanyPage, error) {
	if company.Summary != "" {
		posts, err := p.repo.CachedPosts(ctx, company.ID)
		if err != nil {
			return CompanyPage{Company: company}, err
		}
		slog.Debug("[Pipeline] company cache hit",
			slog.String("slug", company.Slug),
			slog.Int("posts", len(posts)))
		return CompanyPage{Company: company, Posts: posts}, nil
	}

	posts, err := p.fetcher.PostsWithComments(ctx, reddit.FetchOptions{SearchTerm: company.Name})
	if err != nil {
		return CompanyPage{Company: company}, fmt.Errorf("company %s: %w", company.Slug, err)
	}

	var summary string
	var labeled []models.RedditPostWithComments
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = p.analyzer.CompanySummary(gctx, posts, company.Name)
		return err
	})
	g.Go(func() error {
		var err error
		labeled, err = p.analyzer.Sentiments(gctx, posts, company.Name)
		return err
	})
	if err := g.Wait(); err != nil {
		return CompanyPage{Company: company}, fmt.Errorf("company %s: %w", company.Slug, err)
	}

	counts := analysis.CountSentiments(labeled)
	if err := p.repo.SaveAnalysis(ctx, company.ID, summary, counts, labeled); err != nil {
		return CompanyPage{Company: company}, err
	}

	company.Summary = summary
	company.SentimentCounts = counts
	slog.Info("[Pipeline] company analysis refreshed",
		slog.String("slug", company.Slug),
		slog.Int("posts", len(labeled)))
	return CompanyPage{Company: company, Posts: labeled}, nil
}

// IndustryPage assembles the home page. The cached copy counts as a hit only
// when stored posts exist; an analysis document without posts is rebuilt.
func (p *Pipeline) IndustryPage(ctx context.Context) (IndustryPage, error) {
	v, err, _ := p.group.Do(db.IndustryPath, func() (any, error) {
		return p.buildIndustryPage(ctx)
	})
	page, _ := v.(IndustryPage)
	return page, err
}

func (p *Pipeline) buildIndustryPage(ctx context.Context) (IndustryPage, error) {
	stored, err := p.repo.GetIndustry(ctx)
	if err != nil {
		return IndustryPage{}, err
	}
	cached, err := p.repo.IndustryPosts(ctx)
	if err != nil {
		return IndustryPage{Analysis: stored}, err
	}
	if len(cached) > 0 {
		slog.Debug("[Pipeline] industry cache hit", slog.Int("posts", len(cached)))
		return IndustryPage{Analysis: stored, Posts: cached}, nil
	}

	posts, err := p.fetcher.PostsWithComments(ctx, reddit.FetchOptions{})
	if err != nil {
		return IndustryPage{Analysis: stored}, fmt.Errorf("industry page: %w", err)
	}

	var computed models.IndustryAnalysis
	var labeled []models.RedditPostWithComments
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		computed.Summary, err = p.analyzer.IndustrySummary(gctx, posts)
		return err
	})
	g.Go(func() error {
		var err error
		labeled, err = p.analyzer.Sentiments(gctx, posts, "")
		return err
	})
	g.Go(func() error {
		var err error
		computed.SentimentWords, err = p.analyzer.SentimentWords(gctx, posts)
		return err
	})
	if err := g.Wait(); err != nil {
		return IndustryPage{Analysis: stored}, fmt.Errorf("industry page: %w", err)
	}

	computed.SentimentCounts = analysis.CountSentiments(labeled)
	if err := p.repo.SaveIndustryAnalysis(ctx, computed, labeled); err != nil {
		return IndustryPage{Analysis: stored}, err
	}

	slog.Info("[Pipeline] industry analysis refreshed", slog.Int("posts", len(labeled)))
	return IndustryPage{Analysis: computed, Posts: labeled}, nil
}

package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"workpulse/internal/apperrors"
	"workpulse/internal/models"
)

const (
	companiesCollection = "companies"
	postsCollection     = "redditPosts"

	// IndustryPath is the document holding industry-wide analysis. Only the
	// tech bucket exists today.
	IndustryPath = "industries/tech"
)

// CompanyRepo maps directory entities and their cached analyses onto the
// document store.
type CompanyRepo struct {
	store *Store
}

func NewCompanyRepo(store *Store) *CompanyRepo {
	return &CompanyRepo{store: store}
}

// GetBySlug resolves a company by its URL slug.
func (r *CompanyRepo) GetBySlug(ctx context.Context, slug string) (models.Company, error) {
	if slug == "" {
		return models.Company{}, fmt.Errorf("[CompanyRepo] slug: %w", apperrors.ErrMissingParameter)
	}

	var matches []models.Company
	if err := r.store.QueryByField(ctx, companiesCollection, "slug", slug, &matches); err != nil {
		return models.Company{}, err
	}
	if len(matches) == 0 {
		return models.Company{}, fmt.Errorf("[CompanyRepo] company %q: %w", slug, apperrors.ErrNotFound)
	}
	return matches[0], nil
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (models.Company, error) {
	var company models.Company
	found, err := r.store.GetDocument(ctx, DocPath(companiesCollection, id), &company)
	if err != nil {
		return models.Company{}, err
	}
	if !found {
		return models.Company{}, fmt.Errorf("[CompanyRepo] company %s: %w", id, apperrors.ErrNotFound)
	}
	return company, nil
}

// SearchByName finds companies whose name matches exactly. No matches is an
// empty list, not an error.
func (r *CompanyRepo) SearchByName(ctx context.Context, name string) ([]models.Company, error) {
	if name == "" {
		return nil, fmt.Errorf("[CompanyRepo] name: %w", apperrors.ErrMissingParameter)
	}
	var matches []models.Company
	if err := r.store.QueryByField(ctx, companiesCollection, "name", name, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *CompanyRepo) List(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := r.store.ScanCollection(ctx, companiesCollection, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// Create writes a new company document and returns its generated ID.
func (r *CompanyRepo) Create(ctx context.Context, fields map[string]any) (string, error) {
	id := uuid.NewString()
	if err := r.store.SaveDocument(ctx, companiesCollection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges fields into an existing company. RemoveField values clear
// the corresponding stored fields.
func (r *CompanyRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.store.SaveDocument(ctx, companiesCollection, id, fields)
}

// Delete removes the company document and its cached posts.
func (r *CompanyRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.store.DeleteDocument(ctx, DocPath(companiesCollection, id))
}

// SaveAnalysis commits a company's freshly computed summary, sentiment
// tallies, and analyzed posts in one transactional write.
func (r *CompanyRepo) SaveAnalysis(ctx context.Context, companyID, summary string, counts models.SentimentCounts, posts []models.RedditPostWithComments) error {
	fields := map[string]any{
		"summary":            summary,
		"positiveSentiments": counts.Positive,
		"neutralSentiments":  counts.Neutral,
		"negativeSentiments": counts.Negative,
	}
	return r.store.SaveWithChildren(ctx, DocPath(companiesCollection, companyID), fields, postsCollection, childPosts(posts))
}

// CachedPosts returns the analyzed posts stored under a company.
func (r *CompanyRepo) CachedPosts(ctx context.Context, companyID string) ([]models.RedditPostWithComments, error) {
	var posts []models.RedditPostWithComments
	if err := r.store.GetChildren(ctx, DocPath(companiesCollection, companyID), postsCollection, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetIndustry fetches the industry analysis document. A missing document is
// not an error; it reads as an empty analysis (a cache miss).
func (r *CompanyRepo) GetIndustry(ctx context.Context) (models.IndustryAnalysis, error) {
	var analysis models.IndustryAnalysis
	if _, err := r.store.GetDocument(ctx, IndustryPath, &analysis); err != nil {
		return models.IndustryAnalysis{}, err
	}
	return analysis, nil
}

// SaveIndustryAnalysis commits the industry analysis and its posts in one
// transactional write.
func (r *CompanyRepo) SaveIndustryAnalysis(ctx context.Context, analysis models.IndustryAnalysis, posts []models.RedditPostWithComments) error {
	fields := map[string]any{
		"summary":            analysis.Summary,
		"sentimentWords":     analysis.SentimentWords,
		"positiveSentiments": analysis.Positive,
		"neutralSentiments":  analysis.Neutral,
		"negativeSentiments": analysis.Negative,
	}
	return r.store.SaveWithChildren(ctx, IndustryPath, fields, postsCollection, childPosts(posts))
}

// IndustryPosts returns the analyzed posts stored under the industry
// document.
func (r *CompanyRepo) IndustryPosts(ctx context.Context) ([]models.RedditPostWithComments, error) {
	var posts []models.RedditPostWithComments
	if err := r.store.GetChildren(ctx, IndustryPath, postsCollection, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func childPosts(posts []models.RedditPostWithComments) []ChildDocument {
	children := make([]ChildDocument, 0, len(posts))
	for i, post := range posts {
		id := post.PostID
		if id == "" {
			id = strconv.Itoa(i)
		}
		children = append(children, ChildDocument{ID: id, Data: post})
	}
	return children
}

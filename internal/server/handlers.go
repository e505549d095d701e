package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/russross/blackfriday/v2"
	"golang.org/x/sync/errgroup"

	"workpulse/internal/apperrors"
	"workpulse/internal/db"
	"workpulse/internal/models"
	"workpulse/internal/pipeline"
)

// PageBuilder assembles page payloads through the analysis pipeline.
type PageBuilder interface {
	CompanyPage(ctx context.Context, slug string) (pipeline.CompanyPage, error)
	IndustryPage(ctx context.Context) (pipeline.IndustryPage, error)
}

// CompanyDirectory is the admin/directory persistence contract.
type CompanyDirectory interface {
	List(ctx context.Context) ([]models.Company, error)
	SearchByName(ctx context.Context, name string) ([]models.Company, error)
	GetByID(ctx context.Context, id string) (models.Company, error)
	Create(ctx context.Context, fields map[string]any) (string, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

// LogoResolver turns a company website into a logo URL, or "" when none is
// found. Never fails a request.
type LogoResolver interface {
	FetchLogoURL(ctx context.Context, website string) string
}

type Handlers struct {
	pages     PageBuilder
	directory CompanyDirectory
	logos     LogoResolver
}

func NewHandlers(pages PageBuilder, directory CompanyDirectory, logos LogoResolver) *Handlers {
	return &Handlers{pages: pages, directory: directory, logos: logos}
}

type companyView struct {
	models.Company
	SummaryHTML string `json:"summaryHtml,omitempty"`
}

type companyPageResponse struct {
	Company companyView                `json:"company"`
	Posts   []models.ReducedRedditPost `json:"redditPosts"`
}

type homeResponse struct {
	models.SentimentCounts
	Summary        string                     `json:"summary,omitempty"`
	SummaryHTML    string                     `json:"summaryHtml,omitempty"`
	SentimentWords []models.WordFrequency     `json:"sentimentWords"`
	Posts          []models.ReducedRedditPost `json:"redditPosts"`
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Home serves the industry page. Fetch or analysis failures degrade to the
// stored analysis with no posts rather than failing the page.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.IndustryPage(r.Context())
	if err != nil && !degradable(err) {
		writeError(w, r, err)
		return
	}
	if err != nil {
		slog.Warn("[Server] serving degraded home page", slog.Any("error", err))
	}

	writeJSON(w, http.StatusOK, homeResponse{
		SentimentCounts: page.Analysis.SentimentCounts,
		Summary:         page.Analysis.Summary,
		SummaryHTML:     summaryHTML(page.Analysis.Summary),
		SentimentWords:  page.Analysis.SentimentWords,
		Posts:           models.ReducePosts(page.Posts),
	})
}

// CompanyPage serves a company detail page by slug. Unknown slugs are 404;
// fetch or analysis failures degrade to the stored entity with no posts.
func (h *Handlers) CompanyPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.CompanyPage(r.Context(), chi.URLParam(r, "slug"))
	if err != nil && !degradable(err) {
		writeError(w, r, err)
		return
	}
	if err != nil {
		slog.Warn("[Server] serving degraded company page",
			slog.String("slug", page.Company.Slug),
			slog.Any("error", err))
	}

	writeJSON(w, http.StatusOK, companyPageResponse{
		Company: h.companyView(r.Context(), page.Company),
		Posts:   models.ReducePosts(page.Posts),
	})
}

func (h *Handlers) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.directory.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.companyViews(r.Context(), companies))
}

func (h *Handlers) SearchCompanies(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, r, fmt.Errorf("query parameter name: %w", apperrors.ErrMissingParameter))
		return
	}
	companies, err := h.directory.SearchByName(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.companyViews(r.Context(), companies))
}

func (h *Handlers) GetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.directory.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.companyView(r.Context(), company))
}

// companyInput is the admin write payload. Pointer fields distinguish an
// absent field from a zero one: on update, absent optional fields are removed
// from the stored document.
type companyInput struct {
	Name              *string `json:"name"`
	Slug              *string `json:"slug"`
	Website           *string `json:"website"`
	YearFounded       *int    `json:"yearFounded"`
	NumberOfEmployees *int    `json:"numberOfEmployees"`
	EstimatedRevenue  *string `json:"estimatedRevenue"`
}

func (h *Handlers) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var input companyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, r, fmt.Errorf("decoding body: %w: %v", apperrors.ErrMissingParameter, err))
		return
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		writeError(w, r, fmt.Errorf("company name: %w", apperrors.ErrMissingParameter))
		return
	}

	fields := input.fields(false)
	if input.Slug == nil || *input.Slug == "" {
		fields["slug"] = slugify(*input.Name)
	}

	id, err := h.directory.Create(r.Context(), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	company, err := h.directory.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.companyView(r.Context(), company))
}

func (h *Handlers) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var input companyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, r, fmt.Errorf("decoding body: %w: %v", apperrors.ErrMissingParameter, err))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.directory.Update(r.Context(), id, input.fields(true)); err != nil {
		writeError(w, r, err)
		return
	}
	company, err := h.directory.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.companyView(r.Context(), company))
}

func (h *Handlers) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fields builds the partial-update map. With removeAbsent set, optional
// fields missing from the payload map to the delete-field sentinel.
func (in companyInput) fields(removeAbsent bool) map[string]any {
	fields := make(map[string]any)

	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil && *in.Slug != "" {
		fields["slug"] = slugify(*in.Slug)
	}

	optional := map[string]any{}
	if in.Website != nil {
		optional["website"] = *in.Website
	}
	if in.YearFounded != nil {
		optional["yearFounded"] = *in.YearFounded
	}
	if in.NumberOfEmployees != nil {
		optional["numberOfEmployees"] = *in.NumberOfEmployees
	}
	if in.EstimatedRevenue != nil {
		optional["estimatedRevenue"] = *in.EstimatedRevenue
	}

	for _, key := range []string{"website", "yearFounded", "numberOfEmployees", "estimatedRevenue"} {
		if v, ok := optional[key]; ok {
			fields[key] = v
		} else if removeAbsent {
			fields[key] = db.RemoveField
		}
	}
	return fields
}

func (h *Handlers) companyView(ctx context.Context, company models.Company) companyView {
	company.Logo = h.logos.FetchLogoURL(ctx, company.Website)
	return companyView{Company: company, SummaryHTML: summaryHTML(company.Summary)}
}

// companyViews attaches logos concurrently; the logo cache makes repeats
// cheap but cold lookups still cost a network round trip each.
func (h *Handlers) companyViews(ctx context.Context, companies []models.Company) []companyView {
	views := make([]companyView, len(companies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, company := range companies {
		g.Go(func() error {
			views[i] = h.companyView(gctx, company)
			return nil
		})
	}
	_ = g.Wait()
	return views
}

func summaryHTML(summary string) string {
	if summary == "" {
		return ""
	}
	return strings.TrimSpace(string(blackfriday.Run([]byte(summary))))
}

// degradable reports whether a page can still be served from whatever entity
// data survived the failure. Lookups that found nothing are never degradable.
func degradable(err error) bool {
	return errors.Is(err, apperrors.ErrUpstream) || errors.Is(err, apperrors.ErrMalformedResponse)
}

var nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := nonSlugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"workpulse/config"
	"workpulse/internal/apperrors"
	"workpulse/internal/db"
	"workpulse/internal/models"
	"workpulse/internal/pipeline"
)

type fakePages struct {
	companyPage pipeline.CompanyPage
	companyErr  error
	home        pipeline.IndustryPage
	homeErr     error
}

func (f *fakePages) CompanyPage(_ context.Context, _ string) (pipeline.CompanyPage, error) {
	return f.companyPage, f.companyErr
}

func (f *fakePages) IndustryPage(_ context.Context) (pipeline.IndustryPage, error) {
	return f.home, f.homeErr
}

type fakeDirectory struct {
	companies []models.Company
	company   models.Company
	err       error

	createdFields map[string]any
	updatedID     string
	updatedFields map[string]any
	deletedID     string
}

func (f *fakeDirectory) List(_ context.Context) ([]models.Company, error) {
	return f.companies, f.err
}

func (f *fakeDirectory) SearchByName(_ context.Context, _ string) ([]models.Company, error) {
	return f.companies, f.err
}

func (f *fakeDirectory) GetByID(_ context.Context, _ string) (models.Company, error) {
	return f.company, f.err
}

func (f *fakeDirectory) Create(_ context.Context, fields map[string]any) (string, error) {
	f.createdFields = fields
	return "new-id", f.err
}

func (f *fakeDirectory) Update(_ context.Context, id string, fields map[string]any) error {
	f.updatedID = id
	f.updatedFields = fields
	return f.err
}

func (f *fakeDirectory) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return f.err
}

type fakeLogos struct{ url string }

func (f *fakeLogos) FetchLogoURL(_ context.Context, _ string) string { return f.url }

func newTestRouter(pages PageBuilder, directory CompanyDirectory, logos LogoResolver) http.Handler {
	return newRouter(
		config.ServerConfig{CorsOrigins: []string{"*"}},
		NewHandlers(pages, directory, logos),
	)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&fakePages{}, &fakeDirectory{}, &fakeLogos{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHomeDegradesOnUpstreamFailure(t *testing.T) {
	pages := &fakePages{
		home:    pipeline.IndustryPage{Analysis: models.IndustryAnalysis{Summary: "stored summary"}},
		homeErr: fmt.Errorf("reddit down: %w", apperrors.ErrUpstream),
	}
	router := newTestRouter(pages, &fakeDirectory{}, &fakeLogos{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/home", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (degraded)", rec.Code)
	}

	var body struct {
		Summary string                     `json:"summary"`
		Posts   []models.ReducedRedditPost `json:"redditPosts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Summary != "stored summary" {
		t.Errorf("summary = %q", body.Summary)
	}
	if len(body.Posts) != 0 {
		t.Errorf("degraded response has posts: %+v", body.Posts)
	}
}

func TestCompanyPageNotFound(t *testing.T) {
	pages := &fakePages{companyErr: fmt.Errorf("no such company: %w", apperrors.ErrNotFound)}
	router := newTestRouter(pages, &fakeDirectory{}, &fakeLogos{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/companies/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCompanyPageAttachesLogoAndHTML(t *testing.T) {
	pages := &fakePages{companyPage: pipeline.CompanyPage{
		Company: models.Company{ID: "c1", Slug: "initech", Name: "Initech", Website: "https://initech.example", Summary: "**bold** claim"},
		Posts:   []models.RedditPostWithComments{{Title: "t", Text: "x", URL: "u", Comments: []string{"c"}}},
	}}
	router := newTestRouter(pages, &fakeDirectory{}, &fakeLogos{url: "https://logo.example/initech.png"})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/companies/initech", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Company struct {
			Logo        string `json:"logo"`
			SummaryHTML string `json:"summaryHtml"`
		} `json:"company"`
		Posts []models.ReducedRedditPost `json:"redditPosts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Company.Logo != "https://logo.example/initech.png" {
		t.Errorf("logo = %q", body.Company.Logo)
	}
	if !strings.Contains(body.Company.SummaryHTML, "<strong>bold</strong>") {
		t.Errorf("summaryHtml = %q", body.Company.SummaryHTML)
	}
	if len(body.Posts) != 1 || body.Posts[0] != (models.ReducedRedditPost{Title: "t", Text: "x", URL: "u"}) {
		t.Errorf("posts = %+v, want reduced projection", body.Posts)
	}
}

func TestSearchRequiresName(t *testing.T) {
	router := newTestRouter(&fakePages{}, &fakeDirectory{}, &fakeLogos{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/companies/search", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateCompany(t *testing.T) {
	directory := &fakeDirectory{company: models.Company{ID: "new-id", Slug: "acme-corp", Name: "Acme Corp"}}
	router := newTestRouter(&fakePages{}, directory, &fakeLogos{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/admin/companies/", `{"name":"Acme Corp"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if directory.createdFields["slug"] != "acme-corp" {
		t.Errorf("generated slug = %v", directory.createdFields["slug"])
	}
	if directory.createdFields["name"] != "Acme Corp" {
		t.Errorf("name = %v", directory.createdFields["name"])
	}
}

func TestCreateCompanyRequiresName(t *testing.T) {
	router := newTestRouter(&fakePages{}, &fakeDirectory{}, &fakeLogos{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/admin/companies/", `{"website":"https://x.example"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateCompanyRemovesAbsentOptionalFields(t *testing.T) {
	directory := &fakeDirectory{company: models.Company{ID: "c1", Slug: "initech", Name: "Initech"}}
	router := newTestRouter(&fakePages{}, directory, &fakeLogos{})

	rec := doRequest(t, router, http.MethodPut, "/api/v1/admin/companies/c1", `{"name":"Initech","yearFounded":1999}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if directory.updatedID != "c1" {
		t.Errorf("updated id = %q", directory.updatedID)
	}
	if directory.updatedFields["yearFounded"] != 1999 {
		t.Errorf("yearFounded = %v", directory.updatedFields["yearFounded"])
	}
	for _, key := range []string{"website", "numberOfEmployees", "estimatedRevenue"} {
		if directory.updatedFields[key] != db.RemoveField {
			t.Errorf("absent field %q = %v, want delete-field sentinel", key, directory.updatedFields[key])
		}
	}
}

func TestDeleteCompany(t *testing.T) {
	directory := &fakeDirectory{}
	router := newTestRouter(&fakePages{}, directory, &fakeLogos{})

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/admin/companies/c1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if directory.deletedID != "c1" {
		t.Errorf("deleted id = %q", directory.deletedID)
	}
}

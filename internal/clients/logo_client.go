package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const (
	logoBaseURL  = "https://logo.clearbit.com"
	logoCacheTTL = 24 * time.Hour

	// cached marker for hostnames with no logo, so misses are cached too
	logoNone = "none"
)

// LogoClient probes the Clearbit logo endpoint for a company website and
// caches the outcome per hostname. cache may be nil, in which case every
// lookup hits the endpoint.
type LogoClient struct {
	httpClient *http.Client
	cache      *ValkeyClient
}

func NewLogoClient(cache *ValkeyClient) *LogoClient {
	return &LogoClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
	}
}

// FetchLogoURL returns the logo URL for the company website, or "" when the
// website is unset, unparsable, or has no logo. Failures degrade to "";
// pages render without a logo rather than erroring.
func (lc *LogoClient) FetchLogoURL(ctx context.Context, website string) string {
	if website == "" {
		return ""
	}
	parsed, err := url.Parse(website)
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	hostname := parsed.Hostname()
	cacheKey := "logo:" + hostname

	if lc.cache != nil {
		if cached, ok := lc.cache.Get(ctx, cacheKey); ok {
			if cached == logoNone {
				return ""
			}
			return cached
		}
	}

	logoURL := fmt.Sprintf("%s/%s", logoBaseURL, hostname)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, logoURL, nil)
	if err != nil {
		return ""
	}

	resp, err := lc.httpClient.Do(req)
	if err != nil {
		slog.Warn("[LogoClient] logo probe failed",
			slog.String("hostname", hostname),
			slog.String("error", err.Error()))
		return ""
	}
	defer resp.Body.Close()

	result := logoNone
	if resp.StatusCode == http.StatusOK {
		result = logoURL
	}

	if lc.cache != nil {
		if err := lc.cache.SetWithTTL(ctx, cacheKey, result, logoCacheTTL); err != nil {
			slog.Warn("[LogoClient] failed to cache logo result",
				slog.String("hostname", hostname),
				slog.String("error", err.Error()))
		}
	}

	if result == logoNone {
		return ""
	}
	return result
}

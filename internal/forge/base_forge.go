package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

const userAgent = "docagent/1.0"

// BaseForge provides the HTTP plumbing shared by the GitHub, GitLab and Forgejo clients.
type BaseForge struct {
	httpClient *http.Client
	apiURL     string
	token      string

	authHeaderPrefix string // "Bearer " for GitHub/GitLab, "token " for Forgejo
	customHeaders    map[string]string
}

// NewBaseForge creates a BaseForge. A nil client gets a 30s timeout client.
func NewBaseForge(httpClient *http.Client, apiURL, token string) *BaseForge {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &BaseForge{
		httpClient:       httpClient,
		apiURL:           apiURL,
		token:            token,
		authHeaderPrefix: "Bearer ",
		customHeaders:    make(map[string]string),
	}
}

// SetAuthHeaderPrefix customizes the authorization header format (e.g., "token " for Forgejo).
func (b *BaseForge) SetAuthHeaderPrefix(prefix string) {
	b.authHeaderPrefix = prefix
}

// SetCustomHeader sets a header sent with every request.
func (b *BaseForge) SetCustomHeader(key, value string) {
	b.customHeaders[key] = value
}

// NewRequest builds a GET request for endpoint relative to the API URL.
// Query strings in endpoint are preserved. Authorization is only sent when a token is set.
func (b *BaseForge) NewRequest(ctx context.Context, endpoint string) (*http.Request, error) {
	cleanEndpoint := strings.TrimPrefix(endpoint, "/")

	var rawQuery string
	if idx := strings.Index(cleanEndpoint, "?"); idx != -1 {
		rawQuery = cleanEndpoint[idx+1:]
		cleanEndpoint = cleanEndpoint[:idx]
	}

	u, err := url.Parse(b.apiURL)
	if err != nil {
		return nil, errors.ForgeError("failed to parse API URL").
			WithCause(err).
			WithContext("api_url", b.apiURL).
			Build()
	}

	// RawPath keeps escaped segments such as GitLab's url-encoded project path.
	decoded, err := url.PathUnescape(cleanEndpoint)
	if err != nil {
		decoded = cleanEndpoint
	}
	baseRaw := strings.TrimSuffix(u.EscapedPath(), "/")
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + decoded
	u.RawPath = baseRaw + "/" + cleanEndpoint
	if rawQuery != "" {
		u.RawQuery = rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, errors.ForgeError("failed to create request").
			WithCause(err).
			WithContext("url", u.String()).
			Build()
	}

	if b.token != "" {
		req.Header.Set("Authorization", b.authHeaderPrefix+b.token)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for key, value := range b.customHeaders {
		req.Header.Set(key, value)
	}

	return req, nil
}

// DoRequest executes req and decodes a JSON response into result.
func (b *BaseForge) DoRequest(req *http.Request, result any) error {
	resp, err := b.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.NetworkError("failed to execute forge request").
			WithCause(err).
			WithContext("url", req.URL.String()).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		limitedBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		bodyStr := strings.ReplaceAll(string(limitedBody), "\n", " ")

		category := errors.CategoryForge
		retry := errors.RetryNever
		switch {
		case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
			category = errors.CategoryAuth
		case resp.StatusCode == http.StatusNotFound:
			category = errors.CategoryNotFound
		case resp.StatusCode == http.StatusTooManyRequests:
			retry = errors.RetryRateLimit
		case resp.StatusCode >= http.StatusInternalServerError:
			retry = errors.RetryBackoff
		}

		b := errors.NewError(category, fmt.Sprintf("forge API error: %s", resp.Status)).
			WithRetry(retry).
			WithContext("code", resp.StatusCode).
			WithContext("url", req.URL.String()).
			WithContext("response", bodyStr)
		if after := resp.Header.Get("Retry-After"); after != "" {
			b = b.WithContext("retry_after", after)
		}
		return b.Build()
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return errors.ForgeError("failed to decode response").
				WithCause(err).
				WithContext("url", req.URL.String()).
				Build()
		}
	}
	return nil
}

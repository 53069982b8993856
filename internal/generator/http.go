package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

// HTTPGenerator calls a remote generation service:
//
//	POST {endpoint}/generate {"githubUrl": ..., "docTypes": [...], "options": {...}}
//	-> {"success": true, "data": {"readme": "..."}}
//	-> {"success": false, "error": {"code": "...", "message": "..."}}
type HTTPGenerator struct {
	client   *http.Client
	endpoint string
	token    string
	options  map[string]any
}

// NewHTTP creates an HTTP provider. The client should not set its own timeout;
// request deadlines come from the caller's context.
func NewHTTP(client *http.Client, endpoint, token string) *HTTPGenerator {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPGenerator{
		client:   client,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		token:    token,
	}
}

// WithOptions sets the provider-specific options object sent with every request.
func (g *HTTPGenerator) WithOptions(options map[string]any) *HTTPGenerator {
	g.options = options
	return g
}

// Name returns "http".
func (g *HTTPGenerator) Name() string { return "http" }

type generateRequest struct {
	GithubURL string         `json:"githubUrl"`
	DocTypes  []string       `json:"docTypes"`
	Options   map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Success  bool              `json:"success"`
	Data     map[string]string `json:"data"`
	Error    *Failure          `json:"error,omitempty"`
	Metadata map[string]any    `json:"metadata,omitempty"`
}

// Generate performs one POST for all typeIDs.
func (g *HTTPGenerator) Generate(ctx context.Context, ref reference.Reference, typeIDs []string) (map[string]string, error) {
	payload, err := json.Marshal(generateRequest{GithubURL: ref.String(), DocTypes: typeIDs, Options: g.options})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to encode generate request").Build()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.ConfigError("invalid generator endpoint").
			WithCause(err).
			WithContext("endpoint", g.endpoint).
			Build()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, NewProviderError(CodeUnavailable, err.Error()).WithContext("endpoint", g.endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, NewProviderError(CodeUnavailable, "failed to read response: "+err.Error())
	}

	var envelope generateResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		if resp.StatusCode >= 400 {
			return nil, withRetryAfter(NewProviderError(CodeUpstream, fmt.Sprintf("provider returned %s", resp.Status)).
				WithContext("status", resp.StatusCode), resp)
		}
		return nil, NewProviderError(CodeBadResponse, "response is not a generate envelope").
			WithContext("status", resp.StatusCode)
	}

	if !envelope.Success || resp.StatusCode >= 400 {
		failure := Failure{Code: CodeUpstream, Message: resp.Status}
		if envelope.Error != nil && envelope.Error.Code != "" {
			failure = *envelope.Error
		}
		return nil, withRetryAfter(NewProviderError(failure.Code, failure.Message).WithContext("status", resp.StatusCode), resp)
	}

	if envelope.Data == nil {
		return nil, NewProviderError(CodeBadResponse, "response has no data")
	}
	return envelope.Data, nil
}

// withRetryAfter copies a Retry-After header onto err for the caller's backoff.
func withRetryAfter(err *errors.ClassifiedError, resp *http.Response) *errors.ClassifiedError {
	if after := resp.Header.Get("Retry-After"); after != "" {
		return err.WithContext("retry_after", after)
	}
	return err
}

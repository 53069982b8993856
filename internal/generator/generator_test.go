package generator

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/config"
	"git.home.luguber.info/inful/docagent/internal/forge"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

func mustRef(t *testing.T, raw string) reference.Reference {
	t.Helper()
	ref, err := reference.Parse(raw)
	require.NoError(t, err)
	return ref
}

func TestCompleteDropsExtrasAndReportsMissing(t *testing.T) {
	got, err := Complete([]string{"readme"}, map[string]string{"readme": "r", "bonus": "b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"readme": "r"}, got)

	_, err = Complete([]string{"readme", "api"}, map[string]string{"readme": "r"})
	require.ErrorIs(t, err, ErrProvider)
	f, ok := FailureOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeIncompleteResponse, f.Code)
}

func TestProviderErrorCarriesCodeAndMessage(t *testing.T) {
	err := NewProviderError("rate_limited", "slow down")
	assert.True(t, stderrors.Is(err, ErrProvider))
	assert.Equal(t, errors.CategoryProvider, err.Category())
	assert.Contains(t, err.Error(), "rate_limited: slow down")
	code, _ := err.Context().GetString("code")
	assert.Equal(t, "rate_limited", code)
}

func TestHTTPGeneratorSuccess(t *testing.T) {
	var got generateRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"readme": "# R", "architecture": "# A"},
		})
	}))
	defer srv.Close()

	g := NewHTTP(srv.Client(), srv.URL+"/api/", "tok").WithOptions(map[string]any{"includeC4Model": true})
	out, err := g.Generate(context.Background(), mustRef(t, "https://example.com/org/repo"), []string{"readme", "architecture"})
	require.NoError(t, err)

	assert.Equal(t, "# R", out["readme"])
	assert.Equal(t, "https://example.com/org/repo", got.GithubURL)
	assert.Equal(t, []string{"readme", "architecture"}, got.DocTypes)
	assert.Equal(t, true, got.Options["includeC4Model"])
	assert.Equal(t, "Bearer tok", auth)
}

func TestHTTPGeneratorFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{"envelope error", http.StatusOK, `{"success":false,"error":{"code":"repo_private","message":"cannot read"}}`, "repo_private"},
		{"error status with envelope", http.StatusBadGateway, `{"success":false,"error":{"code":"llm_down","message":"x"}}`, "llm_down"},
		{"error status without envelope", http.StatusInternalServerError, `boom`, CodeUpstream},
		{"success without data", http.StatusOK, `{"success":true}`, CodeBadResponse},
		{"not json", http.StatusOK, `<html>`, CodeBadResponse},
		{"failure without code", http.StatusOK, `{"success":false}`, CodeUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewHTTP(srv.Client(), srv.URL, "").Generate(context.Background(), mustRef(t, "https://example.com/org/repo"), []string{"readme"})
			require.ErrorIs(t, err, ErrProvider)
			f, ok := FailureOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, f.Code)
		})
	}
}

func TestHTTPGeneratorCarriesRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"success":false,"error":{"code":"unavailable","message":"slow down"}}`)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.Client(), srv.URL, "").Generate(context.Background(), mustRef(t, "https://example.com/org/repo"), []string{"readme"})
	require.ErrorIs(t, err, ErrProvider)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	after, _ := ce.Context().GetString("retry_after")
	assert.Equal(t, "7", after)
}

func TestHTTPGeneratorUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTP(nil, url, "").Generate(context.Background(), mustRef(t, "https://example.com/org/repo"), []string{"readme"})
	f, ok := FailureOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeUnavailable, f.Code)
}

func TestHTTPGeneratorReturnsContextErrorOnDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewHTTP(srv.Client(), srv.URL, "").Generate(ctx, mustRef(t, "https://example.com/org/repo"), []string{"readme"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

type fakeChatModel struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (*schema.Message, error)
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.mu.Lock()
	prompt := input[len(input)-1].Content
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.reply(prompt)
}

type fixedMetadata struct {
	info *forge.RepositoryInfo
	err  error
}

func (f fixedMetadata) Kind() forge.Kind { return forge.KindNone }

func (f fixedMetadata) FetchRepositoryInfo(context.Context, reference.Reference) (*forge.RepositoryInfo, error) {
	return f.info, f.err
}

func TestLLMGeneratorPromptsPerType(t *testing.T) {
	fake := &fakeChatModel{reply: func(prompt string) (*schema.Message, error) {
		return schema.AssistantMessage("# generated\n\n"+prompt, nil), nil
	}}
	meta := fixedMetadata{info: &forge.RepositoryInfo{Language: "Go", Topics: []string{"cli"}}}
	g := NewLLMWithModel(fake, catalog.Default(), meta)

	out, err := g.Generate(context.Background(), mustRef(t, "https://example.com/org/repo"), []string{"readme", "security"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Len(t, fake.prompts, 2)
	assert.Contains(t, fake.prompts[0], `"README.md"`)
	assert.Contains(t, fake.prompts[1], `"Security Guide"`)
	assert.Contains(t, fake.prompts[0], "Primary language: Go")
	assert.True(t, strings.HasPrefix(out["readme"], "# generated"))
}

func TestLLMGeneratorFailures(t *testing.T) {
	ref := mustRef(t, "https://example.com/org/repo")

	failing := NewLLMWithModel(&fakeChatModel{reply: func(string) (*schema.Message, error) {
		return nil, stderrors.New("429 too many requests")
	}}, catalog.Default(), nil)
	_, err := failing.Generate(context.Background(), ref, []string{"readme"})
	f, ok := FailureOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeModel, f.Code)

	empty := NewLLMWithModel(&fakeChatModel{reply: func(string) (*schema.Message, error) {
		return schema.AssistantMessage("  ", nil), nil
	}}, catalog.Default(), fixedMetadata{err: stderrors.New("metadata down")})
	_, err = empty.Generate(context.Background(), ref, []string{"api"})
	f, ok = FailureOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeEmptyCompletion, f.Code)
}

func TestSampleGenerator(t *testing.T) {
	cat := catalog.Default()
	g := NewSample(cat)

	out, err := g.Generate(context.Background(), mustRef(t, "https://example.com/org/repo"), cat.IDs())
	require.NoError(t, err)
	assert.Len(t, out, cat.Len())
	sample, _ := cat.Sample("readme")
	assert.Equal(t, sample, out["readme"])

	_, err = g.Generate(context.Background(), mustRef(t, "https://example.com/org/repo"), []string{"nope"})
	require.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSampleGeneratorDelayHonorsContext(t *testing.T) {
	g := NewSample(catalog.Default()).WithDelay(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Generate(ctx, mustRef(t, "https://example.com/org/repo"), []string{"readme"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewSelectsProvider(t *testing.T) {
	cat := catalog.Default()
	ctx := context.Background()

	g, err := New(ctx, config.GeneratorConfig{Type: config.GeneratorSample}, cat, nil)
	require.NoError(t, err)
	assert.Equal(t, "sample", g.Name())

	g, err = New(ctx, config.GeneratorConfig{Type: config.GeneratorHTTP, Endpoint: "http://localhost:1"}, cat, nil)
	require.NoError(t, err)
	assert.Equal(t, "http", g.Name())

	g, err = New(ctx, config.GeneratorConfig{Type: config.GeneratorLLM, Token: "sk-test", Model: "gpt-4o-mini"}, cat, nil)
	require.NoError(t, err)
	assert.Equal(t, "llm", g.Name())

	_, err = New(ctx, config.GeneratorConfig{Type: "magic"}, cat, nil)
	require.Error(t, err)
}

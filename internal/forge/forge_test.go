package forge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docagent/internal/config"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

func mustRef(t *testing.T, raw string) reference.Reference {
	t.Helper()
	ref, err := reference.Parse(raw)
	require.NoError(t, err)
	return ref
}

func jsonServer(t *testing.T, wantPath string, status int, body any, seen *http.Header) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r.Header.Clone()
		}
		if r.URL.EscapedPath() != wantPath {
			http.Error(w, "unexpected path "+r.URL.EscapedPath(), http.StatusTeapot)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGitHubFetchRepositoryInfo(t *testing.T) {
	var headers http.Header
	srv := jsonServer(t, "/repos/octo/hello", http.StatusOK, map[string]any{
		"id":               7,
		"name":             "hello",
		"full_name":        "octo/hello",
		"description":      "greeting service",
		"language":         "Go",
		"default_branch":   "main",
		"stargazers_count": 42,
		"topics":           []string{"api", "demo"},
		"owner":            map[string]any{"login": "octo", "type": "Organization"},
	}, &headers)

	client := NewGitHubClient(srv.Client(), srv.URL, "ghp_test")
	info, err := client.FetchRepositoryInfo(context.Background(), mustRef(t, "https://github.com/octo/hello"))
	require.NoError(t, err)

	assert.Equal(t, "octo/hello", info.FullName)
	assert.Equal(t, "Go", info.Language)
	assert.Equal(t, "main", info.DefaultBranch)
	assert.Equal(t, 42, info.Stars)
	assert.Equal(t, []string{"api", "demo"}, info.Topics)
	assert.Equal(t, KindGitHub, info.Source)
	assert.Equal(t, "Organization", info.Metadata["owner_type"])
	assert.Equal(t, "Bearer ghp_test", headers.Get("Authorization"))
	assert.Equal(t, "application/vnd.github+json", headers.Get("Accept"))
}

func TestGitLabEncodesNestedProjectPath(t *testing.T) {
	srv := jsonServer(t, "/api/v4/projects/group%2Fsub%2Fproject", http.StatusOK, map[string]any{
		"id":                  11,
		"path":                "project",
		"path_with_namespace": "group/sub/project",
		"default_branch":      "develop",
		"visibility":          "private",
		"star_count":          3,
	}, nil)

	client := NewGitLabClient(srv.Client(), srv.URL+"/api/v4", "")
	info, err := client.FetchRepositoryInfo(context.Background(), mustRef(t, "https://gitlab.com/group/sub/project.git"))
	require.NoError(t, err)

	assert.Equal(t, "group/sub/project", info.FullName)
	assert.Equal(t, "develop", info.DefaultBranch)
	assert.True(t, info.Private)
	assert.Equal(t, KindGitLab, info.Source)
}

func TestForgejoUsesTokenPrefix(t *testing.T) {
	var headers http.Header
	srv := jsonServer(t, "/api/v1/repos/team/service", http.StatusOK, map[string]any{
		"name":           "service",
		"full_name":      "team/service",
		"default_branch": "trunk",
		"fork":           true,
		"owner":          map[string]any{"username": "team"},
	}, &headers)

	client := NewForgejoClient(srv.Client(), srv.URL+"/api/v1", "abc")
	info, err := client.FetchRepositoryInfo(context.Background(), mustRef(t, "https://codeberg.org/team/service"))
	require.NoError(t, err)

	assert.Equal(t, "trunk", info.DefaultBranch)
	assert.Equal(t, "true", info.Metadata["fork"])
	assert.Equal(t, "token abc", headers.Get("Authorization"))
}

func TestDoRequestClassifiesStatus(t *testing.T) {
	tests := []struct {
		status    int
		want      errors.ErrorCategory
		retryable bool
	}{
		{http.StatusNotFound, errors.CategoryNotFound, false},
		{http.StatusUnauthorized, errors.CategoryAuth, false},
		{http.StatusForbidden, errors.CategoryAuth, false},
		{http.StatusTooManyRequests, errors.CategoryForge, true},
		{http.StatusInternalServerError, errors.CategoryForge, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := jsonServer(t, "/repos/o/r", tt.status, map[string]string{"message": "nope"}, nil)
			client := NewGitHubClient(srv.Client(), srv.URL, "")

			_, err := client.FetchRepositoryInfo(context.Background(), mustRef(t, "https://github.com/o/r"))
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.GetCategory(err))
			assert.Equal(t, tt.retryable, errors.CanRetry(err))
		})
	}
}

func TestNewRequestOmitsAuthorizationWithoutToken(t *testing.T) {
	base := NewBaseForge(nil, "https://api.example.com/v1/", "")
	req, err := base.NewRequest(context.Background(), "/repos/o/r?per_page=1")
	require.NoError(t, err)

	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Equal(t, "/v1/repos/o/r", req.URL.Path)
	assert.Equal(t, "per_page=1", req.URL.RawQuery)
	assert.Equal(t, userAgent, req.Header.Get("User-Agent"))
}

func TestNoneProvider(t *testing.T) {
	info, err := NoneProvider{}.FetchRepositoryInfo(context.Background(), mustRef(t, "git@example.com:org/repo.git"))
	require.NoError(t, err)
	assert.Equal(t, "repo", info.Name)
	assert.Equal(t, "org/repo", info.FullName)
	assert.Equal(t, KindNone, info.Source)
}

func TestDefaultBranch(t *testing.T) {
	hash := plumbing.NewHash("4b825dc642cb6eb9a060e54bf8d69288fbee4904")
	other := plumbing.NewHash("1111111111111111111111111111111111111111")

	symbolic := []*plumbing.Reference{
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main")),
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), hash),
	}
	assert.Equal(t, "main", defaultBranch(symbolic))

	byHash := []*plumbing.Reference{
		plumbing.NewHashReference(plumbing.HEAD, hash),
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("feature"), other),
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("stable"), hash),
	}
	assert.Equal(t, "stable", defaultBranch(byHash))

	assert.Empty(t, defaultBranch([]*plumbing.Reference{
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), hash),
	}))
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		typ  config.MetadataType
		want Kind
	}{
		{config.MetadataGitHub, KindGitHub},
		{config.MetadataGitLab, KindGitLab},
		{config.MetadataForgejo, KindForgejo},
		{config.MetadataGit, KindGit},
		{config.MetadataAuto, KindGit},
		{config.MetadataNone, KindNone},
	}
	for _, tt := range tests {
		p, err := NewProvider(config.MetadataConfig{Type: tt.typ, APIURL: "https://forge.example.com/api/v1"})
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Kind(), string(tt.typ))
	}

	_, err := NewProvider(config.MetadataConfig{Type: "svn"})
	require.Error(t, err)
}

func TestAutoProviderRoutesByHost(t *testing.T) {
	auto := NewAutoProvider(http.DefaultClient, "")
	assert.Equal(t, KindGitHub, auto.ProviderFor(mustRef(t, "https://github.com/a/b")).Kind())
	assert.Equal(t, KindGitLab, auto.ProviderFor(mustRef(t, "gitlab.com/a/b")).Kind())
	assert.Equal(t, KindForgejo, auto.ProviderFor(mustRef(t, "https://codeberg.org/a/b")).Kind())
	assert.Equal(t, KindGit, auto.ProviderFor(mustRef(t, "https://git.example.com/a/b")).Kind())

	auto.Route("git.example.com", NoneProvider{})
	info, err := auto.FetchRepositoryInfo(context.Background(), mustRef(t, "https://git.example.com/a/b"))
	require.NoError(t, err)
	assert.Equal(t, KindNone, info.Source)
}

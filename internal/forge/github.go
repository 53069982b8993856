package forge

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/docagent/internal/reference"
)

const defaultGitHubAPI = "https://api.github.com"

// GitHubClient fetches repository metadata from the GitHub REST API.
type GitHubClient struct {
	*BaseForge
}

// NewGitHubClient creates a GitHub client. An empty apiURL targets api.github.com.
func NewGitHubClient(httpClient *http.Client, apiURL, token string) *GitHubClient {
	if apiURL == "" {
		apiURL = defaultGitHubAPI
	}
	base := NewBaseForge(httpClient, apiURL, token)
	base.SetCustomHeader("Accept", "application/vnd.github+json")
	base.SetCustomHeader("X-GitHub-Api-Version", "2022-11-28")
	return &GitHubClient{BaseForge: base}
}

// Kind returns KindGitHub.
func (c *GitHubClient) Kind() Kind { return KindGitHub }

type githubRepo struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	Private         bool      `json:"private"`
	HTMLURL         string    `json:"html_url"`
	CloneURL        string    `json:"clone_url"`
	DefaultBranch   string    `json:"default_branch"`
	Language        string    `json:"language"`
	Archived        bool      `json:"archived"`
	StargazersCount int       `json:"stargazers_count"`
	UpdatedAt       time.Time `json:"updated_at"`
	Topics          []string  `json:"topics"`
	Owner           struct {
		Login string `json:"login"`
		Type  string `json:"type"`
	} `json:"owner"`
}

// FetchRepositoryInfo calls GET /repos/{owner}/{repo}.
func (c *GitHubClient) FetchRepositoryInfo(ctx context.Context, ref reference.Reference) (*RepositoryInfo, error) {
	req, err := c.NewRequest(ctx, fmt.Sprintf("/repos/%s/%s", ref.Owner(), ref.Name()))
	if err != nil {
		return nil, err
	}

	var repo githubRepo
	if err := c.DoRequest(req, &repo); err != nil {
		return nil, err
	}

	return &RepositoryInfo{
		Name:          repo.Name,
		FullName:      repo.FullName,
		Description:   repo.Description,
		Language:      repo.Language,
		DefaultBranch: repo.DefaultBranch,
		Topics:        repo.Topics,
		Stars:         repo.StargazersCount,
		WebURL:        repo.HTMLURL,
		CloneURL:      repo.CloneURL,
		Private:       repo.Private,
		Archived:      repo.Archived,
		UpdatedAt:     repo.UpdatedAt,
		Source:        KindGitHub,
		Metadata: map[string]string{
			"github_id":  strconv.Itoa(repo.ID),
			"owner":      repo.Owner.Login,
			"owner_type": repo.Owner.Type,
		},
	}, nil
}

package forge

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/docagent/internal/reference"
)

// ForgejoClient fetches repository metadata from a Forgejo (Gitea-compatible) API.
type ForgejoClient struct {
	*BaseForge
}

// NewForgejoClient creates a Forgejo client for apiURL (e.g. https://codeberg.org/api/v1).
func NewForgejoClient(httpClient *http.Client, apiURL, token string) *ForgejoClient {
	base := NewBaseForge(httpClient, apiURL, token)
	base.SetAuthHeaderPrefix("token ")
	return &ForgejoClient{BaseForge: base}
}

// Kind returns KindForgejo.
func (c *ForgejoClient) Kind() Kind { return KindForgejo }

type forgejoRepo struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	Private       bool      `json:"private"`
	Fork          bool      `json:"fork"`
	HTMLURL       string    `json:"html_url"`
	CloneURL      string    `json:"clone_url"`
	DefaultBranch string    `json:"default_branch"`
	Language      string    `json:"language"`
	Archived      bool      `json:"archived"`
	StarsCount    int       `json:"stars_count"`
	UpdatedAt     time.Time `json:"updated_at"`
	Topics        []string  `json:"topics"`
	Owner         struct {
		Username string `json:"username"`
	} `json:"owner"`
}

// FetchRepositoryInfo calls GET /repos/{owner}/{repo}.
func (c *ForgejoClient) FetchRepositoryInfo(ctx context.Context, ref reference.Reference) (*RepositoryInfo, error) {
	req, err := c.NewRequest(ctx, fmt.Sprintf("/repos/%s/%s", ref.Owner(), ref.Name()))
	if err != nil {
		return nil, err
	}

	var repo forgejoRepo
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
		Stars:         repo.StarsCount,
		WebURL:        repo.HTMLURL,
		CloneURL:      repo.CloneURL,
		Private:       repo.Private,
		Archived:      repo.Archived,
		UpdatedAt:     repo.UpdatedAt,
		Source:        KindForgejo,
		Metadata: map[string]string{
			"forgejo_id": strconv.Itoa(repo.ID),
			"owner":      repo.Owner.Username,
			"fork":       strconv.FormatBool(repo.Fork),
		},
	}, nil
}

package forge

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"git.home.luguber.info/inful/docagent/internal/reference"
)

const defaultGitLabAPI = "https://gitlab.com/api/v4"

// GitLabClient fetches project metadata from the GitLab REST API.
type GitLabClient struct {
	*BaseForge
}

// NewGitLabClient creates a GitLab client. An empty apiURL targets gitlab.com.
func NewGitLabClient(httpClient *http.Client, apiURL, token string) *GitLabClient {
	if apiURL == "" {
		apiURL = defaultGitLabAPI
	}
	return &GitLabClient{BaseForge: NewBaseForge(httpClient, apiURL, token)}
}

// Kind returns KindGitLab.
func (c *GitLabClient) Kind() Kind { return KindGitLab }

type gitlabProject struct {
	ID                int       `json:"id"`
	Path              string    `json:"path"`
	PathWithNamespace string    `json:"path_with_namespace"`
	Description       string    `json:"description"`
	DefaultBranch     string    `json:"default_branch"`
	WebURL            string    `json:"web_url"`
	HTTPURLToRepo     string    `json:"http_url_to_repo"`
	Visibility        string    `json:"visibility"`
	Archived          bool      `json:"archived"`
	StarCount         int       `json:"star_count"`
	LastActivityAt    time.Time `json:"last_activity_at"`
	Topics            []string  `json:"topics"`
	Namespace         struct {
		Kind     string `json:"kind"`
		FullPath string `json:"full_path"`
	} `json:"namespace"`
}

// FetchRepositoryInfo calls GET /projects/{url-encoded path}. Nested groups are supported.
func (c *GitLabClient) FetchRepositoryInfo(ctx context.Context, ref reference.Reference) (*RepositoryInfo, error) {
	req, err := c.NewRequest(ctx, "/projects/"+url.PathEscape(ref.FullName()))
	if err != nil {
		return nil, err
	}

	var project gitlabProject
	if err := c.DoRequest(req, &project); err != nil {
		return nil, err
	}

	return &RepositoryInfo{
		Name:          project.Path,
		FullName:      project.PathWithNamespace,
		Description:   project.Description,
		DefaultBranch: project.DefaultBranch,
		Topics:        project.Topics,
		Stars:         project.StarCount,
		WebURL:        project.WebURL,
		CloneURL:      project.HTTPURLToRepo,
		Private:       project.Visibility != "public",
		Archived:      project.Archived,
		UpdatedAt:     project.LastActivityAt,
		Source:        KindGitLab,
		Metadata: map[string]string{
			"gitlab_id":      strconv.Itoa(project.ID),
			"visibility":     project.Visibility,
			"namespace_kind": project.Namespace.Kind,
			"namespace_path": project.Namespace.FullPath,
		},
	}, nil
}

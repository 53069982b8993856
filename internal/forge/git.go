package forge

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

// GitClient discovers metadata for any git remote with an ls-remote.
// Only the default branch and the branch count are available this way.
type GitClient struct {
	token string
}

// NewGitClient creates an ls-remote based provider. A non-empty token is sent
// as HTTP basic auth for http(s) remotes.
func NewGitClient(token string) *GitClient {
	return &GitClient{token: token}
}

// Kind returns KindGit.
func (c *GitClient) Kind() Kind { return KindGit }

// FetchRepositoryInfo lists the remote's references.
func (c *GitClient) FetchRepositoryInfo(ctx context.Context, ref reference.Reference) (*RepositoryInfo, error) {
	refs, err := c.listRemote(ctx, ref.Endpoint(), ref.Protocol())
	if err != nil {
		return nil, err
	}

	branches := 0
	for _, r := range refs {
		if r.Name().IsBranch() {
			branches++
		}
	}

	return &RepositoryInfo{
		Name:          ref.Name(),
		FullName:      ref.FullName(),
		DefaultBranch: defaultBranch(refs),
		CloneURL:      ref.Endpoint(),
		Source:        KindGit,
		Metadata: map[string]string{
			"branches": strconv.Itoa(branches),
		},
	}, nil
}

func (c *GitClient) listRemote(ctx context.Context, endpoint, protocol string) ([]*plumbing.Reference, error) {
	rem := git.NewRemote(memory.NewStorage(), &ggitcfg.RemoteConfig{
		Name: "origin",
		URLs: []string{endpoint},
	})

	listOpts := &git.ListOptions{}
	if c.token != "" && (protocol == "https" || protocol == "http") {
		listOpts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: c.token}
	}

	refs, err := rem.ListContext(ctx, listOpts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		category := errors.CategoryForge
		switch {
		case stderrors.Is(err, transport.ErrAuthenticationRequired), stderrors.Is(err, transport.ErrAuthorizationFailed):
			category = errors.CategoryAuth
		case stderrors.Is(err, transport.ErrRepositoryNotFound):
			category = errors.CategoryNotFound
		}
		return nil, errors.WrapError(err, category, "ls-remote failed").
			WithContext("endpoint", endpoint).
			Build()
	}
	return refs, nil
}

// defaultBranch resolves HEAD. Servers advertising the symref capability give
// a symbolic HEAD; otherwise the branch sharing HEAD's hash is used.
func defaultBranch(refs []*plumbing.Reference) string {
	var head *plumbing.Reference
	for _, r := range refs {
		if r.Name() == plumbing.HEAD {
			head = r
			break
		}
	}
	if head == nil {
		return ""
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short()
	}
	for _, r := range refs {
		if r.Name().IsBranch() && r.Hash() == head.Hash() {
			return r.Name().Short()
		}
	}
	return ""
}

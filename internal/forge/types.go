// Package forge fetches descriptive metadata for a repository from its hosting
// platform. Metadata is enrichment only: callers log failures and continue.
package forge

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docagent/internal/reference"
)

// Kind identifies a metadata source.
type Kind string

const (
	KindGitHub  Kind = "github"
	KindGitLab  Kind = "gitlab"
	KindForgejo Kind = "forgejo"
	KindGit     Kind = "git"
	KindNone    Kind = "none"
)

// RepositoryInfo describes a repository as reported by its forge.
type RepositoryInfo struct {
	Name          string            `json:"name"`
	FullName      string            `json:"full_name"`
	Description   string            `json:"description,omitempty"`
	Language      string            `json:"language,omitempty"`
	DefaultBranch string            `json:"default_branch,omitempty"`
	Topics        []string          `json:"topics,omitempty"`
	Stars         int               `json:"stars"`
	WebURL        string            `json:"web_url,omitempty"`
	CloneURL      string            `json:"clone_url,omitempty"`
	Private       bool              `json:"private"`
	Archived      bool              `json:"archived"`
	UpdatedAt     time.Time         `json:"updated_at,omitzero"`
	Source        Kind              `json:"source"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Provider fetches repository metadata.
type Provider interface {
	// Kind returns the metadata source this provider talks to.
	Kind() Kind

	// FetchRepositoryInfo returns metadata for ref.
	FetchRepositoryInfo(ctx context.Context, ref reference.Reference) (*RepositoryInfo, error)
}

// NoneProvider returns minimal metadata derived from the reference alone.
type NoneProvider struct{}

// Kind returns KindNone.
func (NoneProvider) Kind() Kind { return KindNone }

// FetchRepositoryInfo never fails and never leaves the process.
func (NoneProvider) FetchRepositoryInfo(_ context.Context, ref reference.Reference) (*RepositoryInfo, error) {
	return &RepositoryInfo{
		Name:     ref.Name(),
		FullName: ref.FullName(),
		CloneURL: ref.Endpoint(),
		Source:   KindNone,
	}, nil
}

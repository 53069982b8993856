// Package reference parses and validates repository references.
//
// A reference is accepted when it names a repository on a remote host over
// https, http, ssh or git, in URL form (https://host/org/repo), scp form
// (git@host:org/repo.git) or the bare host form (host/org/repo).
package reference

import (
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

// ErrInvalid is returned for empty or malformed references.
var ErrInvalid = errors.ValidationError("invalid repository reference").Build()

var (
	segmentPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	scpLike        = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:`)
)

// flatHosts only serve owner/repository paths; nested groups are a GitLab-style feature.
var flatHosts = map[string]bool{
	"github.com":    true,
	"bitbucket.org": true,
	"codeberg.org":  true,
}

// routeSegments mark web UI paths below a repository (files, branches, commits).
var routeSegments = map[string]bool{
	"tree":    true,
	"blob":    true,
	"raw":     true,
	"commit":  true,
	"commits": true,
	"blame":   true,
}

var supportedProtocols = map[string]bool{
	"https": true,
	"http":  true,
	"ssh":   true,
	"git":   true,
}

// Reference is a validated repository address.
type Reference struct {
	raw      string
	protocol string
	host     string
	owner    string
	name     string
	endpoint string
}

// IsBlank reports whether raw is empty after trimming whitespace.
func IsBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

// Parse validates raw and returns the parsed reference.
func Parse(raw string) (Reference, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Reference{}, invalid(raw, "empty")
	}
	if strings.ContainsAny(s, " \t\n") {
		return Reference{}, invalid(raw, "contains whitespace")
	}
	if !strings.Contains(s, "://") && !scpLike.MatchString(s) {
		first, _, _ := strings.Cut(s, "/")
		if !strings.Contains(first, ".") {
			return Reference{}, invalid(raw, "no repository host")
		}
		s = "https://" + s
	}

	ep, err := transport.NewEndpoint(s)
	if err != nil {
		return Reference{}, ErrInvalid.WithCause(err).WithContext("reference", raw)
	}
	if !supportedProtocols[ep.Protocol] {
		return Reference{}, invalid(raw, "unsupported protocol "+ep.Protocol)
	}
	if ep.Host == "" {
		return Reference{}, invalid(raw, "no repository host")
	}

	path := strings.Trim(ep.Path, "/")
	path = strings.TrimSuffix(path, ".git")
	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return Reference{}, invalid(raw, "expected owner/repository path")
	}
	for i, seg := range segments {
		if !segmentPattern.MatchString(seg) {
			return Reference{}, invalid(raw, "invalid path segment "+seg)
		}
		if i >= 2 && routeSegments[seg] {
			return Reference{}, invalid(raw, "points inside a repository, not at it")
		}
	}
	host := strings.ToLower(ep.Host)
	if flatHosts[host] && len(segments) != 2 {
		return Reference{}, invalid(raw, "expected owner/repository path on "+host)
	}

	return Reference{
		raw:      strings.TrimSpace(raw),
		protocol: ep.Protocol,
		host:     host,
		owner:    strings.Join(segments[:len(segments)-1], "/"),
		name:     segments[len(segments)-1],
		endpoint: ep.String(),
	}, nil
}

func invalid(raw, reason string) *errors.ClassifiedError {
	return ErrInvalid.WithContext("reference", raw).WithContext("reason", reason)
}

// String returns the reference as submitted (trimmed).
func (r Reference) String() string { return r.raw }

// IsZero reports whether r is the zero value.
func (r Reference) IsZero() bool { return r.raw == "" }

// Protocol returns the transport protocol (https, http, ssh, git).
func (r Reference) Protocol() string { return r.protocol }

// Host returns the lower-cased repository host.
func (r Reference) Host() string { return r.host }

// Owner returns the owner path; nested groups are joined with "/".
func (r Reference) Owner() string { return r.owner }

// Name returns the repository name without a .git suffix.
func (r Reference) Name() string { return r.name }

// FullName returns owner/name.
func (r Reference) FullName() string { return r.owner + "/" + r.name }

// Endpoint returns the normalized transport URL, suitable for git remotes.
func (r Reference) Endpoint() string { return r.endpoint }

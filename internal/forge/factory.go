package forge

import (
	"context"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docagent/internal/config"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

// knownForges maps well-known public hosts to their API flavor and URL.
var knownForges = map[string]struct {
	kind   Kind
	apiURL string
}{
	"github.com":   {KindGitHub, defaultGitHubAPI},
	"gitlab.com":   {KindGitLab, defaultGitLabAPI},
	"codeberg.org": {KindForgejo, "https://codeberg.org/api/v1"},
}

// NewProvider creates the metadata provider selected by mc.
func NewProvider(mc config.MetadataConfig) (Provider, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	switch mc.Type {
	case config.MetadataGitHub:
		return NewGitHubClient(httpClient, mc.APIURL, mc.Token), nil
	case config.MetadataGitLab:
		return NewGitLabClient(httpClient, mc.APIURL, mc.Token), nil
	case config.MetadataForgejo:
		return NewForgejoClient(httpClient, mc.APIURL, mc.Token), nil
	case config.MetadataGit:
		return NewGitClient(mc.Token), nil
	case config.MetadataAuto:
		return NewAutoProvider(httpClient, mc.Token), nil
	case config.MetadataNone, "":
		return NoneProvider{}, nil
	default:
		return nil, errors.ConfigError("unsupported metadata provider type").
			WithContext("type", mc.Type).
			Fatal().
			Build()
	}
}

// AutoProvider routes each reference to a forge API by host, falling back to
// ls-remote for hosts it does not recognize.
type AutoProvider struct {
	byHost   map[string]Provider
	fallback Provider
}

// NewAutoProvider creates a host-routing provider. token is sent to every backend.
func NewAutoProvider(httpClient *http.Client, token string) *AutoProvider {
	p := &AutoProvider{
		byHost:   make(map[string]Provider, len(knownForges)),
		fallback: NewGitClient(token),
	}
	for host, f := range knownForges {
		switch f.kind {
		case KindGitHub:
			p.byHost[host] = NewGitHubClient(httpClient, f.apiURL, token)
		case KindGitLab:
			p.byHost[host] = NewGitLabClient(httpClient, f.apiURL, token)
		case KindForgejo:
			p.byHost[host] = NewForgejoClient(httpClient, f.apiURL, token)
		}
	}
	return p
}

// Route registers provider for host, replacing any default.
func (p *AutoProvider) Route(host string, provider Provider) {
	p.byHost[host] = provider
}

// Kind returns the kind of the fallback provider.
func (p *AutoProvider) Kind() Kind { return p.fallback.Kind() }

// ProviderFor returns the provider used for ref.
func (p *AutoProvider) ProviderFor(ref reference.Reference) Provider {
	if provider, ok := p.byHost[ref.Host()]; ok {
		return provider
	}
	return p.fallback
}

// FetchRepositoryInfo delegates to ProviderFor(ref).
func (p *AutoProvider) FetchRepositoryInfo(ctx context.Context, ref reference.Reference) (*RepositoryInfo, error) {
	return p.ProviderFor(ref).FetchRepositoryInfo(ctx, ref)
}

package generator

import (
	"context"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/config"
	"git.home.luguber.info/inful/docagent/internal/forge"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

// New creates the generator selected by gc.
func New(ctx context.Context, gc config.GeneratorConfig, cat *catalog.Catalog, metadata forge.Provider) (Generator, error) {
	switch gc.Type {
	case config.GeneratorHTTP:
		return NewHTTP(nil, gc.Endpoint, gc.Token), nil
	case config.GeneratorLLM:
		return NewLLM(ctx, gc, cat, metadata)
	case config.GeneratorSample, "":
		return NewSample(cat), nil
	default:
		return nil, errors.ConfigError("unsupported generator type").
			WithContext("type", gc.Type).
			Fatal().
			Build()
	}
}

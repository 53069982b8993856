package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/config"
	"git.home.luguber.info/inful/docagent/internal/forge"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve    ServeCmd    `cmd:"" help:"Serve the session API"`
	Generate GenerateCmd `cmd:"" help:"Generate documents for a repository and print them"`
	Catalog  CatalogCmd  `cmd:"" help:"List the available document types"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig reads the configuration file. A missing file at the default
// path falls back to built-in defaults so the CLI works without init.
func loadConfig(root *CLI) (*config.Config, error) {
	path := root.Config
	if _, err := os.Stat(path); os.IsNotExist(err) && path == "config.yaml" {
		slog.Debug("No configuration file, using defaults", "path", path)
		path = ""
	}
	return config.Load(path)
}

// loadCatalog returns the configured catalog and a metadata provider. The
// provider is shared by sessions and the LLM generator, so lookups are cached.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, forge.Provider, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, nil, err
	}
	metadata, err := forge.NewProvider(cfg.Metadata)
	if err != nil {
		return nil, nil, err
	}
	if metadata.Kind() != forge.KindNone {
		metadata = forge.NewCachingProvider(metadata, forge.DefaultCacheTTL)
	}
	return cat, metadata, nil
}

package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/docagent/internal/config"
	"git.home.luguber.info/inful/docagent/internal/export"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/generator"
	"git.home.luguber.info/inful/docagent/internal/lifecycle"
	"git.home.luguber.info/inful/docagent/internal/logfields"
	"git.home.luguber.info/inful/docagent/internal/metrics"
	"git.home.luguber.info/inful/docagent/internal/retry"
	"git.home.luguber.info/inful/docagent/internal/session"
	"git.home.luguber.info/inful/docagent/internal/view"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	URL       string   `arg:"" help:"Repository URL"`
	Types     []string `short:"t" help:"Document types to generate (default: all)"`
	Show      string   `short:"s" help:"Document type to print (default: first in catalog)"`
	Retries   int      `help:"Retries for transient provider failures (-1 uses the config value)" default:"-1"`
	Export    bool     `short:"e" help:"Write the generated documents to the export directory"`
	ExportDir string   `name:"export-dir" help:"Export directory (overrides config)"`

	out      io.Writer
	gen      generator.Generator
	recorder metrics.Recorder
}

func (g *GenerateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return g.run(ctx, cfg)
}

func (g *GenerateCmd) run(ctx context.Context, cfg *config.Config) error {
	cat, metadata, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	gen := g.gen
	if gen == nil {
		if gen, err = generator.New(ctx, cfg.Generator, cat, metadata); err != nil {
			return err
		}
	}

	s := session.Init("cli", session.Dependencies{
		Catalog:   cat,
		Generator: gen,
		Metadata:  metadata,
		Recorder:  g.recorder,
		Timeout:   cfg.Generator.TimeoutDuration(),
	})
	defer func() { _ = s.Teardown(context.Background()) }()

	policy := retry.FromConfig(cfg.Retry)
	if g.Retries >= 0 {
		policy = policy.WithMaxRetries(g.Retries)
	}
	if err := policy.Validate(); err != nil {
		return err
	}
	recorder := g.recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	err = policy.Do(ctx, func(attempt int) error {
		if attempt > 0 {
			recorder.IncRetry()
			slog.Warn("Retrying generation", slog.Int("attempt", attempt), logfields.Reference(g.URL))
		}
		_, err := s.Submit(ctx, g.URL, g.Types)
		return err
	}, retryableGeneration)
	if err != nil {
		return err
	}

	if err := s.Wait(ctx); err != nil {
		return err
	}
	if g.Show != "" {
		if err := s.Select(g.Show); err != nil {
			return err
		}
	}

	out := g.out
	if out == nil {
		out = os.Stdout
	}
	if err := view.WriteText(out, s.View()); err != nil {
		return err
	}

	if !g.Export {
		return nil
	}
	dir := cfg.Export.Directory
	if g.ExportDir != "" {
		dir = g.ExportDir
	}
	paths, err := export.New(dir, cat).WriteAll(s.Documents())
	if err != nil {
		return err
	}
	for _, p := range paths {
		_, _ = fmt.Fprintf(out, "Wrote %s\n", p)
	}
	return nil
}

// retryableGeneration reports whether a failed generation is worth another attempt.
func retryableGeneration(err error) bool {
	switch {
	case stderrors.Is(err, lifecycle.ErrTimeout):
		return true
	case stderrors.Is(err, generator.ErrProvider):
		f, ok := generator.FailureOf(err)
		return ok && (f.Code == generator.CodeUnavailable || f.Code == generator.CodeUpstream)
	default:
		return errors.CanRetry(err)
	}
}

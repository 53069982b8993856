package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/config"
	"git.home.luguber.info/inful/docagent/internal/forge"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/logfields"
	"git.home.luguber.info/inful/docagent/internal/reference"
)

const systemPrompt = "You are a technical writer producing repository documentation. " +
	"Answer with GitHub-flavored markdown only, starting with a level-one heading. " +
	"Do not invent facts that cannot be inferred from the information provided; mark assumptions explicitly."

// ChatModel is the subset of an eino chat model used for generation.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// LLMGenerator asks a chat model for one document per type.
type LLMGenerator struct {
	model    ChatModel
	catalog  *catalog.Catalog
	metadata forge.Provider
}

// NewLLM creates a generator backed by an OpenAI-compatible chat model.
func NewLLM(ctx context.Context, gc config.GeneratorConfig, cat *catalog.Catalog, metadata forge.Provider) (*LLMGenerator, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  gc.Token,
		Model:   gc.Model,
		BaseURL: gc.BaseURL,
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to create chat model").
			WithContext("model", gc.Model).
			Build()
	}
	return NewLLMWithModel(chatModel, cat, metadata), nil
}

// NewLLMWithModel creates a generator around an existing chat model. metadata may be nil.
func NewLLMWithModel(m ChatModel, cat *catalog.Catalog, metadata forge.Provider) *LLMGenerator {
	if metadata == nil {
		metadata = forge.NoneProvider{}
	}
	return &LLMGenerator{model: m, catalog: cat, metadata: metadata}
}

// Name returns "llm".
func (g *LLMGenerator) Name() string { return "llm" }

// Generate issues one completion per requested type, in order. The first
// failure aborts the batch.
func (g *LLMGenerator) Generate(ctx context.Context, ref reference.Reference, typeIDs []string) (map[string]string, error) {
	info, err := g.metadata.FetchRepositoryInfo(ctx, ref)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Warn("Repository metadata unavailable for prompt",
			logfields.Reference(ref.String()),
			logfields.Error(err))
		info, _ = forge.NoneProvider{}.FetchRepositoryInfo(ctx, ref)
	}

	out := make(map[string]string, len(typeIDs))
	for _, id := range typeIDs {
		docType, err := g.catalog.GetType(id)
		if err != nil {
			return nil, err
		}

		msg, err := g.model.Generate(ctx, []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(buildPrompt(docType, ref, info)),
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, NewProviderError(CodeModel, err.Error()).WithContext("doc_type", id)
		}
		if msg == nil || strings.TrimSpace(msg.Content) == "" {
			return nil, NewProviderError(CodeEmptyCompletion, "model returned no content").WithContext("doc_type", id)
		}
		out[id] = msg.Content
	}
	return out, nil
}

func buildPrompt(docType catalog.DocumentType, ref reference.Reference, info *forge.RepositoryInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the %q document (%s) for the repository %s.\n\n", docType.Label, docType.Description, ref.FullName())
	b.WriteString("Repository facts:\n")
	fmt.Fprintf(&b, "- URL: %s\n", ref.String())
	if info != nil {
		if info.Description != "" {
			fmt.Fprintf(&b, "- Description: %s\n", info.Description)
		}
		if info.Language != "" {
			fmt.Fprintf(&b, "- Primary language: %s\n", info.Language)
		}
		if info.DefaultBranch != "" {
			fmt.Fprintf(&b, "- Default branch: %s\n", info.DefaultBranch)
		}
		if len(info.Topics) > 0 {
			fmt.Fprintf(&b, "- Topics: %s\n", strings.Join(info.Topics, ", "))
		}
	}
	return b.String()
}

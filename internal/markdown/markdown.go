// Package markdown renders generated documents for preview and extracts
// their structure (headings and links).
package markdown

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

type Link struct {
	Kind        LinkKind `json:"kind"`
	Destination string   `json:"destination"`
}

// Rendered is a document converted for display.
type Rendered struct {
	HTML    []byte    `json:"-"`
	Outline []Heading `json:"outline"`
	Links   []Link    `json:"links"`
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

// Render converts a markdown body to HTML and collects its outline and links.
// Raw HTML in the body is not passed through.
func Render(body []byte) (*Rendered, error) {
	var buf bytes.Buffer
	if err := newMarkdown().Convert(body, &buf); err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to render markdown").
			WithSeverity(errors.SeverityError).
			Build()
	}

	outline, err := Outline(buf.Bytes())
	if err != nil {
		return nil, err
	}

	return &Rendered{
		HTML:    buf.Bytes(),
		Outline: outline,
		Links:   ExtractLinks(body),
	}, nil
}

// ExtractLinks parses a markdown body and returns its link-like constructs in
// document order, followed by reference definitions sorted by label.
func ExtractLinks(body []byte) []Link {
	ctx := parser.NewContext()
	root := newMarkdown().Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})

	// Reference definitions live in the parse context, not the AST.
	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		links = append(links, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}
	return links
}

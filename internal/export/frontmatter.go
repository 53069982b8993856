package export

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// serializeYAML encodes fields with sorted keys so output is stable.
func serializeYAML(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			scalarNode(fields[k]))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalarNode(v any) *yaml.Node {
	switch vv := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: vv}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(vv)}
	}
}

// splitFrontmatter separates a leading `---` delimited block from the body.
// ok is false when content has no frontmatter.
func splitFrontmatter(content []byte) (fm, body []byte, ok bool) {
	s := string(content)
	if !strings.HasPrefix(s, "---\n") {
		return nil, content, false
	}
	rest := s[len("---\n"):]
	if strings.HasPrefix(rest, "---\n") {
		return []byte{}, []byte(rest[len("---\n"):]), true
	}
	idx := strings.Index(rest, "\n---\n")
	if idx < 0 {
		return nil, content, false
	}
	return []byte(rest[:idx+1]), []byte(rest[idx+len("\n---\n"):]), true
}

func parseYAML(fm []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(fm) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func trimSingleTrailingNewline(s string) string {
	if before, ok := strings.CutSuffix(s, "\n"); ok {
		return before
	}
	return s
}

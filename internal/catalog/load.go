package catalog

import (
	_ "embed"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

//go:embed default.yaml
var defaultCatalogYAML []byte

// file is the on-disk shape of a catalog document.
type file struct {
	Types []struct {
		DocumentType `yaml:",inline"`
		Sample       string `yaml:"sample,omitempty"`
	} `yaml:"types"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic("catalog: embedded default is invalid: " + err.Error())
	}
	return c
}

// Load reads a catalog from path, or returns the default when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read catalog file").
			WithContext("path", path).
			Build()
	}
	c, err := Parse(data)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", path)
		}
		return nil, err
	}
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse catalog").Build()
	}
	entries := make([]DocumentType, 0, len(f.Types))
	samples := make(map[string]string)
	for _, t := range f.Types {
		entries = append(entries, t.DocumentType)
		if t.Sample != "" {
			samples[strings.TrimSpace(t.ID)] = t.Sample
		}
	}
	return newCatalog(entries, samples)
}

// deriveLabel turns an id like "api-reference" into "Api Reference".
// Casers are stateful, so each call gets its own.
func deriveLabel(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '-' || r == '_' || r == '.' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}

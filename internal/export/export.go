// Package export writes generated documents to disk as markdown with YAML
// frontmatter carrying provenance and a content fingerprint.
package export

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/docagent/internal/catalog"
	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
	"git.home.luguber.info/inful/docagent/internal/results"
)

const (
	fieldTitle       = "title"
	fieldDocType     = "doc_type"
	fieldSource      = "source"
	fieldGeneratedAt = "generated_at"
)

// ErrNothingToExport is returned by WriteAll when the store is empty.
var ErrNothingToExport = errors.NotFoundError("no generated documents to export").Build()

// FileName returns the file a document type is exported to. Types whose
// label already names a markdown file keep it; others use their id.
func FileName(t catalog.DocumentType) string {
	if strings.HasSuffix(strings.ToLower(t.Label), ".md") && !strings.ContainsAny(t.Label, `/\ `) {
		return t.Label
	}
	return t.ID + ".md"
}

// Fingerprint hashes a document's frontmatter (excluding the fingerprint and
// generated_at fields) together with its body.
func Fingerprint(fields map[string]any, body string) (string, error) {
	forHash := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField || k == fieldGeneratedAt {
			continue
		}
		forHash[k] = v
	}
	serialized, err := serializeYAML(forHash)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(trimSingleTrailingNewline(string(serialized)), body), nil
}

// Render returns the exported bytes for doc.
func Render(t catalog.DocumentType, doc results.GeneratedDocument) ([]byte, error) {
	fields := map[string]any{
		fieldTitle:   t.Label,
		fieldDocType: t.ID,
	}
	if src := doc.SourceReference.String(); src != "" {
		fields[fieldSource] = src
	}

	fp, err := Fingerprint(fields, doc.Content)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to fingerprint document").
			WithContext("type", t.ID).
			Build()
	}
	fields[mdfp.FingerprintField] = fp
	if !doc.GeneratedAt.IsZero() {
		fields[fieldGeneratedAt] = doc.GeneratedAt.UTC().Format(time.RFC3339)
	}

	fm, err := serializeYAML(fields)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to serialize frontmatter").
			WithContext("type", t.ID).
			Build()
	}

	out := make([]byte, 0, len(fm)+len(doc.Content)+8)
	out = append(out, "---\n"...)
	out = append(out, fm...)
	out = append(out, "---\n"...)
	out = append(out, doc.Content...)
	return out, nil
}

// Verify reports whether content carries a fingerprint matching its
// frontmatter and body. Content without frontmatter or fingerprint is not verified.
func Verify(content []byte) (bool, error) {
	fm, body, ok := splitFrontmatter(content)
	if !ok {
		return false, nil
	}
	fields, err := parseYAML(fm)
	if err != nil {
		return false, errors.WrapError(err, errors.CategoryValidation, "invalid frontmatter").Build()
	}
	want, ok := fields[mdfp.FingerprintField].(string)
	if !ok || want == "" {
		return false, nil
	}
	got, err := Fingerprint(fields, string(body))
	if err != nil {
		return false, err
	}
	return got == want, nil
}

// Exporter writes documents into a directory.
type Exporter struct {
	dir     string
	catalog *catalog.Catalog
}

// New creates an exporter for dir.
func New(dir string, cat *catalog.Catalog) *Exporter {
	return &Exporter{dir: dir, catalog: cat}
}

// Dir returns the target directory.
func (e *Exporter) Dir() string { return e.dir }

// WriteDocument writes one document and returns its path.
func (e *Exporter) WriteDocument(doc results.GeneratedDocument) (string, error) {
	t, err := e.catalog.GetType(doc.TypeID)
	if err != nil {
		return "", err
	}
	data, err := Render(t, doc)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dir, 0o750); err != nil {
		return "", errors.FileSystemError("failed to create export directory").
			WithCause(err).
			WithContext("path", e.dir).
			Build()
	}
	path := filepath.Join(e.dir, FileName(t))
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteAll writes every document in docs and returns the paths in order.
func (e *Exporter) WriteAll(docs []results.GeneratedDocument) ([]string, error) {
	if len(docs) == 0 {
		return nil, ErrNothingToExport
	}
	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		p, err := e.WriteDocument(doc)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return errors.FileSystemError("failed to create temporary file").WithCause(err).WithContext("path", path).Build()
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.FileSystemError("failed to write document").WithCause(err).WithContext("path", path).Build()
	}
	if err := tmp.Close(); err != nil {
		return errors.FileSystemError("failed to write document").WithCause(err).WithContext("path", path).Build()
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.FileSystemError("failed to set file mode").WithCause(err).WithContext("path", path).Build()
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.FileSystemError("failed to move document into place").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}

package config

import (
	"strings"

	"git.home.luguber.info/inful/docagent/internal/foundation/normalization"
)

// GeneratorType enumerates the content generation providers.
type GeneratorType string

const (
	GeneratorHTTP   GeneratorType = "http"
	GeneratorLLM    GeneratorType = "llm"
	GeneratorSample GeneratorType = "sample"
)

var generatorTypes = normalization.NewNormalizer(map[string]GeneratorType{
	"http":   GeneratorHTTP,
	"llm":    GeneratorLLM,
	"sample": GeneratorSample,
}, "")

// NormalizeGeneratorType case-folds raw; unknown values normalize to "".
func NormalizeGeneratorType(raw string) GeneratorType {
	return generatorTypes.Normalize(raw)
}

// MetadataType enumerates the repository metadata providers.
type MetadataType string

const (
	MetadataAuto    MetadataType = "auto"
	MetadataGitHub  MetadataType = "github"
	MetadataGitLab  MetadataType = "gitlab"
	MetadataForgejo MetadataType = "forgejo"
	MetadataGit     MetadataType = "git"
	MetadataNone    MetadataType = "none"
)

var metadataTypes = normalization.NewNormalizer(map[string]MetadataType{
	"auto":    MetadataAuto,
	"github":  MetadataGitHub,
	"gitlab":  MetadataGitLab,
	"forgejo": MetadataForgejo,
	"git":     MetadataGit,
	"none":    MetadataNone,
}, "")

// NormalizeMetadataType case-folds raw; unknown values normalize to "".
func NormalizeMetadataType(raw string) MetadataType {
	return metadataTypes.Normalize(raw)
}

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffModes = normalization.NewNormalizer(map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
}, "")

// NormalizeRetryBackoff converts arbitrary user input (case-insensitive) into a typed mode, returning empty string for unknown.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	return retryBackoffModes.Normalize(raw)
}

// allowed renders the accepted keys of n for error messages, e.g. "fixed|linear".
func allowed[T comparable](n *normalization.Normalizer[T]) string {
	return strings.Join(n.ValidKeys(), "|")
}

package config

import (
	"net/url"
	"time"

	"git.home.luguber.info/inful/docagent/internal/foundation/errors"
)

// ValidateConfig checks a defaulted configuration and returns the first problem found.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if cv.config.Version != CurrentVersion {
		return invalid("unsupported configuration version", "version", cv.config.Version)
	}
	for _, check := range []func() error{
		cv.validateGenerator,
		cv.validateMetadata,
		cv.validateSessions,
		cv.validateNotifications,
		cv.validateRetry,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateGenerator() error {
	g := cv.config.Generator
	switch g.Type {
	case GeneratorHTTP:
		if g.Endpoint == "" {
			return invalid("generator.endpoint is required for the http generator", "type", g.Type)
		}
		if u, err := url.Parse(g.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			return invalid("generator.endpoint must be an absolute URL", "endpoint", g.Endpoint)
		}
	case GeneratorLLM:
		if g.Token == "" {
			return invalid("generator.token is required for the llm generator", "type", g.Type)
		}
	case GeneratorSample:
	default:
		return invalid("invalid generator.type (allowed: "+allowed(generatorTypes)+")", "type", g.Type)
	}
	if err := positiveDuration("generator.timeout", g.Timeout); err != nil {
		return err
	}
	return nil
}

func (cv *configurationValidator) validateMetadata() error {
	m := cv.config.Metadata
	if NormalizeMetadataType(string(m.Type)) == "" {
		return invalid("invalid metadata.type (allowed: "+allowed(metadataTypes)+")", "type", m.Type)
	}
	if m.Type == MetadataForgejo && m.APIURL == "" {
		return invalid("metadata.api_url is required for forgejo", "type", m.Type)
	}
	return nil
}

func (cv *configurationValidator) validateSessions() error {
	if err := positiveDuration("sessions.idle_ttl", cv.config.Sessions.IdleTTL); err != nil {
		return err
	}
	return positiveDuration("sessions.reap_interval", cv.config.Sessions.ReapInterval)
}

func (cv *configurationValidator) validateNotifications() error {
	n := cv.config.Notifications
	if n.NATSURL == "" {
		return nil
	}
	if _, err := url.Parse(n.NATSURL); err != nil {
		return invalid("notifications.nats_url is not a valid URL", "nats_url", n.NATSURL)
	}
	return nil
}

func (cv *configurationValidator) validateRetry() error {
	r := cv.config.Retry
	switch r.Backoff {
	case RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
	default:
		return invalid("invalid retry.backoff (allowed: "+allowed(retryBackoffModes)+")", "backoff", r.Backoff)
	}
	initDur, err := time.ParseDuration(r.InitialDelay)
	if err != nil {
		return invalid("invalid retry.initial_delay", "initial_delay", r.InitialDelay)
	}
	maxDur, err := time.ParseDuration(r.MaxDelay)
	if err != nil {
		return invalid("invalid retry.max_delay", "max_delay", r.MaxDelay)
	}
	if maxDur < initDur {
		return invalid("retry.max_delay must be >= retry.initial_delay", "max_delay", r.MaxDelay)
	}
	if r.MaxRetries < 0 {
		return invalid("retry.max_retries cannot be negative", "max_retries", r.MaxRetries)
	}
	return nil
}

func positiveDuration(field, raw string) error {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return invalid("invalid "+field+" (expected a positive duration)", field, raw)
	}
	return nil
}

func invalid(message, key string, value any) error {
	return errors.ConfigError(message).WithContext(key, value).Build()
}

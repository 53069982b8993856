package config

import "time"

const (
	DefaultGenerationTimeout = 30 * time.Second
	DefaultIdleTTL           = 30 * time.Minute
	DefaultReapInterval      = time.Minute
	DefaultRetryInitialDelay = time.Second
	DefaultRetryMaxDelay     = 30 * time.Second

	DefaultServerAddress = ":8080"
	DefaultMetricsPath   = "/metrics"
	DefaultLLMModel      = "gpt-4o-mini"
	DefaultNotifySubject = "docagent.settlements"
	DefaultNotifyStream  = "DOCAGENT"
	DefaultExportDir     = "./generated-docs"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		&GeneratorDefaultApplier{},
		&MetadataDefaultApplier{},
		&ServerDefaultApplier{},
		&SessionsDefaultApplier{},
		&NotificationsDefaultApplier{},
		&ExportDefaultApplier{},
		&RetryDefaultApplier{},
	}
}

func applyDefaults(cfg *Config) error {
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	for _, applier := range defaultAppliers() {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}

// GeneratorDefaultApplier handles generator defaults.
type GeneratorDefaultApplier struct{}

func (g *GeneratorDefaultApplier) Domain() string { return "generator" }

func (g *GeneratorDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = GeneratorSample
	} else if gt := NormalizeGeneratorType(string(cfg.Generator.Type)); gt != "" {
		cfg.Generator.Type = gt
	}
	if cfg.Generator.Timeout == "" {
		cfg.Generator.Timeout = DefaultGenerationTimeout.String()
	}
	if cfg.Generator.Type == GeneratorLLM && cfg.Generator.Model == "" {
		cfg.Generator.Model = DefaultLLMModel
	}
	return nil
}

// MetadataDefaultApplier handles metadata provider defaults.
type MetadataDefaultApplier struct{}

func (m *MetadataDefaultApplier) Domain() string { return "metadata" }

func (m *MetadataDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Metadata.Type == "" {
		cfg.Metadata.Type = MetadataNone
	} else if mt := NormalizeMetadataType(string(cfg.Metadata.Type)); mt != "" {
		cfg.Metadata.Type = mt
	}
	return nil
}

// ServerDefaultApplier handles HTTP server defaults.
type ServerDefaultApplier struct{}

func (s *ServerDefaultApplier) Domain() string { return "server" }

func (s *ServerDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Server.Address == "" {
		cfg.Server.Address = DefaultServerAddress
	}
	if cfg.Server.MetricsPath == "" {
		cfg.Server.MetricsPath = DefaultMetricsPath
	}
	return nil
}

// SessionsDefaultApplier handles session reaping defaults.
type SessionsDefaultApplier struct{}

func (s *SessionsDefaultApplier) Domain() string { return "sessions" }

func (s *SessionsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Sessions.IdleTTL == "" {
		cfg.Sessions.IdleTTL = DefaultIdleTTL.String()
	}
	if cfg.Sessions.ReapInterval == "" {
		cfg.Sessions.ReapInterval = DefaultReapInterval.String()
	}
	return nil
}

// NotificationsDefaultApplier handles NATS defaults.
type NotificationsDefaultApplier struct{}

func (n *NotificationsDefaultApplier) Domain() string { return "notifications" }

func (n *NotificationsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notifications.Subject == "" {
		cfg.Notifications.Subject = DefaultNotifySubject
	}
	if cfg.Notifications.Stream == "" {
		cfg.Notifications.Stream = DefaultNotifyStream
	}
	return nil
}

// ExportDefaultApplier handles export defaults.
type ExportDefaultApplier struct{}

func (e *ExportDefaultApplier) Domain() string { return "export" }

func (e *ExportDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Export.Directory == "" {
		cfg.Export.Directory = DefaultExportDir
	}
	return nil
}

// RetryDefaultApplier handles retry defaults.
type RetryDefaultApplier struct{}

func (r *RetryDefaultApplier) Domain() string { return "retry" }

func (r *RetryDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Retry.Backoff == "" {
		cfg.Retry.Backoff = RetryBackoffLinear
	} else if mode := NormalizeRetryBackoff(string(cfg.Retry.Backoff)); mode != "" {
		cfg.Retry.Backoff = mode
	}
	if cfg.Retry.InitialDelay == "" {
		cfg.Retry.InitialDelay = DefaultRetryInitialDelay.String()
	}
	if cfg.Retry.MaxDelay == "" {
		cfg.Retry.MaxDelay = DefaultRetryMaxDelay.String()
	}
	return nil
}

package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
)

var ErrDefaultLocaleRequired = errors.New("newsroom config: default locale is required")
var ErrStageUnknown = errors.New("newsroom config: workflow SLA references an unknown stage")
var ErrChannelUnknown = errors.New("newsroom config: publish channel is invalid")
var ErrStorageProviderUnknown = errors.New("newsroom config: storage provider is invalid")
var ErrCacheTTLInvalid = errors.New("newsroom config: cache TTL must be zero or positive")
var ErrCommandTimeoutInvalid = errors.New("newsroom config: command timeout must be zero or positive")
var ErrLoggingProviderRequired = errors.New("newsroom config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("newsroom config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("newsroom config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("newsroom config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the newsroom module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled       bool
	DefaultLocale string
	Workflow      WorkflowConfig
	Storage       StorageConfig
	Cache         CacheConfig
	Commands      CommandsConfig
	Features      Features
	Logging       LoggingConfig
}

// WorkflowConfig tunes the editorial pipeline behaviour.
type WorkflowConfig struct {
	// StageSLA maps stage names to staleness thresholds. Zero or negative
	// disables the check for that stage.
	StageSLA map[string]time.Duration
	// Channels restricts the publish channels a host exposes. Empty means
	// every known channel.
	Channels []string
	// FounderQueueOnly limits the simplified board to founder-approval items.
	FounderQueueOnly bool
}

// StorageConfig lists identifiers for storage-related dependencies.
type StorageConfig struct {
	Provider string
}

// CacheConfig captures repository cache behaviour toggles.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool
	Timeout time.Duration
}

// Features toggles module functionality.
type Features struct {
	Markdown bool
	Logger   bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the opinionated defaults for a newsroom deployment.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		DefaultLocale: "en",
		Workflow: WorkflowConfig{
			StageSLA: map[string]time.Duration{
				string(domain.StageDraft):           48 * time.Hour,
				string(domain.StageCopyEdit):        24 * time.Hour,
				string(domain.StageLegalReview):     72 * time.Hour,
				string(domain.StageEditorApproval):  24 * time.Hour,
				string(domain.StageFounderApproval): 24 * time.Hour,
				string(domain.StageScheduled):       0,
			},
		},
		Storage: StorageConfig{
			Provider: "bun",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Commands: CommandsConfig{
			Enabled: true,
		},
		Features: Features{
			Markdown: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		return ErrDefaultLocaleRequired
	}
	for name := range cfg.Workflow.StageSLA {
		if _, ok := domain.ParseStage(name); !ok {
			return fmt.Errorf("%w: %s", ErrStageUnknown, name)
		}
	}
	for _, channel := range cfg.Workflow.Channels {
		if _, ok := domain.ParsePublishChannel(channel); !ok {
			return fmt.Errorf("%w: %s", ErrChannelUnknown, channel)
		}
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Provider)) {
	case "", "bun", "memory":
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandTimeoutInvalid
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// SLAPolicy converts the configured thresholds into stage-keyed durations,
// skipping names that fail to parse.
func (cfg WorkflowConfig) SLAPolicy() map[domain.Stage]time.Duration {
	if len(cfg.StageSLA) == 0 {
		return nil
	}
	thresholds := make(map[domain.Stage]time.Duration, len(cfg.StageSLA))
	for name, threshold := range cfg.StageSLA {
		stage, ok := domain.ParseStage(name)
		if !ok {
			continue
		}
		thresholds[stage] = threshold
	}
	return thresholds
}

// PublishChannels converts the configured channel names, skipping names that
// fail to parse.
func (cfg WorkflowConfig) PublishChannels() []domain.PublishChannel {
	if len(cfg.Channels) == 0 {
		return nil
	}
	channels := make([]domain.PublishChannel, 0, len(cfg.Channels))
	for _, name := range cfg.Channels {
		channel, ok := domain.ParsePublishChannel(name)
		if !ok {
			continue
		}
		channels = append(channels, channel)
	}
	return channels
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

package runtimeconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
	if !cfg.Enabled {
		t.Fatal("expected module enabled by default")
	}
	if cfg.Workflow.StageSLA[string(domain.StageLegalReview)] != 72*time.Hour {
		t.Fatalf("expected legal review window of 72h, got %v", cfg.Workflow.StageSLA[string(domain.StageLegalReview)])
	}
}

func TestValidateRejectsMissingLocale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultLocale = "  "
	if err := cfg.Validate(); !errors.Is(err, ErrDefaultLocaleRequired) {
		t.Fatalf("expected ErrDefaultLocaleRequired, got %v", err)
	}
}

func TestValidateRejectsUnknownStage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workflow.StageSLA["fact_check"] = time.Hour
	if err := cfg.Validate(); !errors.Is(err, ErrStageUnknown) {
		t.Fatalf("expected ErrStageUnknown, got %v", err)
	}
}

func TestValidateRejectsUnknownChannel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workflow.Channels = []string{"site", "carrier-pigeon"}
	if err := cfg.Validate(); !errors.Is(err, ErrChannelUnknown) {
		t.Fatalf("expected ErrChannelUnknown, got %v", err)
	}
}

func TestValidateRejectsUnknownStorageProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Provider = "s3"
	if err := cfg.Validate(); !errors.Is(err, ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}

	for _, provider := range []string{"", "bun", "memory", " Bun "} {
		cfg.Storage.Provider = provider
		if err := cfg.Validate(); err != nil {
			t.Fatalf("expected provider %q accepted, got %v", provider, err)
		}
	}
}

func TestValidateRejectsNegativeCacheTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.DefaultTTL = -time.Second
	if err := cfg.Validate(); !errors.Is(err, ErrCacheTTLInvalid) {
		t.Fatalf("expected ErrCacheTTLInvalid, got %v", err)
	}
}

func TestValidateLoggingProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}

	cfg.Logging.Format = "json"
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
}

func TestWorkflowPublishChannelsSkipsUnknownNames(t *testing.T) {
	cfg := WorkflowConfig{Channels: []string{"site", "carrier-pigeon", "NEWSLETTER"}}
	channels := cfg.PublishChannels()
	if len(channels) != 2 {
		t.Fatalf("expected two parsed channels, got %d", len(channels))
	}
	if channels[0] != domain.ChannelSite || channels[1] != domain.ChannelNewsletter {
		t.Fatalf("expected site and newsletter, got %v", channels)
	}

	if got := (WorkflowConfig{}).PublishChannels(); got != nil {
		t.Fatalf("expected nil for empty channel list, got %v", got)
	}
}

func TestWorkflowSLAPolicySkipsUnknownStages(t *testing.T) {
	cfg := WorkflowConfig{StageSLA: map[string]time.Duration{
		"draft":   time.Hour,
		"unknown": time.Minute,
	}}
	thresholds := cfg.SLAPolicy()
	if len(thresholds) != 1 {
		t.Fatalf("expected one threshold, got %d", len(thresholds))
	}
	if thresholds[domain.StageDraft] != time.Hour {
		t.Fatalf("expected draft threshold of 1h, got %v", thresholds[domain.StageDraft])
	}
}

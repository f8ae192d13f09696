package newsroom

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/internal/logging/gologger"
	"github.com/goliatone/go-newsroom/internal/store"
	"github.com/goliatone/go-newsroom/internal/workflow"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Module is the top level newsroom runtime façade. It owns the workflow
// dispatcher, the inspector aggregator, and the store binding.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider
	db       *bun.DB
	clock    func() time.Time
	store    workflow.Store
	service  *workflow.Service
	timeline *workflow.Timeline
	commands *Commands
}

// Option overrides a default binding on the module.
type Option func(*Module)

// WithStore binds an externally constructed workflow store.
func WithStore(s workflow.Store) Option {
	return func(m *Module) {
		m.store = s
	}
}

// WithDB binds a bun database; the module builds its own store over it.
func WithDB(db *bun.DB) Option {
	return func(m *Module) {
		m.db = db
	}
}

// WithLoggerProvider overrides the logger provider derived from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// WithClock overrides the clock used for stage timestamps and staleness.
func WithClock(clock func() time.Time) Option {
	return func(m *Module) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// New constructs a newsroom module from the provided configuration. Without a
// store or database binding it runs against the in-memory store. Storage,
// cache, command, and rendering toggles in the configuration select the
// concrete wiring.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{
		cfg:   cfg,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.provider == nil && cfg.Features.Logger {
		provider, err := buildLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	if m.store == nil {
		s, err := buildStore(cfg, m)
		if err != nil {
			return nil, err
		}
		m.store = s
	}

	timelineOpts := []workflow.TimelineOption{
		workflow.WithTimelineLogger(logging.TimelineLogger(m.provider)),
	}
	if !cfg.Features.Markdown {
		timelineOpts = append(timelineOpts, workflow.WithoutCommentRendering())
	}
	m.timeline = workflow.NewTimeline(m.store, timelineOpts...)

	serviceOpts := []workflow.ServiceOption{
		workflow.WithTimeline(m.timeline),
		workflow.WithLogger(logging.WorkflowLogger(m.provider)),
		workflow.WithClock(m.clock),
		workflow.WithDefaultLocale(cfg.DefaultLocale),
		workflow.WithFounderQueueOnly(cfg.Workflow.FounderQueueOnly),
	}
	if thresholds := cfg.Workflow.SLAPolicy(); thresholds != nil {
		serviceOpts = append(serviceOpts, workflow.WithSLAPolicy(workflow.NewSLAPolicy(thresholds)))
	}
	if channels := cfg.Workflow.PublishChannels(); len(channels) > 0 {
		serviceOpts = append(serviceOpts, workflow.WithPublishChannels(channels...))
	}

	service, err := workflow.NewService(m.store, serviceOpts...)
	if err != nil {
		return nil, err
	}
	m.service = service
	m.timeline.AttachSink(service)

	if cfg.Commands.Enabled {
		m.commands = newCommands(service, m.provider, cfg.Commands.Timeout)
	}

	return m, nil
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.cfg
}

// Workflow returns the action dispatcher.
func (m *Module) Workflow() *workflow.Service {
	if m == nil {
		return nil
	}
	return m.service
}

// Timeline returns the inspector aggregator.
func (m *Module) Timeline() *workflow.Timeline {
	if m == nil {
		return nil
	}
	return m.timeline
}

// Commands returns the wired command handlers. It is nil when the command
// layer is disabled in configuration.
func (m *Module) Commands() *Commands {
	if m == nil {
		return nil
	}
	return m.commands
}

// Store exposes the bound workflow store for advanced integrations.
func (m *Module) Store() workflow.Store {
	if m == nil {
		return nil
	}
	return m.store
}

// LoggerProvider exposes the provider the module logs through.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	if m == nil {
		return nil
	}
	return m.provider
}

// buildStore selects the storage backend. "memory" forces the in-memory
// store; otherwise a bound database gets the bun store, optionally wrapped
// with the repository cache.
func buildStore(cfg Config, m *Module) (workflow.Store, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Storage.Provider))
	if provider == "memory" || m.db == nil {
		return store.NewMemoryStore(store.WithMemoryClock(m.clock)), nil
	}

	storeOpts := []store.BunStoreOption{
		store.WithStoreLogger(logging.StoreLogger(m.provider)),
		store.WithStoreClock(m.clock),
	}
	if !cfg.Cache.Enabled {
		return store.NewBunStore(m.db, storeOpts...), nil
	}

	cacheCfg := repocache.DefaultConfig()
	if cfg.Cache.DefaultTTL > 0 {
		cacheCfg.TTL = cfg.Cache.DefaultTTL
	}
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		return nil, err
	}
	keySerializer := repocache.NewDefaultKeySerializer()
	return store.NewBunStoreWithCache(m.db, cacheService, keySerializer, storeOpts...), nil
}

func buildLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "console":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    "console",
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Provider)
	}
}

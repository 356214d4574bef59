package cylink

import (
	"errors"
	"net/http"

	"github.com/cylink-sh/cylink-go/backend"
	"github.com/cylink-sh/cylink-go/internal/clickstore"
	"github.com/cylink-sh/cylink-go/internal/rate"
	"github.com/cylink-sh/cylink-go/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Configure it fluently, then call Build
// exactly once; the builder validates the whole configuration before any
// goroutine starts.
type Builder struct {
	config Config
	redis  *redis.Client

	httpClient *http.Client
	tokens     token.Source
	sink       TelemetrySink

	built bool
}

// New starts a builder with default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the API root without replacing the rest of the tree.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithRedis wires the optional redis client used for lookup throttling and
// click dedup. Without it those features stay off regardless of config.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient replaces the transport for all backend calls.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithTokenSource wires bearer credentials for the authenticated tier and
// the dashboard operations.
func (b *Builder) WithTokenSource(src token.Source) *Builder {
	b.tokens = src
	return b
}

// WithTelemetrySink wires the event consumer. A nil sink with telemetry
// enabled falls back to [NoOpSink].
func (b *Builder) WithTelemetrySink(sink TelemetrySink) *Builder {
	b.sink = sink
	return b
}

// WithMetricsEnabled toggles the metrics registry.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the resolve latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and assembles the engine. The click
// worker and telemetry dispatcher goroutines start here; release them with
// [Engine.Close].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.redis == nil {
		if cfg.RateLimit.Enabled {
			return nil, errors.New("RateLimit requires redis client")
		}
		if cfg.Clicks.DedupWindow > 0 {
			return nil, errors.New("Clicks DedupWindow requires redis client")
		}
	}

	hc := b.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.API.RequestTimeout}
	}

	bc, err := backend.New(backend.Config{
		BaseURL:    cfg.API.BaseURL,
		UserAgent:  cfg.API.UserAgent,
		HTTPClient: hc,
		Tokens:     b.tokens,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:  cfg,
		backend: bc,
	}

	engine.metrics = NewMetrics(cfg.Metrics)
	engine.telemetry = newTelemetryDispatcher(cfg.Telemetry, b.sink)

	if b.redis != nil && cfg.RateLimit.Enabled {
		engine.limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle: cfg.RateLimit.EnableIPThrottle,
			MaxLookups:       cfg.RateLimit.MaxLookups,
			Cooldown:         cfg.RateLimit.Cooldown,
		})
	}
	if b.redis != nil && cfg.Clicks.DedupWindow > 0 {
		engine.clickStore = clickstore.NewStore(b.redis, "cy")
	}

	engine.clicks = newClickRecorder(cfg.Clicks, bc, engine.clickStore, engine.metrics, engine.telemetry)

	b.built = true

	return engine, nil
}

package cylink

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config is the full engine configuration tree. Instances are intended to
// be populated before [Builder.Build] and treated as immutable afterwards;
// the builder clones the tree so later caller mutation has no effect.
type Config struct {
	API       APIConfig
	Resolve   ResolveConfig
	Clicks    ClicksConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the remote CyLink REST API.
type APIConfig struct {
	// BaseURL is the API root, e.g. "https://api.cylink.sh/v1".
	BaseURL string
	// UserAgent is sent on every request. Defaults to "cylink-go".
	UserAgent string
	// RequestTimeout bounds non-lookup operations (links, QR, feedback).
	RequestTimeout time.Duration
}

/*
====================================
RESOLVE CONFIG
====================================
*/

// ResolveConfig tunes the two-tier lookup chain.
type ResolveConfig struct {
	// AttemptTimeout bounds each lookup tier individually. Zero disables
	// the per-attempt deadline and defers to the transport.
	AttemptTimeout time.Duration
	// DisableFallback skips the authenticated tier entirely. Useful for
	// anonymous deployments with no credentials to fall back on.
	DisableFallback bool
	// MaxCodeLength rejects obviously malformed codes before any network
	// call. Codes are opaque otherwise.
	MaxCodeLength int
}

/*
====================================
CLICKS CONFIG
====================================
*/

// ClicksConfig tunes the fire-and-forget click recording worker.
type ClicksConfig struct {
	// Enabled turns click recording on. Resolution results are unaffected
	// either way.
	Enabled bool
	// BufferSize is the click queue depth. When the queue is full new
	// clicks are dropped and counted, never blocked on.
	BufferSize int
	// RecordTimeout bounds each click call against the backend.
	RecordTimeout time.Duration
	// DedupWindow suppresses repeat clicks from the same visitor on the
	// same code. Only honored when a redis client is wired; zero disables
	// dedup.
	DedupWindow time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig tunes the redis-backed resolution throttle. The whole
// section is ignored when no redis client is wired.
type RateLimitConfig struct {
	Enabled          bool
	EnableIPThrottle bool
	MaxLookups       int
	Cooldown         time.Duration
}

/*
====================================
TELEMETRY CONFIG
====================================
*/

// TelemetryConfig tunes the async event dispatcher.
type TelemetryConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events when the buffer is full instead of blocking
	// the emitting caller.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig tunes the in-process metrics registry.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			UserAgent:      "cylink-go",
			RequestTimeout: 10 * time.Second,
		},
		Resolve: ResolveConfig{
			AttemptTimeout: 5 * time.Second,
			MaxCodeLength:  64,
		},
		Clicks: ClicksConfig{
			Enabled:       true,
			BufferSize:    1024,
			RecordTimeout: 3 * time.Second,
			DedupWindow:   0,
		},
		RateLimit: RateLimitConfig{
			Enabled:          false,
			EnableIPThrottle: true,
			MaxLookups:       120,
			Cooldown:         time.Minute,
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// The tree holds no reference types today; a value copy is a deep copy.
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internally inconsistent or
// unusable values. Build calls it; callers may call it early to fail fast.
func (c *Config) Validate() error {
	// API
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("API BaseURL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("API BaseURL must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("API BaseURL must use http or https")
	}
	if c.API.RequestTimeout < 0 {
		return errors.New("API RequestTimeout must be >= 0")
	}

	// Resolve
	if c.Resolve.AttemptTimeout < 0 {
		return errors.New("Resolve AttemptTimeout must be >= 0")
	}
	if c.Resolve.MaxCodeLength <= 0 {
		return errors.New("Resolve MaxCodeLength must be > 0")
	}

	// Clicks
	if c.Clicks.Enabled && c.Clicks.BufferSize <= 0 {
		return errors.New("Clicks BufferSize must be > 0 when enabled")
	}
	if c.Clicks.RecordTimeout < 0 {
		return errors.New("Clicks RecordTimeout must be >= 0")
	}
	if c.Clicks.DedupWindow < 0 {
		return errors.New("Clicks DedupWindow must be >= 0")
	}

	// Rate limiting
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxLookups <= 0 {
			return errors.New("RateLimit MaxLookups must be > 0 when enabled")
		}
		if c.RateLimit.Cooldown <= 0 {
			return errors.New("RateLimit Cooldown must be > 0 when enabled")
		}
	}

	// Telemetry
	if c.Telemetry.Enabled && c.Telemetry.BufferSize <= 0 {
		return errors.New("Telemetry BufferSize must be > 0 when enabled")
	}

	return nil
}

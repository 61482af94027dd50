package swclient

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/swclient/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles a [Client].
//
// Builder instances are intended to be configured during initialization and
// then discarded. A Builder builds exactly one Client.
type Builder struct {
	config Config

	store      session.Store
	redis      redis.UniversalClient
	httpClient *http.Client
	redirect   RedirectHandler
	logger     *zap.Logger
	auditSink  AuditSink
	now        func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets Config.BaseURL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithTimeout sets the default per-request timeout.
func (b *Builder) WithTimeout(d time.Duration) *Builder {
	b.config.Timeout = d
	return b
}

// WithSessionStore uses store instead of the backend named in
// Config.Session.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis supplies the Redis client for the redis session backend. The
// caller keeps ownership; Close does not close it.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithHTTPClient overrides the transport. Its Timeout should be zero; the
// Client applies Config.Timeout per request.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithRedirectHandler registers the receiver of login redirect signals.
func (b *Builder) WithRedirectHandler(h RedirectHandler) *Builder {
	b.redirect = h
	return b
}

// WithLogger sets the logger. The default discards everything.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit sink and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the request latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// WithClock replaces time.Now for expiry checks and event timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build validates the configuration and returns a ready Client.
//
// Build fails when the configuration is invalid, when the chosen session
// backend cannot be opened, or when called a second time.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:   cfg,
		baseURL:  base,
		http:     b.httpClient,
		store:    b.store,
		redirect: b.redirect,
		logger:   b.logger,
		now:      b.now,
	}

	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.redirect == nil {
		c.redirect = noopRedirect{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}

	// -------- SESSION STORE --------
	if c.store == nil {
		store, closer, err := b.openStore(cfg.Session)
		if err != nil {
			return nil, err
		}
		c.store = store
		c.closeStore = closer
	}

	c.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	c.metrics = NewMetrics(cfg.Metrics)
	c.initServices()

	b.built = true

	return c, nil
}

func (b *Builder) openStore(cfg SessionConfig) (session.Store, func() error, error) {
	switch cfg.Backend {
	case BackendFile:
		fs, err := session.NewFileStore(cfg.Dir, cfg.KeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	case BackendRedis:
		if b.redis != nil {
			return session.NewRedisStore(b.redis, cfg.KeyPrefix), nil, nil
		}
		if cfg.RedisAddr == "" {
			return nil, nil, errors.New("redis session backend requires a redis client or Session.RedisAddr")
		}
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		return session.NewRedisStore(rdb, cfg.KeyPrefix), rdb.Close, nil
	default:
		return session.NewMemoryStore(), nil, nil
	}
}

// Configure builds a Client for baseURL with the given default timeout and
// every other setting at its default.
func Configure(baseURL string, timeout time.Duration) (*Client, error) {
	return New().WithBaseURL(baseURL).WithTimeout(timeout).Build()
}

package authcore

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/urak/authcore/audit"
	"github.com/urak/authcore/password"
	"github.com/urak/authcore/revocation"
	"github.com/urak/authcore/session"
	"github.com/urak/authcore/token"
)

// Builder defines a public type used by authcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	repository UserRepository
	auditSink  audit.Sink
	registerer prometheus.Registerer

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis selects the Redis-backed session store. Without it the
// engine uses the in-process sharded store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserRepository describes the withuserrepository operation and its observable behavior.
//
// WithUserRepository does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserRepository(repo UserRepository) *Builder {
	b.repository = repo
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink audit.Sink) *Builder {
	b.auditSink = sink
	return b
}

// WithRegisterer sets the Prometheus registerer for engine metrics.
// Defaults to prometheus.DefaultRegisterer.
func (b *Builder) WithRegisterer(reg prometheus.Registerer) *Builder {
	b.registerer = reg
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.repository == nil {
		return nil, errors.New("user repository required")
	}

	tokens, err := token.NewManager(token.Config{
		SigningKey: cfg.JWT.SigningKey,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
		Leeway:     cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Iterations: cfg.Password.Iterations,
		SaltLength: cfg.Password.SaltLength,
		KeyLength:  cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	var store session.Store
	if b.redis != nil {
		store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
	} else {
		store = session.NewMemoryStore()
	}

	metrics := NewMetrics(cfg.Metrics, b.registerer)

	engine := &Engine{
		config:     cfg,
		repository: b.repository,
		tokens:     tokens,
		hasher:     hasher,
		sessions:   store,
		registry:   revocation.NewRegistry(cfg.Maintenance.RevocationHorizon),
		audit: audit.NewRecorder(audit.Config{
			Retention:        cfg.Audit.Retention,
			FailureWindow:    cfg.Audit.FailureWindow,
			FailureThreshold: cfg.Audit.FailureThreshold,
		}, meteredSink{inner: b.auditSink, metrics: metrics}),
		metrics: metrics,
	}

	if cfg.Maintenance.Enabled {
		engine.sweeper = newSweeper(engine, cfg.Maintenance)
		engine.sweeper.start()
	}

	engine.audit.Log(context.Background(), audit.Event{
		Type:     audit.EventSystemStart,
		Severity: audit.SeverityLow,
		Result:   "success",
	})

	b.built = true
	return engine, nil
}

// meteredSink forwards events to the configured sink and mirrors
// detector alerts into the metrics counter.
type meteredSink struct {
	inner   audit.Sink
	metrics *Metrics
}

func (s meteredSink) Emit(ctx context.Context, event audit.Event) {
	if event.Type == audit.EventSuspiciousActivity {
		s.metrics.Suspicious()
	}
	if s.inner != nil {
		s.inner.Emit(ctx, event)
	}
}

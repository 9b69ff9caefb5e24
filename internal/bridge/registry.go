// Package bridge exposes sr25519 key material to foreign callers through
// opaque handles.
//
// Every handle owns exactly one KeyMaterial. Creating operations return a new
// handle that the caller must eventually pass to Destroy; Destroy is
// idempotent, and handles are never reused, so a stale handle can not reach a
// key that was created later.
package bridge

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"sr25519-bridge/internal/logger"
	"sr25519-bridge/internal/sr25519"
	"sr25519-bridge/internal/types"
)

// Handle identifies a KeyMaterial owned by a caller. Zero is never valid.
type Handle uint64

// Option configures a Registry
type Option func(*Registry)

// WithSigningContext binds every key created by the registry to context
// instead of sr25519.SigningContext.
func WithSigningContext(context string) Option {
	return func(r *Registry) {
		r.context = []byte(context)
	}
}

// WithMockRNGAllowed enables UseMockRNGForTesting. Never set it in production.
func WithMockRNGAllowed() Option {
	return func(r *Registry) {
		r.allowMockRNG = true
	}
}

// WithMetrics registers the registry's collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Registry) {
		r.registerer = reg
	}
}

// WithLogger replaces the component logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) {
		r.log = l
	}
}

// Registry owns the key material behind handles. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	keys map[Handle]*sr25519.KeyMaterial
	last Handle

	context      []byte
	allowMockRNG bool
	registerer   prometheus.Registerer
	metrics      *metrics
	log          *logger.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		keys:    make(map[Handle]*sr25519.KeyMaterial),
		context: []byte(sr25519.SigningContext),
		metrics: newMetrics(),
		log:     logger.Component("bridge"),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.registerer != nil {
		if err := r.metrics.register(r.registerer); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewRegistryFromConfig creates a registry from the bridge section of the
// configuration. Extra options are applied afterwards.
func NewRegistryFromConfig(cfg types.BridgeConfig, opts ...Option) (*Registry, error) {
	var base []Option
	if cfg.SigningContext != "" {
		base = append(base, WithSigningContext(cfg.SigningContext))
	}
	if cfg.AllowMockRNG {
		base = append(base, WithMockRNGAllowed())
	}
	return NewRegistry(append(base, opts...)...)
}

// GenerateFromSeed expands seed and returns a handle owning the new key.
func (r *Registry) GenerateFromSeed(seed [sr25519.SeedSize]byte) Handle {
	key := sr25519.FromSeedWithContext(seed, r.context)
	h := r.insert(key)

	r.metrics.observe("generate_from_seed", nil)
	r.log.Debug("key handle created", "handle", uint64(h), "public_key", key.PublicKey().String())
	return h
}

// DeriveHard derives a child of the key behind h along the encoded junction
// and returns a new handle owning it. The parent handle is unaffected.
func (r *Registry) DeriveHard(h Handle, junction []byte) (Handle, error) {
	parent, err := r.lookup("derive_hard", h)
	if err != nil {
		return 0, err
	}

	child := r.insert(parent.DeriveHard(junction))

	r.metrics.observe("derive_hard", nil)
	r.log.Debug("key handle derived", "parent", uint64(h), "handle", uint64(child))
	return child, nil
}

// PublicKey returns the public key of the key behind h.
func (r *Registry) PublicKey(h Handle) (sr25519.PublicKey, error) {
	key, err := r.lookup("get_public_key", h)
	if err != nil {
		return sr25519.PublicKey{}, err
	}
	r.metrics.observe("get_public_key", nil)
	return key.PublicKey(), nil
}

// UseMockRNGForTesting makes all further signatures by h reproducible.
//
// Test harnesses only: it fails with ErrMockRNGDisabled unless the registry
// was built WithMockRNGAllowed. Callers must not race it against other calls
// on the same handle if they rely on which signatures are deterministic.
func (r *Registry) UseMockRNGForTesting(h Handle) error {
	const op = "use_mock_rng_for_testing"

	if !r.allowMockRNG {
		err := newHandleError(op, h, ErrMockRNGDisabled)
		r.metrics.observe(op, err)
		r.log.Error("mock rng requested on a production registry", "handle", uint64(h))
		return err
	}

	r.mu.Lock()
	key, ok := r.keys[h]
	if ok {
		r.keys[h] = key.WithMockRNGForTesting()
	}
	r.mu.Unlock()

	if !ok {
		err := newHandleError(op, h, ErrUnknownHandle)
		r.metrics.observe(op, err)
		return err
	}

	r.metrics.observe(op, nil)
	r.log.Warn("deterministic signing enabled", "handle", uint64(h))
	return nil
}

// SignMessage signs message with the key behind h.
func (r *Registry) SignMessage(h Handle, message []byte) (sr25519.Signature, error) {
	key, err := r.lookup("sign_message", h)
	if err != nil {
		return sr25519.Signature{}, err
	}
	sig := key.SignMessage(message)
	r.metrics.observe("sign_message", nil)
	return sig, nil
}

// VerifyMessage checks signature over message against the key behind h.
// Malformed signatures yield false, not an error; the error is reserved for
// unknown handles.
func (r *Registry) VerifyMessage(h Handle, signature, message []byte) (bool, error) {
	key, err := r.lookup("verify_message", h)
	if err != nil {
		return false, err
	}
	ok := key.Verify(signature, message)
	r.metrics.observe("verify_message", nil)
	return ok, nil
}

// Destroy releases the key behind h. It reports whether h was live; calling
// it again, or with a handle that never existed, does nothing.
func (r *Registry) Destroy(h Handle) bool {
	r.mu.Lock()
	_, ok := r.keys[h]
	delete(r.keys, h)
	r.mu.Unlock()

	if ok {
		r.metrics.liveHandles.Dec()
		r.log.Debug("key handle released", "handle", uint64(h))
	}
	return ok
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}

func (r *Registry) insert(key *sr25519.KeyMaterial) Handle {
	r.mu.Lock()
	r.last++
	h := r.last
	r.keys[h] = key
	r.mu.Unlock()

	r.metrics.liveHandles.Inc()
	return h
}

func (r *Registry) lookup(op string, h Handle) (*sr25519.KeyMaterial, error) {
	r.mu.RLock()
	key, ok := r.keys[h]
	r.mu.RUnlock()

	if !ok {
		err := newHandleError(op, h, ErrUnknownHandle)
		r.metrics.observe(op, err)
		return nil, err
	}
	return key, nil
}

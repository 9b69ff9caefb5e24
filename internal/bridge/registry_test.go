package bridge

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sr25519-bridge/internal/sr25519"
	"sr25519-bridge/internal/types"
)

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	r, err := NewRegistry(opts...)
	require.NoError(t, err)
	return r
}

func TestRegistry_GenerateAndPublicKey(t *testing.T) {
	r := newTestRegistry(t)
	seed := [sr25519.SeedSize]byte{1}

	h := r.GenerateFromSeed(seed)
	assert.NotZero(t, h)

	pub, err := r.PublicKey(h)
	require.NoError(t, err)
	assert.Equal(t, sr25519.FromSeed(seed).PublicKey(), pub)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ZeroSeedScenario(t *testing.T) {
	r := newTestRegistry(t)

	root := r.GenerateFromSeed([sr25519.SeedSize]byte{})
	p0, err := r.PublicKey(root)
	require.NoError(t, err)

	c1, err := r.DeriveHard(root, []byte{0x01})
	require.NoError(t, err)
	c1Again, err := r.DeriveHard(root, []byte{0x01})
	require.NoError(t, err)
	c2, err := r.DeriveHard(root, []byte{0x02})
	require.NoError(t, err)

	// Each derivation yields its own handle.
	assert.NotEqual(t, c1, c1Again)

	p1, _ := r.PublicKey(c1)
	p1Again, _ := r.PublicKey(c1Again)
	p2, _ := r.PublicKey(c2)

	assert.Equal(t, p1, p1Again)
	assert.NotEqual(t, p1, p2)
	assert.NotEqual(t, p0, p1)
}

func TestRegistry_SignVerify(t *testing.T) {
	r := newTestRegistry(t)
	h := r.GenerateFromSeed([sr25519.SeedSize]byte{2})
	msg := []byte("extrinsic payload")

	sig, err := r.SignMessage(h, msg)
	require.NoError(t, err)

	ok, err := r.VerifyMessage(h, sig[:], msg)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.VerifyMessage(h, sig[:], []byte("other payload"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.VerifyMessage(h, make([]byte, 10), msg)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistry_DerivedKeysAreIndependent(t *testing.T) {
	r := newTestRegistry(t)
	root := r.GenerateFromSeed([sr25519.SeedSize]byte{3})
	child, err := r.DeriveHard(root, []byte("//polkadot"))
	require.NoError(t, err)

	// Releasing the parent does not affect the child.
	require.True(t, r.Destroy(root))

	sig, err := r.SignMessage(child, []byte("m"))
	require.NoError(t, err)
	ok, err := r.VerifyMessage(child, sig[:], []byte("m"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegistry_Destroy(t *testing.T) {
	r := newTestRegistry(t)
	h := r.GenerateFromSeed([sr25519.SeedSize]byte{4})

	assert.True(t, r.Destroy(h))
	assert.False(t, r.Destroy(h), "second destroy must be a no-op")
	assert.False(t, r.Destroy(0))
	assert.Equal(t, 0, r.Len())

	_, err := r.PublicKey(h)
	assert.ErrorIs(t, err, ErrUnknownHandle)

	var herr *HandleError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "get_public_key", herr.Operation)
	assert.Equal(t, h, herr.Handle)

	// A later key never reuses the released handle.
	h2 := r.GenerateFromSeed([sr25519.SeedSize]byte{4})
	assert.NotEqual(t, h, h2)
}

func TestRegistry_UnknownHandle(t *testing.T) {
	r := newTestRegistry(t, WithMockRNGAllowed())
	const bogus Handle = 99

	_, err := r.DeriveHard(bogus, []byte{1})
	assert.ErrorIs(t, err, ErrUnknownHandle)

	_, err = r.SignMessage(bogus, nil)
	assert.ErrorIs(t, err, ErrUnknownHandle)

	_, err = r.VerifyMessage(bogus, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownHandle)

	assert.ErrorIs(t, r.UseMockRNGForTesting(bogus), ErrUnknownHandle)
}

func TestRegistry_MockRNG(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		r := newTestRegistry(t)
		h := r.GenerateFromSeed([sr25519.SeedSize]byte{5})

		err := r.UseMockRNGForTesting(h)
		assert.ErrorIs(t, err, ErrMockRNGDisabled)

		a, _ := r.SignMessage(h, []byte("m"))
		b, _ := r.SignMessage(h, []byte("m"))
		assert.NotEqual(t, a, b)
	})

	t.Run("reproducible when allowed", func(t *testing.T) {
		r := newTestRegistry(t, WithMockRNGAllowed())
		h := r.GenerateFromSeed([sr25519.SeedSize]byte{5})
		require.NoError(t, r.UseMockRNGForTesting(h))

		a, err := r.SignMessage(h, []byte("m"))
		require.NoError(t, err)
		b, err := r.SignMessage(h, []byte("m"))
		require.NoError(t, err)
		assert.Equal(t, a, b)

		ok, err := r.VerifyMessage(h, a[:], []byte("m"))
		require.NoError(t, err)
		assert.True(t, ok)

		// Children are production keys again.
		child, err := r.DeriveHard(h, []byte{1})
		require.NoError(t, err)
		c1, _ := r.SignMessage(child, []byte("m"))
		c2, _ := r.SignMessage(child, []byte("m"))
		assert.NotEqual(t, c1, c2)
	})
}

func TestRegistry_SigningContext(t *testing.T) {
	custom := newTestRegistry(t, WithSigningContext("other-chain"))
	standard := newTestRegistry(t)
	seed := [sr25519.SeedSize]byte{6}
	msg := []byte("m")

	hc := custom.GenerateFromSeed(seed)
	hs := standard.GenerateFromSeed(seed)

	sig, err := custom.SignMessage(hc, msg)
	require.NoError(t, err)

	ok, err := standard.VerifyMessage(hs, sig[:], msg)
	require.NoError(t, err)
	assert.False(t, ok, "signature must not verify under a different signing context")

	ok, err = custom.VerifyMessage(hc, sig[:], msg)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRegistryFromConfig(t *testing.T) {
	cfg := types.BridgeConfig{SigningContext: "cfg-context", AllowMockRNG: true}
	r, err := NewRegistryFromConfig(cfg)
	require.NoError(t, err)

	h := r.GenerateFromSeed([sr25519.SeedSize]byte{7})
	require.NoError(t, r.UseMockRNGForTesting(h))

	sig, err := r.SignMessage(h, []byte("m"))
	require.NoError(t, err)

	pub, err := r.PublicKey(h)
	require.NoError(t, err)
	assert.True(t, sr25519.VerifyWithPublicKey(pub, []byte("cfg-context"), sig[:], []byte("m")))
}

func TestRegistry_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newTestRegistry(t, WithMetrics(reg))

	h := r.GenerateFromSeed([sr25519.SeedSize]byte{8})
	child, err := r.DeriveHard(h, []byte{1})
	require.NoError(t, err)
	assert.Equal(t, float64(2), testutil.ToFloat64(r.metrics.liveHandles))

	r.Destroy(child)
	assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.liveHandles))

	_, _ = r.SignMessage(child, []byte("m"))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.operations.WithLabelValues("sign_message", "error")))

	// Registering the same collectors twice fails.
	_, err = NewRegistry(WithMetrics(reg))
	assert.Error(t, err)
}

func TestRegistry_ConcurrentHandles(t *testing.T) {
	r := newTestRegistry(t)
	root := r.GenerateFromSeed([sr25519.SeedSize]byte{9})

	var wg sync.WaitGroup
	handles := make([]Handle, 32)
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := r.DeriveHard(root, []byte{byte(i)})
			if err != nil {
				t.Error(err)
				return
			}
			handles[i] = h
			sig, err := r.SignMessage(h, []byte{byte(i)})
			if err != nil {
				t.Error(err)
				return
			}
			if ok, _ := r.VerifyMessage(h, sig[:], []byte{byte(i)}); !ok {
				t.Errorf("signature %d did not verify", i)
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[Handle]bool)
	for _, h := range handles {
		assert.False(t, seen[h], "duplicate handle %d", h)
		seen[h] = true
		assert.True(t, r.Destroy(h))
	}
	assert.Equal(t, 1, r.Len())
}

package suri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sr25519-bridge/internal/mnemonic"
	"sr25519-bridge/internal/sr25519"
)

func TestDerive_DevAccounts(t *testing.T) {
	tests := []struct {
		suri string
		want string
	}{
		{"//Alice", "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"},
		{"//Bob", "8eaf04151687736326c9fea17e25fc5287613693c912909cb226aa4794f26a48"},
		{mnemonic.DevPhrase, "46ebddef8cd9bb167dc30878d7113b7e168e6f0646beffd77d69d39bad76b47a"},
	}

	for _, tt := range tests {
		t.Run(tt.suri, func(t *testing.T) {
			key, err := Derive(tt.suri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, key.PublicKey().String())
		})
	}
}

func TestDerive_PhraseAndPathMatchesManualDerivation(t *testing.T) {
	key, err := Derive(mnemonic.DevPhrase + "//polkadot//0")
	require.NoError(t, err)

	seed, err := mnemonic.ToSeed(mnemonic.DevPhrase, "")
	require.NoError(t, err)

	polkadot := append([]byte{8 << 2}, "polkadot"...)
	zero := make([]byte, 8)
	manual := sr25519.FromSeed(seed).DeriveHard(polkadot).DeriveHard(zero)

	assert.Equal(t, manual.PublicKey(), key.PublicKey())
}

func TestParse(t *testing.T) {
	t.Run("password", func(t *testing.T) {
		u, err := Parse(mnemonic.DevPhrase + "//Alice///secret")
		require.NoError(t, err)
		assert.Equal(t, "secret", u.Password)
		assert.True(t, u.HasSecret)
		require.Len(t, u.Path, 1)
		assert.Equal(t, "//Alice", u.Path[0].String())
	})

	t.Run("default phrase", func(t *testing.T) {
		u, err := Parse("//Alice")
		require.NoError(t, err)
		assert.False(t, u.HasSecret)
		assert.Equal(t, mnemonic.DevPhrase, u.Phrase)
	})

	t.Run("invalid path", func(t *testing.T) {
		_, err := Parse("//Alice//")
		assert.ErrorIs(t, err, ErrInvalidURI)
	})
}

func TestKeyMaterial_HexSeed(t *testing.T) {
	key, err := Derive("0xe5be9a5092b81bca64be81d212e7f2f9eba183bb7a90954f7b76361f6edb5c0a")
	require.NoError(t, err)
	assert.Equal(t, "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d", key.PublicKey().String())

	_, err = Derive("0x1234")
	assert.ErrorIs(t, err, ErrInvalidURI)

	_, err = Derive("0xzz")
	assert.ErrorIs(t, err, ErrInvalidURI)
}

func TestKeyMaterial_Errors(t *testing.T) {
	_, err := Derive("//Alice/soft")
	assert.ErrorIs(t, err, ErrSoftDerivationUnsupported)

	_, err = Derive("definitely not a mnemonic//Alice")
	assert.ErrorIs(t, err, mnemonic.ErrInvalidMnemonic)
}

func TestKeyMaterial_Context(t *testing.T) {
	u, err := Parse("//Alice")
	require.NoError(t, err)

	key, err := u.KeyMaterial([]byte("custom"))
	require.NoError(t, err)
	assert.Equal(t, []byte("custom"), key.Context())
}

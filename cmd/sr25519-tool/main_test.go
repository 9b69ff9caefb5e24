package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sr25519-bridge/internal/bridge"
)

const (
	alicePublic  = "0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
	aliceAddress = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(append([]string{"sr25519-tool"}, args...))
	return stdout.String(), err
}

func writeConfig(t *testing.T, allowMock bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "bridge:\n  signing_context: substrate\n  ss58_prefix: 42\n"
	if allowMock {
		body += "  allow_mock_rng: true\n"
	}
	body += "logging:\n  level: error\n  format: text\n  console_output: true\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestInspect(t *testing.T) {
	out, err := run(t, "inspect", "--suri", "//Alice")
	require.NoError(t, err)
	assert.Contains(t, out, alicePublic)
	assert.Contains(t, out, aliceAddress)

	out, err = run(t, "inspect", "--suri", "//Alice", "--ss58-prefix", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5")

	_, err = run(t, "inspect", "--suri", "//Alice/soft")
	assert.Error(t, err)
}

func TestDerive(t *testing.T) {
	// "Alice" as a SCALE string on top of the dev phrase seed.
	out, err := run(t, "derive",
		"--seed", "0xfac7959dbfe72f052e5a0c3c8d6530f202b02fd8f9f5ca3580ec8deb7797479e",
		"--junction-hex", "0x14416c696365")
	require.NoError(t, err)
	assert.Contains(t, out, alicePublic)

	_, err = run(t, "derive", "--seed", "0x01")
	assert.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	out, err := run(t, "sign", "--suri", "//Alice", "--message", "hello")
	require.NoError(t, err)
	sig := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(sig, "0x"))

	out, err = run(t, "verify", "--public", aliceAddress, "--signature", sig, "--message", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "verifies correctly")

	_, err = run(t, "verify", "--public", alicePublic, "--signature", sig, "--message", "0x00")
	assert.ErrorIs(t, err, errInvalidSignature)
}

func TestSignMockRNG(t *testing.T) {
	t.Run("rejected by default config", func(t *testing.T) {
		_, err := run(t, "sign", "--suri", "//Alice", "--message", "m", "--mock-rng")
		assert.ErrorIs(t, err, bridge.ErrMockRNGDisabled)
	})

	t.Run("reproducible when allowed", func(t *testing.T) {
		cfg := writeConfig(t, true)
		a, err := run(t, "--config", cfg, "sign", "--suri", "//Alice", "--message", "m", "--mock-rng")
		require.NoError(t, err)
		b, err := run(t, "--config", cfg, "sign", "--suri", "//Alice", "--message", "m", "--mock-rng")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestGenerate(t *testing.T) {
	out, err := run(t, "generate", "--words", "24")
	require.NoError(t, err)
	assert.Contains(t, out, "Secret phrase:")
	assert.Contains(t, out, "SS58 Address:")

	_, err = run(t, "generate", "--words", "13")
	assert.Error(t, err)
}

func TestConfigFileCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.yaml")
	_, err := run(t, "--config", path, "inspect", "--suri", "//Bob")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

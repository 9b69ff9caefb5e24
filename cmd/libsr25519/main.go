// Command libsr25519 builds the bridge as a C shared library:
//
//	go build -buildmode=c-shared -o libsr25519.so ./cmd/libsr25519
//
// Handles returned by the library are owned by the caller and must be released
// with sr25519_destroy. Functions returning int report 1 on success and 0 on
// failure (unknown handle). Buffers passed in are copied; output buffers must
// be at least 32 bytes for public keys and 64 bytes for signatures.
package main

/*
#include <stddef.h>
#include <stdint.h>
*/
import "C"

import (
	"os"
	"sync"
	"unsafe"

	"sr25519-bridge/internal/bridge"
	"sr25519-bridge/internal/config"
	"sr25519-bridge/internal/logger"
	"sr25519-bridge/internal/sr25519"
)

// configEnv points at an optional YAML configuration file.
const configEnv = "SR25519_BRIDGE_CONFIG"

var (
	registryOnce sync.Once
	registry     *bridge.Registry

	// testingOptions is extended by the sr25519_testing build.
	testingOptions []bridge.Option
)

func reg() *bridge.Registry {
	registryOnce.Do(func() {
		r, err := newRegistry()
		if err != nil {
			panic("sr25519: " + err.Error())
		}
		registry = r
	})
	return registry
}

func newRegistry() (*bridge.Registry, error) {
	path := os.Getenv(configEnv)
	if path == "" {
		return bridge.NewRegistry(testingOptions...)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.FromLoggingConfig(cfg.Logging)); err != nil {
		return nil, err
	}

	// The config file can not switch the mock RNG on in a production build.
	cfg.Bridge.AllowMockRNG = false
	return bridge.NewRegistryFromConfig(cfg.Bridge, testingOptions...)
}

func goBytes(p *C.uint8_t, n C.size_t) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return C.GoBytes(unsafe.Pointer(p), C.int(n))
}

func writeOut(out *C.uint8_t, b []byte) {
	copy(unsafe.Slice((*byte)(unsafe.Pointer(out)), len(b)), b)
}

func status(err error) C.int {
	if err != nil {
		return 0
	}
	return 1
}

//export sr25519_generate_from_seed
func sr25519_generate_from_seed(seed *C.uint8_t, seedLen C.size_t) C.uint64_t {
	// A wrong seed length is a caller bug and aborts the process.
	s := sr25519.MustSeed(goBytes(seed, seedLen))
	return C.uint64_t(reg().GenerateFromSeed(s))
}

//export sr25519_derive_hard
func sr25519_derive_hard(h C.uint64_t, junction *C.uint8_t, junctionLen C.size_t) C.uint64_t {
	child, err := reg().DeriveHard(bridge.Handle(h), goBytes(junction, junctionLen))
	if err != nil {
		return 0
	}
	return C.uint64_t(child)
}

//export sr25519_get_public_key
func sr25519_get_public_key(h C.uint64_t, out *C.uint8_t) C.int {
	pub, err := reg().PublicKey(bridge.Handle(h))
	if err == nil {
		writeOut(out, pub[:])
	}
	return status(err)
}

//export sr25519_sign_message
func sr25519_sign_message(h C.uint64_t, msg *C.uint8_t, msgLen C.size_t, out *C.uint8_t) C.int {
	sig, err := reg().SignMessage(bridge.Handle(h), goBytes(msg, msgLen))
	if err == nil {
		writeOut(out, sig[:])
	}
	return status(err)
}

//export sr25519_verify_message
func sr25519_verify_message(h C.uint64_t, sig *C.uint8_t, sigLen C.size_t, msg *C.uint8_t, msgLen C.size_t) C.int {
	ok, err := reg().VerifyMessage(bridge.Handle(h), goBytes(sig, sigLen), goBytes(msg, msgLen))
	if err != nil || !ok {
		return 0
	}
	return 1
}

//export sr25519_destroy
func sr25519_destroy(h C.uint64_t) {
	reg().Destroy(bridge.Handle(h))
}

func main() {}

//go:build sr25519_testing

package main

/*
#include <stdint.h>
*/
import "C"

import "sr25519-bridge/internal/bridge"

func init() {
	testingOptions = append(testingOptions, bridge.WithMockRNGAllowed())
}

// sr25519_use_mock_rng_for_testing makes signatures by h reproducible. It is
// only compiled into test builds (-tags sr25519_testing).
//
//export sr25519_use_mock_rng_for_testing
func sr25519_use_mock_rng_for_testing(h C.uint64_t) C.int {
	return status(reg().UseMockRNGForTesting(bridge.Handle(h)))
}

package sr25519

import "errors"

var (
	ErrBadKeyLen       = errors.New("bad key length")
	ErrBadSignatureLen = errors.New("bad signature length")
)

package crypto

import "runtime"

// Wipe zeroes the provided buffer. It is used on ephemeral private keys and
// decoded key material once they are no longer needed.
//
//go:noinline
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(&b)
}

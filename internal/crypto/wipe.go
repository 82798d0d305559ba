package crypto

import "runtime"

// Wipe zeroes b in place. Used on derived image keys and decrypted images
// once they have been handed off.
//
//go:noinline
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(b)
}

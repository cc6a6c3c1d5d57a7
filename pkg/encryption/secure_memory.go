package encryption

import (
	"crypto/subtle"
	"runtime"
)

// SecureZero overwrites b with zeros.
func SecureZero(b []byte) {
	if len(b) == 0 {
		return
	}
	zeros := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zeros)
	runtime.KeepAlive(b)
}

// SecureZeroMultiple zeros multiple byte slices.
func SecureZeroMultiple(slices ...[]byte) {
	for _, slice := range slices {
		SecureZero(slice)
	}
}

// SPDX-License-Identifier: MIT
// Package bitint provides power-of-two helpers for FFT and buffer sizing.
// All operations are branch-light, allocation-free and O(1).
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size. Exact powers of
// 2 are returned unchanged; zero and negative inputs return 1.
//
// The size-1 before bits.Len is what keeps exact powers of 2 from being
// doubled: Len(8)=4 would yield 16, Len(7)=3 yields 8.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2. A power of 2
// has exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Package systimer drives the machine timer of the QEMU virt CLINT: the
// free-running mtime counter and hart 0's mtimecmp compare register. A
// machine timer interrupt fires whenever mtime >= mtimecmp.
package systimer

import "unsafe"

const (
	// mtimeAddr is the 64-bit up-counter.
	mtimeAddr = uintptr(0x0200BFF8)

	// mtimecmpAddr is hart 0's 64-bit compare register.
	mtimecmpAddr = uintptr(0x02004000)

	// ClockHz is the mtime clock rate on QEMU virt.
	ClockHz = uint64(10_000_000)
)

var (
	read32Fn  = read32
	write32Fn = write32
)

func read32(addr uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(addr))
}

func write32(addr uintptr, v uint32) {
	*(*uint32)(unsafe.Pointer(addr)) = v
}

// Now returns the current mtime value. The two 32-bit halves cannot be read
// atomically, so the high word is re-read until it is stable across the low
// word read.
func Now() uint64 {
	for {
		hi := read32Fn(mtimeAddr + 4)
		lo := read32Fn(mtimeAddr)
		if read32Fn(mtimeAddr+4) == hi {
			return uint64(hi)<<32 | uint64(lo)
		}
	}
}

// Offset returns an mtime value the given number of seconds into the
// future.
func Offset(seconds uint64) uint64 {
	return Now() + seconds*ClockHz
}

// Set programs mtimecmp with a wake-up time. A naive two-store sequence
// could expose an intermediate value below mtime and fire a spurious
// interrupt, so the low word is first parked at the maximum, then the high
// word written, then the real low word.
func Set(wake uint64) {
	write32Fn(mtimecmpAddr, 0xFFFFFFFF)
	write32Fn(mtimecmpAddr+4, uint32(wake>>32))
	write32Fn(mtimecmpAddr, uint32(wake))
}

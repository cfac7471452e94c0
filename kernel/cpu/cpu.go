// Package cpu provides access to the RV32 control and status registers and
// the handful of machine-level primitives the kernel core depends on. The
// real implementations live in arch/riscv32 assembly; every consumer in the
// kernel reaches them through a mockable xxxFn package variable so the rest
// of the code base can be exercised by the host test suite.
package cpu

const (
	// SatpModeSv32 selects two-level Sv32 address translation when written
	// to the MODE bit (bit 31) of the satp register.
	SatpModeSv32 = uintptr(1) << 31

	// MstatusMPPMask covers the mstatus.MPP field (bits 11:12) holding the
	// privilege mode mret returns to.
	MstatusMPPMask = uintptr(3) << 11

	// MtvecModeDirect selects direct (non-vectored) trap dispatch when
	// or-ed into the mtvec base address. The base must be 4-byte aligned
	// so the mode bits fit in bits 0:1.
	MtvecModeDirect = uintptr(0)
)

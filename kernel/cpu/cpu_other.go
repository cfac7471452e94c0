//go:build !riscv32

package cpu

// Host stubs so the kernel packages and their tests build on the development
// machine. Code under test never reaches these: every call site goes through
// a package-level xxxFn variable that the tests replace.

func unsupported() {
	panic("cpu: not supported on this platform")
}

// WriteMtvec installs the machine trap vector base address.
func WriteMtvec(base uintptr) { unsupported() }

// ReadMscratch returns the machine scratch register.
func ReadMscratch() uintptr { unsupported(); return 0 }

// WriteMscratch sets the machine scratch register.
func WriteMscratch(v uintptr) { unsupported() }

// ReadMcause returns the cause of the last trap.
func ReadMcause() uintptr { unsupported(); return 0 }

// ReadMtval returns the trap accessory value (faulting address).
func ReadMtval() uintptr { unsupported(); return 0 }

// ReadMepc returns the faulting/resume program counter.
func ReadMepc() uintptr { unsupported(); return 0 }

// WriteMepc sets the program counter mret will return to.
func WriteMepc(v uintptr) { unsupported() }

// ReadMstatus returns the machine status register.
func ReadMstatus() uintptr { unsupported(); return 0 }

// WriteMstatus sets the machine status register.
func WriteMstatus(v uintptr) { unsupported() }

// WriteSatp sets the address translation root register.
func WriteSatp(v uintptr) { unsupported() }

// SFenceVMA flushes the TLB so page table changes become visible.
func SFenceVMA() { unsupported() }

// Wfi stalls the hart until the next interrupt.
func Wfi() { unsupported() }

// HeapStart returns the linker-provided _heap_start symbol.
func HeapStart() uintptr { unsupported(); return 0 }

// HeapSize returns the linker-provided _heap_size symbol.
func HeapSize() uintptr { unsupported(); return 0 }

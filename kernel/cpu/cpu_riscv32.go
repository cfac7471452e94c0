//go:build riscv32

package cpu

import _ "unsafe" // for go:linkname

// The bodies for the declarations below live in arch/riscv32/csr.S. Each is
// a two or three instruction csrr/csrw sequence; the go:linkname pragma binds
// the Go symbol to the assembly one the way the xv6 port does it.

//go:linkname WriteMtvec write_mtvec
func WriteMtvec(base uintptr)

//go:linkname ReadMscratch read_mscratch
func ReadMscratch() uintptr

//go:linkname WriteMscratch write_mscratch
func WriteMscratch(v uintptr)

//go:linkname ReadMcause read_mcause
func ReadMcause() uintptr

//go:linkname ReadMtval read_mtval
func ReadMtval() uintptr

//go:linkname ReadMepc read_mepc
func ReadMepc() uintptr

//go:linkname WriteMepc write_mepc
func WriteMepc(v uintptr)

//go:linkname ReadMstatus read_mstatus
func ReadMstatus() uintptr

//go:linkname WriteMstatus write_mstatus
func WriteMstatus(v uintptr)

//go:linkname WriteSatp write_satp
func WriteSatp(v uintptr)

//go:linkname SFenceVMA sfence_vma
func SFenceVMA()

//go:linkname Wfi wait_for_interrupt
func Wfi()

//go:linkname HeapStart heap_start
func HeapStart() uintptr

//go:linkname HeapSize heap_size
func HeapSize() uintptr

//go:build riscv32

package trap

import (
	_ "unsafe" // for go:linkname

	"mikros/kernel/proc"
)

// The symbols below are provided by arch/riscv32/trapstub.S.

//go:linkname trapStubAddr trap_stub_addr
func trapStubAddr() uintptr

//go:linkname launch launch
func launch(p *proc.Process)

var (
	trapStubAddrFn = trapStubAddr
	launchFn       = launch
)

//go:build !riscv32

package trap

import "mikros/kernel/proc"

// Host stand-ins for the assembly entry points; tests override the Fn vars
// before anything can reach them.

var (
	trapStubAddrFn = func() uintptr {
		panic("trap: stub not available on this platform")
	}

	launchFn = func(*proc.Process) {
		panic("trap: launch not available on this platform")
	}
)

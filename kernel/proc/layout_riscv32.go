//go:build riscv32

package proc

import (
	"unsafe"

	"mikros/kernel/mm"
)

// Compile-time layout asserts. Each pair only compiles if the two values are
// equal: a mismatch makes one of the expressions a negative constant, which
// cannot be converted to uint. The offsets below are mirrored by the
// constants in arch/riscv32/trapstub.S.
const (
	_ = uint(mm.PageSize - unsafe.Sizeof(Process{}))
	_ = uint(unsafe.Sizeof(Process{}) - mm.PageSize)

	_ = uint(unsafe.Offsetof(Process{}.PC) - 124)
	_ = uint(124 - unsafe.Offsetof(Process{}.PC))

	_ = uint(unsafe.Offsetof(Process{}.FaultCause) - 128)
	_ = uint(128 - unsafe.Offsetof(Process{}.FaultCause))

	_ = uint(unsafe.Offsetof(Process{}.Magic) - 132)
	_ = uint(132 - unsafe.Offsetof(Process{}.Magic))

	// The stack must run all the way to the page boundary.
	_ = uint(unsafe.Offsetof(Process{}.Stack) + stackBytes - mm.PageSize)
	_ = uint(mm.PageSize - unsafe.Offsetof(Process{}.Stack) - stackBytes)
)

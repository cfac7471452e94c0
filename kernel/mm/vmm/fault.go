package vmm

import (
	"math"

	"mikros/kernel/kfmt"
	"mikros/kernel/proc"
)

// MaxStack caps how far the demand-grown user stack can reach below the top
// of the address space.
const MaxStack = uintptr(8 << 20)

var createPageFn = PageTable.CreatePage

// PageFaultHandler implements the user stack growth policy. It is
// registered for the instruction, load and store page fault trap kinds.
//
// The faulting address comes from the process's recorded fault cause. If it
// lies in [sp, 2^32) while sp itself is within MaxStack of the top of the
// address space, the fault is a legitimate stack access: a fresh user
// read/write page is mapped at the faulting address and the process
// resumes. Everything else is an illegal access and kills the process. The
// comparisons are unsigned throughout.
func PageFaultHandler(p *proc.Process) {
	var (
		faultAddr = uintptr(p.FaultCause)
		sp        = uintptr(p.Saved[proc.RegSP])
	)

	if faultAddr >= sp && sp >= math.MaxUint32-MaxStack {
		_, err := createPageFn(PageTableAt(p.Root), faultAddr, FlagRead|FlagWrite|FlagUser)
		if err == nil {
			return
		}

		// Out of memory while growing the stack; the process is killed
		// rather than retried.
		kfmt.Printf("[vmm] pid %d (%s): %s\n", uint16(p.ID), p.NameString(), err.Message)
	}

	kfmt.Printf("[vmm] pid %d (%s): illegal access at 0x%8x, killing process\n",
		uint16(p.ID), p.NameString(), uint32(faultAddr))
	p.State = proc.Dying
}

// Package trap is the machine-mode trap core: the trap kind encoding, the
// handler registry and the dispatch step that runs between the assembly
// stub's save and restore halves. The stub itself lives in
// arch/riscv32/trapstub.S; by the time Go code runs here the faulting
// process's registers, pc and fault cause are already parked in its record
// and sp points at the record's kernel stack.
package trap

import (
	"unsafe"

	"mikros/kernel"
	"mikros/kernel/cpu"
	"mikros/kernel/kfmt"
	"mikros/kernel/mm/vmm"
	"mikros/kernel/proc"
	"mikros/kernel/sched"
)

// Kind identifies a trap cause: exception codes 0-15 as mcause reports
// them, with interrupt causes folded in at a 16 offset.
type Kind uint8

const (
	InstrAddrMisaligned Kind = iota
	InstrAccessFault
	IllegalInstruction
	Breakpoint
	LoadAddrMisaligned
	LoadAccessFault
	StoreAddrMisaligned
	StoreAccessFault
	EcallFromU
	EcallFromS
	_
	EcallFromM
	InstrPageFault
	LoadPageFault
	_
	StorePageFault
)

// interruptOffset folds the mcause interrupt bit into the Kind space.
const interruptOffset = 16

const (
	SupervisorSoftInt  = Kind(interruptOffset + 1)
	MachineSoftInt     = Kind(interruptOffset + 3)
	SupervisorTimerInt = Kind(interruptOffset + 5)
	MachineTimerInt    = Kind(interruptOffset + 7)
	SupervisorExtInt   = Kind(interruptOffset + 9)
	MachineExtInt      = Kind(interruptOffset + 11)
)

const numKinds = 32

// mcauseInterrupt is the interrupt bit of mcause on RV32.
const mcauseInterrupt = uintptr(1) << 31

// Handler reacts to one trap kind. It may mutate the process's state,
// saved registers or address space; the scheduling step that follows
// decides who runs next based on the state it leaves behind.
type Handler func(*proc.Process)

var (
	// ErrHandlerAlreadyRegistered is returned when a second handler is
	// installed for the same trap kind.
	ErrHandlerAlreadyRegistered = &kernel.Error{Module: "trap", Message: "a handler is already registered for this trap kind"}

	errNoHandler      = &kernel.Error{Module: "trap", Message: "trap with no registered handler"}
	errInvalidRunning = &kernel.Error{Module: "trap", Message: "mscratch does not point at a valid process"}

	handlers [numKinds]Handler

	// The CSR touchpoints are mocked by tests.
	readMcauseFn    = cpu.ReadMcause
	writeMscratchFn = cpu.WriteMscratch
	writeMtvecFn    = cpu.WriteMtvec

	nextFn     = sched.Next
	activateFn = func(p *proc.Process) {
		vmm.PageTableAt(p.Root).Activate()
	}
)

// kindFromMcause decodes mcause into a Kind: the low four bits carry the
// cause code, the top bit selects the interrupt half of the space.
func kindFromMcause(mcause uintptr) Kind {
	kind := Kind(mcause & 0xF)
	if mcause&mcauseInterrupt != 0 {
		kind += interruptOffset
	}
	return kind
}

// Register installs handler for the given trap kind. Exactly one handler
// may be registered per kind.
func Register(kind Kind, handler Handler) *kernel.Error {
	if handlers[kind] != nil {
		return ErrHandlerAlreadyRegistered
	}
	handlers[kind] = handler
	return nil
}

// Init points mtvec at the assembly stub in direct dispatch mode and clears
// the handler registry.
func Init() {
	for i := range handlers {
		handlers[i] = nil
	}
	writeMtvecFn(trapStubAddrFn() | cpu.MtvecModeDirect)
}

// dispatch is called by the trap stub with the interrupted process once its
// context is saved. It routes the trap to the registered handler, asks the
// scheduler for the next process, activates that process's address space
// and leaves its record in mscratch for the stub's restore half. A trap
// kind nobody registered for is a kernel bug.
//
//export kernel_trap_handler
func dispatch(running *proc.Process) {
	kind := kindFromMcause(readMcauseFn())

	handler := handlers[kind]
	if handler == nil {
		kfmt.Printf("[trap] no handler for trap kind %d (pid %d, pc 0x%8x)\n",
			uint8(kind), uint16(running.ID), running.PC)
		panic(errNoHandler)
	}

	handler(running)

	next := nextFn(running)
	activateFn(next)
	writeMscratchFn(uintptr(unsafe.Pointer(next)))
}

// invalidRunning is the stub's panic path: the pointer it found in mscratch
// failed validation (out of kernel range, or the magic sentinel is gone).
// Memory corruption this deep is unrecoverable; report on the boot stack
// and halt.
//
//export invalid_running
func invalidRunning(pc, badPtr uintptr) {
	kfmt.Printf("[trap] invalid running process 0x%8x at pc 0x%8x\n", badPtr, pc)
	panic(errInvalidRunning)
}

// Launch performs the one-shot first entry into user mode: it activates the
// process's address space and hands the record to the assembly launch path,
// which seeds mscratch, mepc and mstatus.MPP, loads the saved registers and
// executes mret. It is the only transition to user code that does not pass
// through the trap stub.
func Launch(p *proc.Process) {
	activateFn(p)
	launchFn(p)
}

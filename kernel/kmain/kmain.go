// Package kmain wires the kernel together. Boot assembly parks the
// secondary harts, sets up the boot stack and calls in here with the
// device tree pointer; Kmain never returns.
package kmain

import (
	"mikros/kernel/driver/systimer"
	"mikros/kernel/driver/uart"
	"mikros/kernel/image"
	"mikros/kernel/kfmt"
	"mikros/kernel/mm/pmm"
	"mikros/kernel/mm/vmm"
	"mikros/kernel/sched"
	"mikros/kernel/trap"
)

// printFDT selects whether the flattened device tree gets pretty-printed at
// boot by the external FDT printer before the kernel proper starts.
const printFDT = false

// Kmain is the Go-level kernel entry point. It brings the subsystems up in
// dependency order, creates the initial user processes and performs the
// one-shot launch into user mode; every later kernel entry goes through the
// trap stub.
func Kmain(fdtb uintptr) {
	kfmt.SetOutputSink(uart.Console)
	kfmt.Printf("[kmain] mikros starting\n")

	if printFDT {
		// The FDT pretty-printer is an external collaborator; the blob
		// pointer is otherwise ignored.
		_ = fdtb
	}

	trap.Init()

	if err := pmm.Init(); err != nil {
		panic(err)
	}
	if err := sched.Init(); err != nil {
		panic(err)
	}

	mustRegister(trap.MachineTimerInt, trap.TimerHandler)
	mustRegister(trap.InstrPageFault, vmm.PageFaultHandler)
	mustRegister(trap.LoadPageFault, vmm.PageFaultHandler)
	mustRegister(trap.StorePageFault, vmm.PageFaultHandler)

	// User programs expect the UART data register mapped at a well-known
	// virtual address.
	console := []vmm.DeviceMapping{{
		VA:    image.UARTVAddr,
		Frame: uart.Frame(),
		Flags: vmm.FlagRead | vmm.FlagWrite | vmm.FlagUser,
	}}

	if _, err := sched.Create("hello", image.Hello(), sched.PriorityUser, console); err != nil {
		panic(err)
	}
	if _, err := sched.Create("fib", image.Fib(), sched.PriorityUser, console); err != nil {
		panic(err)
	}

	systimer.Set(systimer.Offset(1))

	first := sched.Next(sched.Idle())
	kfmt.Printf("[kmain] launching pid %d (%s)\n", uint16(first.ID), first.NameString())
	trap.Launch(first)
}

func mustRegister(kind trap.Kind, handler trap.Handler) {
	if err := trap.Register(kind, handler); err != nil {
		panic(err)
	}
}

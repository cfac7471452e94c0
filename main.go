package main

import "mikros/kernel/kmain"

// entry is called by arch/riscv32/boot.S on hart 0 with the device tree
// blob pointer in a0; the other harts never leave the boot spin loop.
//
//export entry
func entry(fdtb uintptr) {
	kmain.Kmain(fdtb)
}

func main() {}

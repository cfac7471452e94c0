package image

// UARTVAddr is the virtual address user programs expect the UART data
// register to be mapped at, by convention.
const UARTVAddr = 0x5000

// Idle returns the idle process image: a single instruction that jumps to
// itself. The scheduler resumes it whenever no other process is ready.
func Idle() []byte {
	return writeELF([]uint32{
		encodeJAL(regZero, 0),
	})
}

// printProgram assembles a program that stores each byte of msg to the UART
// data register mapped at UARTVAddr, then appends the supplied trailer
// instructions.
func printProgram(msg string, trailer ...uint32) []byte {
	code := []uint32{
		encodeLUI(regA0, UARTVAddr>>12), // a0 = 0x5000
	}
	for i := 0; i < len(msg); i++ {
		code = append(code,
			encodeADDI(regA1, regZero, int32(msg[i])),
			encodeSB(regA0, regA1, 0),
		)
	}
	return writeELF(append(code, trailer...))
}

// Hello returns the hello image. After printing its greeting it jumps to
// virtual address zero; nothing is mapped there, the resulting fetch fault
// is far from the stack and the kernel kills the process.
func Hello() []byte {
	const msg = "Hello there\r\n"

	// The jump sits after the lui plus two instructions per byte.
	jumpPC := int32(loadVAddr + 4*(1+2*len(msg)))
	return printProgram(msg, encodeJAL(regZero, -jumpPC))
}

// Fib returns the Fibonacci image: it prints the precomputed Fib(40) line
// and then parks itself in a tight self-loop; timer preemption requeues it
// like any other ready process.
func Fib() []byte {
	return printProgram("Fib(40) = 102334155\r\n", encodeJAL(regZero, 0))
}

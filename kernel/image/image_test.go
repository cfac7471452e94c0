package image

import (
	"encoding/binary"
	"testing"
)

func TestInstructionEncodings(t *testing.T) {
	// Expected words cross-checked against an RV32 assembler.
	specs := []struct {
		descr string
		got   uint32
		exp   uint32
	}{
		{"lui a0, 0x5", encodeLUI(regA0, 5), 0x00005537},
		{"addi a1, zero, 72", encodeADDI(regA1, regZero, 'H'), 0x04800593},
		{"sb a1, 0(a0)", encodeSB(regA0, regA1, 0), 0x00B50023},
		{"sb a1, -1(a0)", encodeSB(regA0, regA1, -1), 0xFEB50FA3},
		{"jal zero, 0", encodeJAL(regZero, 0), 0x0000006F},
		{"jal zero, -4", encodeJAL(regZero, -4), 0xFFDFF06F},
		{"jal zero, 2048", encodeJAL(regZero, 2048), 0x0010006F},
	}

	for specIndex, spec := range specs {
		if spec.got != spec.exp {
			t.Errorf("[spec %d] expected %s to encode as %8x; got %8x", specIndex, spec.descr, spec.exp, spec.got)
		}
	}
}

func TestWriteELFLayout(t *testing.T) {
	code := []uint32{encodeJAL(regZero, 0)}
	img := writeELF(code)
	le := binary.LittleEndian

	if len(img) != codeOffset+4 {
		t.Fatalf("expected image of %d bytes; got %d", codeOffset+4, len(img))
	}

	if img[0] != 0x7F || img[1] != 'E' || img[2] != 'L' || img[3] != 'F' {
		t.Fatal("expected the image to start with the ELF magic")
	}
	if img[4] != 1 || img[5] != 1 || img[6] != 1 {
		t.Error("expected a class-32, little-endian, version-1 ident")
	}

	specs := []struct {
		descr string
		got   uint32
		exp   uint32
	}{
		{"e_type", uint32(le.Uint16(img[16:])), 2},
		{"e_machine", uint32(le.Uint16(img[18:])), elfMachRISCV},
		{"e_entry", le.Uint32(img[24:]), loadVAddr},
		{"e_phoff", le.Uint32(img[28:]), headerSize},
		{"e_phnum", uint32(le.Uint16(img[44:])), 1},
		{"p_type", le.Uint32(img[headerSize:]), 1},
		{"p_offset", le.Uint32(img[headerSize+4:]), codeOffset},
		{"p_vaddr", le.Uint32(img[headerSize+8:]), loadVAddr},
		{"p_filesz", le.Uint32(img[headerSize+16:]), 4},
		{"p_flags", le.Uint32(img[headerSize+24:]), segRead | segExec},
	}

	for specIndex, spec := range specs {
		if spec.got != spec.exp {
			t.Errorf("[spec %d] expected %s to be %x; got %x", specIndex, spec.descr, spec.exp, spec.got)
		}
	}

	if got := le.Uint32(img[codeOffset:]); got != code[0] {
		t.Errorf("expected the code to follow the headers; got %8x", got)
	}
}

func TestProgramImages(t *testing.T) {
	le := binary.LittleEndian

	t.Run("idle is a self loop", func(t *testing.T) {
		img := Idle()
		if got := le.Uint32(img[codeOffset:]); got != 0x0000006F {
			t.Errorf("expected the idle body to be jal zero, 0; got %8x", got)
		}
	})

	t.Run("hello prints and jumps to zero", func(t *testing.T) {
		const msg = "Hello there\r\n"
		img := Hello()

		if got := le.Uint32(img[codeOffset:]); got != encodeLUI(regA0, UARTVAddr>>12) {
			t.Fatalf("expected hello to load the UART address first; got %8x", got)
		}

		for i := 0; i < len(msg); i++ {
			load := le.Uint32(img[codeOffset+4*(1+2*i):])
			store := le.Uint32(img[codeOffset+4*(2+2*i):])

			if exp := encodeADDI(regA1, regZero, int32(msg[i])); load != exp {
				t.Errorf("expected byte %d to load %q; got %8x", i, msg[i], load)
			}
			if exp := encodeSB(regA0, regA1, 0); store != exp {
				t.Errorf("expected byte %d to be stored to the UART; got %8x", i, store)
			}
		}

		// The final jump must target absolute address zero.
		jumpIndex := 1 + 2*len(msg)
		jumpPC := int32(loadVAddr + 4*jumpIndex)
		if got := le.Uint32(img[codeOffset+4*jumpIndex:]); got != encodeJAL(regZero, -jumpPC) {
			t.Errorf("expected hello to end with a jump to VA 0; got %8x", got)
		}
	})

	t.Run("fib prints the result", func(t *testing.T) {
		img := Fib()
		const msg = "Fib(40) = 102334155\r\n"

		var out []byte
		for i := 0; i < len(msg); i++ {
			load := le.Uint32(img[codeOffset+4*(1+2*i):])
			out = append(out, byte(load>>20))
		}
		if string(out) != msg {
			t.Errorf("expected fib to print %q; got %q", msg, out)
		}
	})
}

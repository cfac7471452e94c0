package image

import "encoding/binary"

// Fixed layout of the generated images: the single LOAD segment follows the
// ELF header (52 bytes) and its program header (32 bytes) directly, and is
// linked at the conventional 0x10000 base plus that file offset.
const (
	headerSize   = 52
	phdrSize     = 32
	codeOffset   = headerSize + phdrSize
	loadVAddr    = 0x10000 + codeOffset
	elfMachRISCV = 0x00F3
)

// Segment permission flags as they appear in p_flags.
const (
	segExec  = 1
	segWrite = 2
	segRead  = 4
)

// writeELF wraps code into a statically linked RV32 little-endian
// executable with a single LOAD segment mapped at loadVAddr, which is also
// the entry point.
func writeELF(code []uint32) []byte {
	buf := make([]byte, codeOffset+4*len(code))
	le := binary.LittleEndian

	// e_ident
	copy(buf, []byte{0x7F, 'E', 'L', 'F'})
	buf[4] = 1 // ELFCLASS32
	buf[5] = 1 // ELFDATA2LSB
	buf[6] = 1 // EV_CURRENT

	le.PutUint16(buf[16:], 2) // ET_EXEC
	le.PutUint16(buf[18:], elfMachRISCV)
	le.PutUint32(buf[20:], 1) // e_version
	le.PutUint32(buf[24:], loadVAddr)
	le.PutUint32(buf[28:], headerSize) // e_phoff
	le.PutUint16(buf[40:], headerSize) // e_ehsize
	le.PutUint16(buf[42:], phdrSize)   // e_phentsize
	le.PutUint16(buf[44:], 1)          // e_phnum

	// program header
	ph := buf[headerSize:]
	le.PutUint32(ph[0:], 1) // PT_LOAD
	le.PutUint32(ph[4:], codeOffset)
	le.PutUint32(ph[8:], loadVAddr)
	le.PutUint32(ph[12:], loadVAddr)
	le.PutUint32(ph[16:], uint32(4*len(code))) // p_filesz
	le.PutUint32(ph[20:], uint32(4*len(code))) // p_memsz
	le.PutUint32(ph[24:], segRead|segExec)
	le.PutUint32(ph[28:], 0x1000) // p_align

	for i, instr := range code {
		le.PutUint32(buf[codeOffset+4*i:], instr)
	}

	return buf
}

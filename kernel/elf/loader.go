// Package elf places statically linked RV32 ELF32 executables into a target
// address space. The parser works directly on the fixed-size header records
// of the format; the loader allocates destination pages through the target
// page table and is careful to split copies at page boundaries so every
// memcpy lands inside a single freshly mapped physical page.
package elf

import (
	"encoding/binary"
	"unsafe"

	"mikros/kernel"
	"mikros/kernel/mm"
	"mikros/kernel/mm/vmm"
)

var (
	// ErrInvalidMagic is returned when the binary does not start with
	// the ELF magic bytes.
	ErrInvalidMagic = &kernel.Error{Module: "elf", Message: "invalid magic"}

	// ErrUnsupportedBinary is returned for well-formed ELF files the
	// loader cannot place: wrong class, endianness, machine, version or
	// type.
	ErrUnsupportedBinary = &kernel.Error{Module: "elf", Message: "unsupported binary"}

	// ErrSegmentOffsetOutsideBinary is returned when a program header or
	// segment payload lies beyond the end of the binary.
	ErrSegmentOffsetOutsideBinary = &kernel.Error{Module: "elf", Message: "segment offset outside binary"}
)

const (
	headerSize = 52
	phdrSize   = 32

	classELF32    = 1
	dataLE        = 1
	typeExec      = 2
	machineRISCV  = 0x00F3
	versionActive = 1

	ptLoad = 1

	segExec  = 1
	segWrite = 2
	segRead  = 4
)

// Load validates binary and installs its LOAD segments into pt, allocating
// user pages on demand. It returns the entry point virtual address.
func Load(pt vmm.PageTable, bin []byte) (uintptr, *kernel.Error) {
	if len(bin) < 4 || bin[0] != 0x7F || bin[1] != 'E' || bin[2] != 'L' || bin[3] != 'F' {
		return 0, ErrInvalidMagic
	}
	if len(bin) < headerSize {
		return 0, ErrUnsupportedBinary
	}

	le := binary.LittleEndian
	switch {
	case bin[4] != classELF32,
		bin[5] != dataLE,
		bin[6] != versionActive,
		le.Uint16(bin[18:]) != machineRISCV,
		le.Uint32(bin[20:]) != versionActive,
		le.Uint16(bin[16:]) != typeExec:
		return 0, ErrUnsupportedBinary
	}

	var (
		entry     = le.Uint32(bin[24:])
		phOff     = uint64(le.Uint32(bin[28:]))
		phEntSize = le.Uint16(bin[42:])
		phNum     = le.Uint16(bin[44:])
	)
	if phEntSize != phdrSize {
		return 0, ErrUnsupportedBinary
	}

	for i := uint16(0); i < phNum; i++ {
		off := phOff + uint64(i)*phdrSize
		if off+phdrSize > uint64(len(bin)) {
			return 0, ErrSegmentOffsetOutsideBinary
		}
		if err := loadSegment(pt, bin, bin[off:off+phdrSize]); err != nil {
			return 0, err
		}
	}

	return uintptr(entry), nil
}

// loadSegment copies one program header's file payload into the target
// address space.
func loadSegment(pt vmm.PageTable, bin, phdr []byte) *kernel.Error {
	le := binary.LittleEndian

	if le.Uint32(phdr[0:]) != ptLoad {
		return nil
	}

	segFlags := le.Uint32(phdr[24:])
	perms := segFlags & (segRead | segWrite | segExec)
	if perms == 0 {
		// The hardware rejects permission-less leaves, so the loader
		// refuses to install such a segment rather than map it.
		return nil
	}
	if perms&segWrite != 0 {
		// Granting extra permissions is allowed; write-only pages are
		// not representable.
		perms |= segRead
	}

	var (
		fileSz = uint64(le.Uint32(phdr[16:]))
		segOff = uint64(le.Uint32(phdr[4:]))
		vaddr  = uintptr(le.Uint32(phdr[8:]))
	)
	// Bytes beyond fileSz (BSS) are left unmapped; demand growth is the
	// user stack's story, not the loader's.
	if fileSz == 0 {
		return nil
	}
	if segOff+fileSz > uint64(len(bin)) {
		return ErrSegmentOffsetOutsideBinary
	}

	var flags vmm.EntryFlag = vmm.FlagUser
	if perms&segRead != 0 {
		flags |= vmm.FlagRead
	}
	if perms&segWrite != 0 {
		flags |= vmm.FlagWrite
	}
	if perms&segExec != 0 {
		flags |= vmm.FlagExec
	}

	src := bin[segOff : segOff+fileSz]
	for len(src) > 0 {
		phys, err := pt.CreatePage(vaddr, flags)
		if err != nil {
			return err
		}

		// Copy up to the next page boundary so the destination stays
		// inside the page just mapped.
		chunk := mm.PageSize - mm.PageOffset(vaddr)
		if chunk > uintptr(len(src)) {
			chunk = uintptr(len(src))
		}

		frame := mm.FrameFromAddress(phys)
		dst := uintptr(mm.FramePointer(frame)) + mm.PageOffset(phys)
		kernel.Memcopy(uintptr(unsafe.Pointer(&src[0])), dst, chunk)

		vaddr += chunk
		src = src[chunk:]
	}

	return nil
}

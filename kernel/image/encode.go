// Package image builds the program images the kernel embeds: the idle
// process and the initial user programs. Each image is a statically linked
// RV32 ELF32 executable assembled from a handful of RV32I instructions, so
// the package carries a minimal instruction encoder and ELF writer instead
// of shipping opaque binary blobs.
package image

// RV32I register numbers used by the embedded programs.
const (
	regZero = 0
	regA0   = 10
	regA1   = 11
)

// lui rd, imm20: rd = imm20 << 12.
func encodeLUI(rd, imm20 uint32) uint32 {
	return imm20<<12 | rd<<7 | 0x37
}

// addi rd, rs1, imm12.
func encodeADDI(rd, rs1 uint32, imm12 int32) uint32 {
	return uint32(imm12)&0xFFF<<20 | rs1<<15 | rd<<7 | 0x13
}

// sb rs2, imm12(rs1).
func encodeSB(rs1, rs2 uint32, imm12 int32) uint32 {
	imm := uint32(imm12) & 0xFFF
	return imm>>5<<25 | rs2<<20 | rs1<<15 | imm&0x1F<<7 | 0x23
}

// jal rd, offset. The offset is relative to the instruction's own address
// and must be even; the J-type immediate scrambling is the usual
// [20|10:1|11|19:12] layout.
func encodeJAL(rd uint32, offset int32) uint32 {
	imm := uint32(offset)
	return imm>>20&1<<31 |
		imm>>1&0x3FF<<21 |
		imm>>11&1<<20 |
		imm>>12&0xFF<<12 |
		rd<<7 | 0x6F
}

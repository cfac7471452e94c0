package vmm

const (
	// tableEntries is the number of entries in a page table at either
	// level of the Sv32 scheme. A table is exactly one page.
	tableEntries = 1024

	// level1Shift extracts VA[31:22], the level-one table index.
	level1Shift = 22

	// level2Shift extracts VA[21:12], the level-two table index.
	level2Shift = 12

	// indexMask masks a shifted virtual address down to a table index.
	indexMask = tableEntries - 1

	// ppnShift is the position of the physical page number inside a page
	// table entry: PTE[31:10] holds PPN, PTE[9:8] is software-reserved,
	// PTE[7:0] are the flag bits.
	ppnShift = 10

	// maxFrame bounds the frame numbers this platform can address. Sv32
	// physical addresses are 34 bits wide but only the low 32 bits are
	// wired up here, leaving 20 usable PPN bits.
	maxFrame = 1 << 20

	// pteFrameLimit is the largest frame number a PTE can encode (22 PPN
	// bits).
	pteFrameLimit = 1 << 22
)

// EntryFlag describes a flag that can be applied to a page table entry.
type EntryFlag uint32

const (
	// FlagValid is set on every entry that takes part in translation.
	FlagValid EntryFlag = 1 << iota

	// FlagRead is set if the page can be read.
	FlagRead

	// FlagWrite is set if the page can be written to. Write-only leaves
	// (W without R) are reserved by the architecture.
	FlagWrite

	// FlagExec is set if the page can be executed.
	FlagExec

	// FlagUser is set if user-mode code can access this page.
	FlagUser

	// FlagGlobal marks a mapping present in every address space.
	FlagGlobal

	// FlagAccessed is normally maintained by hardware; leaves are
	// installed with it pre-set so the MMU never needs to update it.
	FlagAccessed

	// FlagDirty is pre-set on leaves for the same reason as FlagAccessed.
	FlagDirty
)

// flagPerms covers the bits callers may choose per mapping; everything else
// is managed by the vmm code itself.
const flagPerms = FlagRead | FlagWrite | FlagExec | FlagUser

// flagLeaf marks an entry as a leaf: any of R/W/X set. A valid entry with
// none of them set is a pointer to a level-two table.
const flagLeaf = FlagRead | FlagWrite | FlagExec

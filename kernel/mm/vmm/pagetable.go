// Package vmm manages Sv32 two-level page tables: per-process root tables,
// leaf creation and replacement, read-only translation, activation through
// satp and the demand-grown user stack policy. The kernel itself runs in
// machine mode where loads and stores bypass translation, so table memory is
// manipulated through physical frame pointers.
package vmm

import (
	"mikros/kernel"
	"mikros/kernel/cpu"
	"mikros/kernel/mm"
)

var (
	// ErrNotMapped is returned when trying to look up a virtual address
	// that no valid leaf covers.
	ErrNotMapped = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}

	errSuperpage    = &kernel.Error{Module: "vmm", Message: "level-one leaf (superpage) found during walk"}
	errBadLeafPerms = &kernel.Error{Module: "vmm", Message: "leaf permissions must include R, or X without W"}
	errPhysRange    = &kernel.Error{Module: "vmm", Message: "physical address beyond the 32-bit addressable range"}

	// writeSatpFn/sfenceFn are used by tests to override the privileged
	// satp/TLB operations which fault on the host.
	writeSatpFn = cpu.WriteSatp
	sfenceFn    = cpu.SFenceVMA
)

// table overlays a page table on one physical page.
type table [tableEntries]Entry

func tableAt(frame mm.Frame) *table {
	if frame >= maxFrame {
		panic(errPhysRange)
	}
	return (*table)(mm.FramePointer(frame))
}

// PageTable is a handle on an Sv32 root table, identified by the physical
// frame the table lives in. The handle is what gets stored on a Process
// record; all methods work on inactive tables since machine-mode accesses
// are not translated.
type PageTable struct {
	root mm.Frame
}

// NewPageTable allocates a zero-filled root table. Every entry starts
// invalid.
func NewPageTable() (PageTable, *kernel.Error) {
	frame, err := mm.AllocFrame()
	if err != nil {
		return PageTable{}, err
	}
	return PageTable{root: frame}, nil
}

// PageTableAt reconstructs a handle from a root frame previously obtained
// through Root.
func PageTableAt(frame mm.Frame) PageTable {
	return PageTable{root: frame}
}

// Root returns the physical frame of the root table.
func (pt PageTable) Root() mm.Frame {
	return pt.root
}

// walk returns the level-two entry that translates va. With alloc set, a
// missing level-two table is created on the way; without it, walk returns
// ErrNotMapped instead. Finding a level-one leaf aborts the kernel:
// superpages are forbidden in this design.
func (pt PageTable) walk(va uintptr, alloc bool) (*Entry, *kernel.Error) {
	l1 := &tableAt(pt.root)[(va>>level1Shift)&indexMask]

	if !l1.HasFlags(FlagValid) {
		if !alloc {
			return nil, ErrNotMapped
		}

		frame, err := mm.AllocFrame()
		if err != nil {
			return nil, err
		}

		// The new table is zero-filled by the allocator so all of its
		// entries are already invalid.
		*l1 = 0
		l1.SetFrame(frame)
		l1.SetFlags(FlagValid)
	} else if l1.IsLeaf() {
		panic(errSuperpage)
	}

	return &tableAt(l1.Frame())[(va>>level2Shift)&indexMask], nil
}

// checkLeafPerms panics unless perms describe a leaf the hardware accepts:
// readable, or execute-only. Write-without-read is reserved and a
// permission-less leaf would be treated as a table pointer.
func checkLeafPerms(perms EntryFlag) {
	if perms.readable() || (perms&FlagExec != 0 && perms&FlagWrite == 0) {
		return
	}
	panic(errBadLeafPerms)
}

func (f EntryFlag) readable() bool { return f&FlagRead != 0 }

// CreatePage ensures a leaf exists for va and returns the physical address
// va translates to. If no mapping exists a fresh zeroed page is allocated
// and installed with the given permissions; if one does, the permissions are
// unioned with the existing ones and the backing page is left alone. Callers
// that need strict replacement use SetMapping.
func (pt PageTable) CreatePage(va uintptr, perms EntryFlag) (uintptr, *kernel.Error) {
	perms &= flagPerms

	pte, err := pt.walk(va, true)
	if err != nil {
		return 0, err
	}

	if !pte.HasFlags(FlagValid) {
		// A fresh install carries the requested permissions alone, so
		// they must stand on their own.
		checkLeafPerms(perms)

		// A fresh level-two table installed by the walk above stays in
		// place if this allocation fails; an empty table is consistent,
		// a dangling leaf would not be.
		frame, allocErr := mm.AllocFrame()
		if allocErr != nil {
			return 0, allocErr
		}

		*pte = 0
		pte.SetFrame(frame)
		pte.SetFlags(perms | FlagValid | FlagAccessed | FlagDirty)
	} else {
		// Permissions grow monotonically: only the union has to form a
		// valid leaf, so adding a bare W to an existing R is fine.
		checkLeafPerms(pte.Perms() | perms)
		pte.SetFlags(perms)
	}

	return leafAddress(*pte, va)
}

// SetMapping installs a leaf for va pointing at an externally owned page,
// typically an MMIO region. An existing mapping is replaced outright: its
// permissions do not survive, and its backing page is returned to the page
// allocator if it came from there (device pages are left alone).
func (pt PageTable) SetMapping(va uintptr, frame mm.Frame, perms EntryFlag) *kernel.Error {
	perms &= flagPerms
	checkLeafPerms(perms)

	pte, err := pt.walk(va, true)
	if err != nil {
		return err
	}

	if pte.HasFlags(FlagValid) {
		if old := pte.Frame(); mm.OwnsFrame(old) {
			mm.FreeFrame(old)
		}
	}

	*pte = 0
	pte.SetFrame(frame)
	pte.SetFlags(perms | FlagValid | FlagAccessed | FlagDirty)
	return nil
}

// Translate returns the physical address va maps to, or ErrNotMapped. The
// walk is read-only and never allocates.
func (pt PageTable) Translate(va uintptr) (uintptr, *kernel.Error) {
	pte, err := pt.walk(va, false)
	if err != nil {
		return 0, err
	}

	if !pte.HasFlags(FlagValid) {
		return 0, ErrNotMapped
	}
	if !pte.IsLeaf() {
		// A valid permission-less entry at level two would be a third
		// translation level, which Sv32 does not have.
		panic(errSuperpage)
	}

	return leafAddress(*pte, va)
}

// leafAddress combines a leaf entry with the page offset of va, checking
// that the result stays inside the 32-bit addressable range.
func leafAddress(pte Entry, va uintptr) (uintptr, *kernel.Error) {
	frame := pte.Frame()
	if frame >= maxFrame {
		panic(errPhysRange)
	}
	return frame.Address() + mm.PageOffset(va), nil
}

// Activate points the MMU at this table: satp gets MODE=Sv32 plus the root
// PPN, followed by an sfence.vma so stale translations are dropped.
func (pt PageTable) Activate() {
	writeSatpFn(cpu.SatpModeSv32 | uintptr(pt.root))
	sfenceFn()
}

// Deactivate turns address translation off.
func Deactivate() {
	writeSatpFn(0)
	sfenceFn()
}

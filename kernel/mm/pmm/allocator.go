// Package pmm implements the kernel's physical page allocator. It carves a
// contiguous region, the kernel heap supplied by the linker, into page
// aligned 4 KiB slots tracked by a bitmap and hands them out zero-filled.
package pmm

import (
	"mikros/kernel"
	"mikros/kernel/cpu"
	"mikros/kernel/kfmt"
	"mikros/kernel/mm"
)

const (
	// maxHeapPages bounds the heap this allocator can manage (128 MiB,
	// the RAM configured for the QEMU virt machine) and sizes the static
	// bitmap so bookkeeping never allocates.
	maxHeapPages = 32768

	bitmapWords = maxHeapPages / 64
)

var (
	// ErrOutOfMemory is returned by AllocFrame when the heap region is
	// exhausted.
	ErrOutOfMemory = &kernel.Error{Module: "pmm", Message: "out of memory"}

	errBadRegion  = &kernel.Error{Module: "pmm", Message: "heap region smaller than one page"}
	errDoubleFree = &kernel.Error{Module: "pmm", Message: "freeing a frame that is not allocated"}
	errForeign    = &kernel.Error{Module: "pmm", Message: "freeing a frame outside the heap region"}

	// heapStartFn/heapSizeFn surface the linker symbols; tests replace
	// them with host-allocated regions.
	heapStartFn = cpu.HeapStart
	heapSizeFn  = cpu.HeapSize

	heapStart uintptr
	pageCount uintptr
	bitmap    [bitmapWords]uint64
)

// Init locates the kernel heap through the linker-provided symbols, resets
// the allocator bookkeeping and registers the allocator with the mm package.
func Init() *kernel.Error {
	if err := initRegion(heapStartFn(), heapSizeFn()); err != nil {
		return err
	}

	kfmt.Printf("[pmm] kernel heap: %d pages at 0x%8x\n", uint64(pageCount), heapStart)
	mm.SetFrameAllocator(AllocFrame, FreeFrame, Owns)
	return nil
}

// initRegion sets up the allocator over [start, start+size). The start is
// rounded up and the size down to page granularity.
func initRegion(start, size uintptr) *kernel.Error {
	alignedStart := (start + mm.PageSize - 1) & ^(mm.PageSize - 1)
	if size < alignedStart-start {
		return errBadRegion
	}
	size -= alignedStart - start

	count := size >> mm.PageShift
	if count == 0 {
		return errBadRegion
	}
	if count > maxHeapPages {
		count = maxHeapPages
	}

	heapStart = alignedStart
	pageCount = count
	for i := range bitmap {
		bitmap[i] = 0
	}
	return nil
}

// AllocFrame reserves the first free page of the heap, zero-fills it and
// returns its frame number. It fails with ErrOutOfMemory once every slot is
// taken.
func AllocFrame() (mm.Frame, *kernel.Error) {
	for word := uintptr(0); word<<6 < pageCount; word++ {
		if bitmap[word] == ^uint64(0) {
			continue
		}

		for bit := uintptr(0); bit < 64; bit++ {
			index := word<<6 + bit
			if index >= pageCount {
				break
			}
			if bitmap[word]&(1<<bit) != 0 {
				continue
			}

			bitmap[word] |= 1 << bit
			frame := mm.FrameFromAddress(heapStart + index<<mm.PageShift)
			kernel.Memset(uintptr(mm.FramePointer(frame)), 0, mm.PageSize)
			return frame, nil
		}
	}

	return mm.InvalidFrame, ErrOutOfMemory
}

// FreeFrame returns a previously allocated frame to the pool. Freeing a
// frame the allocator does not own, or one that is already free, is a kernel
// bug.
func FreeFrame(f mm.Frame) {
	if !Owns(f) {
		panic(errForeign)
	}

	index := (f.Address() - heapStart) >> mm.PageShift
	word, bit := index>>6, index&63
	if bitmap[word]&(1<<bit) == 0 {
		panic(errDoubleFree)
	}
	bitmap[word] &^= 1 << bit
}

// Owns reports whether f lies inside the heap region this allocator manages.
// Higher layers use it to tell allocator pages apart from device pages when
// remapping.
func Owns(f mm.Frame) bool {
	addr := f.Address()
	return addr >= heapStart && addr < heapStart+pageCount<<mm.PageShift
}

// Package mm provides the shared memory primitives of the kernel: physical
// frame and virtual page numbers plus the pluggable hooks through which the
// paging code reaches the active frame allocator and converts frames into
// pointers it can dereference.
package mm

import (
	"unsafe"

	"mikros/kernel"
)

// Frame describes a physical memory page index. On Sv32 a frame number
// occupies up to 22 bits; physical addresses are 34 bits wide but only the
// low 32 are addressable on this platform. The conversions here do not
// check the range; the vmm code panics on frames beyond the 32-bit
// addressable range.
type Frame uintptr

const (
	// InvalidFrame is returned by page allocators when they fail to
	// reserve the requested frame.
	InvalidFrame = ^Frame(0)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns the physical memory address this Frame starts at.
func (f Frame) Address() uintptr {
	return uintptr(f << PageShift)
}

// FrameFromAddress returns the Frame that contains the given physical
// address. Addresses that are not page-aligned are rounded down.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame((physAddr & ^(PageSize - 1)) >> PageShift)
}

// Page describes a virtual memory page index.
type Page uintptr

// Address returns the virtual memory address this Page starts at.
func (p Page) Address() uintptr {
	return uintptr(p << PageShift)
}

// PageFromAddress returns the Page that contains the given virtual address.
// Addresses that are not page-aligned are rounded down.
func PageFromAddress(virtAddr uintptr) Page {
	return Page((virtAddr & ^(PageSize - 1)) >> PageShift)
}

// PageOffset returns the offset of addr within its page.
func PageOffset(addr uintptr) uintptr {
	return addr & (PageSize - 1)
}

// FrameAllocatorFn is a function that can allocate physical frames. Frames
// handed out must be zero-filled.
type FrameAllocatorFn func() (Frame, *kernel.Error)

// FrameFreeFn is a function that returns a frame to its allocator.
type FrameFreeFn func(Frame)

// FrameOwnerFn reports whether a frame was handed out by the allocator, as
// opposed to naming an externally owned page such as an MMIO region.
type FrameOwnerFn func(Frame) bool

var (
	frameAllocator FrameAllocatorFn
	frameFree      FrameFreeFn
	frameOwner     FrameOwnerFn

	// framePointerFn converts a frame number into a pointer the kernel
	// can dereference. The kernel runs in machine mode where loads and
	// stores bypass translation, so the default conversion is the
	// identity; tests override it to direct synthetic frames at
	// host-allocated backing memory.
	framePointerFn = func(f Frame) unsafe.Pointer {
		return unsafe.Pointer(f.Address())
	}
)

// SetFrameAllocator registers the allocator functions used by the vmm code
// whenever physical frames need to be allocated, released or classified.
func SetFrameAllocator(alloc FrameAllocatorFn, free FrameFreeFn, owns FrameOwnerFn) {
	frameAllocator = alloc
	frameFree = free
	frameOwner = owns
}

// AllocFrame allocates a zeroed physical frame using the currently active
// frame allocator.
func AllocFrame() (Frame, *kernel.Error) { return frameAllocator() }

// FreeFrame returns a frame to the currently active frame allocator.
func FreeFrame(f Frame) { frameFree(f) }

// OwnsFrame reports whether the active allocator handed out f.
func OwnsFrame(f Frame) bool { return frameOwner(f) }

// SetFramePointer overrides the frame to pointer conversion. Tests use this
// to back synthetic frame numbers with host memory.
func SetFramePointer(fn func(Frame) unsafe.Pointer) { framePointerFn = fn }

// FramePointer returns a pointer to the memory backing frame f.
func FramePointer(f Frame) unsafe.Pointer { return framePointerFn(f) }

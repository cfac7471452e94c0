// Package list implements an intrusive doubly linked list. The list hooks
// are embedded inside the records that live on the list so enqueueing and
// dequeueing never allocate; the enclosing record is recovered from a hook
// pointer by subtracting the hook's field offset.
package list

import "unsafe"

// Elem is a list hook embedded in a record. A record carries one Elem per
// list it can be a member of and may be on at most one list per hook at any
// time; the inList debug bit enforces this.
type Elem struct {
	next, prev *Elem

	// inList is set while the element is linked into some list.
	inList bool

	// sentinel marks the list head element so Remove and Record can
	// refuse to operate on it.
	sentinel bool
}

// Next returns the element after e.
func (e *Elem) Next() *Elem { return e.next }

// Prev returns the element before e.
func (e *Elem) Prev() *Elem { return e.prev }

// InList returns true while e is linked into a list.
func (e *Elem) InList() bool { return e.inList }

// InsertBefore links elem into the list ahead of e.
func (e *Elem) InsertBefore(elem *Elem) {
	if elem.inList {
		panic(errAlreadyInList)
	}

	elem.prev = e.prev
	elem.next = e
	e.prev.next = elem
	e.prev = elem
	elem.inList = true
}

// InsertAfter links elem into the list right after e.
func (e *Elem) InsertAfter(elem *Elem) {
	e.next.InsertBefore(elem)
}

// Remove unlinks e from the list it is currently on. Removing an element
// that is not on a list, or a list's sentinel, is a kernel bug.
func (e *Elem) Remove() {
	if !e.inList {
		panic(errNotInList)
	}
	if e.sentinel {
		panic(errRemoveSentinel)
	}

	e.prev.next = e.next
	e.next.prev = e.prev
	e.next = nil
	e.prev = nil
	e.inList = false
}

// List is a circular doubly linked list headed by a sentinel element. The
// sentinel points to itself while the list is empty. The zero value is not
// usable; call Init first.
type List struct {
	head Elem
}

// Init prepares the list for use, discarding any previous membership.
func (l *List) Init() {
	l.head.next = &l.head
	l.head.prev = &l.head
	l.head.inList = true
	l.head.sentinel = true
}

// Empty returns true if the list holds no elements.
func (l *List) Empty() bool { return l.head.next == &l.head }

// First returns the first element of the list or nil if it is empty.
func (l *List) First() *Elem {
	if l.Empty() {
		return nil
	}
	return l.head.next
}

// Last returns the last element of the list or nil if it is empty.
func (l *List) Last() *Elem {
	if l.Empty() {
		return nil
	}
	return l.head.prev
}

// AtEnd returns true once an iteration starting at First has walked past the
// last element and arrived back at the sentinel.
func (l *List) AtEnd(e *Elem) bool { return e == &l.head }

// PushFront links elem at the head of the list.
func (l *List) PushFront(elem *Elem) { l.head.InsertAfter(elem) }

// PushBack links elem at the tail of the list.
func (l *List) PushBack(elem *Elem) { l.head.InsertBefore(elem) }

// PopFront unlinks and returns the first element, or nil if the list is
// empty.
func (l *List) PopFront() *Elem {
	e := l.First()
	if e == nil {
		return nil
	}
	e.Remove()
	return e
}

// Record recovers a pointer to the record that embeds e given the offset of
// the hook field inside the record (unsafe.Offsetof). The caller must
// guarantee that e really is that field of such a record; asking for the
// record behind a sentinel is a kernel bug.
func Record(e *Elem, fieldOffset uintptr) unsafe.Pointer {
	if e.sentinel {
		panic(errRecordSentinel)
	}
	return unsafe.Pointer(uintptr(unsafe.Pointer(e)) - fieldOffset)
}

// The list panics below flag kernel bugs, not runtime conditions, so they
// are plain strings routed through the kernel panic path.
const (
	errAlreadyInList  = "list: element is already on a list"
	errNotInList      = "list: removing an element that is not on a list"
	errRemoveSentinel = "list: removing a list sentinel"
	errRecordSentinel = "list: sentinel has no enclosing record"
)

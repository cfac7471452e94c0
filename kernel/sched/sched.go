// Package sched owns the process table and the scheduling decision: three
// priority-ordered ready queues, a blocked queue, the master list of all
// live processes and a dedicated idle process that runs whenever nothing
// else can. Process records live in a fixed pool carved from a static
// buffer; list membership is intrusive so moving a process between queues
// never allocates.
package sched

import (
	"unsafe"

	"mikros/kernel"
	"mikros/kernel/elf"
	"mikros/kernel/image"
	"mikros/kernel/kfmt"
	"mikros/kernel/list"
	"mikros/kernel/mm/vmm"
	"mikros/kernel/proc"
)

// Priority selects the ready queue a process is created on. Lower values
// are drained first.
type Priority uint8

const (
	// PriorityDriver is the highest priority, for device driver
	// processes.
	PriorityDriver Priority = iota

	// PriorityServer sits between drivers and ordinary user processes.
	PriorityServer

	// PriorityUser is the default priority.
	PriorityUser

	numPriorities
)

// maxProcesses caps the process pool.
const maxProcesses = 4096

// initialUserSP is the stack pointer a fresh process starts with. Nothing
// is mapped there: the first push page-faults and the stack-growth policy
// maps the top of the address space on demand.
const initialUserSP = 0xFFFFFFF0

var (
	// ErrTooManyProcesses is returned by Create when the pool is
	// exhausted.
	ErrTooManyProcesses = &kernel.Error{Module: "sched", Message: "process pool exhausted"}

	// ErrNoSuchProcess is returned by UnblockByID when no blocked
	// process carries the requested id.
	ErrNoSuchProcess = &kernel.Error{Module: "sched", Message: "no blocked process with that id"}

	errNotBlocked = &kernel.Error{Module: "sched", Message: "unblocking a process that is not blocked"}
	errNoIdle     = &kernel.Error{Module: "sched", Message: "scheduler used before Init"}

	// pool is the static buffer the process records are carved from.
	// Each record is page-sized on the target; the pool bitmap tracks
	// which slots are live.
	pool       [maxProcesses]proc.Process
	poolBitmap [maxProcesses / 64]uint64

	all     list.List
	blocked list.List
	ready   [numPriorities]list.List

	idle    *proc.Process
	running *proc.Process
	nextID  proc.ID

	// loadFn is used by tests to interpose on the ELF loader.
	loadFn = elf.Load
)

// Init resets the scheduler state and creates the idle process from the
// embedded idle image. The idle process is taken off the ready queue it was
// created on immediately: it stays on the all list but never sits on a
// ready or blocked queue, and is resumed only when every ready queue is
// empty.
func Init() *kernel.Error {
	all.Init()
	blocked.Init()
	for i := range ready {
		ready[i].Init()
	}
	for i := range poolBitmap {
		poolBitmap[i] = 0
	}
	running = nil
	nextID = 0

	p, err := Create("idle", image.Idle(), PriorityUser, nil)
	if err != nil {
		return err
	}

	p.Elem.Remove()
	idle = p

	kfmt.Printf("[sched] idle process ready, pool of %d records\n", maxProcesses)
	return nil
}

// Idle returns the idle process.
func Idle() *proc.Process { return idle }

// Running returns the process currently holding the hart.
func Running() *proc.Process { return running }

// Create allocates a process record, builds a fresh address space for it by
// loading the supplied ELF binary and installing any extra device mappings
// (typically the UART page), stamps the record and queues it on the ready
// list for prio. Loader and allocation errors are returned to the caller;
// the record is released again but pages already handed to the new address
// space are not reclaimed.
func Create(name string, bin []byte, prio Priority, mappings []vmm.DeviceMapping) (*proc.Process, *kernel.Error) {
	p := allocRecord()
	if p == nil {
		return nil, ErrTooManyProcesses
	}

	pt, err := vmm.NewPageTable()
	if err != nil {
		freeRecord(p)
		return nil, err
	}

	entry, err := loadFn(pt, bin)
	if err != nil {
		freeRecord(p)
		return nil, err
	}

	for _, m := range mappings {
		if err := pt.SetMapping(m.VA, m.Frame, m.Flags); err != nil {
			freeRecord(p)
			return nil, err
		}
	}

	p.ID = nextID
	nextID++
	p.Magic = proc.Magic
	p.SetName(name)
	p.PC = uint32(entry)
	p.Root = pt.Root()
	p.Saved[proc.RegSP] = initialUserSP
	p.State = proc.Ready

	all.PushBack(&p.AllElem)
	ready[prio].PushBack(&p.Elem)

	return p, nil
}

// Next makes the scheduling decision after a trap handler has run. The
// current process is requeued according to its state, then the ready queues
// are drained in priority order; with nothing ready the idle process runs.
// The returned process is in state Running.
func Next(current *proc.Process) *proc.Process {
	if idle == nil {
		panic(errNoIdle)
	}

	if current != idle {
		switch current.State {
		case proc.Running:
			return current
		case proc.Ready:
			// TODO: requeue at the priority the process was created
			// with; that needs the creation priority stored on the
			// record.
			ready[PriorityUser].PushBack(&current.Elem)
		case proc.Blocked:
			blocked.PushBack(&current.Elem)
		case proc.Dying:
			// Stays off every queue; only the all list still holds
			// the record.
		}
	} else {
		// The idle process yields the hart without ever being queued.
		idle.State = proc.Ready
	}

	for prio := range ready {
		if e := ready[prio].PopFront(); e != nil {
			next := processFor(e)
			next.State = proc.Running
			running = next
			return next
		}
	}

	idle.State = proc.Running
	running = idle
	return idle
}

// Unblock moves p from the blocked queue to the user ready queue and marks
// it Ready. Unblocking a process that is not blocked is a kernel bug.
func Unblock(p *proc.Process) {
	if p.State != proc.Blocked {
		panic(errNotBlocked)
	}

	p.Elem.Remove()
	p.State = proc.Ready
	ready[PriorityUser].PushBack(&p.Elem)
}

// UnblockByID finds the blocked process with the given id and unblocks it.
func UnblockByID(id proc.ID) *kernel.Error {
	for e := blocked.First(); e != nil && !blocked.AtEnd(e); e = e.Next() {
		if p := processFor(e); p.ID == id {
			Unblock(p)
			return nil
		}
	}
	return ErrNoSuchProcess
}

// processFor recovers the process record embedding the ready/blocked hook e.
func processFor(e *list.Elem) *proc.Process {
	return (*proc.Process)(list.Record(e, unsafe.Offsetof(proc.Process{}.Elem)))
}

// allocRecord claims a free pool slot and returns it zeroed.
func allocRecord() *proc.Process {
	for word := range poolBitmap {
		if poolBitmap[word] == ^uint64(0) {
			continue
		}
		for bit := 0; bit < 64; bit++ {
			if poolBitmap[word]&(1<<bit) != 0 {
				continue
			}

			poolBitmap[word] |= 1 << bit
			p := &pool[word*64+bit]
			*p = proc.Process{}
			return p
		}
	}
	return nil
}

// freeRecord releases a pool slot claimed by allocRecord. Only used on the
// Create failure paths; process exit does not reclaim records in this
// design.
func freeRecord(p *proc.Process) {
	index := (uintptr(unsafe.Pointer(p)) - uintptr(unsafe.Pointer(&pool[0]))) / unsafe.Sizeof(proc.Process{})
	poolBitmap[index/64] &^= 1 << (index % 64)
}

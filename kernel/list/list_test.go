package list

import (
	"testing"
	"unsafe"
)

type testRecord struct {
	id   int
	hook Elem
}

func recordFor(e *Elem) *testRecord {
	return (*testRecord)(Record(e, unsafe.Offsetof(testRecord{}.hook)))
}

func TestPushPopFIFOOrder(t *testing.T) {
	var l List
	l.Init()

	if !l.Empty() {
		t.Fatal("expected freshly initialized list to be empty")
	}

	records := make([]testRecord, 8)
	for i := range records {
		records[i].id = i
		l.PushBack(&records[i].hook)

		if !records[i].hook.InList() {
			t.Fatalf("expected inList flag for record %d to be set after PushBack", i)
		}
	}

	for i := range records {
		e := l.PopFront()
		if e == nil {
			t.Fatalf("expected PopFront %d to return an element", i)
		}

		if got := recordFor(e).id; got != i {
			t.Errorf("expected PopFront to preserve FIFO order; got record %d at position %d", got, i)
		}

		if e.InList() {
			t.Errorf("expected inList flag for record %d to be cleared after PopFront", i)
		}
	}

	if !l.Empty() || l.PopFront() != nil {
		t.Fatal("expected list to be empty after popping every element")
	}
}

func TestFirstLastOnEmptyList(t *testing.T) {
	var l List
	l.Init()

	if l.First() != nil {
		t.Error("expected First on an empty list to return nil")
	}
	if l.Last() != nil {
		t.Error("expected Last on an empty list to return nil")
	}
}

func TestPushFrontAndLast(t *testing.T) {
	var (
		l    List
		recs [3]testRecord
	)
	l.Init()

	for i := range recs {
		recs[i].id = i
		l.PushFront(&recs[i].hook)
	}

	// PushFront reverses insertion order
	if got := recordFor(l.First()).id; got != 2 {
		t.Errorf("expected first record to be 2; got %d", got)
	}
	if got := recordFor(l.Last()).id; got != 0 {
		t.Errorf("expected last record to be 0; got %d", got)
	}
}

func TestIterationTerminatesAtSentinel(t *testing.T) {
	var (
		l    List
		recs [4]testRecord
	)
	l.Init()

	for i := range recs {
		recs[i].id = i
		l.PushBack(&recs[i].hook)
	}

	var visited []int
	for e := l.First(); !l.AtEnd(e); e = e.Next() {
		visited = append(visited, recordFor(e).id)
	}

	if len(visited) != len(recs) {
		t.Fatalf("expected to visit %d records; visited %d", len(recs), len(visited))
	}
	for i, id := range visited {
		if id != i {
			t.Errorf("expected record %d at iteration step %d; got %d", i, i, id)
		}
	}
}

func TestInsertBeforeAfter(t *testing.T) {
	var (
		l       List
		a, b, c testRecord
	)
	l.Init()
	a.id, b.id, c.id = 0, 1, 2

	l.PushBack(&a.hook)
	l.PushBack(&c.hook)
	c.hook.InsertBefore(&b.hook)

	for i, e := 0, l.First(); !l.AtEnd(e); i, e = i+1, e.Next() {
		if got := recordFor(e).id; got != i {
			t.Errorf("expected record %d at position %d; got %d", i, i, got)
		}
	}

	b.hook.Remove()
	a.hook.InsertAfter(&b.hook)

	if got := recordFor(l.First().Next()).id; got != 1 {
		t.Errorf("expected InsertAfter to place record 1 second; got %d", got)
	}
}

func TestMembershipViolationsPanic(t *testing.T) {
	specs := []struct {
		descr string
		fn    func(l *List, r *testRecord)
	}{
		{"double insert", func(l *List, r *testRecord) { l.PushBack(&r.hook); l.PushBack(&r.hook) }},
		{"remove while not on a list", func(_ *List, r *testRecord) { r.hook.Remove() }},
	}

	for specIndex, spec := range specs {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("[spec %d] expected %s to panic", specIndex, spec.descr)
				}
			}()

			var (
				l List
				r testRecord
			)
			l.Init()
			spec.fn(&l, &r)
		}()
	}
}

func TestMoveBetweenLists(t *testing.T) {
	var (
		ready, blocked List
		r              testRecord
	)
	ready.Init()
	blocked.Init()

	ready.PushBack(&r.hook)
	r.hook.Remove()
	blocked.PushBack(&r.hook)

	if !ready.Empty() {
		t.Error("expected source list to be empty after moving the element")
	}
	if got := recordFor(blocked.First()); got != &r {
		t.Error("expected element to be reachable from the destination list")
	}
}

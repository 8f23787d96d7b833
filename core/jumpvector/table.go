package jumpvector

// DefaultCapacity is used when a Table is created without entries and
// without an explicit capacity.
const DefaultCapacity = 10

// Handler is invoked with the function code and the accompanying value. The
// meaning of the returned boolean belongs to the handler.
type Handler func(code, value byte) bool

// Entry maps a function code to its handler. An Entry with a nil Handler is
// the sentinel terminating an entry list.
type Entry struct {
	Code    uint32
	Handler Handler
}

// Outcome distinguishes an unmapped code from a handler returning false.
type Outcome int

const (
	Unmapped Outcome = iota
	Accepted
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return "unmapped"
	}
}

// Table is a fixed-capacity, insertion-ordered jump vector.
type Table struct {
	entries []Entry
	n       int
}

// New builds a Table from entries, read up to the first sentinel or the end
// of the slice. With entries the capacity is at least the number loaded;
// without entries a capacity of zero selects DefaultCapacity.
func New(entries []Entry, capacity int) *Table {
	if capacity < 0 {
		capacity = 0
	}
	loaded := 0
	for loaded < len(entries) && entries[loaded].Handler != nil {
		loaded++
	}
	if entries != nil {
		if capacity < loaded {
			capacity = loaded
		}
	} else if capacity == 0 {
		capacity = DefaultCapacity
	}
	t := &Table{entries: make([]Entry, capacity), n: loaded}
	copy(t.entries, entries[:loaded])
	return t
}

// Capacity returns the maximum number of entries the table can hold.
func (t *Table) Capacity() int { return len(t.entries) }

// Len returns the number of active entries.
func (t *Table) Len() int { return t.n }

// Full reports whether AddHandler would fail.
func (t *Table) Full() bool { return t.n == len(t.entries) }

// AddHandler stores (code, h) in the next free slot. It returns false when
// the table is full or h is nil, leaving the table unchanged.
func (t *Table) AddHandler(code byte, h Handler) bool {
	if h == nil || t.Full() {
		return false
	}
	t.entries[t.n] = Entry{Code: uint32(code), Handler: h}
	t.n++
	return true
}

// Lookup returns the handler of the first entry registered for code.
func (t *Table) Lookup(code uint32) (Handler, bool) {
	for i := 0; i < t.n; i++ {
		if t.entries[i].Code == code {
			return t.entries[i].Handler, true
		}
	}
	return nil, false
}

// ValidateAddress reports whether a handler is registered for code.
func (t *Table) ValidateAddress(code uint32) bool {
	_, ok := t.Lookup(code)
	return ok
}

// Dispatch invokes the first handler registered for code with value.
func (t *Table) Dispatch(code uint32, value byte) Outcome {
	h, ok := t.Lookup(code)
	if !ok {
		return Unmapped
	}
	if h(byte(code), value) {
		return Accepted
	}
	return Rejected
}

// ProcessValue invokes the handler registered for code and returns its
// result, or false when code is not mapped.
func (t *Table) ProcessValue(code uint32, value byte) bool {
	return t.Dispatch(code, value) == Accepted
}

// Entries returns a copy of the active entries in registration order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, t.n)
	copy(out, t.entries[:t.n])
	return out
}

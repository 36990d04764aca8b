package component

// Entry is one recorded (owner, field, value) triple. Entries are never
// mutated after being recorded, only replayed or discarded.
type Entry struct {
	Owner *Component
	Field string
	Value any

	restore func(value any)
}

// Log is the append-only backtracking record for one generation. Entries
// are ordered by traversal order of capture; replaying them in that same
// order restores the captured state.
type Log struct {
	entries []Entry
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Record appends one field capture. restore is invoked with the recorded
// value when the log is replayed.
func (l *Log) Record(owner *Component, field string, value any, restore func(value any)) {
	l.entries = append(l.entries, Entry{Owner: owner, Field: field, Value: value, restore: restore})
}

// Replay restores every recorded value, in capture order.
func (l *Log) Replay() {
	for _, e := range l.entries {
		e.restore(e.Value)
	}
}

// Entries returns the recorded entries in capture order.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	return len(l.entries)
}

type tracked interface {
	capture(log *Log)
}

// Var is a component-owned variable that participates in backtracking.
// Only fields held in Vars (plus chains and opted-in children slices) are
// restored when a session backtracks; everything else is deliberately left
// alone, since whole-tree snapshots are too costly per request.
type Var[T any] struct {
	owner *Component
	field string
	clone func(T) T
	v     T
}

// NewVar binds a tracked variable to owner under the given field name and
// registers it for capture on every backtracking pass.
func NewVar[T any](owner *Component, field string, initial T) *Var[T] {
	v := &Var[T]{owner: owner, field: field, v: initial}
	owner.vars = append(owner.vars, v)
	return v
}

// NewVarClone is NewVar for mutable composite values: clone is applied at
// capture time so later in-place mutation cannot corrupt recorded entries.
func NewVarClone[T any](owner *Component, field string, initial T, clone func(T) T) *Var[T] {
	v := &Var[T]{owner: owner, field: field, clone: clone, v: initial}
	owner.vars = append(owner.vars, v)
	return v
}

// Get returns the current value.
func (v *Var[T]) Get() T {
	return v.v
}

// Set replaces the current value.
func (v *Var[T]) Set(x T) {
	v.v = x
}

func (v *Var[T]) capture(log *Log) {
	val := v.v
	if v.clone != nil {
		val = v.clone(val)
	}
	log.Record(v.owner, v.field, val, func(prev any) {
		v.v = prev.(T)
	})
}

package easel

// Record is one executed composite op together with the atomic ops it
// produced.
type Record struct {
	COp  COp   `json:"cop"`
	AOps []AOp `json:"aops"`
}

// RecordStack holds the done and undone records. Pushing always clears the
// undone side.
type RecordStack struct {
	done   []Record
	undone []Record
	max    int
}

// NewRecordStack returns an empty stack keeping at most max done records;
// max <= 0 means unbounded.
func NewRecordStack(max int) *RecordStack {
	return &RecordStack{max: max}
}

// Push records rec and clears the redo side.
func (s *RecordStack) Push(rec Record) {
	clear(s.undone)
	s.undone = s.undone[:0]
	s.done = append(s.done, rec)
	if s.max > 0 && len(s.done) > s.max {
		drop := len(s.done) - s.max
		clear(s.done[:drop])
		s.done = s.done[drop:]
	}
}

// CanUndo reports whether a done record exists.
func (s *RecordStack) CanUndo() bool { return len(s.done) > 0 }

// CanRedo reports whether an undone record exists.
func (s *RecordStack) CanRedo() bool { return len(s.undone) > 0 }

// PeekUndo returns the record Undo would move.
func (s *RecordStack) PeekUndo() (Record, bool) {
	if len(s.done) == 0 {
		return Record{}, false
	}
	return s.done[len(s.done)-1], true
}

// PeekRedo returns the record Redo would move.
func (s *RecordStack) PeekRedo() (Record, bool) {
	if len(s.undone) == 0 {
		return Record{}, false
	}
	return s.undone[len(s.undone)-1], true
}

// Undo moves the latest done record to the undone side.
func (s *RecordStack) Undo() (Record, bool) {
	rec, ok := s.PeekUndo()
	if !ok {
		return Record{}, false
	}
	s.done = s.done[:len(s.done)-1]
	s.undone = append(s.undone, rec)
	return rec, true
}

// Redo moves the latest undone record back to the done side.
func (s *RecordStack) Redo() (Record, bool) {
	rec, ok := s.PeekRedo()
	if !ok {
		return Record{}, false
	}
	s.undone = s.undone[:len(s.undone)-1]
	s.done = append(s.done, rec)
	return rec, true
}

// Len returns the sizes of the done and undone sides.
func (s *RecordStack) Len() (done, undone int) { return len(s.done), len(s.undone) }

// Clear drops all records.
func (s *RecordStack) Clear() {
	s.done = nil
	s.undone = nil
}

// RecordStackData is the serializable form of a RecordStack.
type RecordStackData struct {
	Records     []Record `json:"records"`
	UndoRecords []Record `json:"undoRecords"`
	Max         int      `json:"max,omitempty"`
}

// ToData snapshots the stack.
func (s *RecordStack) ToData() RecordStackData {
	return RecordStackData{
		Records:     append([]Record(nil), s.done...),
		UndoRecords: append([]Record(nil), s.undone...),
		Max:         s.max,
	}
}

// RecordStackFromData rebuilds a stack.
func RecordStackFromData(d RecordStackData) *RecordStack {
	return &RecordStack{
		done:   append([]Record(nil), d.Records...),
		undone: append([]Record(nil), d.UndoRecords...),
		max:    d.Max,
	}
}

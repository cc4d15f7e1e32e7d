package activity

// ExitResult describes how an exit request matched the stack.
type ExitResult int

const (
	// ExitMatched means the exited span was the top of the stack.
	ExitMatched ExitResult = iota
	// ExitRecovered means the span was found deeper in the stack; the
	// entries above it were discarded to restore consistency.
	ExitRecovered
	// ExitUntracked means the span was not on this stack at all, eg a
	// cross-thread exit whose enter happened elsewhere. The caller emits
	// with the record carried by the span itself.
	ExitUntracked
)

// Stack tracks the open spans of one logical execution context. It is owned
// exclusively by that context; no locking happens here.
type Stack struct {
	recs []Record
}

// Enter pushes a record for spanID and returns it. If pre is non-nil its
// identifiers are reused (re-entrant enter, or a span handed off from
// another context); otherwise a fresh ID is derived and the parent is the
// current top of the stack.
func (s *Stack) Enter(spanID uint64, pre *Record) Record {
	var r Record
	if pre != nil {
		r = *pre
	} else {
		r = Record{SpanID: spanID, ID: IDForSpan(spanID)}
		if top, ok := s.Current(); ok {
			r.Parent = top.ID
		}
	}
	r.Depth = len(s.recs)
	s.recs = append(s.recs, r)
	return r
}

// Current returns the innermost open span's record, if any. Point-in-time
// events use it without mutating the stack.
func (s *Stack) Current() (Record, bool) {
	if len(s.recs) == 0 {
		return Record{}, false
	}
	return s.recs[len(s.recs)-1], true
}

// Exit removes spanID from the stack.
//
// The common case pops the top. An out-of-order exit pops down to the
// matching entry (discarding anything opened above it), and an exit for a
// span this stack never saw leaves the stack untouched and reports
// ExitUntracked. The stack is never corrupted for sibling spans.
func (s *Stack) Exit(spanID uint64) (Record, ExitResult) {
	for i := len(s.recs) - 1; i >= 0; i-- {
		if s.recs[i].SpanID != spanID {
			continue
		}
		r := s.recs[i]
		top := i == len(s.recs)-1
		s.recs = s.recs[:i]
		if !top { // discarded entries that were opened above the match
			return r, ExitRecovered
		}
		return r, ExitMatched
	}
	return Record{}, ExitUntracked
}

// Depth returns the number of open spans.
func (s *Stack) Depth() int { return len(s.recs) }

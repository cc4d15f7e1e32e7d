package activity

import (
	"testing"

	"github.com/Microsoft/go-nativetrace/pkg/event"
)

func TestIDForSpan(t *testing.T) {
	a := IDForSpan(1)
	b := IDForSpan(2)

	if !a.IsSet() || !b.IsSet() {
		t.Fatal("derived IDs must be set")
	}
	if a == b {
		t.Error("distinct span IDs produced the same activity ID")
	}
	if a != IDForSpan(1) {
		t.Error("IDForSpan is not deterministic within a process")
	}
	if (event.ActivityID{}) != IDForSpan(0) {
		t.Error("span ID 0 should derive the unset ID")
	}
}

func TestSpanOfRoundTrip(t *testing.T) {
	for _, id := range []uint64{1, 42, 1 << 40, ^uint64(0)} {
		if got := SpanOf(IDForSpan(id)); got != id {
			t.Errorf("SpanOf(IDForSpan(%#x)) = %#x", id, got)
		}
	}
	if got := SpanOf(event.ActivityID{}); got != 0 {
		t.Errorf("SpanOf(unset) = %#x, wanted 0", got)
	}
}

func TestStackNesting(t *testing.T) {
	var s Stack

	a := s.Enter(1, nil)
	b := s.Enter(2, nil)
	c := s.Enter(3, nil)

	if a.Parent.IsSet() {
		t.Error("root span has a parent")
	}
	if b.Parent != a.ID {
		t.Error("second span's parent is not the first span")
	}
	if c.Parent != b.ID {
		t.Error("third span's parent is not the second span")
	}
	if c.Depth != 2 {
		t.Errorf("third span depth = %d, wanted 2", c.Depth)
	}

	if cur, ok := s.Current(); !ok || cur.SpanID != 3 {
		t.Errorf("Current() = %+v, %t", cur, ok)
	}

	for _, id := range []uint64{3, 2, 1} {
		if r, res := s.Exit(id); res != ExitMatched || r.SpanID != id {
			t.Errorf("Exit(%d) = %+v, %v", id, r, res)
		}
	}
	if s.Depth() != 0 {
		t.Errorf("stack not empty after balanced exits: depth %d", s.Depth())
	}
}

func TestStackOutOfOrderExit(t *testing.T) {
	var s Stack
	s.Enter(1, nil)
	s.Enter(2, nil)
	s.Enter(3, nil)

	// exiting the middle span discards the one above it
	r, res := s.Exit(2)
	if res != ExitRecovered {
		t.Fatalf("Exit(2) result = %v, wanted ExitRecovered", res)
	}
	if r.SpanID != 2 {
		t.Errorf("recovered record is for span %d", r.SpanID)
	}
	if s.Depth() != 1 {
		t.Errorf("depth after recovery = %d, wanted 1", s.Depth())
	}
	if cur, _ := s.Current(); cur.SpanID != 1 {
		t.Errorf("top after recovery is span %d, wanted 1", cur.SpanID)
	}

	// the discarded span is gone
	if _, res := s.Exit(3); res != ExitUntracked {
		t.Errorf("Exit(3) result = %v, wanted ExitUntracked", res)
	}
}

func TestStackUntrackedExit(t *testing.T) {
	var s Stack
	s.Enter(1, nil)

	if _, res := s.Exit(99); res != ExitUntracked {
		t.Errorf("Exit(99) result = %v, wanted ExitUntracked", res)
	}
	if s.Depth() != 1 {
		t.Errorf("untracked exit mutated the stack: depth %d", s.Depth())
	}
}

func TestStackHandoff(t *testing.T) {
	var producer, consumer Stack

	r := producer.Enter(7, nil)
	if _, res := producer.Exit(7); res != ExitMatched {
		t.Fatal("producer exit did not match")
	}

	// the consumer context re-enters with the carried record; identifiers
	// survive the move
	got := consumer.Enter(7, &r)
	if got.ID != r.ID || got.Parent != r.Parent {
		t.Errorf("handoff changed identifiers: %+v != %+v", got, r)
	}
	if got.Depth != 0 {
		t.Errorf("handoff depth = %d, wanted 0", got.Depth)
	}
}

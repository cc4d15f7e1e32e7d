package event

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSmartValue(t *testing.T) {
	for _, tc := range []struct {
		in   any
		want Value
	}{
		{true, BoolValue(true)},
		{int(-3), Int64Value(-3)},
		{int8(-3), Int8Value(-3)},
		{int32(-3), Int32Value(-3)},
		{uint(5), Uint64Value(5)},
		{uint16(5), Uint16Value(5)},
		{float32(1.5), Float32Value(1.5)},
		{2.5, Float64Value(2.5)},
		{"s", StringValue("s")},
		{[]byte{1}, BytesValue([]byte{1})},
		{Int16Value(2), Int16Value(2)},
		// unknown types stringify
		{struct{ X int }{1}, StringValue("{1}")},
	} {
		if got := SmartValue(tc.in); !got.Equal(tc.want) {
			t.Errorf("SmartValue(%v) = %v (%s), wanted %v (%s)",
				tc.in, got, got.Kind(), tc.want, tc.want.Kind())
		}
	}
}

func TestValueAccessors(t *testing.T) {
	if v := Int16Value(-300); v.Int() != -300 {
		t.Errorf("Int() = %d", v.Int())
	}
	if v := Uint64Value(1 << 60); v.Uint() != 1<<60 {
		t.Errorf("Uint() = %d", v.Uint())
	}
	if v := Float32Value(1.25); v.Float() != 1.25 {
		t.Errorf("Float() = %g", v.Float())
	}
	if v := BoolValue(true); !v.Bool() {
		t.Error("Bool() = false")
	}
	g := GroupValue(Int32Field("a", 1), StringField("b", "x"))
	if len(g.Group()) != 2 || g.Kind() != KindGroup {
		t.Errorf("Group() = %v", g.Group())
	}
}

func TestValueEqualCmp(t *testing.T) {
	a := Group("g",
		Int32Field("a", 1),
		BytesField("b", []byte{1, 2}),
	)
	b := Group("g",
		Int32Field("a", 1),
		BytesField("b", []byte{1, 2}),
	)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("equal groups diff (-a +b):\n%s", diff)
	}
	c := Group("g",
		Int32Field("a", 1),
		BytesField("b", []byte{1, 3}),
	)
	if cmp.Diff(a, c) == "" {
		t.Error("differing groups compared equal")
	}
}

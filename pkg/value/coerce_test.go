package value

import (
	"math"
	"net"
	"testing"
)

type sentinel struct{ id int }

type nilStringer struct{ name string }

func (n *nilStringer) String() string { return n.name }

func TestCoerceTiers(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"integer literal", "42", int64(42)},
		{"negative integer literal", "-7", int64(-7)},
		{"padded integer literal", " 42\n", int64(42)},
		{"float literal", "3.14", 3.14},
		{"text", "abc", "abc"},
		{"empty string", "", ""},
		{"octet string digits", []byte("1000"), int64(1000)},
		{"octet string text", []byte("eth0"), "eth0"},
		{"int", 6, int64(6)},
		{"uint counter", uint(12345), int64(12345)},
		{"uint32 timeticks", uint32(360000), int64(360000)},
		{"counter64 in range", uint64(1 << 40), int64(1 << 40)},
		{"counter64 above int64", uint64(math.MaxUint64), uint64(math.MaxUint64)},
		{"huge literal", "18446744073709551615", uint64(math.MaxUint64)},
		{"float32", float32(1.5), 1.5},
		{"stringer", net.IPv4(10, 0, 0, 1), "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.in)
			if got != tt.want {
				t.Errorf("Coerce(%#v) = %#v (%T), want %#v (%T)", tt.in, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestCoercePassesThroughUnknownValues(t *testing.T) {
	s := sentinel{id: 9}
	if got := Coerce(s); got != s {
		t.Errorf("Coerce(sentinel) = %#v, want sentinel unchanged", got)
	}

	if got := Coerce(nil); got != nil {
		t.Errorf("Coerce(nil) = %#v, want nil", got)
	}

	invalid := []byte{0xff, 0xfe, 0x00}
	got, ok := Coerce(invalid).([]byte)
	if !ok || len(got) != 3 || got[0] != 0xff {
		t.Errorf("Coerce(invalid utf8) = %#v, want bytes unchanged", got)
	}
}

func TestCoerceNilStringerDoesNotPanic(t *testing.T) {
	var n *nilStringer
	got := Coerce(n)
	if got != n {
		t.Errorf("Coerce(nil *Stringer) = %#v, want passthrough", got)
	}
}

func TestKindOf(t *testing.T) {
	cases := map[Tier]any{
		TierInteger: Coerce("42"),
		TierFloat:   Coerce("3.14"),
		TierText:    Coerce("abc"),
		TierRaw:     Coerce(sentinel{}),
	}
	for want, v := range cases {
		if got := KindOf(v); got != want {
			t.Errorf("KindOf(%#v) = %s, want %s", v, got, want)
		}
	}
}

func TestTierString(t *testing.T) {
	if TierInteger.String() != "integer" {
		t.Errorf("TierInteger.String() = %q", TierInteger.String())
	}
	if Tier(99).String() != "unknown" {
		t.Errorf("Tier(99).String() = %q", Tier(99).String())
	}
}

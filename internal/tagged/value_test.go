package tagged

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
)

func TestNumberRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 21, -21, 1 << 40, -(1 << 40), MaxNumber, MinNumber, MaxNumber - 1, MinNumber + 1}
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		values = append(values, rng.Int64N(MaxNumber)-rng.Int64N(MaxNumber))
	}

	for _, n := range values {
		v := Number(n)
		if v&Tag != 0 {
			t.Fatalf("Number(%d)=%s has tag bit set", n, v.Hex())
		}
		got, ok := v.Int()
		if !ok {
			t.Fatalf("Number(%d).Int() not a number", n)
		}
		if got != n {
			t.Fatalf("Number(%d).Int()=%d, want %d", n, got, n)
		}
	}
}

func TestNumberChecked(t *testing.T) {
	if _, err := NumberChecked(MaxNumber); err != nil {
		t.Fatalf("NumberChecked(MaxNumber) error: %v", err)
	}
	if _, err := NumberChecked(MinNumber); err != nil {
		t.Fatalf("NumberChecked(MinNumber) error: %v", err)
	}
	for _, n := range []int64{MaxNumber + 1, MinNumber - 1, math.MaxInt64, math.MinInt64} {
		if _, err := NumberChecked(n); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("NumberChecked(%d) err=%v, want ErrOutOfRange", n, err)
		}
	}
}

func TestBooleanConstants(t *testing.T) {
	if got, want := True.String(), "true"; got != want {
		t.Fatalf("True.String()=%q, want %q", got, want)
	}
	if got, want := False.String(), "false"; got != want {
		t.Fatalf("False.String()=%q, want %q", got, want)
	}
	if Bool(true) != True || Bool(false) != False {
		t.Fatalf("Bool does not select the reserved words")
	}
	if True&Tag == 0 || False&Tag == 0 {
		t.Fatalf("boolean words must carry the tag bit")
	}
	if b, ok := True.Boolean(); !ok || !b {
		t.Fatalf("True.Boolean()=%v,%v", b, ok)
	}
	if b, ok := False.Boolean(); !ok || b {
		t.Fatalf("False.Boolean()=%v,%v", b, ok)
	}
	if _, ok := Number(4).Boolean(); ok {
		t.Fatalf("Number(4).Boolean() reported a boolean")
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		value Value
		want  Kind
	}{
		{Number(0), KindNumber},
		{Number(-7), KindNumber},
		{True, KindBoolean},
		{False, KindBoolean},
		{0x3, KindUnrecognized},
		{0x8000000000000001, KindUnrecognized},
	}
	for _, tt := range tests {
		if got := tt.value.Kind(); got != tt.want {
			t.Fatalf("%s.Kind()=%v, want %v", tt.value.Hex(), got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{Number(21), "21"},
		{Number(0), "0"},
		{Number(-5), "-5"},
		{Number(MaxNumber), "4611686018427387903"},
		{Number(MinNumber), "-4611686018427387904"},
		{True, "true"},
		{False, "false"},
		{0x0000000000000003, "Unknown value: 0x0000000000000003"},
		{0xFFFFFFFFFFFFFFFD, "Unknown value: 0xfffffffffffffffd"},
	}
	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Fatalf("String(%s)=%q, want %q", tt.value.Hex(), got, tt.want)
		}
	}
}

func TestStringTotal(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for range 10000 {
		v := Value(rng.Uint64())
		s := v.String()
		if s == "" {
			t.Fatalf("String(%s) is empty", v.Hex())
		}
		if v.Kind() == KindUnrecognized && !strings.HasPrefix(s, "Unknown value: 0x") {
			t.Fatalf("String(%s)=%q, want hex fallback", v.Hex(), s)
		}
	}
}

// The tag is stripped by shifting; for every word that takes the number path
// this must agree with truncating division by two.
func TestShiftMatchesDivision(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for range 10000 {
		v := Value(rng.Uint64())
		n, ok := v.Int()
		if !ok {
			if v&Tag == 0 {
				t.Fatalf("%s: even word rejected", v.Hex())
			}
			continue
		}
		if div := int64(v) / 2; div != n {
			t.Fatalf("%s: shift=%d, division=%d", v.Hex(), n, div)
		}
	}
}

func TestHex(t *testing.T) {
	if got, want := Value(0x4).Hex(), "0x0000000000000004"; got != want {
		t.Fatalf("Hex()=%q, want %q", got, want)
	}
	if got, want := True.Hex(), "0xffffffffffffffff"; got != want {
		t.Fatalf("Hex()=%q, want %q", got, want)
	}
}

func TestFaultKind(t *testing.T) {
	if got := FaultNotNumber.Expected(); got != "number" {
		t.Fatalf("FaultNotNumber.Expected()=%q", got)
	}
	if got := FaultNotBoolean.Expected(); got != "boolean" {
		t.Fatalf("FaultNotBoolean.Expected()=%q", got)
	}
	if FaultKind(7).Known() {
		t.Fatalf("FaultKind(7) reported as known")
	}
	if int(FaultNotNumber) != 1 || int(FaultNotBoolean) != 2 {
		t.Fatalf("fault identifiers changed")
	}
}

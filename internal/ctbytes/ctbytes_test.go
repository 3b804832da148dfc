package ctbytes

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestBytePredicates(t *testing.T) {
	for a := 0; a < 256; a++ {
		c := byte(a)
		if got, want := Eq(c, 'x'), b2u(c == 'x'); got != want {
			t.Fatalf("Eq(%#x): got %d want %d", c, got, want)
		}
		if got, want := Less(c, 0x80), b2u(c < 0x80); got != want {
			t.Fatalf("Less(%#x): got %d want %d", c, got, want)
		}
		if got, want := IsHex(c), b2u(('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')); got != want {
			t.Fatalf("IsHex(%#x): got %d want %d", c, got, want)
		}
		wantLower := c
		if 'A' <= c && c <= 'Z' {
			wantLower = c + 32
		}
		if got := ToLower(c); got != wantLower {
			t.Fatalf("ToLower(%#x): got %#x want %#x", c, got, wantLower)
		}
		wantUpper := c
		if 'a' <= c && c <= 'z' {
			wantUpper = c - 32
		}
		if got := ToUpper(c); got != wantUpper {
			t.Fatalf("ToUpper(%#x): got %#x want %#x", c, got, wantUpper)
		}
	}
}

func TestIntPredicates(t *testing.T) {
	cases := [][2]int{{0, 0}, {0, 1}, {1, 0}, {5, 5}, {4096, 4095}, {1 << 20, 1<<20 + 1}}
	for _, c := range cases {
		if got, want := EqInt(c[0], c[1]), b2u(c[0] == c[1]); got != want {
			t.Fatalf("EqInt%v: got %d want %d", c, got, want)
		}
		if got, want := LessInt(c[0], c[1]), b2u(c[0] < c[1]); got != want {
			t.Fatalf("LessInt%v: got %d want %d", c, got, want)
		}
	}
	if SelectInt(1, 7, 9) != 7 || SelectInt(0, 7, 9) != 9 {
		t.Fatalf("SelectInt")
	}
	if Select(1, 'a', 'b') != 'a' || Select(0, 'a', 'b') != 'b' {
		t.Fatalf("Select")
	}
}

func TestLookup(t *testing.T) {
	buf := []byte("abcdef")
	for i := range buf {
		if got := Lookup(buf, i); got != buf[i] {
			t.Fatalf("Lookup(%d): got %q want %q", i, got, buf[i])
		}
	}
	if got := Lookup(buf, len(buf)); got != 0 {
		t.Fatalf("Lookup out of range: got %q", got)
	}
}

func TestGreaterAndCondSwap(t *testing.T) {
	a := []byte("abc\x00")
	b := []byte("abd\x00")
	if Greater(a, b) != 0 || Greater(b, a) != 1 || Greater(a, a) != 0 {
		t.Fatalf("Greater ordering")
	}
	CondSwap(0, a, b)
	if string(a) != "abc\x00" {
		t.Fatalf("CondSwap(0) moved bytes")
	}
	CondSwap(1, a, b)
	if string(a) != "abd\x00" || string(b) != "abc\x00" {
		t.Fatalf("CondSwap(1): a=%q b=%q", a, b)
	}
}

func TestCompact(t *testing.T) {
	vals := []byte("a//b///c/")
	keep := []byte{1, 1, 0, 1, 1, 0, 0, 1, 0}
	n := Compact(vals, keep)
	if got := string(vals[:n]); got != "a/b/c" {
		t.Fatalf("Compact: got %q", got)
	}
	for _, b := range vals[n:] {
		if b != 0 {
			t.Fatalf("tail not zeroed: %q", vals)
		}
	}
}

func TestCompact_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 500; iter++ {
		n := rng.Intn(70)
		vals := make([]byte, n)
		keep := make([]byte, n)
		var want []byte
		for i := range vals {
			vals[i] = byte(rng.Intn(255) + 1)
			if rng.Intn(3) != 0 {
				keep[i] = 1
				want = append(want, vals[i])
			}
		}
		got := Compact(vals, keep)
		if got != len(want) || !bytes.Equal(vals[:got], want) {
			t.Fatalf("iter %d: got %q want %q", iter, vals[:got], want)
		}
	}
}

func b2u(v bool) byte {
	if v {
		return 1
	}
	return 0
}

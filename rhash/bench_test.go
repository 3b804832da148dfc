package rhash

import (
	"bytes"
	"testing"
)

func benchFramed(b *testing.B) []byte {
	ref := append([]byte("HTTPS://Example.COM"), bytes.Repeat([]byte("//segment"), 20)...)
	framed, err := Frame(ref, []byte("Text/HTML; charset=\"utf-8\"; q=0.9; level=1"))
	if err != nil {
		b.Fatalf("Frame: %v", err)
	}
	return framed
}

func BenchmarkCompute(b *testing.B) {
	framed := benchFramed(b)
	b.SetBytes(int64(len(framed)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Compute(framed); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNormalizeReference_Standard(b *testing.B) {
	ref := append([]byte("HTTPS://Example.COM"), bytes.Repeat([]byte("//segment"), 20)...)
	for i := 0; i < b.N; i++ {
		if _, err := normalizeReferenceStd(ref); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNormalizeReference_ConstantTime(b *testing.B) {
	ref := append([]byte("HTTPS://Example.COM"), bytes.Repeat([]byte("//segment"), 20)...)
	for i := 0; i < b.N; i++ {
		if _, _, err := normalizeReferenceCT(ref); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNormalizeContentType_Standard(b *testing.B) {
	in := []byte("Text/HTML; charset=\"utf-8\"; q=0.9; level=1")
	for i := 0; i < b.N; i++ {
		if _, err := normalizeContentTypeStd(in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNormalizeContentType_ConstantTime(b *testing.B) {
	in := []byte("Text/HTML; charset=\"utf-8\"; q=0.9; level=1")
	for i := 0; i < b.N; i++ {
		if _, _, err := normalizeContentTypeCT(in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHashText(b *testing.B) {
	text := bytes.Repeat([]byte("Experienced Go engineer.\n\tBuilt services.  "), 50)
	b.SetBytes(int64(len(text)))
	for i := 0; i < b.N; i++ {
		if _, err := HashText(text); err != nil {
			b.Fatal(err)
		}
	}
}

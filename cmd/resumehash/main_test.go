package main

import (
	"bytes"
	"encoding/hex"
	"net"
	"strings"
	"testing"

	"google.golang.org/grpc"

	"xdao.co/resumehash/fprpc"
	"xdao.co/resumehash/internal/batch"
	"xdao.co/resumehash/internal/codec"
	"xdao.co/resumehash/registry"
	"xdao.co/resumehash/rhash"
	"xdao.co/resumehash/storage/memory"
)

const (
	exampleFingerprint = "ae38f2b3d6f1e51539de4eb86093bb282b794130bf20b333c597ecd339d35b99"
	exampleFramedHex   = "01000000042f612f6200000018746578742f706c61696e3b636861727365743d5554462d38"
)

func runCLI(t *testing.T, stdin []byte, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, bytes.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	if code, _, _ := runCLI(t, nil); code != 2 {
		t.Fatalf("no args: exit %d", code)
	}
	if code, _, errOut := runCLI(t, nil, "bogus"); code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("unknown command: exit %d, %q", code, errOut)
	}
	if code, out, _ := runCLI(t, nil, "help"); code != 0 || !strings.Contains(out, "Usage:") {
		t.Fatalf("help: exit %d", code)
	}
	if code, _, _ := runCLI(t, nil, "fingerprint", "--ref", "/a"); code != 2 {
		t.Fatalf("missing --content-type: exit %d", code)
	}
	if code, _, _ := runCLI(t, nil, "fingerprint", "--bogus"); code != 2 {
		t.Fatalf("unknown flag: exit %d", code)
	}
}

func TestFingerprint(t *testing.T) {
	code, out, errOut := runCLI(t, nil, "fingerprint", "--ref", "/a//b/", "--content-type", "TEXT/Plain; charset=UTF-8")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != exampleFingerprint {
		t.Fatalf("fingerprint %q", out)
	}

	fp, err := rhash.ParseFingerprint(exampleFingerprint)
	if err != nil {
		t.Fatalf("ParseFingerprint: %v", err)
	}
	code, out, _ = runCLI(t, nil, "fingerprint", "--ref", "/a/b", "--content-type", "text/plain;charset=UTF-8", "--format", "cid")
	if code != 0 || strings.TrimSpace(out) != fp.CID().String() {
		t.Fatalf("cid format: exit %d, %q", code, out)
	}

	if code, _, _ := runCLI(t, nil, "fingerprint", "--ref", "/a", "--content-type", "text/plain", "--format", "base64"); code != 1 {
		t.Fatalf("bad format: exit %d", code)
	}
}

func TestFingerprint_EmptyReference(t *testing.T) {
	code, out, errOut := runCLI(t, nil, "fingerprint", "--ref", "", "--content-type", "application/octet-stream")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != "ecea0013b7983920000f50e15b8431f858307953954841d0f033f450b1b5001b" {
		t.Fatalf("fingerprint %q", out)
	}
}

func TestFingerprint_InvalidDescriptor(t *testing.T) {
	code, _, errOut := runCLI(t, nil, "fingerprint", "--ref", "/a b", "--content-type", "text/plain")
	if code != 1 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(errOut, "InvalidReference [RH-REF-001]") {
		t.Fatalf("stderr %q", errOut)
	}
}

func TestFrameAndHashFramed(t *testing.T) {
	code, out, errOut := runCLI(t, nil, "frame", "--ref", "/a/b", "--content-type", "text/plain;charset=UTF-8")
	if code != 0 {
		t.Fatalf("frame: exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != exampleFramedHex {
		t.Fatalf("frame %q", out)
	}

	framed, err := hex.DecodeString(exampleFramedHex)
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	code, out, errOut = runCLI(t, framed, "hash-framed", "-")
	if code != 0 {
		t.Fatalf("hash-framed: exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != exampleFingerprint {
		t.Fatalf("hash-framed %q", out)
	}

	code, _, errOut = runCLI(t, framed[:5], "hash-framed", "-")
	if code != 1 || !strings.Contains(errOut, "RH-FRAME-001") {
		t.Fatalf("short frame: exit %d, %q", code, errOut)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		component, in, want string
	}{
		{"ref", "HTTP://Example.COM//x/", "http://example.com/x"},
		{"content-type", "Text/HTML; Charset=utf-8", "text/html;charset=utf-8"},
		{"text", "Hello\nWorld", "hello world"},
	}
	for _, tc := range cases {
		code, out, errOut := runCLI(t, nil, "normalize", tc.component, tc.in)
		if code != 0 {
			t.Fatalf("normalize %s: exit %d: %s", tc.component, code, errOut)
		}
		if strings.TrimSuffix(out, "\n") != tc.want {
			t.Fatalf("normalize %s %q = %q, want %q", tc.component, tc.in, out, tc.want)
		}
	}
	if code, _, _ := runCLI(t, nil, "normalize", "header", "x"); code != 2 {
		t.Fatalf("unknown component: exit %d", code)
	}
}

func TestText(t *testing.T) {
	code, out, errOut := runCLI(t, []byte("Hello\nWorld"), "text", "-")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" {
		t.Fatalf("text fingerprint %q", out)
	}
}

func TestBatch(t *testing.T) {
	var in bytes.Buffer
	enc := codec.NewEncoder(&in)
	for _, it := range []batch.Item{
		{Reference: []byte("/a//b/"), ContentType: []byte("TEXT/Plain; charset=UTF-8")},
		{Reference: []byte("/a"), ContentType: []byte("nope")},
	} {
		if err := enc.Encode(it); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}
	code, out, errOut := runCLI(t, in.Bytes(), "batch", "-")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(errOut, "2 descriptors, 1 rejected") {
		t.Fatalf("stderr %q", errOut)
	}
	dec := codec.NewDecoder(strings.NewReader(out))
	var first batch.Result
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if hex.EncodeToString(first.Fingerprint) != exampleFingerprint {
		t.Fatalf("first result %+v", first)
	}
}

func TestRegisterResolveList(t *testing.T) {
	dir := t.TempDir()
	code, out, errOut := runCLI(t, nil, "register", "--store", dir, "--ref", "/a//b/", "--content-type", "TEXT/Plain; charset=UTF-8")
	if code != 0 {
		t.Fatalf("register: exit %d: %s", code, errOut)
	}
	fields := strings.Fields(out)
	if len(fields) != 2 || fields[1] != exampleFingerprint {
		t.Fatalf("register output %q", out)
	}
	id := fields[0]

	want := "reference: /a/b\ncontent-type: text/plain;charset=UTF-8\n"
	for _, key := range []string{id, exampleFingerprint} {
		code, out, errOut = runCLI(t, nil, "resolve", "--store", dir, key)
		if code != 0 {
			t.Fatalf("resolve %s: exit %d: %s", key, code, errOut)
		}
		if out != want {
			t.Fatalf("resolve %s = %q", key, out)
		}
	}

	code, out, _ = runCLI(t, nil, "list", "--store", dir)
	if code != 0 || strings.TrimSpace(out) != exampleFingerprint {
		t.Fatalf("list: exit %d, %q", code, out)
	}

	missing := strings.Repeat("00", 32)
	if code, _, errOut := runCLI(t, nil, "resolve", "--store", dir, missing); code != 1 || !strings.Contains(errOut, "not found") {
		t.Fatalf("resolve missing: exit %d, %q", code, errOut)
	}
	if code, _, _ := runCLI(t, nil, "resolve", "--store", dir, "zzz"); code != 2 {
		t.Fatalf("resolve garbage: exit %d", code)
	}
	if code, _, _ := runCLI(t, nil, "register", "--ref", "/a", "--content-type", "text/plain"); code != 2 {
		t.Fatalf("register without --store: exit %d", code)
	}
}

func TestRemote(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	srv := grpc.NewServer()
	fprpc.RegisterFingerprintsServer(srv, &fprpc.Server{Registry: &registry.Registry{CAS: memory.New()}})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)
	target := lis.Addr().String()

	code, out, errOut := runCLI(t, nil, "remote", "fingerprint", "--target", target, "--ref", "/a//b/", "--content-type", "TEXT/Plain; charset=UTF-8")
	if code != 0 {
		t.Fatalf("remote fingerprint: exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != exampleFingerprint {
		t.Fatalf("remote fingerprint %q", out)
	}

	code, out, errOut = runCLI(t, nil, "remote", "register", "--target", target, "--ref", "/a/b", "--content-type", "text/plain;charset=UTF-8")
	if code != 0 {
		t.Fatalf("remote register: exit %d: %s", code, errOut)
	}
	id := strings.TrimSpace(out)

	code, out, errOut = runCLI(t, nil, "remote", "resolve", "--target", target, id)
	if code != 0 {
		t.Fatalf("remote resolve: exit %d: %s", code, errOut)
	}
	if out != "reference: /a/b\ncontent-type: text/plain;charset=UTF-8\n" {
		t.Fatalf("remote resolve %q", out)
	}

	code, out, _ = runCLI(t, []byte("Hello\nWorld"), "remote", "text", "--target", target, "-")
	if code != 0 || strings.TrimSpace(out) != "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" {
		t.Fatalf("remote text: exit %d, %q", code, out)
	}

	code, _, errOut = runCLI(t, nil, "remote", "fingerprint", "--target", target, "--ref", "/a", "--content-type", "text")
	if code != 1 || !strings.Contains(errOut, "RH-CT-001") {
		t.Fatalf("remote invalid: exit %d, %q", code, errOut)
	}

	if code, _, _ := runCLI(t, nil, "remote", "fingerprint", "--ref", "/a", "--content-type", "text/plain"); code != 2 {
		t.Fatalf("remote without --target: exit %d", code)
	}
	if code, _, _ := runCLI(t, nil, "remote", "bogus"); code != 2 {
		t.Fatalf("remote bogus: exit %d", code)
	}
}

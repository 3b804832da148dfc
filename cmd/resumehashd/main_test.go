package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"xdao.co/resumehash/fprpc"
	"xdao.co/resumehash/internal/config"
	"xdao.co/resumehash/rhash"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func parse(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	fs, v := newFlagSet(io.Discard)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return loadConfig(fs, v)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := parse(t)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg != config.Default() {
		t.Fatalf("got %+v, want defaults", cfg)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resumehashd.yaml")
	yaml := "listen: 127.0.0.1:9000\nalgorithm: sha256\nstore:\n  backend: memory\nlog:\n  format: text\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := parse(t, "--config", path, "--listen", "127.0.0.1:9100", "--store-dir", dir)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Listen != "127.0.0.1:9100" {
		t.Fatalf("listen %q", cfg.Listen)
	}
	if cfg.Log.Format != "text" {
		t.Fatalf("log format from file lost: %q", cfg.Log.Format)
	}
	if cfg.Store.Backend != config.BackendLocalFS || cfg.Store.Dir != dir {
		t.Fatalf("store %+v", cfg.Store)
	}

	cfg, err = parse(t, "--config", path, "--store-dir", dir, "--store-backend", "memory")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Store.Backend != config.BackendMemory {
		t.Fatalf("explicit backend ignored: %+v", cfg.Store)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	if _, err := parse(t, "--store-backend", "s3"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := parse(t, "--algorithm", "md5"); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
	if _, err := parse(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestRun_ListBackends(t *testing.T) {
	var out bytes.Buffer
	if code := run(context.Background(), []string{"--list-backends"}, &out, io.Discard, nil); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if out.String() != "none\nmemory\nlocalfs\n" {
		t.Fatalf("backends %q", out.String())
	}
	if code := run(context.Background(), []string{"--bogus"}, io.Discard, io.Discard, nil); code != 2 {
		t.Fatalf("unknown flag: exit %d", code)
	}
}

func TestRun_ServesAndShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type addrs struct{ grpc, http net.Addr }
	readyc := make(chan addrs, 1)
	var logs lockedBuffer
	done := make(chan int, 1)
	go func() {
		done <- run(ctx, []string{
			"--listen", "127.0.0.1:0",
			"--metrics-listen", "127.0.0.1:0",
			"--store-backend", "memory",
			"--log-format", "text",
		}, io.Discard, &logs, func(g, h net.Addr) { readyc <- addrs{g, h} })
	}()

	var a addrs
	select {
	case a = <-readyc:
	case code := <-done:
		t.Fatalf("run exited early with %d: %s", code, logs.String())
	case <-time.After(10 * time.Second):
		t.Fatalf("daemon did not start")
	}

	client, err := fprpc.Dial(a.grpc.String(), fprpc.DialOptions{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()
	framed, err := rhash.Frame([]byte("/a//b/"), []byte("TEXT/Plain; charset=UTF-8"))
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	fp, err := client.Fingerprint(ctx, framed)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if fp.String() != "ae38f2b3d6f1e51539de4eb86093bb282b794130bf20b333c597ecd339d35b99" {
		t.Fatalf("fingerprint %s", fp)
	}
	if _, err := client.Register(ctx, framed); err != nil {
		t.Fatalf("Register: %v", err)
	}

	resp, err := http.Get("http://" + a.http.String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "resumehash_rpc_requests_total") || !strings.Contains(string(body), "go_goroutines") {
		t.Fatalf("metrics output:\n%s", body)
	}

	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("exit %d: %s", code, logs.String())
		}
	case <-time.After(15 * time.Second):
		t.Fatalf("daemon did not shut down")
	}
	if !strings.Contains(logs.String(), "shutting down") {
		t.Fatalf("logs:\n%s", logs.String())
	}
}

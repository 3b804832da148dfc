package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xdao.co/resumehash/digest"
	"xdao.co/resumehash/rhash"
	"xdao.co/resumehash/storage"
	"xdao.co/resumehash/storage/localfs"
	"xdao.co/resumehash/storage/memory"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resumehashd.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: 0.0.0.0:7000
store:
  backend: localfs
  dir: /var/lib/resumehash
  cache_objects: 128
log:
  format: text
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "0.0.0.0:7000" {
		t.Fatalf("listen = %q", cfg.Listen)
	}
	if cfg.MetricsListen != Default().MetricsListen {
		t.Fatalf("metrics_listen default lost: %q", cfg.MetricsListen)
	}
	if cfg.Store.Backend != BackendLocalFS || cfg.Store.Dir != "/var/lib/resumehash" || cfg.Store.CacheObjects != 128 {
		t.Fatalf("store = %+v", cfg.Store)
	}
	if cfg.Log.Format != "text" || cfg.Log.Level != "info" {
		t.Fatalf("log = %+v", cfg.Log)
	}
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "listen: 127.0.0.1:1\nlisten_addr: oops\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no listen", func(c *Config) { c.Listen = "" }, "listen address"},
		{"bad listen", func(c *Config) { c.Listen = "nohost" }, "listen"},
		{"bad metrics", func(c *Config) { c.MetricsListen = "x" }, "metrics_listen"},
		{"bad algorithm", func(c *Config) { c.Algorithm = "md5" }, "unsupported algorithm"},
		{"negative msg", func(c *Config) { c.MaxMsgBytes = -1 }, "max_msg_bytes"},
		{"localfs without dir", func(c *Config) { c.Store.Backend = BackendLocalFS }, "store.dir"},
		{"bad backend", func(c *Config) { c.Store.Backend = "s3" }, "store.backend"},
		{"negative cache", func(c *Config) { c.Store.CacheObjects = -2 }, "cache_objects"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestOpenStore(t *testing.T) {
	cfg := Default()
	cas, err := cfg.OpenStore()
	if err != nil || cas != nil {
		t.Fatalf("none backend: %v %v", cas, err)
	}

	cfg.Store.Backend = BackendMemory
	cas, err = cfg.OpenStore()
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := cas.(*memory.CAS); !ok {
		t.Fatalf("memory backend opened %T", cas)
	}

	cfg.Store = StoreConfig{Backend: BackendLocalFS, Dir: t.TempDir()}
	cas, err = cfg.OpenStore()
	if err != nil {
		t.Fatalf("localfs backend: %v", err)
	}
	if _, ok := cas.(*localfs.CAS); !ok {
		t.Fatalf("localfs backend opened %T", cas)
	}

	cfg.Store.CacheObjects = 8
	cas, err = cfg.OpenStore()
	if err != nil {
		t.Fatalf("cached localfs backend: %v", err)
	}
	if _, ok := cas.(storage.Tiered); !ok {
		t.Fatalf("cached localfs backend opened %T", cas)
	}
}

func TestFingerprinter(t *testing.T) {
	if rhash.ConstantTime {
		t.Skip("constant-time builds only fingerprint with sha256")
	}
	cfg := Default()
	cfg.Algorithm = "sha3-256"
	f, err := cfg.Fingerprinter()
	if err != nil {
		t.Fatalf("Fingerprinter: %v", err)
	}
	if f.Algorithm != digest.SHA3_256 {
		t.Fatalf("algorithm = %s", f.Algorithm)
	}
}

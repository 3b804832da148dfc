package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_JSONToFallback(t *testing.T) {
	var buf bytes.Buffer
	l, c, err := New(Options{}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	l.Info("registered", "cid", "bafk")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %q", buf.String())
	}
	if rec["msg"] != "registered" || rec["cid"] != "bafk" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNew_TextAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Options{Format: "text", Level: "warn"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("dropped")
	l.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "msg=kept") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resumehashd.log")
	l, c, err := New(Options{File: path, MaxSizeMB: 1}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("to file")
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(b), "to file") {
		t.Fatalf("log file content %q", b)
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, _, err := New(Options{Format: "xml"}, nil); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, _, err := New(Options{Level: "loud"}, nil); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

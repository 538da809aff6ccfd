package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oisee/bcdump/pkg/bytecode"
)

func instrD(op, a uint8, d uint16) uint32 {
	return uint32(op) | uint32(a)<<8 | uint32(d)<<16
}

func le32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// ret0Dump builds a minimal single-prototype, single-instruction (RET0) dump.
func ret0Dump() []byte {
	const opRET0 = 0x4b
	payload := []byte{0, 0, 0, 0, 0x00, 0x00, 0x01}
	payload = append(payload, le32(instrD(opRET0, 0, 0))...)

	var buf []byte
	buf = append(buf, 0x1b, 0x4c, 0x4a, 0x02, byte(bytecode.FlagStrip))
	buf = append(buf, byte(len(payload)))
	buf = append(buf, payload...)
	buf = append(buf, 0x00)
	return buf
}

func writeDump(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, ret0Dump(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestWorkerPoolRunFilesSummarizesEachDump(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeDump(t, dir, "a.luac"),
		writeDump(t, dir, "b.luac"),
		writeDump(t, dir, "c.luac"),
	}

	wp := NewWorkerPool(2)
	summaries := wp.RunFiles(paths)
	if len(summaries) != len(paths) {
		t.Fatalf("expected %d summaries, got %d", len(paths), len(summaries))
	}

	seen := make(map[string]bool)
	for _, s := range summaries {
		if s.Err != nil {
			t.Fatalf("unexpected error for %s: %v", s.Path, s.Err)
		}
		if s.Prototypes != 1 {
			t.Fatalf("expected 1 prototype for %s, got %d", s.Path, s.Prototypes)
		}
		if s.Blocks != 1 || s.Edges != 0 {
			t.Fatalf("unexpected CFG shape for %s: blocks=%d edges=%d", s.Path, s.Blocks, s.Edges)
		}
		seen[s.Path] = true
	}
	for _, p := range paths {
		if !seen[p] {
			t.Fatalf("missing summary for %s", p)
		}
	}

	dumps, protos := wp.Stats()
	if dumps != int64(len(paths)) || protos != int64(len(paths)) {
		t.Fatalf("Stats() = (%d, %d), want (%d, %d)", dumps, protos, len(paths), len(paths))
	}
}

func TestWorkerPoolRunFilesReportsMissingFile(t *testing.T) {
	wp := NewWorkerPool(1)
	summaries := wp.RunFiles([]string{filepath.Join(t.TempDir(), "missing.luac")})
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].Err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestNewWorkerPoolDefaultsWorkerCount(t *testing.T) {
	wp := NewWorkerPool(0)
	if wp.NumWorkers <= 0 {
		t.Fatalf("expected a positive default worker count, got %d", wp.NumWorkers)
	}
}

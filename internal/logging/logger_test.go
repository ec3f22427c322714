package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPrintfAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mandaact.log")
	l, err := New(path)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	l.Printf("level up user=%s %d -> %d\n", "u", 4, 5)
	l.Printf("grant activated type=%s", "comeback")
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", lines)
	}
	if !strings.HasSuffix(lines[0], "] level up user=u 4 -> 5") || !strings.HasPrefix(lines[0], "[") {
		t.Fatalf("unexpected line %q", lines[0])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Printf("ignored %d", 1)
	if err := l.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

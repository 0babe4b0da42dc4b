package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarn)
	t.Cleanup(func() { SetLevel(LevelInfo) })

	Debug("hidden debug")
	Info("hidden info")
	Warn("shown warn", "uid", "abc")
	Error("shown error", errors.New("boom"), "file", "a b.ics")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("filtered lines leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown warn uid=abc") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, `[ERROR] shown error err=boom file="a b.ics"`) {
		t.Errorf("missing error line: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatKVsIgnoresOddTail(t *testing.T) {
	got := formatKVs("a", 1, "b")
	if got != " a=1" {
		t.Errorf("formatKVs = %q", got)
	}
}

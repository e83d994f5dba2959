// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"warn", LevelWarn, true},
		{"warning", LevelWarn, true},
		{"Error", LevelError, true},
		{"fatal", LevelFatal, true},
		{"verbose", LevelInfo, false},
		{"", LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLevel(tt.name)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = (%v, %v), expected (%v, %v)",
					tt.name, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	oldLevel := GetLevel()
	defer SetLevel(oldLevel)

	SetLevel(LevelWarn)
	Debugf("debug message")
	Infof("info message")
	Warnf("warn message")
	Errorf("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below the level leaked through:\n%s", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("messages at or above the level missing:\n%s", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "[ERROR]") {
		t.Errorf("level tags missing:\n%s", out)
	}
}

func TestSetLevel(t *testing.T) {
	oldLevel := GetLevel()
	defer SetLevel(oldLevel)

	SetLevel(LevelError)
	if got := GetLevel(); got != LevelError {
		t.Fatalf("GetLevel = %v, expected %v", got, LevelError)
	}
}

func TestLevelString(t *testing.T) {
	for l, want := range map[Level]string{
		LevelDebug: "DEBUG",
		LevelInfo:  "INFO",
		LevelWarn:  "WARN",
		LevelError: "ERROR",
		LevelFatal: "FATAL",
		Level(99):  "UNKNOWN",
	} {
		if got := l.String(); got != want {
			t.Errorf("Level(%d).String() = %q, expected %q", l, got, want)
		}
	}
}

package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		level string
		dev   bool
		want  zapcore.Level
	}{
		{"", false, zapcore.InfoLevel},
		{"", true, zapcore.DebugLevel},
		{"warn", false, zapcore.WarnLevel},
		{"debug", false, zapcore.DebugLevel},
	}
	for _, tc := range cases {
		logger, err := New(tc.level, tc.dev)
		if err != nil {
			t.Fatalf("New(%q, %v): %v", tc.level, tc.dev, err)
		}
		if got := logger.Level(); got != tc.want {
			t.Errorf("New(%q, %v) level = %v, want %v", tc.level, tc.dev, got, tc.want)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

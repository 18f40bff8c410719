package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize_Silent(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected nop logger when no level is set")
	}
}

func TestInitialize_FromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")

	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv failed: %v", err)
	}
	l := GetLogger()
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"info", zapcore.InfoLevel, false},
		{"warn", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogWords(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogWords("table words", []uint32{0x82000000, 0x15})

	entries := logs.FilterMessage("table words").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["count"] != int64(2) {
		t.Errorf("count = %v, want 2", fields["count"])
	}
}

func TestHexFields(t *testing.T) {
	if f := Hex32("crc", 0xCBF43926); f.String != "0xcbf43926" {
		t.Errorf("Hex32 = %q", f.String)
	}
	if f := Hex64("addr", 0x0c100000); f.String != "0x0c100000" {
		t.Errorf("Hex64 = %q", f.String)
	}
}

func TestDumps(t *testing.T) {
	if got := asciiDump([]byte("AB\x00")); got != "AB." {
		t.Errorf("asciiDump = %q", got)
	}
	if got := hexDump([]byte{0xde, 0xad}); got != "dead" {
		t.Errorf("hexDump = %q", got)
	}
}

package log

import (
	"context"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"nonsense", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContextValues(t *testing.T) {
	ctx := WithRunID(WithDeliveryID(context.Background(), "d-1"), "r-1")

	if v, _ := ctx.Value(DeliveryIDKey).(string); v != "d-1" {
		t.Errorf("expected delivery id d-1, got %q", v)
	}
	if v, _ := ctx.Value(RunIDKey).(string); v != "r-1" {
		t.Errorf("expected run id r-1, got %q", v)
	}

	l := Init(ZapConfig{Level: "error", Mode: ModeProduction, Encoding: EncodingJSON})
	l.Info(ctx, "not emitted at error level")
	l.Debugf(ctx, "%s", "still fine")
}

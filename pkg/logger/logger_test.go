package logger

import (
	"testing"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"go.uber.org/zap/zapcore"
)

func TestLookupLevel(t *testing.T) {
	tests := []struct {
		name     string
		wantZap  zapcore.Level
		wantHlog hlog.Level
	}{
		{name: "debug", wantZap: zapcore.DebugLevel, wantHlog: hlog.LevelDebug},
		{name: " WARN ", wantZap: zapcore.WarnLevel, wantHlog: hlog.LevelWarn},
		{name: "Error", wantZap: zapcore.ErrorLevel, wantHlog: hlog.LevelError},
		{name: "INFO", wantZap: zapcore.InfoLevel, wantHlog: hlog.LevelInfo},
		{name: "verbose", wantZap: zapcore.InfoLevel, wantHlog: hlog.LevelInfo},
		{name: "", wantZap: zapcore.InfoLevel, wantHlog: hlog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lv := lookupLevel(tt.name)
			if lv.zap != tt.wantZap || lv.hlog != tt.wantHlog {
				t.Errorf("lookupLevel(%q) = %v/%v, want %v/%v", tt.name, lv.zap, lv.hlog, tt.wantZap, tt.wantHlog)
			}
		})
	}
}

func TestLoggerIsUsableBeforeInit(t *testing.T) {
	Logger.Info("no-op before Init")
	Sync()
}

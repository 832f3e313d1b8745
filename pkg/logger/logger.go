package logger

import (
	"io"
	"os"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzap "github.com/hertz-contrib/logger/zap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"StaffHub/config"
)

var (
	// Logger is a no-op until Init runs.
	Logger   = zap.NewNop()
	logClose io.Closer
)

func Init() {
	lv := lookupLevel(config.Cfg.LoggerLevel)
	coreLevel := zap.NewAtomicLevelAt(lv.zap)

	hzLogger := hertzzap.NewLogger(
		hertzzap.WithCoreEnc(buildEncoder()),
		hertzzap.WithCoreWs(buildWriteSyncer()),
		hertzzap.WithCoreLevel(coreLevel),
		hertzzap.WithZapOptions(
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
	)
	hlog.SetLogger(hzLogger)
	hlog.SetLevel(lv.hlog)

	Logger = hzLogger.Logger().With(
		zap.String("service", config.Cfg.ServiceName),
		zap.String("environment", config.Cfg.Environment),
	)
	Logger.Info("Logger ready",
		zap.String("level", lv.zap.CapitalString()),
		zap.String("format", config.Cfg.LoggerFormat),
		zap.String("output", config.Cfg.LoggerOutputPath),
	)
}

func Sync() {
	if Logger != nil {
		// stdout sync returns EINVAL on some platforms
		_ = Logger.Sync()
	}

	if logClose != nil {
		_ = logClose.Close()
	}
}

func buildEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	isText := config.Cfg.IsDevelopment() || strings.EqualFold(config.Cfg.LoggerFormat, "text")
	if isText {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func buildWriteSyncer() zapcore.WriteSyncer {
	if strings.EqualFold(config.Cfg.LoggerOutputPath, "stdout") {
		return zapcore.AddSync(os.Stdout)
	}

	file, err := os.OpenFile(config.Cfg.LoggerOutputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		panic("failed to open log file: " + err.Error())
	}
	logClose = file

	return zapcore.AddSync(file)
}

type level struct {
	zap  zapcore.Level
	hlog hlog.Level
}

// levels maps LOGGER_LEVEL values to the zap core level and the matching hertz level.
var levels = map[string]level{
	"DEBUG": {zapcore.DebugLevel, hlog.LevelDebug},
	"INFO":  {zapcore.InfoLevel, hlog.LevelInfo},
	"WARN":  {zapcore.WarnLevel, hlog.LevelWarn},
	"ERROR": {zapcore.ErrorLevel, hlog.LevelError},
}

// lookupLevel falls back to INFO for unknown names.
func lookupLevel(name string) level {
	if lv, ok := levels[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return lv
	}
	return levels["INFO"]
}

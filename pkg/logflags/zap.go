package logflags

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func makeLogger(flag bool, layer string) Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:      "timestamp",
		LevelKey:     "level",
		MessageKey:   "message",
		CallerKey:    "caller",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	level := zapcore.ErrorLevel
	if flag {
		level = zapcore.DebugLevel
	}

	out := zapcore.AddSync(os.Stderr)
	if logOut != nil {
		out = zapcore.AddSync(logOut)
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		out,
		level,
	)

	return zap.New(core, zap.AddCaller()).Sugar().With("layer", layer)
}

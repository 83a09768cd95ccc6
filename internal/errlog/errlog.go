// Package errlog is the append-only error sink of a migration run. Warnings
// and failures land in a persistent file, independent of console and
// progress output, so they stay inspectable after the process exits.
// Writing is strictly best-effort: diagnostics must never crash the
// pipeline, so every failure inside this package is swallowed.
package errlog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log appends timestamped lines to a file. The zero-value-like Log returned
// when the file cannot be opened discards everything.
type Log struct {
	logger *zap.SugaredLogger
	file   *os.File
}

// Open opens (or creates) the sink at path in append mode. On failure the
// returned Log is a no-op; the run carries on without persistent
// diagnostics rather than failing.
func Open(path string) *Log {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return &Log{logger: zap.NewNop().Sugar()}
	}

	// One "<ISO-8601 timestamp> - <message>" line per entry.
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "ts",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		ConsoleSeparator: " - ",
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(file), zapcore.InfoLevel)

	return &Log{
		logger: zap.New(core).Sugar(),
		file:   file,
	}
}

// Record appends one formatted line. It never fails; sink write errors are
// discarded internally.
func (l *Log) Record(format string, args ...any) {
	l.logger.Infof(format, args...)
}

// Close flushes and closes the sink.
func (l *Log) Close() {
	_ = l.logger.Sync()
	if l.file != nil {
		_ = l.file.Close()
	}
}

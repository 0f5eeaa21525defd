package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/Laisky/errors/v2"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Quiet suppresses everything but errors on stderr.
	Quiet bool
	// Verbose prints debug events on stderr.
	Verbose bool
	// Color paints warnings and errors.
	Color bool
	// File, when set, receives every debug event as JSON.
	File string
}

// fileLogger only writes to File, so messages already printed are not echoed twice.
var (
	mu         sync.Mutex
	opts       Options
	out        io.Writer = os.Stderr
	logger               = zap.NewNop()
	fileLogger           = zap.NewNop()
	logfile    *os.File
)

func Init(o Options) error {
	mu.Lock()
	defer mu.Unlock()
	opts = o

	var cores []zapcore.Core
	if o.Verbose && !o.Quiet {
		enc := zap.NewDevelopmentEncoderConfig()
		if o.Color {
			enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(zapcore.AddSync(out)), zapcore.DebugLevel))
	}
	if o.File != "" {
		if err := os.MkdirAll(filepath.Dir(o.File), 0o755); err != nil {
			return errors.Wrap(err, "create log dir")
		}
		f, err := os.OpenFile(o.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		logfile = f
		fc := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(f), zapcore.DebugLevel)
		fileLogger = zap.New(fc)
		cores = append(cores, fc)
	} else {
		fileLogger = zap.NewNop()
	}

	if len(cores) == 0 {
		logger = zap.NewNop()
		return nil
	}
	logger = zap.New(zapcore.NewTee(cores...))
	return nil
}

// SetOutput redirects stderr messages. Call Init afterwards to apply it to debug output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = logger.Sync()
	_ = fileLogger.Sync()
	if logfile != nil {
		_ = logfile.Close()
		logfile = nil
	}
}

// Logger is the structured logger behind Debug.
func Logger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func color(c text.Color, s string) string {
	if !opts.Color {
		return s
	}
	return c.Sprint(s)
}

func write(s string) {
	_, _ = fmt.Fprintln(out, s)
}

// Say prints a diagnostic line unless quiet.
func Say(msg string) {
	mu.Lock()
	defer mu.Unlock()
	fileLogger.Info(msg)
	if opts.Quiet {
		return
	}
	write(msg)
}

// Warn prints a yellow diagnostic line unless quiet.
func Warn(msg string) {
	mu.Lock()
	defer mu.Unlock()
	fileLogger.Warn(msg)
	if opts.Quiet {
		return
	}
	write(color(text.FgYellow, msg))
}

// Error always prints.
func Error(msg string) {
	mu.Lock()
	defer mu.Unlock()
	fileLogger.Error(msg)
	write(color(text.FgRed, msg))
}

func Debug(msg string, fields ...zap.Field) {
	Logger().Debug(msg, fields...)
}

package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps both slog and zap loggers
type Logger struct {
	slog *slog.Logger
	zap  *zap.Logger
}

// Config holds logging configuration
type Config struct {
	Level     string
	Format    string // "json" or "console"
	Output    string // "stdout" or "stderr"
	AddCaller bool
	AddStack  bool
}

// DefaultConfig returns JSON logging at info level on stdout.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: "stdout"}
}

// NewLogger creates a new structured logger
func NewLogger(config Config) (*Logger, error) {
	if config.Output == "" {
		config.Output = "stdout"
	}
	if config.Format != "console" {
		config.Format = "json"
	}

	var w io.Writer = os.Stdout
	if config.Output == "stderr" {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: parseSlogLevel(config.Level), AddSource: config.AddCaller}
	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if config.Format == "console" {
		handler = slog.NewTextHandler(w, opts)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = parseZapLevel(config.Level)
	zapConfig.Encoding = config.Format
	if config.Format == "console" {
		zapConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	zapConfig.OutputPaths = []string{config.Output}
	zapConfig.ErrorOutputPaths = []string{config.Output}
	zapConfig.DisableCaller = !config.AddCaller
	zapConfig.DisableStacktrace = !config.AddStack

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return New(slog.New(handler), zapLogger), nil
}

// New combines existing loggers.
func New(s *slog.Logger, z *zap.Logger) *Logger {
	return &Logger{slog: s, zap: z}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), zap.NewNop())
}

// parseSlogLevel parses slog level from string
func parseSlogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseZapLevel parses zap level from string
func parseZapLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		slog: l.slog.With("request_id", requestID),
		zap:  l.zap.With(zap.String("request_id", requestID)),
	}
}

// WithFields adds fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	slogAttrs := make([]any, 0, len(fields)*2)
	zapFields := make([]zap.Field, 0, len(fields))

	for key, value := range fields {
		slogAttrs = append(slogAttrs, key, value)
		zapFields = append(zapFields, zap.Any(key, value))
	}

	return &Logger{
		slog: l.slog.With(slogAttrs...),
		zap:  l.zap.With(zapFields...),
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.slog.Debug(msg, args...)
	l.zap.Debug(msg, convertToZapFields(args)...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.slog.Info(msg, args...)
	l.zap.Info(msg, convertToZapFields(args)...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.slog.Warn(msg, args...)
	l.zap.Warn(msg, convertToZapFields(args)...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.slog.Error(msg, args...)
	l.zap.Error(msg, convertToZapFields(args)...)
}

// convertToZapFields converts interface{} args to zap.Field
func convertToZapFields(args []interface{}) []zap.Field {
	if len(args) == 0 {
		return nil
	}

	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args)-1; i += 2 {
		if key, ok := args[i].(string); ok {
			fields = append(fields, zap.Any(key, args[i+1]))
		}
	}
	return fields
}

// LogRequest logs an HTTP request
func (l *Logger) LogRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	l.zap.Info("HTTP request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", statusCode),
		zap.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	)
}

// LogValidation logs a finished validation
func (l *Logger) LogValidation(ctx context.Context, practiceID, decision string, finalScore *float64, duration time.Duration) {
	fields := []zap.Field{
		zap.String("practice_id", practiceID),
		zap.String("decision", decision),
		zap.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	}
	if finalScore != nil {
		fields = append(fields, zap.Float64("final_score", *finalScore))
	}
	l.zap.Info("Practice validated", fields...)
}

// LogAnalyzerFallback logs an analyzer replaced by the neutral default
func (l *Logger) LogAnalyzerFallback(ctx context.Context, criterion, reason string) {
	l.zap.Warn("Analyzer fallback",
		zap.String("criterion", criterion),
		zap.String("reason", reason),
	)
}

// LogRetry logs a retry operation
func (l *Logger) LogRetry(ctx context.Context, service string, attempt int, err error) {
	l.zap.Warn("Request retry",
		zap.String("service", service),
		zap.Int("attempt", attempt),
		zap.Error(err),
	)
}

// LogCircuitBreaker logs a circuit breaker operation
func (l *Logger) LogCircuitBreaker(ctx context.Context, service, from, to string) {
	l.zap.Warn("Circuit breaker state changed",
		zap.String("service", service),
		zap.String("from", from),
		zap.String("to", to),
	)
}

// Sync syncs the logger
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Slog returns the slog logger
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Zap returns the zap logger
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
	// Fs is the filesystem holding the log file (nil = OS filesystem)
	Fs afero.Fs
}

// sink is the destination shared by a logger and everything derived
// from it with WithFields
type sink struct {
	mu          sync.Mutex
	fs          afero.Fs
	file        afero.File // nil for stream loggers
	writer      io.Writer
	currentSize int64
}

// FileLogger implements Logger interface with file or stream output
type FileLogger struct {
	config FileLoggerConfig
	out    *sink
	fields Fields
}

// NewFileLogger creates a new file logger
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}

	// Ensure directory exists
	dir := filepath.Dir(config.Path)
	if err := config.Fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, size, err := openLogFile(config.Fs, config.Path)
	if err != nil {
		return nil, err
	}

	return &FileLogger{
		config: config,
		out: &sink{
			fs:          config.Fs,
			file:        file,
			writer:      file,
			currentSize: size,
		},
	}, nil
}

// NewStreamLogger creates a logger writing to w, typically os.Stderr.
// Stream loggers never rotate and Close leaves w open.
func NewStreamLogger(w io.Writer, format Format, level Level) *FileLogger {
	return &FileLogger{
		config: FileLoggerConfig{Format: format, Level: level},
		out:    &sink{writer: w},
	}
}

func openLogFile(fs afero.Fs, path string) (afero.File, int64, error) {
	// Open file in append mode
	file, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("failed to stat log file: %w", err)
	}

	return file, info.Size(), nil
}

// Debug logs a debug message
func (l *FileLogger) Debug(ctx context.Context, msg string, fields Fields) {
	if l.config.Level <= DebugLevel {
		l.log(DebugLevel, msg, nil, fields)
	}
}

// Info logs an info message
func (l *FileLogger) Info(ctx context.Context, msg string, fields Fields) {
	if l.config.Level <= InfoLevel {
		l.log(InfoLevel, msg, nil, fields)
	}
}

// Warn logs a warning message
func (l *FileLogger) Warn(ctx context.Context, msg string, fields Fields) {
	if l.config.Level <= WarnLevel {
		l.log(WarnLevel, msg, nil, fields)
	}
}

// Error logs an error message
func (l *FileLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	if l.config.Level <= ErrorLevel {
		l.log(ErrorLevel, msg, err, fields)
	}
}

// WithFields returns a logger with additional fields writing to the
// same destination
func (l *FileLogger) WithFields(fields Fields) Logger {
	return &FileLogger{
		config: l.config,
		out:    l.out,
		fields: mergeFields(l.fields, fields),
	}
}

// Close flushes and closes the log file
func (l *FileLogger) Close() error {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	if l.out.file != nil {
		err := l.out.file.Close()
		l.out.file = nil
		l.out.writer = io.Discard
		return err
	}
	return nil
}

// log writes a log entry
func (l *FileLogger) log(level Level, msg string, err error, fields Fields) {
	allFields := mergeFields(l.fields, fields)

	var line []byte
	if l.config.Format == FormatJSON {
		var jsonErr error
		if line, jsonErr = formatJSON(level, msg, err, allFields); jsonErr != nil {
			return
		}
	} else {
		line = formatText(level, msg, err, allFields)
	}

	out := l.out
	out.mu.Lock()
	defer out.mu.Unlock()

	// Check rotation before writing
	if l.config.MaxSize > 0 && out.currentSize >= l.config.MaxSize {
		l.rotate()
	}

	n, _ := out.writer.Write(line)
	out.currentSize += int64(n)
}

func mergeFields(base, extra Fields) Fields {
	merged := make(Fields, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// formatJSON formats a log entry as one JSON object per line
func formatJSON(level Level, msg string, err error, fields Fields) ([]byte, error) {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     level.String(),
		"message":   msg,
	}

	if err != nil {
		entry["error"] = err.Error()
	}

	for k, v := range fields {
		entry[k] = v
	}

	data, jsonErr := json.Marshal(entry)
	if jsonErr != nil {
		return nil, jsonErr
	}

	return append(data, '\n'), nil
}

// formatText formats a log entry as plain text with sorted fields
func formatText(level Level, msg string, err error, fields Fields) []byte {
	var b strings.Builder

	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	fmt.Fprintf(&b, " [%s] %s", level.String(), msg)

	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}

	b.WriteByte('\n')
	return []byte(b.String())
}

// rotate rotates the log file; must be called with the sink locked
func (l *FileLogger) rotate() {
	out := l.out
	if out.file == nil {
		return
	}

	out.file.Close()

	path := l.config.Path
	fs := out.fs

	// Rotate existing backups
	for i := l.config.MaxBackups - 1; i >= 1; i-- {
		fs.Rename(fmt.Sprintf("%s.%d", path, i), fmt.Sprintf("%s.%d", path, i+1))
	}

	fs.Rename(path, path+".1")

	// Remove oldest if exceeds max backups
	if l.config.MaxBackups > 0 {
		fs.Remove(fmt.Sprintf("%s.%d", path, l.config.MaxBackups+1))
	}

	file, _, err := openLogFile(fs, path)
	if err != nil {
		out.file = nil
		out.writer = io.Discard
		return
	}

	out.file = file
	out.writer = file
	out.currentSize = 0
}

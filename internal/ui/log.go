package ui

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"
)

type LogLevel int

const (
	LogLevelError = LogLevel(1 << iota)
	LogLevelInfo
	LogLevelNotice
	LogLevelDebug
)

var GlobalLogLevel = LogLevelError | LogLevelInfo | LogLevelNotice

var (
	logMu  sync.Mutex
	logBuf = make([]byte, 0, 512)
)

// SetQuiet keeps only errors.
func SetQuiet() {
	GlobalLogLevel = LogLevelError
}

// SetVerbose enables debug output.
func SetVerbose() {
	GlobalLogLevel |= LogLevelDebug
}

func IsLogLevelDebug() bool {
	return GlobalLogLevel&LogLevelDebug > 0
}

func Fatalf(prefix, format string, v ...any) {
	logf(prefix, "FATAL", format, v...)
	os.Exit(1)
}

func Errorf(prefix, format string, v ...any) {
	if GlobalLogLevel&LogLevelError == 0 {
		return
	}
	logf(prefix, "ERROR", format, v...)
}

func Logf(prefix, format string, v ...any) {
	if GlobalLogLevel&LogLevelInfo == 0 {
		return
	}
	logf(prefix, "INFO", format, v...)
}

func Noticef(prefix, format string, v ...any) {
	if GlobalLogLevel&LogLevelNotice == 0 {
		return
	}
	logf(prefix, "NOTICE", format, v...)
}

func Debugf(prefix, format string, v ...any) {
	if GlobalLogLevel&LogLevelDebug == 0 {
		return
	}
	logf(prefix, "DEBUG", format, v...)
}

func logf(prefix, class, format string, v ...any) {
	logMu.Lock()
	defer logMu.Unlock()

	buf := time.Now().UTC().AppendFormat(logBuf[:0], "2006-01-02 15:04:05.000")
	buf = fmt.Appendf(buf, " [%s] %s ", prefix, class)
	buf = fmt.Appendf(buf, format, v...)
	buf = append(bytes.TrimSpace(buf), '\n')
	_, _ = Stderr.Write(buf)
	logBuf = buf
}

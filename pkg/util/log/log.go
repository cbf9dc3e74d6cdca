// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// Package log is a small ctx-first logging facade over logrus. The log tags
// attached to the context of a message become fields of its entry.
package log

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Severity is the importance of a log entry.
type Severity int32

// The severities, in increasing order of importance.
const (
	INFO Severity = iota + 1
	WARNING
	ERROR
	FATAL
)

func (s Severity) String() string {
	switch s {
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (s Severity) logrusLevel() logrus.Level {
	switch s {
	case WARNING:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	case FATAL:
		// logrus.FatalLevel would exit from inside logrus; exiting is ours.
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

var logging struct {
	verbosity int32 // accessed atomically

	mu struct {
		sync.Mutex
		logger     *logrus.Logger
		redactable bool
		exitFunc   func(int)
	}
}

func init() {
	logging.mu.logger = newLogger(os.Stderr)
}

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	return l
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	logging.mu.logger.SetOutput(w)
}

// SetVerbosity sets the level up to which V returns true.
func SetVerbosity(level int32) {
	atomic.StoreInt32(&logging.verbosity, level)
}

// SetRedactable sets whether messages keep their redaction markers around
// unsafe values.
func SetRedactable(redactable bool) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	logging.mu.redactable = redactable
}

// V returns whether verbose messages at the given level are logged.
func V(level int32) bool {
	return atomic.LoadInt32(&logging.verbosity) >= level
}

// Infof logs to the INFO severity.
func Infof(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, INFO, format, args)
}

// Warningf logs to the WARNING severity.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, WARNING, format, args)
}

// Errorf logs to the ERROR severity.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, ERROR, format, args)
}

// Fatalf logs to the FATAL severity and exits the process with status 1.
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, FATAL, format, args)
	exit(1)
}

// VEventf logs to the INFO severity if verbosity is at least level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	if V(level) {
		addStructured(ctx, INFO, format, args)
	}
}

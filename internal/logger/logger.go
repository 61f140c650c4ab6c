// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logger is a thin, leveled wrapper over log/slog. When several
// writers are given, handlers fan out through samber/slog-multi so every
// writer receives every record without the call sites knowing.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// Logger is the leveled logging surface every package in this module uses.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type options struct {
	debug   bool
	quiet   bool
	format  string
	writers []io.Writer
}

// Option configures NewLogger.
type Option func(*options)

// WithDebug lowers the minimum level to slog.LevelDebug.
func WithDebug() Option { return func(o *options) { o.debug = true } }

// WithQuiet discards everything, including records for writers added with
// WithWriter.
func WithQuiet() Option { return func(o *options) { o.quiet = true } }

// WithFormat selects "text" (the default) or "json" output.
func WithFormat(format string) Option { return func(o *options) { o.format = format } }

// WithWriter adds an additional destination. May be called more than once;
// every writer added receives every record, fanned out via slog-multi.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writers = append(o.writers, w) }
}

// NewLogger builds a Logger from opts. With no WithWriter option, it logs
// to os.Stderr only.
func NewLogger(opts ...Option) Logger {
	o := &options{format: "text"}
	for _, opt := range opts {
		opt(o)
	}
	if o.quiet {
		return &slogLogger{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
	}

	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	writers := o.writers
	if len(writers) == 0 {
		writers = []io.Writer{os.Stderr}
	}

	handlers := make([]slog.Handler, 0, len(writers))
	for _, w := range writers {
		if o.format == "json" {
			handlers = append(handlers, slog.NewJSONHandler(w, handlerOpts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, handlerOpts))
		}
	}

	var handler slog.Handler
	if len(handlers) == 1 {
		handler = handlers[0]
	} else {
		handler = slogmulti.Fanout(handlers...)
	}
	return &slogLogger{l: slog.New(handler)}
}

// Default is the package-level logger used by code with no injected
// Logger, such as test helpers.
var Default Logger = NewLogger()

type slogLogger struct{ l *slog.Logger }

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) Debugf(format string, args ...any) { s.l.Debug(fmt.Sprintf(format, args...)) }
func (s *slogLogger) Infof(format string, args ...any)  { s.l.Info(fmt.Sprintf(format, args...)) }
func (s *slogLogger) Warnf(format string, args ...any)  { s.l.Warn(fmt.Sprintf(format, args...)) }
func (s *slogLogger) Errorf(format string, args ...any) { s.l.Error(fmt.Sprintf(format, args...)) }

// Package log provides the default slog-backed logger provider.
//
// This file wires the Logger and LoggerProvider interfaces to Go's standard
// log/slog package. The default provider delegates to slog.Default(), so a
// call to SetupLogger configures every logger handed out by GetLogger and
// GetLoggerWithName. Tests can swap the provider with SetLoggerProvider.

package log

import (
	"context"
	"log/slog"
	"sync"
)

// slogLogger adapts a *slog.Logger to the Logger interface.
// Level filtering is applied by the owning provider before delegation so that
// SetLevel takes effect without rebuilding the underlying handler.
type slogLogger struct {
	logger   *slog.Logger
	provider *SlogProvider
}

// Debug implements Logger.Debug.
func (s *slogLogger) Debug(msg string, fields ...any) {
	if s.provider.enabled(LevelDebug) {
		s.logger.Debug(msg, fields...)
	}
}

// Info implements Logger.Info.
func (s *slogLogger) Info(msg string, fields ...any) {
	if s.provider.enabled(LevelInfo) {
		s.logger.Info(msg, fields...)
	}
}

// Warn implements Logger.Warn.
func (s *slogLogger) Warn(msg string, fields ...any) {
	if s.provider.enabled(LevelWarn) {
		s.logger.Warn(msg, fields...)
	}
}

// Error implements Logger.Error.
func (s *slogLogger) Error(msg string, fields ...any) {
	if s.provider.enabled(LevelError) {
		s.logger.Error(msg, fields...)
	}
}

// With implements Logger.With.
func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{
		logger:   s.logger.With(fields...),
		provider: s.provider,
	}
}

// Enabled implements Logger.Enabled.
func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.provider.enabled(level) && s.logger.Enabled(ctx, slog.Level(level))
}

// SlogProvider implements LoggerProvider on top of the process-wide slog
// default logger. Loggers are created lazily against slog.Default() so that
// configuration applied via SetupLogger is always picked up.
type SlogProvider struct {
	mu    sync.RWMutex
	level Level
}

// NewSlogProvider creates a provider with the minimum level set to Info.
func NewSlogProvider() *SlogProvider {
	return &SlogProvider{level: LevelInfo}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *SlogProvider) GetLogger() Logger {
	return &slogLogger{logger: slog.Default(), provider: p}
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
// The name is attached under ComponentKey on every record.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return &slogLogger{
		logger:   slog.Default().With(ComponentKey, name),
		provider: p,
	}
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *SlogProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

func (p *SlogProvider) enabled(level Level) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return level >= p.level
}

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider = NewSlogProvider()
)

// GetLogger returns the default logger from the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns a named logger from the current provider.
// The name typically identifies the component emitting the logs, e.g.
// "stack" or "ensemble".
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider.GetLoggerWithName(name)
}

// SetLoggerProvider replaces the package-level provider. Passing nil restores
// the default slog-backed provider. This is primarily intended for tests that
// need to capture log output.
func SetLoggerProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	if p == nil {
		p = NewSlogProvider()
	}
	defaultProvider = p
}

// SetLevel sets the minimum log level on the current provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	defaultProvider.SetLevel(level)
}

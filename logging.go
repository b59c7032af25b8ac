package webrtc

import (
	"os"

	"github.com/pion/logging"
	"github.com/rs/zerolog"
)

// defaultLogger is the package-wide structured logger every PeerConnection
// and transport adapter writes state-transition and error events through,
// in the same console-writer-by-default shape the rest of the corpus
// configures zerolog with.
var defaultLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
	With().Timestamp().Str("component", "webrtc").Logger()

// zerologLoggerFactory adapts zerolog to the pion/logging.LoggerFactory
// contract every pion transport (ice.Agent, dtls.Conn, sctp.Association)
// accepts for its own internal diagnostics, so a single logging backend
// covers both this module's own log lines and the transports' it wraps.
type zerologLoggerFactory struct {
	base zerolog.Logger
}

// newZerologLoggerFactory builds a LoggerFactory whose scoped loggers are
// zerolog sub-loggers tagged with the requested scope.
func newZerologLoggerFactory(base zerolog.Logger) logging.LoggerFactory {
	return &zerologLoggerFactory{base: base}
}

func (f *zerologLoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return &zerologLeveledLogger{log: f.base.With().Str("scope", scope).Logger()}
}

// zerologLeveledLogger implements pion/logging.LeveledLogger over a
// zerolog.Logger; pion's Trace level has no zerolog equivalent finer than
// Debug, so Trace collapses into Debug.
type zerologLeveledLogger struct {
	log zerolog.Logger
}

func (l *zerologLeveledLogger) Trace(msg string)                          { l.log.Debug().Msg(msg) }
func (l *zerologLeveledLogger) Tracef(format string, args ...interface{}) { l.log.Debug().Msgf(format, args...) }
func (l *zerologLeveledLogger) Debug(msg string)                          { l.log.Debug().Msg(msg) }
func (l *zerologLeveledLogger) Debugf(format string, args ...interface{}) { l.log.Debug().Msgf(format, args...) }
func (l *zerologLeveledLogger) Info(msg string)                           { l.log.Info().Msg(msg) }
func (l *zerologLeveledLogger) Infof(format string, args ...interface{})  { l.log.Info().Msgf(format, args...) }
func (l *zerologLeveledLogger) Warn(msg string)                           { l.log.Warn().Msg(msg) }
func (l *zerologLeveledLogger) Warnf(format string, args ...interface{})  { l.log.Warn().Msgf(format, args...) }
func (l *zerologLeveledLogger) Error(msg string)                          { l.log.Error().Msg(msg) }
func (l *zerologLeveledLogger) Errorf(format string, args ...interface{}) { l.log.Error().Msgf(format, args...) }

var _ logging.LoggerFactory = (*zerologLoggerFactory)(nil)
var _ logging.LeveledLogger = (*zerologLeveledLogger)(nil)

// Package logrus adapts a *logrus.Entry to gpucache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/gpucache"
)

var _ gpucache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New tags every line with component=gpucache.
func New(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{E: l.WithField("component", "gpucache")}
}

func (l LogrusLogger) Debug(msg string, f gpucache.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f gpucache.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f gpucache.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f gpucache.Fields) { l.with(f).Error(msg) }

func (l LogrusLogger) with(f gpucache.Fields) *logrus.Entry {
	if err, ok := f["err"].(error); ok {
		rest := make(logrus.Fields, len(f))
		for k, v := range f {
			if k != "err" {
				rest[k] = v
			}
		}
		return l.E.WithError(err).WithFields(rest)
	}
	return l.E.WithFields(logrus.Fields(f))
}

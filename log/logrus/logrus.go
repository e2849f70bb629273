package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/bookcache"
)

var _ bookcache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New tags every entry with component=bookcache.
func New(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{E: l.WithField("component", "bookcache")}
}

func (l LogrusLogger) Debug(msg string, f bookcache.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f bookcache.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f bookcache.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f bookcache.Fields) { l.with(f).Error(msg) }

// with routes an "err" field through WithError so hooks and formatters see it
// under logrus.ErrorKey.
func (l LogrusLogger) with(f bookcache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	out := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			out[logrus.ErrorKey] = err
			continue
		}
		out[k] = v
	}
	return l.E.WithFields(out)
}

package zap

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/bookcache"
)

var _ bookcache.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New names l "bookcache" so catalog lines are easy to filter.
func New(l *zap.Logger) ZapLogger { return ZapLogger{L: l.Named("bookcache")} }

func (z ZapLogger) Debug(msg string, f bookcache.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f bookcache.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f bookcache.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f bookcache.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f bookcache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		switch v := f[k].(type) {
		case error:
			out = append(out, zap.NamedError(k, v))
		case time.Duration:
			out = append(out, zap.Duration(k, v))
		default:
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}

package logrus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/bookcache"
)

func TestLogrusLoggerFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	boom := errors.New("connection refused")
	l.Warn("invalidate failed", bookcache.Fields{"key": "reviews:book:1", "err": boom})
	l.Debug("populated", nil)

	require.Len(t, hook.AllEntries(), 2)
	e := hook.AllEntries()[0]
	assert.Equal(t, logrus.WarnLevel, e.Level)
	assert.Equal(t, "invalidate failed", e.Message)
	assert.Equal(t, "bookcache", e.Data["component"])
	assert.Equal(t, "reviews:book:1", e.Data["key"])
	assert.Equal(t, boom, e.Data[logrus.ErrorKey])
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}

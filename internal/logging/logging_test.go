package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/bookcache"
	"github.com/unkn0wn-root/bookcache/internal/config"
)

func TestBuildBackends(t *testing.T) {
	for _, backend := range []string{"zap", "logrus", "slog"} {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			ls, err := Build(config.LogConfig{Backend: backend, Level: "info"}, &buf)
			require.NoError(t, err)

			ls.Logger.Debug("hidden", nil)
			ls.Logger.Warn("cache unavailable", bookcache.Fields{"key": "books:all"})
			require.NoError(t, ls.Sync())

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.Len(t, lines, 1, "debug must be filtered at info: %q", buf.String())

			var rec map[string]any
			require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
			assert.Contains(t, lines[0], "cache unavailable")
			assert.Contains(t, lines[0], "books:all")
		})
	}
}

func TestBuildRejectsUnknown(t *testing.T) {
	_, err := Build(config.LogConfig{Backend: "glog", Level: "info"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, err = Build(config.LogConfig{Backend: "zap", Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestWarningAlias(t *testing.T) {
	var buf bytes.Buffer
	ls, err := Build(config.LogConfig{Backend: "logrus", Level: "warning"}, &buf)
	require.NoError(t, err)
	ls.Logger.Info("hidden", nil)
	assert.Zero(t, buf.Len())
}

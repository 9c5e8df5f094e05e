package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer log.SetOutput(log.StandardLogger().Out)

	t.Run("json format", func(t *testing.T) {
		out := &bytes.Buffer{}
		require.NoError(t, Setup(out, "debug", JSONFormat))

		log.WithField("symbol", "NIFTY").Debug("fetching")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &entry))
		assert.Equal(t, "NIFTY", entry["symbol"])
		assert.Equal(t, "debug", entry["level"])
		assert.Equal(t, log.DebugLevel, log.GetLevel())
	})

	t.Run("level filters entries", func(t *testing.T) {
		out := &bytes.Buffer{}
		require.NoError(t, Setup(out, "warn", TextFormat))

		log.Info("hidden")
		log.Warn("shown")

		assert.NotContains(t, out.String(), "hidden")
		assert.Contains(t, out.String(), "shown")
	})

	t.Run("invalid level", func(t *testing.T) {
		assert.Error(t, Setup(nil, "loud", TextFormat))
	})

	t.Run("invalid format", func(t *testing.T) {
		assert.Error(t, Setup(nil, "info", "xml"))
	})
}

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "crypteax-be", false)
	log.Debug().Msg("hidden")
	log.Info().Str("address", "0xabc").Msg("signed in")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "crypteax-be", line["service"])
	assert.Equal(t, "signed in", line["message"])
	assert.Equal(t, "0xabc", line["address"])
	assert.Contains(t, line, "timestamp")
}

func TestDebugEnablesConsoleAndDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "crypteax-be", true)
	log.Debug().Msg("visible")

	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), `"message"`)
}

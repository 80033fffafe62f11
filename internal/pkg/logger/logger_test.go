package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
}

func TestConfigureWritesJSONWithService(t *testing.T) {
	var buf bytes.Buffer
	lgr := Configure(Config{Level: InfoLevel, Output: &buf, Service: "portal"})
	defer Configure(Config{Level: InfoLevel, Pretty: true})

	lgr.Info().Int64("userID", 7).Msg("hello")
	Debug().Msg("dropped")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "portal", entry["service"])
	assert.EqualValues(t, 7, entry["userID"])
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/donor-match/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(types.LogConfig{Level: "info"}, &buf), "compile")

	log.Debug().Msg("hidden")
	log.Info().Str("version", "3400").Msg("dictionary compiled")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "donor-match", entry["service"])
	assert.Equal(t, "compile", entry["component"])
	assert.Equal(t, "3400", entry["version"])
	assert.Equal(t, "dictionary compiled", entry["message"])
}

func TestNewPretty(t *testing.T) {
	var buf bytes.Buffer
	l := New(types.LogConfig{Pretty: true}, &buf)
	l.Info().Msg("ready")
	assert.Contains(t, buf.String(), "ready")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestZeroLoggerIsSilent(t *testing.T) {
	var l zerolog.Logger
	assert.NotPanics(t, func() {
		c := Component(l, "store")
		c.Info().Msg("nothing")
	})
}

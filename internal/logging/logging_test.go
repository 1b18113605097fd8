package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "debug", Format: "json"})
	require.NoError(t, err)

	logger.Debug("created todo", "user_id", "u1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "created todo", line["msg"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "todocore", line["prefix"])
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "WARN", Format: "logfmt"})
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewRejects(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, Options{Format: "xml"})
	assert.Error(t, err)
}

func TestGormWritesWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Format: "text"})
	require.NoError(t, err)

	Gorm(logger).Warn(context.Background(), "slow query %s", "SELECT 1")
	assert.Contains(t, buf.String(), "slow query SELECT 1")
}

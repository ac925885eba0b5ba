package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig(t *testing.T) {
	dir := t.TempDir()

	c1, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c1)
	assert.Equal(t, "info", c1.LogLevel)
	assert.Equal(t, "json", c1.Format)

	c1.LogLevel = "debug"
	c1.Format = "yaml"
	c1.FeedURL = "https://feeds.example.com/feedback"

	require.NoError(t, Save(dir, c1))

	c2, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c2)
	assert.Equal(t, c1.LogLevel, c2.LogLevel)
	assert.Equal(t, c1.Format, c2.Format)
	assert.Equal(t, c1.FeedURL, c2.FeedURL)
}

func TestConfig_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "conf")
	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestConfig_EmptyDir(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)

	err = Save("", &Config{})
	assert.Error(t, err)
}

func TestConfig_NilConfig(t *testing.T) {
	err := Save(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestGetOrCreateHomeDir_EmptyName(t *testing.T) {
	_, _, err := GetOrCreateHomeDir("")
	assert.Error(t, err)
}

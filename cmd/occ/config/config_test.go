package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	f := filepath.Join(t.TempDir(), "occ_config.json")
	require.NoError(t, os.WriteFile(f, []byte(content), 0644))
	return f
}

func TestParseDefaults(t *testing.T) {
	c, err := Parse(writeConfig(t, `{"server":"https://cloud.example.com","username":"admin","password":"pwd"}`))
	require.NoError(t, err)
	assert.Equal(t, "https://cloud.example.com", c.Server)
	assert.Equal(t, "admin", c.Username)
	assert.Equal(t, 1, c.Thread)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, int64(600), c.Timeout)
	assert.Equal(t, 3, c.MaxRetries)
}

func TestParseOverride(t *testing.T) {
	c, err := Parse(writeConfig(t, `{"server":"http://127.0.0.1","token":"abc","thread":8,"log_level":"info","timeout":30}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Token)
	assert.Equal(t, 8, c.Thread)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, int64(30), c.Timeout)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	_, err = Parse(writeConfig(t, `{`))
	assert.Error(t, err)
	_, err = Parse(writeConfig(t, `{"username":"a"}`))
	assert.Error(t, err)
	for _, lv := range []string{"error", "trace", "INFO", ""} {
		_, err = Parse(writeConfig(t, `{"server":"http://127.0.0.1","log_level":"`+lv+`"}`))
		assert.Error(t, err, lv)
	}
}

func TestParseSupportedLevels(t *testing.T) {
	for _, lv := range []string{"panic", "fatal", "warn", "info", "debug"} {
		c, err := Parse(writeConfig(t, `{"server":"http://127.0.0.1","log_level":"`+lv+`"}`))
		require.NoError(t, err, lv)
		assert.Equal(t, lv, c.LogLevel)
	}
}

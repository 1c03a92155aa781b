package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/grahms/tagweave"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tagweave.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("should fail for a named file that does not exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("should return defaults for an empty path", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("should overlay file values", func(t *testing.T) {
		path := writeConfig(t, "format: yaml\nduplicates: last-wins\nlogging:\n  level: debug\n  development: true\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "yaml", cfg.Format)
		assert.True(t, cfg.Logging.Development)

		policy, err := cfg.DuplicatePolicy()
		require.NoError(t, err)
		assert.Equal(t, tagweave.DuplicateLastWins, policy)
	})

	t.Run("should reject invalid values", func(t *testing.T) {
		for _, body := range []string{
			"format: xml\n",
			"duplicates: first-wins\n",
			"logging:\n  level: loud\n",
			"format: [unterminated\n",
		} {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err, body)
		}
	})
}

func TestEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duplicates = "last-wins"
	e, err := cfg.Engine(zap.NewNop())
	require.NoError(t, err)

	tags := e.ParseString(`<a k="1" k="2"/>`)
	require.Len(t, tags, 1)
	assert.Equal(t, "2", tags[0].Attributes.Value("k"))
}

func TestLogger(t *testing.T) {
	cfg := DefaultConfig()
	logger, err := cfg.Logger()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
}

package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("PRESS_TEST_DB_PASSWORD", "s3cret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
database:
  driver: sqlite
  dsn: press.db
  password: ${PRESS_TEST_DB_PASSWORD}
  slowThreshold: 200ms
media:
  imageMaxBytes: 1024
moderation:
  words: [spam, scam]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", c.Database.Driver)
	assert.Equal(t, "s3cret", c.Database.Password)
	assert.Equal(t, 200*time.Millisecond, c.Database.SlowThreshold)
	assert.Equal(t, int64(1024), c.Media.ImageMaxBytes)
	assert.Equal(t, []string{"spam", "scam"}, c.Moderation.Words)

	// defaults
	assert.Equal(t, ":8080", c.Server.Port)
	assert.Equal(t, "/UdD-Logo.png", c.Media.DefaultImage)
	assert.Equal(t, int64(50<<20), c.Media.VideoMaxBytes)
	assert.Equal(t, "direct", c.Views.Mode)
	assert.Equal(t, "local", c.Upload.Driver)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

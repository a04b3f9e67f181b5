package cfg

import (
	"bytes"
	"io"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConfigFile struct {
	io.Reader
}

func (f fakeConfigFile) Close() error {
	return nil
}

func TestDefaultConfig(t *testing.T) {
	config := Default()
	assert.Equal(t, ":8080", config.Server.Listen)
	assert.Equal(t, MEMORY, config.Index.Type)
	assert.Equal(t, DefaultWindowDays, config.Sync.WindowDays)
	assert.Equal(t, DefaultMaxMessages, config.Sync.MaxMessages)
	assert.Empty(t, config.Accounts)
}

func TestLoadConfig(t *testing.T) {
	source := `
server:
  listen: ":9090"
index:
  type: bolt
  file: onebox.db
sync:
  windowDays: 3
  pollInterval: 30s
accounts:
  - id: one@example.com
    host: imap.example.com
    password: secret
`
	config, err := loadConfig(fakeConfigFile{bytes.NewBufferString(source)})
	require.NoError(t, err)
	assert.Equal(t, ":9090", config.Server.Listen)
	assert.Equal(t, BOLT, config.Index.Type)
	assert.Equal(t, "onebox.db", config.Index.File)
	assert.Equal(t, 3, config.Sync.WindowDays)
	assert.Equal(t, 30*time.Second, config.Sync.PollInterval)
	// unset values are filled in with defaults
	assert.Equal(t, DefaultMaxMessages, config.Sync.MaxMessages)
	assert.Equal(t, DefaultBatchSize, config.Sync.BatchSize)
	require.Len(t, config.Accounts, 1)
	assert.Equal(t, "one@example.com", config.Accounts[0].ID)
	assert.Equal(t, "imap.example.com:993", config.Accounts[0].Addr())
}

func TestLoadConfigUnknownIndexType(t *testing.T) {
	source := `
index:
  type: cassandra
`
	_, err := loadConfig(fakeConfigFile{bytes.NewBufferString(source)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported index type")
}

func TestLoadConfigIndexFileRequired(t *testing.T) {
	source := `
index:
  type: sqlite
`
	_, err := loadConfig(fakeConfigFile{bytes.NewBufferString(source)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a file")
}

func TestLoadConfigInvalidYaml(t *testing.T) {
	_, err := loadConfig(fakeConfigFile{bytes.NewBufferString("\tnot yaml")})
	require.Error(t, err)
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFromFile("no-such-file.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSyncConfigWithDefaults(t *testing.T) {
	sync := SyncConfig{WindowDays: 14, BatchSize: 25}.WithDefaults()
	assert.Equal(t, 14, sync.WindowDays)
	assert.Equal(t, 25, sync.BatchSize)
	assert.Equal(t, DefaultMaxMessages, sync.MaxMessages)
	assert.Equal(t, DefaultPauseEvery, sync.PauseEvery)
	assert.Equal(t, DefaultPause, sync.Pause)
	assert.Equal(t, DefaultPollStep, sync.PollInterval)
}

package cfg

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Synchronization defaults, applied wherever the configuration leaves a
// value unset.
const (
	DefaultWindowDays  = 7
	DefaultMaxMessages = 200
	DefaultBatchSize   = 50
	DefaultPauseEvery  = 10
	DefaultPause       = 1 * time.Second
	DefaultPollStep    = 1 * time.Minute
)

// Index backend types.
const (
	MEMORY = "memory"
	BOLT   = "bolt"
	SQLITE = "sqlite"
)

type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Index    IndexConfig   `yaml:"index"`
	Sync     SyncConfig    `yaml:"sync"`
	Archive  ArchiveConfig `yaml:"archive"`
	Accounts []Account     `yaml:"accounts"`
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
}

type IndexConfig struct {
	Type string `yaml:"type"`
	File string `yaml:"file"`
}

type SyncConfig struct {
	WindowDays   int           `yaml:"windowDays"`
	MaxMessages  int           `yaml:"maxMessages"`
	BatchSize    int           `yaml:"batchSize"`
	PauseEvery   int           `yaml:"pauseEvery"`
	Pause        time.Duration `yaml:"pause"`
	PollInterval time.Duration `yaml:"pollInterval"`
	// DownloadRate caps message downloads in bytes per second, zero is
	// unlimited
	DownloadRate float64 `yaml:"downloadRate"`
}

// WithDefaults fills unset values with the synchronization defaults.
func (c SyncConfig) WithDefaults() SyncConfig {
	if c.WindowDays <= 0 {
		c.WindowDays = DefaultWindowDays
	}
	if c.MaxMessages <= 0 {
		c.MaxMessages = DefaultMaxMessages
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.PauseEvery <= 0 {
		c.PauseEvery = DefaultPauseEvery
	}
	if c.Pause <= 0 {
		c.Pause = DefaultPause
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollStep
	}
	return c
}

type ArchiveConfig struct {
	Root string `yaml:"root"`
	// WriteRate caps archive writes in bytes per second, zero is unlimited
	WriteRate float64 `yaml:"writeRate"`
}

// Default returns the configuration used when no file is present:
// in-memory index, accounts from the environment only.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Listen: ":8080"},
		Index:  IndexConfig{Type: MEMORY},
		Sync:   SyncConfig{}.WithDefaults(),
	}
}

// LoadFromFile loads the configuration from the file
func LoadFromFile(fileName string) (*Config, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	return loadConfig(file)
}

// loadConfig from a io.ReadCloser
func loadConfig(reader io.ReadCloser) (*Config, error) {
	defer reader.Close()
	decoder := yaml.NewDecoder(reader)
	config := Default()
	err := decoder.Decode(config)
	if err != nil {
		return nil, err
	}
	if err = validateConfiguration(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfiguration(config *Config) error {
	switch config.Index.Type {
	case "":
		config.Index.Type = MEMORY
	case MEMORY, BOLT, SQLITE:
	default:
		return fmt.Errorf("unsupported index type %q", config.Index.Type)
	}
	if config.Index.Type != MEMORY && config.Index.File == "" {
		return fmt.Errorf("index type %q needs a file", config.Index.Type)
	}
	if config.Server.Listen == "" {
		config.Server.Listen = ":8080"
	}
	config.Sync = config.Sync.WithDefaults()
	return nil
}

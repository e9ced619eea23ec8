package backend

import (
	"fmt"
	"path/filepath"

	"ebilling/internal/config"
)

// Config holds what the factory needs to build a snapshot store.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// File backend specific
	DataDir string
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := Type(appConfig.SnapshotBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.SnapshotBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		DataDir:      appConfig.DataDir,
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case FileBackend:
		if c.DataDir == "" {
			return fmt.Errorf("data directory is required for file backend")
		}
	case MemoryBackend:
		// No additional configuration needed
	}

	return nil
}

// SnapshotFilePath is where the file backend keeps its JSON blob.
func (c Config) SnapshotFilePath() string {
	return filepath.Join(c.DataDir, "ledger.json")
}

package backend

import (
	"context"
	"fmt"
	"log/slog"

	"ebilling/internal/snapshot/memory"
	"ebilling/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new snapshot store factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateStore implements Factory.CreateStore.
func (f *DefaultFactory) CreateStore(_ context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteStore(config)
	case FileBackend:
		return f.createFileStore(config)
	case MemoryBackend:
		f.logger.Info("Initialized memory snapshot store")
		return &Result{Store: memory.New()}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteStore(config Config) (*Result, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite snapshot store", "db_path", config.SQLiteDBPath)

	return &Result{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createFileStore(config Config) (*Result, error) {
	path := config.SnapshotFilePath()
	store := memory.NewFromFile(path)

	f.logger.Info("Initialized file snapshot store", "path", path)

	return &Result{Store: store}, nil
}

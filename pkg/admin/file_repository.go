package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSettingsRepository implements SettingsRepository using file-based
// storage.
type FileSettingsRepository struct {
	dataDir  string
	settings Settings
	mutex    sync.RWMutex
}

// NewFileSettingsRepository creates a new file-based settings repository.
func NewFileSettingsRepository(dataDir string) (*FileSettingsRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileSettingsRepository{dataDir: dataDir}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

// Get returns the stored settings, or zero Settings when none were saved.
func (r *FileSettingsRepository) Get(ctx context.Context) (Settings, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.settings, nil
}

// Set replaces the stored settings.
func (r *FileSettingsRepository) Set(ctx context.Context, settings Settings) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous := r.settings
	r.settings = settings

	if err := r.save(); err != nil {
		// Rollback
		r.settings = previous
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// load reads settings from file
func (r *FileSettingsRepository) load() error {
	filePath := filepath.Join(r.dataDir, "settings.json")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &r.settings); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}

// save writes settings to file atomically
func (r *FileSettingsRepository) save() error {
	data, err := json.MarshalIndent(r.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, "settings.json.tmp")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, "settings.json")
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

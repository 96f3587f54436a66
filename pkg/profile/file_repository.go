package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileProfileRepository implements Repository using file-based storage.
type FileProfileRepository struct {
	dataDir  string
	profiles map[string]Profile // keyed by user ID
	mutex    sync.RWMutex
}

// NewFileProfileRepository creates a new file-based profile repository.
func NewFileProfileRepository(dataDir string) (*FileProfileRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileProfileRepository{
		dataDir:  dataDir,
		profiles: make(map[string]Profile),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

// GetProfile retrieves the profile for a user.
func (r *FileProfileRepository) GetProfile(ctx context.Context, userID string) (Profile, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	profile, exists := r.profiles[userID]
	if !exists {
		return Profile{}, ErrProfileNotFound
	}
	return profile, nil
}

// SetProfile creates or replaces the profile for a user.
func (r *FileProfileRepository) SetProfile(ctx context.Context, profile Profile) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now().UTC()
	if existing, exists := r.profiles[profile.UserID]; exists {
		profile.CreatedAt = existing.CreatedAt
	} else {
		profile.CreatedAt = now
	}
	profile.LastModifiedAt = now

	previous, hadPrevious := r.profiles[profile.UserID]
	r.profiles[profile.UserID] = profile

	if err := r.save(); err != nil {
		// Rollback
		if hadPrevious {
			r.profiles[profile.UserID] = previous
		} else {
			delete(r.profiles, profile.UserID)
		}
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// DeleteProfile removes the profile for a user.
func (r *FileProfileRepository) DeleteProfile(ctx context.Context, userID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	profile, exists := r.profiles[userID]
	if !exists {
		return ErrProfileNotFound
	}

	delete(r.profiles, userID)

	if err := r.save(); err != nil {
		// Rollback
		r.profiles[userID] = profile
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// load reads profile data from file
func (r *FileProfileRepository) load() error {
	filePath := filepath.Join(r.dataDir, "profiles.json")

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

	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	r.profiles = make(map[string]Profile)
	for _, profile := range profiles {
		r.profiles[profile.UserID] = profile
	}

	return nil
}

// save writes profile data to file atomically
func (r *FileProfileRepository) save() error {
	profiles := make([]Profile, 0, len(r.profiles))
	for _, profile := range r.profiles {
		profiles = append(profiles, profile)
	}

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, "profiles.json.tmp")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, "profiles.json")
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

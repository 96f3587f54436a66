package login

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileLoginRepository implements Repository using file-based storage.
type FileLoginRepository struct {
	dataDir string
	users   map[string]UserRecord // keyed by lowercased username
	mutex   sync.RWMutex
}

// NewFileLoginRepository creates a new file-based login repository.
func NewFileLoginRepository(dataDir string) (*FileLoginRepository, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileLoginRepository{
		dataDir: dataDir,
		users:   make(map[string]UserRecord),
	}

	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

// FindUserByUsername looks up a credential record, case-insensitively.
func (r *FileLoginRepository) FindUserByUsername(ctx context.Context, username string) (UserRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	record, exists := r.users[strings.ToLower(username)]
	if !exists {
		return UserRecord{}, ErrInvalidCredentials
	}
	return record, nil
}

// CreateUser stores a new credential record.
func (r *FileLoginRepository) CreateUser(ctx context.Context, record UserRecord) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := strings.ToLower(record.Username)
	if _, exists := r.users[key]; exists {
		return fmt.Errorf("user already exists: %s", record.Username)
	}

	r.users[key] = record

	if err := r.save(); err != nil {
		// Rollback
		delete(r.users, key)
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// load reads user data from file
func (r *FileLoginRepository) load() error {
	filePath := filepath.Join(r.dataDir, "users.json")

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

	var users []UserRecord
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	r.users = make(map[string]UserRecord)
	for _, user := range users {
		r.users[strings.ToLower(user.Username)] = user
	}

	return nil
}

// save writes user data to file atomically
func (r *FileLoginRepository) save() error {
	users := make([]UserRecord, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	tempFile := filepath.Join(r.dataDir, "users.json.tmp")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	finalFile := filepath.Join(r.dataDir, "users.json")
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

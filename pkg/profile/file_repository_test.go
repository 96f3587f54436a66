package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary directory and repository for testing
func setupTestRepo(t *testing.T) (*FileProfileRepository, string) {
	tempDir := filepath.Join(os.TempDir(), "profile-test-"+uuid.New().String())
	err := os.MkdirAll(tempDir, 0755)
	require.NoError(t, err)

	repo, err := NewFileProfileRepository(tempDir)
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(tempDir)
	})

	return repo, tempDir
}

func TestFileProfileRepository_NewRepository(t *testing.T) {
	tempDir := filepath.Join(os.TempDir(), "profile-test-new-"+uuid.New().String())
	defer os.RemoveAll(tempDir)

	// Should create directory if it doesn't exist
	repo, err := NewFileProfileRepository(tempDir)
	assert.NoError(t, err)
	assert.NotNil(t, repo)
	assert.DirExists(t, tempDir)
}

func TestFileProfileRepository_GetProfile(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetProfile(ctx, Profile{
		UserID:  "user-1",
		Phone:   "16193278653",
		Enabled: true,
	}))

	t.Run("Success", func(t *testing.T) {
		found, err := repo.GetProfile(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "16193278653", found.Phone)
		assert.True(t, found.Enabled)
		assert.False(t, found.CreatedAt.IsZero())
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetProfile(ctx, "user-unknown")
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestFileProfileRepository_SetProfileReplaces(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetProfile(ctx, Profile{UserID: "user-1", Phone: "16193278653", Enabled: true}))
	first, err := repo.GetProfile(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, repo.SetProfile(ctx, Profile{UserID: "user-1", Phone: "16193270000", Enabled: false}))
	second, err := repo.GetProfile(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "16193270000", second.Phone)
	assert.False(t, second.Enabled)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
}

func TestFileProfileRepository_PersistsAcrossReload(t *testing.T) {
	repo, tempDir := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetProfile(ctx, Profile{UserID: "user-1", Phone: "16193278653", Enabled: true}))

	reloaded, err := NewFileProfileRepository(tempDir)
	require.NoError(t, err)

	found, err := reloaded.GetProfile(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "16193278653", found.Phone)
	assert.True(t, found.Enabled)
}

func TestFileProfileRepository_DeleteProfile(t *testing.T) {
	repo, _ := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetProfile(ctx, Profile{UserID: "user-1", Phone: "16193278653"}))

	require.NoError(t, repo.DeleteProfile(ctx, "user-1"))
	_, err := repo.GetProfile(ctx, "user-1")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	assert.ErrorIs(t, repo.DeleteProfile(ctx, "user-1"), ErrProfileNotFound)
}

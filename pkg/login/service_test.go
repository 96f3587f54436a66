package login

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestService(t *testing.T) *LoginService {
	tempDir := filepath.Join(os.TempDir(), "login-test-"+uuid.New().String())
	require.NoError(t, os.MkdirAll(tempDir, 0755))
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	repo, err := NewFileLoginRepository(tempDir)
	require.NoError(t, err)

	return NewLoginService(repo)
}

func TestLoginService_Login(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	created, err := service.CreateUser(ctx, "alice", "correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	t.Run("Success", func(t *testing.T) {
		user, err := service.Login(ctx, "alice", "correct horse battery staple")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("CaseInsensitiveUsername", func(t *testing.T) {
		user, err := service.Login(ctx, "ALICE", "correct horse battery staple")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := service.Login(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := service.Login(ctx, "bob", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginService_FindUser(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	created, err := service.CreateUser(ctx, "alice", "pw")
	require.NoError(t, err)

	user, err := service.FindUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = service.FindUser(ctx, "bob")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginService_CreateUserDuplicate(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	_, err := service.CreateUser(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = service.CreateUser(ctx, "Alice", "pw2")
	assert.Error(t, err)
}

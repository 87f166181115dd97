package file

import (
	"path/filepath"
	"testing"

	"github.com/ichigozero/todokit/backend/usersvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryCreateAndFind(t *testing.T) {
	repo := NewUserRepository(filepath.Join(t.TempDir(), "auth.json"))

	created, err := repo.Create(usersvc.User{Username: "alice", PasswordHash: "$2a$10$hash"})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)

	found, err := repo.Find("alice")
	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestUserRepositoryFindAbsent(t *testing.T) {
	repo := NewUserRepository(filepath.Join(t.TempDir(), "auth.json"))

	_, err := repo.Find("nobody")
	assert.Equal(t, usersvc.ErrUserNotFound, err)
}

func TestUserRepositoryDurableAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")

	first := NewUserRepository(path)
	_, err := first.Create(usersvc.User{Username: "alice", PasswordHash: "$2a$10$hash"})
	require.NoError(t, err)

	second := NewUserRepository(path)
	found, err := second.Find("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
}

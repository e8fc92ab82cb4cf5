package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaveAndRead(t *testing.T) {
	store := NewLocalFileStore(t.TempDir(), zap.NewNop())

	abs, err := store.Save("claims/3/abc.png", []byte("content"))
	require.NoError(t, err)
	assert.NotEmpty(t, abs)
	assert.True(t, store.Exists("claims/3/abc.png"))

	got, err := store.Read("claims/3/abc.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), got)
}

func TestSaveRejectsTraversal(t *testing.T) {
	store := NewLocalFileStore(t.TempDir(), zap.NewNop())

	_, err := store.Save("../escape.txt", []byte("x"))
	assert.Error(t, err)
	assert.False(t, store.Exists("../escape.txt"))
}

func TestReadMissingFile(t *testing.T) {
	store := NewLocalFileStore(t.TempDir(), zap.NewNop())

	_, err := store.Read("claims/none.pdf")
	assert.Error(t, err)
	assert.False(t, store.Exists("claims/none.pdf"))
}

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStorage(t *testing.T) *LocalBlobStorage {
	t.Helper()
	return NewLocalBlobStorage(t.TempDir(), "http://localhost:8080/files/", zap.NewNop())
}

func TestStoreAndFetchRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	stored, err := s.Store([]byte("<html>surat</html>"), "letters/abc", "text/html")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.URL, "http://localhost:8080/files/letters/abc/"))
	assert.True(t, strings.HasSuffix(stored.StoredName, ".html"))
	assert.True(t, strings.HasPrefix(stored.StorageKey, "letters/abc/"))

	content, err := s.Fetch(stored.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>surat</html>"), content)
}

func TestStoreUsesMimeExtension(t *testing.T) {
	s := newTestStorage(t)

	cases := map[string]string{
		"application/pdf":          ".pdf",
		"image/png":                ".png",
		"image/jpeg":               ".jpg",
		"application/octet-stream": ".bin",
	}
	for mime, ext := range cases {
		stored, err := s.Store([]byte("x"), "blobs", mime)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(stored.StoredName, ext), "mime %s should map to %s", mime, ext)
	}
}

func TestStoreGeneratesUniqueNames(t *testing.T) {
	s := newTestStorage(t)

	first, err := s.Store([]byte("a"), "letters/x", "text/html")
	require.NoError(t, err)
	second, err := s.Store([]byte("b"), "letters/x", "text/html")
	require.NoError(t, err)

	assert.NotEqual(t, first.StorageKey, second.StorageKey)
}

func TestStoreRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	s := NewLocalBlobStorage(base, "http://localhost/files", zap.NewNop())

	_, err := s.Store([]byte("x"), "../outside", "text/html")
	assert.Error(t, err)

	_, err = s.Fetch("../../etc/passwd")
	assert.Error(t, err)

	entries, err := os.ReadDir(filepath.Dir(base))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "outside", e.Name())
	}
}

func TestFetchMissingKey(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Fetch("letters/none/missing.html")
	assert.Error(t, err)
}

package store

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestSaveNamesFilesByKind(t *testing.T) {
	s := newTestStore(t)

	path, err := s.Save(KindInput, strings.NewReader("audio-bytes"))
	require.NoError(t, err)

	name := filepath.Base(path)
	assert.True(t, strings.HasPrefix(name, "input_"), "got %s", name)
	assert.True(t, strings.HasSuffix(name, ".wav"), "got %s", name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))
}

func TestSaveNamesAreUnique(t *testing.T) {
	s := newTestStore(t)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		path, err := s.Save(KindResponse, strings.NewReader("x"))
		require.NoError(t, err)
		require.False(t, seen[path], "duplicate path %s", path)
		seen[path] = true
	}
}

func TestDeleteMissingFileIsNotAnError(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.Delete(filepath.Join(s.Dir(), "input_gone.wav")))
	assert.NoError(t, s.Delete(""))
}

func TestOpenRoundTrip(t *testing.T) {
	s := newTestStore(t)

	path, err := s.Save(KindResponse, strings.NewReader("reply-audio"))
	require.NoError(t, err)

	f, err := s.Open(filepath.Base(path))
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "reply-audio", string(data))
}

func TestOpenRejectsTraversal(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", "../secret.wav", "a/b.wav", "/etc/passwd"} {
		_, err := s.Open(name)
		assert.ErrorIs(t, err, os.ErrNotExist, "name %q", name)
	}
}

func TestReapResponsesDeletesOnlyExpiredResponses(t *testing.T) {
	s := newTestStore(t)

	oldResponse, err := s.Save(KindResponse, strings.NewReader("old"))
	require.NoError(t, err)
	freshResponse, err := s.Save(KindResponse, strings.NewReader("fresh"))
	require.NoError(t, err)
	oldReference, err := s.Save(KindReference, strings.NewReader("voice"))
	require.NoError(t, err)

	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(oldResponse, stale, stale))
	require.NoError(t, os.Chtimes(oldReference, stale, stale))

	assert.Equal(t, 1, s.ReapResponses(time.Hour))
	assert.NoFileExists(t, oldResponse)
	assert.FileExists(t, freshResponse)
	assert.FileExists(t, oldReference)
}

func TestReferenceSlotReplacesPrevious(t *testing.T) {
	s := newTestStore(t)
	slot := NewReferenceSlot(s)

	assert.Empty(t, slot.Path())

	first, err := s.Save(KindReference, strings.NewReader("one"))
	require.NoError(t, err)
	slot.Set(first)
	assert.Equal(t, first, slot.Path())

	second, err := s.Save(KindReference, strings.NewReader("two"))
	require.NoError(t, err)
	slot.Set(second)

	assert.Equal(t, second, slot.Path())
	assert.NoFileExists(t, first)
	assert.FileExists(t, second)
}

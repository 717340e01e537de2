package uploads

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"welfare-committee-backend/src/models"
	"welfare-committee-backend/src/testutil"
)

func newStore(t *testing.T, maxBytes int64) *PhotoStore {
	t.Helper()
	store, err := NewPhotoStore(filepath.Join(t.TempDir(), "uploads"), maxBytes)
	require.NoError(t, err)
	return store
}

func TestPhotoStoreSave(t *testing.T) {
	store := newStore(t, 5*1024*1024)
	store.now = func() time.Time { return time.UnixMilli(1700000000000) }
	content := testutil.PNGBytes(t)

	rel, err := store.Save(testutil.NewFileHeader(t, "Me.PNG", content))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^uploads/photo-1700000000000-[0-9a-f]{8}\.png$`), rel)

	written, err := os.ReadFile(filepath.Join(store.Dir(), filepath.Base(rel)))
	require.NoError(t, err)
	assert.Equal(t, content, written)

	again, err := store.Save(testutil.NewFileHeader(t, "Me.PNG", content))
	require.NoError(t, err)
	assert.NotEqual(t, rel, again, "names are unique")
}

func TestPhotoStoreRejects(t *testing.T) {
	store := newStore(t, 5*1024*1024)
	png := testutil.PNGBytes(t)

	cases := []struct {
		name     string
		filename string
		content  []byte
		problem  string
	}{
		{"Extension", "photo.exe", png, "photo must be a JPG, PNG, GIF or WEBP image"},
		{"NoExtension", "photo", png, "photo must be a JPG, PNG, GIF or WEBP image"},
		{"NotAnImage", "photo.jpg", []byte("%PDF-1.4 definitely not an image"), "photo content is not an image"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Save(testutil.NewFileHeader(t, tc.filename, tc.content))
			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Problems, tc.problem)
		})
	}

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected photos are never written")
}

func TestPhotoStoreSizeLimit(t *testing.T) {
	store := newStore(t, 2*1024*1024)
	big := append(testutil.PNGBytes(t), make([]byte, 2*1024*1024)...)

	err := store.Validate(testutil.NewFileHeader(t, "big.png", big))
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"photo must be at most 2 MB"}, verr.Problems)
}

func TestPhotoStoreRemove(t *testing.T) {
	store := newStore(t, 5*1024*1024)
	rel, err := store.Save(testutil.NewFileHeader(t, "a.png", testutil.PNGBytes(t)))
	require.NoError(t, err)

	require.NoError(t, store.Remove(rel))
	_, err = os.Stat(filepath.Join(store.Dir(), strings.TrimPrefix(rel, "uploads/")))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(rel), "removing twice is fine")
	assert.NoError(t, store.Remove(""))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "5 MB", formatBytes(5*1024*1024))
	assert.Equal(t, "1536 KB", formatBytes(1536*1024))
	assert.Equal(t, "512 bytes", formatBytes(512))
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generatedName = regexp.MustCompile(`^[0-9a-f]{32}\.jpg$`)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(filepath.Join(t.TempDir(), "public", "img"))
	require.NoError(t, err)
	return store
}

func TestDiskStore_SaveGeneratesRandomName(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save(context.Background(), "cover.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	assert.Regexp(t, generatedName, name)
	assert.NotEqual(t, "cover.jpg", name)

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	other, err := store.Save(context.Background(), "cover.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEqual(t, name, other)
}

func TestDiskStore_SaveKeepsExtensionOnly(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save(context.Background(), "archive.tar.gz", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".gz"))

	name, err = store.Save(context.Background(), "README", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Len(t, name, 32)
}

func TestDiskStore_RandomnessFailureLeavesNothing(t *testing.T) {
	store := newTestStore(t)
	store.randReader = errReader{}

	_, err := store.Save(context.Background(), "cover.jpg", strings.NewReader("x"))
	require.Error(t, err)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskStore_FailedWriteLeavesNothing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(context.Background(), "cover.jpg", errReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be cleaned up")
}

func TestDiskStore_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, "cover.jpg", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiskStore_RemoveAndExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "thumb_a.jpg", []byte("t")))
	assert.True(t, store.Exists("thumb_a.jpg"))

	require.NoError(t, store.Remove("thumb_a.jpg"))
	assert.False(t, store.Exists("thumb_a.jpg"))

	// removing twice is fine
	assert.NoError(t, store.Remove("thumb_a.jpg"))
}

func TestDiskStore_RejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"", ".", "..", "../secret", "a/b.jpg", `a\b.jpg`} {
		assert.ErrorIs(t, store.Remove(name), ErrInvalidFilename, name)
		_, err := store.Read(name)
		assert.ErrorIs(t, err, ErrInvalidFilename, name)
		assert.False(t, store.Exists(name))
	}
}

func TestDiskStore_Writable(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Writable())

	require.NoError(t, os.RemoveAll(store.Dir()))
	assert.Error(t, store.Writable())
}

func TestImageProcessor_Thumbnail(t *testing.T) {
	p := NewImageProcessor(50)
	src := encodePNG(t, 200, 100)

	format, err := p.ValidateImage(src)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	thumb, err := p.Thumbnail(src)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 25, cfg.Height)
}

func TestImageProcessor_RejectsNonImages(t *testing.T) {
	p := NewImageProcessor(0)

	_, err := p.ValidateImage([]byte("plain text"))
	assert.Error(t, err)

	p.MaxSize = 4
	_, err = p.ValidateImage(encodePNG(t, 2, 2))
	assert.ErrorContains(t, err, "exceeds")
}

func TestThumbnailNameAndObjectKey(t *testing.T) {
	assert.Equal(t, "thumb_abc.jpg", ThumbnailName("abc.png"))
	assert.Equal(t, "thumb_abc.jpg", ThumbnailName("abc"))
	assert.Equal(t, "books/abc.png", ObjectKey("abc.png"))
	assert.Equal(t, "image/png", ContentType("png"))
	assert.Equal(t, "application/octet-stream", ContentType("bmp"))
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

package thumbnails

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFit(t *testing.T) {
	cases := []struct {
		w, h, wantW, wantH int
	}{
		{640, 480, 128, 96},
		{480, 640, 96, 128},
		{300, 300, 128, 128},
		{64, 32, 64, 32},
		{1000, 2, 128, 1},
	}
	for _, c := range cases {
		got := Fit(image.NewRGBA(image.Rect(0, 0, c.w, c.h)), MaxSide).Bounds()
		assert.Equal(t, c.wantW, got.Dx(), "%dx%d", c.w, c.h)
		assert.Equal(t, c.wantH, got.Dy(), "%dx%d", c.w, c.h)
	}
}

func TestPool_RendersQueuedImages(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	id, err := blobs.Put(ctx, "cat.png", pngBytes(t, 400, 200))
	require.NoError(t, err)

	p := New(blobs, t.TempDir(), 2, 8, logging.Nop{})
	p.Start(ctx)
	require.True(t, p.Enqueue(id, "cat.png"))
	p.Stop()

	data, err := p.Get(id)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Width)
	assert.Equal(t, 64, cfg.Height)
}

func TestPool_SkipsVideos(t *testing.T) {
	ctx := context.Background()
	p := New(memory.New(), t.TempDir(), 1, 1, nil)

	require.NoError(t, p.Generate(ctx, Job{BlobID: "v1", FileName: "clip.mp4"}))
	_, err := p.Get("v1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPool_GenerateErrors(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	p := New(blobs, t.TempDir(), 1, 1, nil)

	err := p.Generate(ctx, Job{BlobID: "missing", FileName: "a.png"})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	id, err := blobs.Put(ctx, "fake.jpg", []byte("not an image"))
	require.NoError(t, err)
	err = p.Generate(ctx, Job{BlobID: id, FileName: "fake.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")

	_, statErr := os.Stat(p.Path(id))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPool_EnqueueDropsWhenFull(t *testing.T) {
	// not started, so nothing drains the queue
	p := New(memory.New(), t.TempDir(), 1, 1, nil)

	assert.True(t, p.Enqueue("a", "a.png"))
	assert.False(t, p.Enqueue("b", "b.png"))
}

func TestPool_EnqueueAfterStop(t *testing.T) {
	p := New(memory.New(), t.TempDir(), 1, 4, nil)
	p.Start(context.Background())
	p.Stop()
	p.Stop()

	assert.False(t, p.Enqueue("a", "a.png"))
}

// keyedBlobs serves a fixed set of ids, like an object store with prefixed keys.
type keyedBlobs struct {
	blob.Store
	data map[string][]byte
}

func (b *keyedBlobs) Get(_ context.Context, id string) ([]byte, error) {
	d, ok := b.data[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

func TestPool_NestedBlobIDs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	id := "users/2025/1/2/0b6f3c2e-8a4d-4f3e-9a51-2f5d7c1e9b00"
	other := "users/2025/1/3/0b6f3c2e-8a4d-4f3e-9a51-2f5d7c1e9b00"
	blobs := &keyedBlobs{data: map[string][]byte{
		id:    pngBytes(t, 200, 100),
		other: pngBytes(t, 50, 50),
	}}
	p := New(blobs, dir, 1, 1, nil)

	require.NoError(t, p.Generate(ctx, Job{BlobID: id, FileName: "cat.png"}))
	data, err := p.Get(id)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Width)

	assert.Equal(t, dir, filepath.Dir(p.Path(id)), "thumbnails are stored flat")
	assert.NotEqual(t, p.Path(id), p.Path(other))

	_, err = p.Get(other)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPool_GetStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	p := New(memory.New(), dir, 1, 1, nil)

	for _, id := range []string{"../etc/passwd", "/etc/passwd", "a/../../b"} {
		assert.Equal(t, dir, filepath.Dir(p.Path(id)), id)
		assert.False(t, strings.Contains(filepath.Base(p.Path(id)), ".."), id)
		_, err := p.Get(id)
		assert.ErrorIs(t, err, common.ErrorNotFound, id)
	}

	_, err := p.Get("")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

// slowBlobs blocks Get until release is closed.
type slowBlobs struct {
	*memory.Store
	release chan struct{}
}

func (b *slowBlobs) Get(ctx context.Context, id string) ([]byte, error) {
	<-b.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.Store.Get(ctx, id)
}

func TestPool_StopDrainsAfterCancel(t *testing.T) {
	mem := memory.New()
	id, err := mem.Put(context.Background(), "cat.png", pngBytes(t, 64, 64))
	require.NoError(t, err)
	blobs := &slowBlobs{Store: mem, release: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	p := New(blobs, t.TempDir(), 1, 4, nil)
	p.Start(ctx)
	require.True(t, p.Enqueue(id, "cat.png"))

	cancel()
	close(blobs.release)
	p.Stop()

	_, err = p.Get(id)
	require.NoError(t, err, "queued job completes after the serve context is gone")
}

// Package thumbnails renders preview images for uploaded pictures on a
// fixed pool of background workers. Jobs are fire-and-forget: a full queue
// drops them.
package thumbnails

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/filex"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/storage/blob"
)

// MaxSide bounds both thumbnail dimensions.
const MaxSide = 128

const suffix = "_thumbnail.jpg"

var ErrNotFound = fmt.Errorf("thumbnail %w", common.ErrorNotFound)

type Job struct {
	BlobID   string
	FileName string
}

type Pool struct {
	blobs   blob.Store
	dir     string
	workers int
	log     logging.Logger

	mu     sync.RWMutex
	jobs   chan Job
	closed bool
	wg     sync.WaitGroup
}

func New(blobs blob.Store, dir string, workers, queueSize int, log logging.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &Pool{
		blobs:   blobs,
		dir:     dir,
		workers: workers,
		log:     log.With("module", "thumbnails"),
		jobs:    make(chan Job, queueSize),
	}
}

// Start launches the workers. They run until Stop is called: cancelling ctx
// does not abort queued jobs, only its values are kept.
func (p *Pool) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for job := range p.jobs {
				if err := p.Generate(ctx, job); err != nil {
					p.log.Warn(ctx, "thumbnail failed", "worker", id, "blob_id", job.BlobID, "error", err)
				}
			}
		}(i)
	}
}

// Enqueue hands a job to the workers without blocking.
func (p *Pool) Enqueue(blobID, fileName string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.jobs <- Job{BlobID: blobID, FileName: fileName}:
		return true
	default:
		return false
	}
}

// Stop closes the queue and waits for the workers to finish what is queued.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// key flattens a blob id, which may contain slashes, into a file name.
func key(blobID string) string {
	sum := sha256.Sum256([]byte(blobID))
	return hex.EncodeToString(sum[:]) + suffix
}

func (p *Pool) Path(blobID string) string {
	return filepath.Join(p.dir, key(blobID))
}

// Get returns the rendered thumbnail of blobID.
func (p *Pool) Get(blobID string) ([]byte, error) {
	name := key(blobID)
	if blobID == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("%w: bad blob id %q", common.ErrorValidation, blobID)
	}
	data, err := os.ReadFile(filepath.Join(p.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Generate renders the thumbnail for job. Videos are skipped.
func (p *Pool) Generate(ctx context.Context, job Job) error {
	if models.FileTypeFor(job.FileName) == models.FileTypeVideo {
		p.log.Info(ctx, "no thumbnail for video", "blob_id", job.BlobID)
		return nil
	}

	data, err := p.blobs.Get(ctx, job.BlobID)
	if err != nil {
		return err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %q: %w", job.FileName, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Fit(src, MaxSide), &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if err := p.write(job.BlobID, buf.Bytes()); err != nil {
		return err
	}
	p.log.Debug(ctx, "thumbnail written", "blob_id", job.BlobID, "bytes", buf.Len())
	return nil
}

func (p *Pool) write(blobID string, data []byte) error {
	return filex.WriteAtomic(p.Path(blobID), data, 0o755, 0o644)
}

// Fit scales src down, keeping its aspect ratio, so neither side exceeds
// side. Smaller images are returned unchanged.
func Fit(src image.Image, side int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= side && h <= side {
		return src
	}

	nw, nh := side, side
	if w > h {
		nh = max(1, h*side/w)
	} else {
		nw = max(1, w*side/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	for y := 0; y < nh; y++ {
		sy := b.Min.Y + y*h/nh
		for x := 0; x < nw; x++ {
			dst.Set(x, y, src.At(b.Min.X+x*w/nw, sy))
		}
	}
	return dst
}

package migrate

import (
	"context"

	"github.com/example/tivoli-tools/internal/persistence"
)

// DefaultBatchSize is the number of images committed per transaction.
const DefaultBatchSize = 10000

// BatchWriter persists one image batch as a single transaction.
type BatchWriter interface {
	InsertImageBatch(ctx context.Context, batch persistence.ImageBatch) error
}

// Batcher buffers image rows and their links and writes them in fixed size
// batches.
type Batcher struct {
	w       BatchWriter
	size    int
	batch   persistence.ImageBatch
	flushed int
	written int

	// OnFlush, when set, is called after every successful commit with the
	// total number of images written so far.
	OnFlush func(written int)
}

// NewBatcher returns a Batcher committing every size images. A size below one
// uses DefaultBatchSize.
func NewBatcher(w BatchWriter, size int) *Batcher {
	if size < 1 {
		size = DefaultBatchSize
	}
	return &Batcher{w: w, size: size}
}

// Add buffers one image with its links and flushes once the buffer holds a
// full batch.
func (b *Batcher) Add(ctx context.Context, img persistence.Image, models []persistence.ImageModel, tags []persistence.ImageTag) error {
	b.batch.Images = append(b.batch.Images, img)
	b.batch.ImageModels = append(b.batch.ImageModels, models...)
	b.batch.ImageTags = append(b.batch.ImageTags, tags...)

	if b.batch.Len() >= b.size {
		return b.Flush(ctx)
	}
	return nil
}

// Flush writes and commits whatever is buffered, even an empty batch, and
// clears the buffer. On error the buffer is kept and nothing of it is
// committed.
func (b *Batcher) Flush(ctx context.Context) error {
	if err := b.w.InsertImageBatch(ctx, b.batch); err != nil {
		return err
	}
	b.written += b.batch.Len()
	b.flushed++
	b.batch.Reset()

	if b.OnFlush != nil {
		b.OnFlush(b.written)
	}
	return nil
}

// Pending returns the number of buffered images.
func (b *Batcher) Pending() int {
	return b.batch.Len()
}

// Written returns the number of committed images.
func (b *Batcher) Written() int {
	return b.written
}

// Flushes returns the number of committed batches.
func (b *Batcher) Flushes() int {
	return b.flushed
}

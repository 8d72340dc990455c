package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"filesmanager/internal/domain"
	"filesmanager/internal/repository"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ThumbnailProcessor writes the 500, 250 and 100 pixel wide copies of an
// uploaded image next to the original blob. A job either writes all three
// or fails; derivatives written before a failure are left in place and are
// overwritten by the next successful run.
type ThumbnailProcessor struct {
	files FileLoader
	blobs BlobStore
	log   *zap.Logger
}

func NewThumbnailProcessor(files FileLoader, blobs BlobStore, log *zap.Logger) *ThumbnailProcessor {
	return &ThumbnailProcessor{files: files, blobs: blobs, log: log}
}

func (p *ThumbnailProcessor) Handle(ctx context.Context, payload []byte) error {
	var job domain.ThumbnailJob
	err := decode(payload, &job)
	if err == nil {
		err = p.process(ctx, job)
	}
	log := p.log.With(zap.Int64("file_id", job.FileID), zap.Int64("user_id", job.UserID))
	if err != nil {
		log.Error("thumbnail job failed", zap.Error(err))
		return err
	}
	log.Info("thumbnail job completed")
	return nil
}

func (p *ThumbnailProcessor) process(ctx context.Context, job domain.ThumbnailJob) error {
	if job.FileID == 0 {
		return errors.New("missing fileId")
	}
	if job.UserID == 0 {
		return errors.New("missing userId")
	}

	rec, err := p.files.GetByID(ctx, job.UserID, job.FileID)
	if errors.Is(err, repository.ErrNotFound) {
		return errors.New("file not found")
	}
	if err != nil {
		return fmt.Errorf("load file: %w", err)
	}
	if rec.Type != domain.TypeImage || rec.LocalPath == "" {
		return fmt.Errorf("file %d is not an image", rec.ID)
	}

	data, err := p.blobs.Read(ctx, rec.LocalPath)
	if err != nil {
		return fmt.Errorf("read original: %w", err)
	}

	thumbs, err := Thumbnails(ctx, data, domain.ThumbnailWidths)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, width := range domain.ThumbnailWidths {
		g.Go(func() error {
			if err := p.blobs.WriteDerivative(gctx, rec.LocalPath, width, thumbs[i]); err != nil {
				return fmt.Errorf("write %dpx thumbnail: %w", width, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Thumbnails decodes an image once and encodes one resized copy per width,
// in the source format. Heights keep the aspect ratio.
func Thumbnails(ctx context.Context, data []byte, widths []int) ([][]byte, error) {
	_, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported image format %q: %w", name, err)
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	out := make([][]byte, len(widths))
	g, gctx := errgroup.WithContext(ctx)
	for i, width := range widths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := imaging.Encode(&buf, imaging.Resize(src, width, 0, imaging.Lanczos), format); err != nil {
				return fmt.Errorf("encode %dpx thumbnail: %w", width, err)
			}
			out[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

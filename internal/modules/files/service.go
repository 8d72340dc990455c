package files

import (
	"context"
	"encoding/base64"
	"errors"
	"mime"
	"path/filepath"
	"strconv"
	"time"

	"filesmanager/internal/blob"
	"filesmanager/internal/domain"
	"filesmanager/internal/pkg/apperr"
	"filesmanager/internal/pkg/validator"
	"filesmanager/internal/repository"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

type Service struct {
	files          FileRepository
	blobs          BlobStore
	jobs           JobProducer
	log            *zap.Logger
	enqueueTimeout time.Duration
}

func NewService(files FileRepository, blobs BlobStore, jobs JobProducer, log *zap.Logger, enqueueTimeout time.Duration) *Service {
	if enqueueTimeout <= 0 {
		enqueueTimeout = 2 * time.Second
	}
	return &Service{
		files:          files,
		blobs:          blobs,
		jobs:           jobs,
		log:            log,
		enqueueTimeout: enqueueTimeout,
	}
}

// Upload creates a folder, or stores the decoded content and then its
// metadata. The blob is removed again when the metadata insert fails. Image
// uploads queue a thumbnail job; a failed enqueue does not fail the upload.
func (s *Service) Upload(ctx context.Context, owner int64, req UploadRequest) (*domain.FileRecord, error) {
	if fe := validator.First(req); fe != nil {
		return nil, apperr.InvalidInput(fe.Code(), fe.Message())
	}
	if !req.Type.Valid() {
		return nil, ErrInvalidType
	}

	if req.Type == domain.TypeFolder {
		rec, err := s.files.CreateFolder(ctx, owner, req.Name, req.ParentID, req.IsPublic)
		if err != nil {
			return nil, createError(err)
		}
		return rec, nil
	}

	if req.Data == "" {
		return nil, ErrMissingData
	}
	data, err := decodeBase64(req.Data)
	if err != nil {
		return nil, ErrInvalidData
	}

	path, err := s.blobs.Write(ctx, data)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	rec, err := s.files.CreateFile(ctx, owner, req.Name, req.Type, req.ParentID, req.IsPublic, path)
	if err != nil {
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), path); derr != nil {
			s.log.Warn("remove orphaned blob", zap.String("path", path), zap.Error(derr))
		}
		return nil, createError(err)
	}

	if rec.Type == domain.TypeImage {
		s.enqueueThumbnail(ctx, rec)
	}
	return rec, nil
}

func (s *Service) enqueueThumbnail(ctx context.Context, rec *domain.FileRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.enqueueTimeout)
	defer cancel()

	job := domain.ThumbnailJob{FileID: rec.ID, UserID: rec.UserID}
	if err := s.jobs.Enqueue(ctx, domain.FileQueue, job); err != nil {
		s.log.Warn("enqueue thumbnail job",
			zap.Int64("file_id", rec.ID),
			zap.Int64("user_id", rec.UserID),
			zap.Error(err),
		)
	}
}

func decodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func createError(err error) error {
	if errors.Is(err, repository.ErrInvalidParent) {
		return ErrInvalidParent
	}
	return apperr.Internal(err)
}

func (s *Service) Get(ctx context.Context, owner, id int64) (*domain.FileRecord, error) {
	rec, err := s.files.GetByID(ctx, owner, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, owner int64, filter domain.ListFilter, page int) (*domain.Page, error) {
	result, err := s.files.List(ctx, owner, filter, page)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return result, nil
}

func (s *Service) SetVisibility(ctx context.Context, owner, id int64, isPublic bool) (*domain.FileRecord, error) {
	rec, err := s.files.SetVisibility(ctx, owner, id, isPublic)
	if err != nil {
		return nil, lookupError(err)
	}
	return rec, nil
}

// Download returns the content of a public record or one the viewer owns.
// Records the viewer may not see are reported as not found. For images a
// non-zero width selects the derivative; there is no fallback to the
// original when the derivative does not exist yet.
func (s *Service) Download(ctx context.Context, viewer Viewer, id int64, width int) (*Content, error) {
	if width != 0 && !domain.IsThumbnailWidth(width) {
		return nil, ErrInvalidSize
	}

	rec, err := s.files.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err)
	}
	if !rec.IsPublic && !viewer.Owns(rec) {
		return nil, ErrNotFound
	}
	if rec.Type == domain.TypeFolder {
		return nil, ErrFolderContent
	}

	path := rec.LocalPath
	if width != 0 && rec.Type == domain.TypeImage {
		path = blob.DerivativePath(path, width)
	}

	data, err := s.blobs.Read(ctx, path)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}

	return &Content{Name: rec.Name, ContentType: contentType(rec.Name, data), Data: data}, nil
}

func contentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return mimetype.Detect(data).String()
}

// ParseWidth reads the size query value; empty means the original.
func ParseWidth(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	w, err := strconv.Atoi(raw)
	if err != nil || !domain.IsThumbnailWidth(w) {
		return 0, ErrInvalidSize
	}
	return w, nil
}

func lookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return apperr.Internal(err)
}

package files

import (
	"context"

	"filesmanager/internal/domain"
)

type FileRepository interface {
	CreateFolder(ctx context.Context, owner int64, name string, parent domain.ParentRef, isPublic bool) (*domain.FileRecord, error)
	CreateFile(ctx context.Context, owner int64, name string, typ domain.FileType, parent domain.ParentRef, isPublic bool, localPath string) (*domain.FileRecord, error)
	GetByID(ctx context.Context, owner, id int64) (*domain.FileRecord, error)
	FindByID(ctx context.Context, id int64) (*domain.FileRecord, error)
	List(ctx context.Context, owner int64, filter domain.ListFilter, page int) (*domain.Page, error)
	SetVisibility(ctx context.Context, owner, id int64, isPublic bool) (*domain.FileRecord, error)
}

type BlobStore interface {
	Write(ctx context.Context, data []byte) (string, error)
	Read(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

type JobProducer interface {
	Enqueue(ctx context.Context, queue string, payload any) error
}

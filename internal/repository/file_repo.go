package repository

import (
	"context"
	"errors"
	"time"

	"filesmanager/internal/domain"

	"gorm.io/gorm"
)

// FileRepository stores folder, file and image metadata. Records are
// scoped to their owner except for FindByID, which serves public downloads.
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

type fileModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;index;not null"`
	Name      string    `gorm:"column:name;not null"`
	Type      string    `gorm:"column:type;not null"`
	ParentID  *int64    `gorm:"column:parent_id;index"`
	IsPublic  bool      `gorm:"column:is_public;not null"`
	LocalPath *string   `gorm:"column:local_path"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (fileModel) TableName() string { return "files" }

func toDomainFile(m fileModel) *domain.FileRecord {
	rec := &domain.FileRecord{
		ID:       m.ID,
		UserID:   m.UserID,
		Name:     m.Name,
		Type:     domain.FileType(m.Type),
		IsPublic: m.IsPublic,
	}
	if m.ParentID != nil {
		rec.Parent = domain.ParentOf(*m.ParentID)
	}
	if m.LocalPath != nil {
		rec.LocalPath = *m.LocalPath
	}
	return rec
}

func parentColumn(p domain.ParentRef) *int64 {
	if id, ok := p.FolderID(); ok {
		return &id
	}
	return nil
}

func (r *FileRepository) CreateFolder(ctx context.Context, owner int64, name string, parent domain.ParentRef, isPublic bool) (*domain.FileRecord, error) {
	return r.create(ctx, fileModel{
		UserID:   owner,
		Name:     name,
		Type:     string(domain.TypeFolder),
		ParentID: parentColumn(parent),
		IsPublic: isPublic,
	})
}

func (r *FileRepository) CreateFile(ctx context.Context, owner int64, name string, typ domain.FileType, parent domain.ParentRef, isPublic bool, localPath string) (*domain.FileRecord, error) {
	if !typ.HasContent() {
		return nil, errors.New("file records must be of type file or image")
	}
	return r.create(ctx, fileModel{
		UserID:    owner,
		Name:      name,
		Type:      string(typ),
		ParentID:  parentColumn(parent),
		IsPublic:  isPublic,
		LocalPath: &localPath,
	})
}

// create validates the parent and inserts in one transaction so a parent
// reference is checked against the same snapshot the row is written to.
func (r *FileRepository) create(ctx context.Context, m fileModel) (*domain.FileRecord, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.ParentID != nil {
			var parent fileModel
			err := tx.Where("id = ? AND user_id = ?", *m.ParentID, m.UserID).Take(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidParent
			}
			if err != nil {
				return err
			}
			if parent.Type != string(domain.TypeFolder) {
				return ErrInvalidParent
			}
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		return nil, err
	}
	return toDomainFile(m), nil
}

func (r *FileRepository) GetByID(ctx context.Context, owner, id int64) (*domain.FileRecord, error) {
	var m fileModel
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainFile(m), nil
}

// FindByID looks a record up regardless of owner. Callers must enforce
// visibility themselves.
func (r *FileRepository) FindByID(ctx context.Context, id int64) (*domain.FileRecord, error) {
	var m fileModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainFile(m), nil
}

// List returns one page of the owner's records, newest first, with the
// total number of matching records. Pagination is offset based: inserts
// between two page reads can shift rows across pages.
func (r *FileRepository) List(ctx context.Context, owner int64, filter domain.ListFilter, page int) (*domain.Page, error) {
	if page < 0 {
		page = 0
	}
	result := &domain.Page{Page: page, Items: []*domain.FileRecord{}}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&fileModel{}).Where("user_id = ?", owner)
		if filter.ByParent {
			if id, ok := filter.Parent.FolderID(); ok {
				q = q.Where("parent_id = ?", id)
			} else {
				q = q.Where("parent_id IS NULL")
			}
		}
		q = q.Session(&gorm.Session{})

		if err := q.Count(&result.Total).Error; err != nil {
			return err
		}
		if page > domain.MaxPage {
			return nil
		}

		var rows []fileModel
		if err := q.Order("id DESC").Offset(page * domain.PageSize).Limit(domain.PageSize).Find(&rows).Error; err != nil {
			return err
		}
		for _, m := range rows {
			result.Items = append(result.Items, toDomainFile(m))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetVisibility flips is_public on a record owned by owner and returns the
// updated record. Concurrent toggles are last-write-wins.
func (r *FileRepository) SetVisibility(ctx context.Context, owner, id int64, isPublic bool) (*domain.FileRecord, error) {
	var m fileModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", id, owner).Take(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&m).Update("is_public", isPublic).Error; err != nil {
			return err
		}
		m.IsPublic = isPublic
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDomainFile(m), nil
}

func (r *FileRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&fileModel{}).Count(&n).Error
	return n, err
}

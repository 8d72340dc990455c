package files

import "filesmanager/internal/domain"

// UploadRequest is the body of POST /files. Data is the base64 content and
// is required for every type except folder.
type UploadRequest struct {
	Name     string           `json:"name" validate:"required"`
	Type     domain.FileType  `json:"type" validate:"required"`
	ParentID domain.ParentRef `json:"parentId"`
	IsPublic bool             `json:"isPublic"`
	Data     string           `json:"data"`
}

// Viewer is the caller of a download; anonymous callers only see public files.
type Viewer struct {
	UserID        int64
	Authenticated bool
}

var Anonymous = Viewer{}

func UserViewer(id int64) Viewer {
	return Viewer{UserID: id, Authenticated: true}
}

func (v Viewer) Owns(rec *domain.FileRecord) bool {
	return v.Authenticated && rec.UserID == v.UserID
}

// Content is a servable blob.
type Content struct {
	Name        string
	ContentType string
	Data        []byte
}

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

func (t FileType) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	}
	return false
}

// HasContent reports whether records of this type reference a blob.
func (t FileType) HasContent() bool {
	return t == TypeFile || t == TypeImage
}

// PageSize is the fixed number of records per listing page.
const PageSize = 20

// MaxPage is the last page whose offset fits in an int.
const MaxPage = math.MaxInt / PageSize

// ThumbnailWidths are the widths generated for every image upload.
var ThumbnailWidths = []int{500, 250, 100}

func IsThumbnailWidth(w int) bool {
	for _, tw := range ThumbnailWidths {
		if tw == w {
			return true
		}
	}
	return false
}

var ErrInvalidParentRef = errors.New("invalid parent reference")

// ParentRef points at the folder containing a record. The zero value is the
// root; use ParentOf to reference a folder.
type ParentRef struct {
	id int64
}

var Root = ParentRef{}

func ParentOf(id int64) ParentRef {
	if id <= 0 {
		return Root
	}
	return ParentRef{id: id}
}

func (p ParentRef) IsRoot() bool { return p.id == 0 }

// FolderID returns the referenced folder id; ok is false for the root.
func (p ParentRef) FolderID() (id int64, ok bool) {
	return p.id, p.id != 0
}

func (p ParentRef) String() string {
	if p.IsRoot() {
		return "root"
	}
	return strconv.FormatInt(p.id, 10)
}

// ParseParentRef accepts "", "0" for the root and positive integers for a folder.
func ParseParentRef(s string) (ParentRef, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return Root, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return Root, fmt.Errorf("%w: %q", ErrInvalidParentRef, s)
	}
	return ParentOf(id), nil
}

// MarshalJSON renders the root as 0.
func (p ParentRef) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, p.id, 10), nil
}

// UnmarshalJSON accepts null, numbers and numeric strings.
func (p *ParentRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = Root
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		ref, err := ParseParentRef(s)
		if err != nil {
			return err
		}
		*p = ref
		return nil
	}
	ref, err := ParseParentRef(string(b))
	if err != nil {
		return err
	}
	*p = ref
	return nil
}

// FileRecord is the metadata of a folder, file or image. LocalPath is an
// opaque blob reference, empty for folders, and is never rendered to clients.
type FileRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Type      FileType  `json:"type"`
	Parent    ParentRef `json:"parentId"`
	IsPublic  bool      `json:"isPublic"`
	LocalPath string    `json:"-"`
}

// ListFilter narrows a listing to a single parent when ByParent is set.
type ListFilter struct {
	ByParent bool
	Parent   ParentRef
}

// Page is one page of an id-descending listing.
type Page struct {
	Items []*FileRecord `json:"items"`
	Page  int           `json:"page"`
	Total int64         `json:"total"`
}

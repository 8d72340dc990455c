package files

import "filesmanager/internal/pkg/apperr"

var (
	ErrNotFound      = apperr.NotFound("Not found")
	ErrInvalidType   = apperr.InvalidInput("INVALID_TYPE", "Invalid type")
	ErrMissingData   = apperr.InvalidInput("MISSING_DATA", "Missing data")
	ErrInvalidData   = apperr.InvalidInput("INVALID_DATA", "Data is not valid base64")
	ErrInvalidParent = apperr.InvalidInput("INVALID_PARENT", "Invalid parent folder")
	ErrInvalidSize   = apperr.InvalidInput("INVALID_SIZE", "Size must be one of 500, 250, 100")
	ErrFolderContent = apperr.InvalidInput("FOLDER_HAS_NO_CONTENT", "A folder doesn't have content")
)

package domain

// Queue names.
const (
	FileQueue = "fileQueue"
	UserQueue = "userQueue"
)

// ThumbnailJob asks the thumbnail pipeline to derive resized copies of an image.
type ThumbnailJob struct {
	FileID int64 `json:"fileId"`
	UserID int64 `json:"userId"`
}

// WelcomeJob asks the welcome pipeline to greet a newly registered user.
type WelcomeJob struct {
	UserID int64 `json:"userId"`
}

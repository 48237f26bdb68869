package main

import (
	"mime/multipart"
	"time"

	"go.uber.org/zap"
)

// UploadResponse represents the response structure for accepted uploads
type UploadResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	UploadID string `json:"upload_id"`
}

// ErrorResponse is returned for every rejected request
type ErrorResponse struct {
	Error string `json:"error"`
}

// UploadRequest is the validated content of one POST /upload call
type UploadRequest struct {
	RepoName      string
	ScheduleTime  time.Time
	ScheduleZoned bool
	ReadmeFile    *multipart.FileHeader
	MainFiles     []*multipart.FileHeader
}

// UploadRecord describes an upload persisted under the upload root
type UploadRecord struct {
	UploadID   string     `json:"upload_id"`
	RepoName   string     `json:"repo_name"`
	Schedule   string     `json:"schedule"`
	FolderPath string     `json:"folder"`
	Files      []FileInfo `json:"files,omitempty"`
	FileCount  int        `json:"-"`
	ScheduleAt time.Time  `json:"-"`
	CreatedAt  time.Time  `json:"-"`
}

// FileInfo represents metadata about a stored file
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ScheduledCallback is the in-memory binding of one upload to its publish time
type ScheduledCallback struct {
	UploadID   string
	FolderPath string
	RepoName   string
	FireAt     time.Time
}

// Server holds the shared configuration and collaborators of the HTTP handlers
type Server struct {
	cfg       Config
	log       *zap.Logger
	scheduler *Scheduler
	store     UploadStore
	metrics   *Metrics
	now       func() time.Time
}

package models

import "time"

// Resource is an uploaded file classified under a semester, course and resource type.
type Resource struct {
	ID           int64     `db:"id" json:"id"`
	Semester     int       `db:"semester" json:"semester"`
	Course       string    `db:"course" json:"course"`
	ResourceType string    `db:"resource_type" json:"resource_type"`
	FileRef      string    `db:"file_ref" json:"file_ref"`
	FileName     string    `db:"file_name" json:"file_name"`
	UploaderID   int64     `db:"uploader_id" json:"uploader_id"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// ResourceSummary is the listing projection rendered in resource menus.
type ResourceSummary struct {
	ID       int64  `db:"id" json:"id"`
	FileName string `db:"file_name" json:"file_name"`
	FileRef  string `db:"file_ref" json:"file_ref"`
}

// NewResource carries the coordinates and file of an upload.
type NewResource struct {
	Semester     int
	Course       string
	ResourceType string
	FileRef      string
	FileName     string
	UploaderID   int64
}

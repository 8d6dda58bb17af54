package models

import "time"

// Document is metadata of an employee file stored in object storage.
type Document struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employee_id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	StorageKey  string    `json:"-"`
	Size        int64     `json:"size"`
	Uploaded    bool      `json:"uploaded"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

package domain

// File is a stored blob inside a bucket.
type File struct {
	ID          string `json:"id"`
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	Size        int64  `json:"sizeBytes"`
	ContentType string `json:"contentType,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

package model

type FileCollection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
	ExpiresAt   int64  `json:"expires_at"`
	PurgedAt    *int64 `json:"purged_at,omitempty"`
	Ctime       int64  `json:"ctime"`
}

// LiveAt reports whether the collection itself is still readable at unix time now.
func (c *FileCollection) LiveAt(now int64) bool {
	return c.PurgedAt == nil && c.ExpiresAt > now
}

type CollectionFile struct {
	ID           string `json:"id"`
	CollectionID string `json:"collection_id"`
	FileKey      string `json:"file_key"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
	UploadedBy   string `json:"uploaded_by"`
	Ctime        int64  `json:"ctime"`
}

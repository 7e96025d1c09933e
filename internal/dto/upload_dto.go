package dto

// UploadResponse describes a stored task attachment.
type UploadResponse struct {
	FileName  string `json:"filename"`
	Path      string `json:"-"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

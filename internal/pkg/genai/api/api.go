package api

// ImageData contains one generated image payload
type ImageData struct {
	Content  []byte
	MimeType string
}

package models

type UploadedImage struct {
	ImageURL    string `json:"image_url"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

type UploadImageResponse struct {
	Success bool `json:"success"`
	UploadedImage
}

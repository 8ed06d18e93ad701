package models

// UploadKind selects the size and type limits of an upload
type UploadKind string

const (
	UploadCertificate UploadKind = "certificate"
	UploadAvatar      UploadKind = "avatar"
	UploadThumbnail   UploadKind = "thumbnail"
	UploadVideo       UploadKind = "video"
)

// UploadResult is what the media collaborator returns for a stored file
type UploadResult struct {
	FileURL        string `json:"fileUrl" example:"https://cdn.example.com/f/abc.pdf"`
	FileID         string `json:"fileId" example:"abc"`
	ClassifyResult string `json:"classifyResult,omitempty" example:"CERTIFICATE"`
}

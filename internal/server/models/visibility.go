package models

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

type FileType string

const (
	FileTypeFile  FileType = "file"
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
	FileTypeOther FileType = "other"
)

var extensionTypes = map[string]FileType{
	"txt":  FileTypeFile,
	"pdf":  FileTypeFile,
	"docx": FileTypeFile,
	"md":   FileTypeFile,
	"jpg":  FileTypeImage,
	"jpeg": FileTypeImage,
	"png":  FileTypeImage,
	"gif":  FileTypeImage,
	"mp4":  FileTypeVideo,
	"avi":  FileTypeVideo,
	"mov":  FileTypeVideo,
}

// HasThumbnail reports whether uploads of this type get a thumbnail job.
func (t FileType) HasThumbnail() bool {
	return t == FileTypeImage || t == FileTypeVideo
}

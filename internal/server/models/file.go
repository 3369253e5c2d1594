package models

import "time"

// FileRecord is the structured-record form of an uploaded file.
type FileRecord struct {
	BlobID        string     `json:"blob_id" validate:"required"`
	OwnerID       string     `json:"owner_id" validate:"required"`
	FileName      string     `json:"file_name" validate:"required,max=255,excludesall=/"`
	FileSize      int64      `json:"file_size" validate:"gte=0"`
	DirectoryName string     `json:"directory_name"`
	Type          FileType   `json:"type" validate:"oneof=file image video other"`
	Visibility    Visibility `json:"visibility" validate:"oneof=private public"`
	CreatedAt     time.Time  `json:"created_at"`
}

// MetadataEntry is the authoritative per-file entry held in the metadata
// index under its blob id. Every authorization decision is made against it.
type MetadataEntry struct {
	FileID     string     `json:"file_id" validate:"required"`
	FileName   string     `json:"file_name" validate:"required"`
	FileSize   int64      `json:"file_size" validate:"gte=0"`
	UserID     string     `json:"user_id" validate:"required"`
	Visibility Visibility `json:"visibility" validate:"oneof=private public"`
	Directory  string     `json:"directory"`
	Type       FileType   `json:"type" validate:"oneof=file image video other"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewFileRecord builds a private record for freshly stored bytes.
func NewFileRecord(blobID, ownerID, fileName string, size int64, directory string, now time.Time) (*FileRecord, error) {
	r := &FileRecord{
		BlobID:        blobID,
		OwnerID:       ownerID,
		FileName:      fileName,
		FileSize:      size,
		DirectoryName: directory,
		Type:          FileTypeFor(fileName),
		Visibility:    VisibilityPrivate,
		CreatedAt:     now.UTC(),
	}
	if err := Validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Entry returns the metadata entry mirroring r.
func (r *FileRecord) Entry() *MetadataEntry {
	return &MetadataEntry{
		FileID:     r.BlobID,
		FileName:   r.FileName,
		FileSize:   r.FileSize,
		UserID:     r.OwnerID,
		Visibility: r.Visibility,
		Directory:  r.DirectoryName,
		Type:       r.Type,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.CreatedAt,
	}
}

func (e *MetadataEntry) IsPublic() bool { return e.Visibility == VisibilityPublic }

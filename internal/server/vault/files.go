package vault

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// pendingBlobID stands in for the id until the blob store assigns one.
const pendingBlobID = "pending"

type UploadRequest struct {
	FileName      string
	Data          []byte
	DirectoryName string
}

// Upload stores a new private file for p.
func (v *Vault) Upload(ctx context.Context, p models.Principal, req UploadRequest) (*models.MetadataEntry, error) {
	e, err := v.upload(ctx, p, req)
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", req.FileName, err)
	}
	return e, nil
}

func (v *Vault) upload(ctx context.Context, p models.Principal, req UploadRequest) (*models.MetadataEntry, error) {
	if err := requireSession(p); err != nil {
		return nil, err
	}
	if req.FileName == "" || strings.ContainsAny(req.FileName, `/\`) {
		return nil, fmt.Errorf("%w: file name must be a bare name", common.ErrorValidation)
	}

	dir, err := v.resolveUploadDirectory(ctx, p, req.DirectoryName)
	if err != nil {
		return nil, err
	}

	rec, err := models.NewFileRecord(pendingBlobID, string(p), req.FileName, int64(len(req.Data)), dir.Path, now())
	if err != nil {
		return nil, err
	}

	blobID, err := v.blobs.Put(ctx, req.FileName, req.Data)
	if err != nil {
		return nil, storeFailure("blob store", err)
	}
	rec.BlobID = blobID

	if _, err := v.files().Create(ctx, rec); err != nil {
		return nil, v.undoUpload(ctx, storeFailure("file records", err), blobID, false)
	}

	entry := rec.Entry()
	if err := v.index.Set(ctx, blobID, entry); err != nil {
		return nil, v.undoUpload(ctx, storeFailure("metadata index", err), blobID, true)
	}

	if rec.Type.HasThumbnail() && v.thumbnails != nil {
		if !v.thumbnails.Enqueue(blobID, rec.FileName) {
			v.log.Warn(ctx, "thumbnail job dropped", "blob_id", blobID)
		}
	}

	v.log.Info(ctx, "file uploaded", "owner", p.String(), "blob_id", blobID, "size", rec.FileSize, "directory", dir.Path)
	return entry, nil
}

// undoUpload handles a failed upload step after the blob was written. In
// best-effort mode it only logs what was left behind.
func (v *Vault) undoUpload(ctx context.Context, cause error, blobID string, recordWritten bool) error {
	if v.mode != ModeCompensating {
		v.log.Warn(ctx, "upload left partial state", "blob_id", blobID, "record", recordWritten, "error", cause)
		return cause
	}

	var failed []string
	if recordWritten {
		if err := v.files().Delete(ctx, blobID); err != nil && !isNotFound(err) {
			v.log.Error(ctx, "compensation failed", "step", "delete record", "blob_id", blobID, "error", err)
			failed = append(failed, "record")
		}
	}
	if err := v.blobs.Delete(ctx, blobID); err != nil {
		v.log.Error(ctx, "compensation failed", "step", "delete blob", "blob_id", blobID, "error", err)
		failed = append(failed, "blob")
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: could not roll back %s: %w", common.ErrInconsistent, strings.Join(failed, ", "), cause)
	}
	return cause
}

// ListDirectory returns the visible entries stored directly in directory.
func (v *Vault) ListDirectory(ctx context.Context, p models.Principal, directory string) ([]*models.MetadataEntry, error) {
	path := models.NormalizePath(directory)

	if !p.IsAnonymous() {
		if _, err := v.findDirectory(ctx, p, path); err != nil {
			return nil, fmt.Errorf("ls: %w", err)
		}
	}

	visible, err := v.List(ctx, p)
	if err != nil {
		return nil, err
	}

	out := visible[:0]
	for _, e := range visible {
		if e.Directory == path {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReadMetadata returns the entry ref resolves to for p.
func (v *Vault) ReadMetadata(ctx context.Context, p models.Principal, ref string) (*models.MetadataEntry, error) {
	e, err := v.resolve(ctx, p, ref)
	if err != nil {
		return nil, fmt.Errorf("metadata %q: %w", ref, err)
	}
	return e, nil
}

// Read returns the text content of the file ref resolves to.
func (v *Vault) Read(ctx context.Context, p models.Principal, ref string) (string, error) {
	e, err := v.resolve(ctx, p, ref)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", ref, err)
	}

	data, err := v.blobs.Get(ctx, e.FileID)
	if err != nil {
		if isNotFound(err) {
			v.log.Warn(ctx, "metadata entry without blob", "blob_id", e.FileID)
			return "", fmt.Errorf("read %q: %w: blob %s is missing", ref, common.ErrDanglingReference, e.FileID)
		}
		return "", fmt.Errorf("read %q: %w", ref, storeFailure("blob store", err))
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("read %q: %w: content is not UTF-8 text", ref, common.ErrUnsupportedContent)
	}
	return string(data), nil
}

func (v *Vault) Publish(ctx context.Context, p models.Principal, ref string) (*models.MetadataEntry, error) {
	return v.setVisibility(ctx, p, ref, models.VisibilityPublic, "publish")
}

func (v *Vault) Unpublish(ctx context.Context, p models.Principal, ref string) (*models.MetadataEntry, error) {
	return v.setVisibility(ctx, p, ref, models.VisibilityPrivate, "unpublish")
}

func (v *Vault) setVisibility(ctx context.Context, p models.Principal, ref string, vis models.Visibility, op string) (*models.MetadataEntry, error) {
	e, err := v.resolveOwned(ctx, p, ref)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", op, ref, err)
	}
	if e.Visibility == vis {
		if err := v.syncRecordVisibility(ctx, e); err != nil {
			return nil, fmt.Errorf("%s %q: %w", op, ref, err)
		}
		return e, nil
	}

	prev := *e
	updated := *e
	updated.Visibility = vis
	updated.UpdatedAt = now().UTC()

	if err := v.index.Set(ctx, e.FileID, &updated); err != nil {
		return nil, fmt.Errorf("%s %q: %w", op, ref, storeFailure("metadata index", err))
	}

	if err := v.files().UpdateVisibility(ctx, e.FileID, vis); err != nil {
		cause := storeFailure("file records", err)

		if v.mode != ModeCompensating {
			v.log.Error(ctx, "metadata and record disagree on visibility", "blob_id", e.FileID, "visibility", vis, "error", err)
			return nil, fmt.Errorf("%s %q: %w: %w", op, ref, common.ErrInconsistent, cause)
		}

		if rerr := v.index.Set(ctx, e.FileID, &prev); rerr != nil {
			v.log.Error(ctx, "compensation failed", "step", "restore metadata", "blob_id", e.FileID, "error", rerr)
			return nil, fmt.Errorf("%s %q: %w: %w", op, ref, common.ErrInconsistent, cause)
		}
		return nil, fmt.Errorf("%s %q: %w", op, ref, cause)
	}

	v.log.Info(ctx, "visibility changed", "blob_id", e.FileID, "visibility", vis)
	return &updated, nil
}

// syncRecordVisibility brings the file record in line with an entry that
// already has the requested visibility, repairing an earlier partial update.
func (v *Vault) syncRecordVisibility(ctx context.Context, e *models.MetadataEntry) error {
	rec, err := v.files().GetByBlobID(ctx, e.FileID)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: no file record for blob %s", common.ErrDanglingReference, e.FileID)
		}
		return storeFailure("file records", err)
	}
	if rec.Visibility == e.Visibility {
		return nil
	}

	if err := v.files().UpdateVisibility(ctx, e.FileID, e.Visibility); err != nil {
		return storeFailure("file records", err)
	}
	v.log.Info(ctx, "record visibility repaired", "blob_id", e.FileID, "visibility", e.Visibility)
	return nil
}

// Delete removes the file ref resolves to from all three stores.
func (v *Vault) Delete(ctx context.Context, p models.Principal, ref string) error {
	e, err := v.resolveOwned(ctx, p, ref)
	if err != nil {
		return fmt.Errorf("delete %q: %w", ref, err)
	}

	if err := v.blobs.Delete(ctx, e.FileID); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete %q: %w", ref, storeFailure("blob store", err))
	}

	if err := v.files().Delete(ctx, e.FileID); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("delete %q: %w", ref, storeFailure("file records", err))
		}
		v.log.Warn(ctx, "metadata entry without file record", "blob_id", e.FileID)
	}

	if err := v.index.Delete(ctx, e.FileID); err != nil {
		v.log.Error(ctx, "orphaned metadata entry", "blob_id", e.FileID, "error", err)
		return fmt.Errorf("delete %q: %w", ref, storeFailure("metadata index", err))
	}

	v.log.Info(ctx, "file deleted", "owner", p.String(), "blob_id", e.FileID)
	return nil
}

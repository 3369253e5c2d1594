package vault

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
)

// Report lists the drift between p's file records and metadata entries.
type Report struct {
	// MissingEntries are records without a metadata entry.
	MissingEntries []string `json:"missing_entries"`
	// OrphanEntries are metadata entries without a record.
	OrphanEntries []string `json:"orphan_entries"`
	// VisibilityMismatch are blob ids whose record and entry disagree.
	VisibilityMismatch []string `json:"visibility_mismatch"`
}

func (r *Report) Clean() bool {
	return len(r.MissingEntries) == 0 && len(r.OrphanEntries) == 0 && len(r.VisibilityMismatch) == 0
}

// Audit compares p's records with the metadata index.
func (v *Vault) Audit(ctx context.Context, p models.Principal) (*Report, error) {
	if err := requireSession(p); err != nil {
		return nil, err
	}

	records, err := v.files().ListByOwner(ctx, string(p))
	if err != nil {
		return nil, fmt.Errorf("audit: %w", storeFailure("file records", err))
	}
	all, err := v.index.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", storeFailure("metadata index", err))
	}

	entries := make(map[string]*models.MetadataEntry)
	for _, e := range all {
		if p.Owns(e.UserID) {
			entries[e.FileID] = e
		}
	}

	r := &Report{}
	for _, rec := range records {
		e, ok := entries[rec.BlobID]
		if !ok {
			r.MissingEntries = append(r.MissingEntries, rec.BlobID)
			continue
		}
		if e.Visibility != rec.Visibility {
			r.VisibilityMismatch = append(r.VisibilityMismatch, rec.BlobID)
		}
		delete(entries, rec.BlobID)
	}
	for id := range entries {
		r.OrphanEntries = append(r.OrphanEntries, id)
	}
	sort.Strings(r.OrphanEntries)

	if !r.Clean() {
		v.log.Warn(ctx, "stores drifted", "owner", p.String(),
			"missing", len(r.MissingEntries), "orphans", len(r.OrphanEntries), "mismatch", len(r.VisibilityMismatch))
	}
	return r, nil
}

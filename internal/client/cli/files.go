package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/gophvault/internal/filex"
	"github.com/dmitrijs2005/gophvault/internal/server/vault"
)

func (a *App) Upload(ctx context.Context, args []string) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}

	data, err := filex.ReadFile(args[0], a.config.MaxUploadBytes)
	if err != nil {
		return err
	}

	req := vault.UploadRequest{FileName: filepath.Base(args[0]), Data: data}
	if len(args) > 1 {
		req.DirectoryName = args[1]
	}

	e, err := a.vault.Upload(ctx, p, req)
	if err != nil {
		return err
	}
	successColor.Fprintf(a.out, "Uploaded %s (%s, %d bytes)\n", e.FileName, e.FileID, e.FileSize)
	return nil
}

func (a *App) List(ctx context.Context, _ []string) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}
	entries, err := a.vault.List(ctx, p)
	if err != nil {
		return err
	}
	printEntries(a.out, entries)
	return nil
}

func (a *App) ListDirectory(ctx context.Context, args []string) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}
	entries, err := a.vault.ListDirectory(ctx, p, dir)
	if err != nil {
		return err
	}
	printEntries(a.out, entries)
	return nil
}

func (a *App) Directories(ctx context.Context, _ []string) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}
	dirs, err := a.vault.Directories(ctx, p)
	if err != nil {
		return err
	}
	printDirectories(a.out, dirs)
	return nil
}

func (a *App) Read(ctx context.Context, args []string) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}
	content, err := a.vault.Read(ctx, p, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, content)
	return nil
}

func (a *App) Metadata(ctx context.Context, args []string) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}
	e, err := a.vault.ReadMetadata(ctx, p, args[0])
	if err != nil {
		return err
	}
	printEntry(a.out, e)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}
	if err := a.vault.Delete(ctx, p, args[0]); err != nil {
		return err
	}
	successColor.Fprintf(a.out, "Deleted %s\n", args[0])
	return nil
}

func (a *App) Publish(ctx context.Context, args []string) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}
	e, err := a.vault.Publish(ctx, p, args[0])
	if err != nil {
		return err
	}
	successColor.Fprintf(a.out, "%s is now %s\n", e.FileName, e.Visibility)
	return nil
}

func (a *App) Unpublish(ctx context.Context, args []string) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}
	e, err := a.vault.Unpublish(ctx, p, args[0])
	if err != nil {
		return err
	}
	successColor.Fprintf(a.out, "%s is now %s\n", e.FileName, e.Visibility)
	return nil
}

func (a *App) Mkdir(ctx context.Context, args []string) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}
	parent := ""
	if len(args) > 1 {
		parent = args[1]
	}
	d, err := a.vault.CreateDirectory(ctx, p, args[0], parent)
	if err != nil {
		return err
	}
	successColor.Fprintf(a.out, "Created %s\n", d.Path)
	return nil
}

// Check reports drift between the caller's file records and the metadata
// index.
func (a *App) Check(ctx context.Context, _ []string) error {
	p, err := a.principal(ctx)
	if err != nil {
		return err
	}
	r, err := a.vault.Audit(ctx, p)
	if err != nil {
		return err
	}
	printReport(a.out, r)
	return nil
}

package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/server/models"
	"github.com/dmitrijs2005/gophvault/internal/server/vault"
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	publicColor  = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

func displayDir(dir string) string {
	if dir == models.RootPath {
		return models.PathSeparator
	}
	return dir
}

func visibilityText(v models.Visibility) string {
	if v == models.VisibilityPublic {
		return publicColor.Sprint(v)
	}
	return string(v)
}

// printEntries writes one line per entry. The coloured column is last so
// escape codes do not disturb the alignment.
func printEntries(w io.Writer, entries []*models.MetadataEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no files")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIRECTORY\tTYPE\tSIZE\tCREATED\tVISIBILITY")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			e.FileName, displayDir(e.Directory), e.Type, e.FileSize,
			e.CreatedAt.Local().Format(time.DateTime), visibilityText(e.Visibility))
	}
	_ = tw.Flush()
}

func printEntry(w io.Writer, e *models.MetadataEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "name:\t%s\n", e.FileName)
	fmt.Fprintf(tw, "id:\t%s\n", e.FileID)
	fmt.Fprintf(tw, "owner:\t%s\n", e.UserID)
	fmt.Fprintf(tw, "directory:\t%s\n", displayDir(e.Directory))
	fmt.Fprintf(tw, "type:\t%s\n", e.Type)
	fmt.Fprintf(tw, "size:\t%d\n", e.FileSize)
	fmt.Fprintf(tw, "created:\t%s\n", e.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(tw, "updated:\t%s\n", e.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(tw, "visibility:\t%s\n", visibilityText(e.Visibility))
	_ = tw.Flush()
}

func printDirectories(w io.Writer, dirs []*models.Directory) {
	if len(dirs) == 0 {
		fmt.Fprintln(w, "no directories")
		return
	}
	for _, d := range dirs {
		fmt.Fprintln(w, displayDir(d.Path))
	}
}

func printReport(w io.Writer, r *vault.Report) {
	if r.Clean() {
		successColor.Fprintln(w, "records and metadata index agree")
		return
	}
	section := func(title string, ids []string) {
		if len(ids) == 0 {
			return
		}
		warnColor.Fprintf(w, "%s (%d):\n", title, len(ids))
		for _, id := range ids {
			fmt.Fprintln(w, "  "+id)
		}
	}
	section("records without a metadata entry", r.MissingEntries)
	section("metadata entries without a record", r.OrphanEntries)
	section("visibility differs", r.VisibilityMismatch)
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

// RootPath is the path of every user's root directory.
const RootPath = ""

// PathSeparator joins directory names into a path.
const PathSeparator = "/"

type Directory struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id" validate:"required"`
	Name       string     `json:"name" validate:"required,max=255,excludesall=/"`
	ParentID   *string    `json:"parent_id,omitempty"`
	Path       string     `json:"path" validate:"required"`
	Visibility Visibility `json:"visibility" validate:"oneof=private public"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewDirectory builds a private directory below parent; a nil parent means
// the root directory.
func NewDirectory(ownerID, name string, parent *Directory) (*Directory, error) {
	if name == common.RootDirectoryName {
		return nil, fmt.Errorf("%w: directory name %q is reserved", common.ErrorValidation, name)
	}

	d := &Directory{
		OwnerID:    ownerID,
		Name:       name,
		Path:       JoinPath(RootPath, name),
		Visibility: VisibilityPrivate,
	}
	if parent != nil && !parent.IsRoot() {
		id := parent.ID
		d.ParentID = &id
		d.Path = JoinPath(parent.Path, name)
	}

	if err := Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

// RootDirectory is the implicit, never-stored root of ownerID.
func RootDirectory(ownerID string) *Directory {
	return &Directory{OwnerID: ownerID, Name: common.RootDirectoryName, Path: RootPath, Visibility: VisibilityPrivate}
}

func (d *Directory) IsRoot() bool { return d.Path == RootPath }

// JoinPath concatenates a parent path and a child name.
func JoinPath(parent, name string) string {
	return parent + PathSeparator + name
}

// NormalizePath turns user input ("docs", "/docs/2024/", "root") into a
// directory path. Empty input and "root" map to RootPath.
func NormalizePath(in string) string {
	in = strings.TrimSpace(in)
	if in == "" || in == common.RootDirectoryName || in == PathSeparator {
		return RootPath
	}
	in = strings.TrimPrefix(in, common.RootDirectoryName+PathSeparator)

	parts := strings.Split(in, PathSeparator)
	clean := parts[:0]
	for _, p := range parts {
		if p != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) == 0 {
		return RootPath
	}
	return PathSeparator + strings.Join(clean, PathSeparator)
}

// SplitPath returns the parent path and the last element of path.
func SplitPath(path string) (parent, name string) {
	i := strings.LastIndex(path, PathSeparator)
	if i < 0 {
		return RootPath, path
	}
	return path[:i], path[i+1:]
}

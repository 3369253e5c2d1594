package models

import (
	"path/filepath"
	"strings"
)

// FileTypeFor derives the type from the extension of name, case-insensitively.
func FileTypeFor(name string) FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return FileTypeOther
}

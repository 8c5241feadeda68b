package docsystem

import (
	"path"
	"strings"
)

// pathutils.go - Shared path helpers for import processors.

// BuildFullPath joins a zip folder path and a document title for display.
//
// Examples:
//   - BuildFullPath("chapters", "Intro") → "chapters/Intro"
//   - BuildFullPath("", "Readme") → "Readme"
func BuildFullPath(folderPath, title string) string {
	if folderPath == "" {
		return title
	}
	return folderPath + "/" + title
}

// TitleFromFilename derives a document title from an imported file name:
// the base name without extension, with underscores as spaces.
//
// Example:
//   - TitleFromFilename("notes/meeting_notes.md") → "meeting notes"
func TitleFromFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
}

// zipDir returns the folder part of a zip entry name, "" at the archive root.
// Zip entries use forward slashes regardless of OS.
func zipDir(name string) string {
	dir := path.Dir(name)
	if dir == "." || dir == "/" {
		return ""
	}
	return strings.Trim(dir, "/")
}

// parentKey keys per-parent lookups; root is "".
func parentKey(parentID *string) string {
	if parentID == nil {
		return ""
	}
	return *parentID
}

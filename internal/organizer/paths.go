package organizer

import (
	"path/filepath"
	"strings"
	"time"
)

// folderLayout names destination folders.
const folderLayout = "2006-01-02"

// DateFolder returns <root>/<YYYY-MM-DD> for date.
func DateFolder(root string, date time.Time) string {
	return filepath.Join(root, date.Format(folderLayout))
}

// PreviewPath swaps the extension of a raw path for ext ("jpg" or ".jpg").
func PreviewPath(rawPath, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "jpg"
	}
	base := filepath.Base(rawPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(rawPath), stem+"."+ext)
}

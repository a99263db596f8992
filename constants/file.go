package constants

import "strings"

// AllowedImageExtensions holds the default extensions accepted by photo ingestion.
// The decoder is the real gate; this just avoids feeding it obvious non-images.
var AllowedImageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

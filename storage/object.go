package storage

import (
	"net/http"
	"strings"

	"github.com/ruteri/spl-token-provisioner/interfaces"
)

var extensionsByMIME = map[string]string{
	"application/json": ".json",
	"image/png":        ".png",
	"image/jpeg":       ".jpg",
	"image/gif":        ".gif",
	"image/webp":       ".webp",
}

// mimeType returns the Content-Type to upload data with.
func mimeType(data []byte, contentType interfaces.ContentType) string {
	if contentType == interfaces.MetadataType {
		return "application/json"
	}
	mime, _, _ := strings.Cut(http.DetectContentType(data), ";")
	return mime
}

// objectName is the content-addressed object name: the hex content ID plus an
// extension for known MIME types.
func objectName(id interfaces.ContentID, mime string) string {
	return id.String() + extensionsByMIME[mime]
}

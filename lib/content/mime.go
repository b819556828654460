// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"path/filepath"
	"strings"
)

// imageContentTypes maps the page image extensions hondana serves to
// their MIME types. Lookup is case-insensitive on the extension.
var imageContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".avif": "image/avif",
}

// IsImagePath reports whether the path carries a supported page image
// extension.
func IsImagePath(path string) bool {
	_, ok := imageContentTypes[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ContentTypeFor returns the MIME type for a path based on its
// extension, falling back to application/octet-stream. The responder
// passes the requested leaf name here, not the archive's internal
// entry name — the extensions match by construction, and the
// requested name is what the client asked to be served.
func ContentTypeFor(path string) string {
	if contentType, ok := imageContentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return contentType
	}
	return "application/octet-stream"
}

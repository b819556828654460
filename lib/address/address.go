// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Scheme is the URL scheme for virtual content addresses.
const Scheme = "manga"

// ContentAddress identifies a chapter or page independent of whether
// the backing storage is a loose directory or an archive. Constructed
// per request, never persisted.
type ContentAddress struct {
	// Title is the library title the content belongs to. Maps to the
	// host component of a manga:// URL.
	Title string

	// RelativePath is the path below the title directory, using
	// forward slashes, with no leading separator. Maps to the path
	// component of a manga:// URL.
	RelativePath string
}

// New builds a ContentAddress from a title and a slash-separated
// relative path. The leading separator, if present, is stripped.
func New(title, relativePath string) ContentAddress {
	return ContentAddress{
		Title:        title,
		RelativePath: strings.TrimPrefix(relativePath, "/"),
	}
}

// Parse parses a manga:// URL into a ContentAddress. The title is the
// host component and the relative path is the URL path with the
// leading separator stripped; both are percent-decoded.
func Parse(rawURL string) (ContentAddress, error) {
	rest, ok := strings.CutPrefix(rawURL, Scheme+"://")
	if !ok {
		return ContentAddress{}, fmt.Errorf("address %q: missing %s:// scheme", rawURL, Scheme)
	}

	encodedTitle, encodedPath, _ := strings.Cut(rest, "/")
	title, err := url.PathUnescape(encodedTitle)
	if err != nil {
		return ContentAddress{}, fmt.Errorf("address %q: decoding title: %w", rawURL, err)
	}
	if title == "" {
		return ContentAddress{}, fmt.Errorf("address %q: empty title", rawURL)
	}

	relativePath, err := url.PathUnescape(encodedPath)
	if err != nil {
		return ContentAddress{}, fmt.Errorf("address %q: decoding path: %w", rawURL, err)
	}

	return ContentAddress{Title: title, RelativePath: relativePath}, nil
}

// String formats the address as a manga:// URL with both components
// percent-encoded. Parse(a.String()) round-trips.
func (a ContentAddress) String() string {
	var builder strings.Builder
	builder.WriteString(Scheme)
	builder.WriteString("://")
	builder.WriteString(url.PathEscape(a.Title))
	for _, segment := range strings.Split(a.RelativePath, "/") {
		builder.WriteByte('/')
		builder.WriteString(url.PathEscape(segment))
	}
	return builder.String()
}

// Leaf returns the final path element of the relative path — the
// requested page filename for page addresses.
func (a ContentAddress) Leaf() string {
	return path.Base(a.RelativePath)
}

// LibraryPath returns the slash-separated path of the address below
// the library root: "<title>/<relativePath>".
func (a ContentAddress) LibraryPath() string {
	if a.RelativePath == "" {
		return a.Title
	}
	return a.Title + "/" + a.RelativePath
}

// Split breaks a library-root-relative path ("<title>/<rest>") into a
// ContentAddress. Used by callers that receive plain relative paths
// (the listing and compress entry points) rather than manga:// URLs.
func Split(libraryPath string) ContentAddress {
	libraryPath = strings.Trim(libraryPath, "/")
	title, rest, _ := strings.Cut(libraryPath, "/")
	return ContentAddress{Title: title, RelativePath: rest}
}

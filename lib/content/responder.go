// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"errors"
	"fmt"
	"os"

	"github.com/hondana-project/hondana/lib/address"
	"github.com/hondana-project/hondana/lib/archive"
	"github.com/hondana-project/hondana/lib/handlecache"
)

// Payload is the result of serving one content address.
type Payload struct {
	// Data is the raw image bytes.
	Data []byte

	// ContentType is the MIME type inferred from the requested leaf
	// name.
	ContentType string

	// ETag is the hex BLAKE3 digest of Data, for HTTP conditional
	// requests.
	ETag string
}

// Responder turns content addresses into byte payloads, reading loose
// files directly and archive entries through the handle cache.
type Responder struct {
	resolver *Resolver
	cache    *handlecache.Cache
}

// NewResponder creates a Responder. The cache is shared with the rest
// of the application; the responder never closes handles itself.
func NewResponder(resolver *Resolver, cache *handlecache.Cache) *Responder {
	return &Responder{resolver: resolver, cache: cache}
}

// Serve resolves addr and returns its bytes and content type.
//
// Errors satisfying errors.Is(err, ErrNotFound) mean neither a direct
// file nor an archive entry backs the address. Any other error is an
// internal fault (archive open or extraction failure); callers map it
// to a 500-equivalent response rather than propagating it.
func (r *Responder) Serve(addr address.ContentAddress) (Payload, error) {
	location, err := r.resolver.Resolve(addr)
	if err != nil {
		return Payload{}, err
	}

	var data []byte
	switch location.Kind {
	case Direct:
		data, err = os.ReadFile(location.Path)
		if err != nil {
			return Payload{}, fmt.Errorf("reading %s: %w", location.Path, err)
		}

	case ArchiveEntry:
		handle, err := r.cache.Get(location.Path)
		if err != nil {
			return Payload{}, fmt.Errorf("getting handle for %s: %w", location.Path, err)
		}
		data, err = handle.ReadEntry(location.Entry)
		if err != nil {
			// A resolvable archive without the entry is still a miss
			// from the client's point of view.
			if errors.Is(err, archive.ErrEntryNotFound) {
				return Payload{}, fmt.Errorf("%w: %s", ErrNotFound, addr)
			}
			return Payload{}, fmt.Errorf("extracting %s from %s: %w", location.Entry, location.Path, err)
		}
	}

	return Payload{
		Data:        data,
		ContentType: ContentTypeFor(addr.Leaf()),
		ETag:        archive.HashBytes(data),
	}, nil
}

// Copyright 2026 The Hondana Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hondana-project/hondana/lib/address"
	"github.com/hondana-project/hondana/lib/content"
)

// newContentHandler routes page image requests. The only route is
//
//	GET /content/<title>/<relativePath>
//
// which resolves the address through the content layer and returns
// the image bytes. Clients get exactly three outcomes: the payload,
// 404 when nothing backs the address, or 500 with a short text body
// when storage misbehaves.
func newContentHandler(responder *content.Responder, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /content/{library...}", func(w http.ResponseWriter, r *http.Request) {
		addr := address.Split(r.PathValue("library"))
		if addr.Title == "" || addr.RelativePath == "" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		payload, err := responder.Serve(addr)
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to serve content",
				"address", addr,
				"error", err,
			)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		etag := `"` + payload.ETag + `"`
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("Content-Type", payload.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(payload.Data)))
		w.Header().Set("ETag", etag)
		w.Write(payload.Data)
	})
	return mux
}

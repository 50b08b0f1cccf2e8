// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

/*
Package comic defines the core domain for the Comicshelf catalog.

A comic is a named, ordered collection of page images. The image bytes live
on disk (see [internal/pagestore]); this package owns the catalog record and
the consistency contract between the record and its backing directory across
upload, read, thumbnail, and delete operations.

Core Responsibility:

  - Catalog: One record per uploaded comic with its ordered page filenames.
  - Ingestion: Validates, stores pages, and persists the record as one flow.
  - Consistency: A record must never outlive its directory and vice versa
    (best-effort, with compensating cleanup and logged reconciliation).
*/
package comic

import (
	"io"
	"time"
)

// # Core Entities

// Comic is the central aggregate of the catalog.
// It represents one uploaded image set.
type Comic struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Folder string `json:"folder"` // Filesystem-safe directory identifier derived from Title

	// Pages holds the page filenames in upload order. Every element must
	// correspond to a file under uploads/<Folder>/ while the record exists.
	Pages []string `json:"pages"`

	// Thumbnail is the designated list-view page filename. When set it must
	// equal an element of Pages; nil means the comic has no pages.
	Thumbnail *string `json:"thumbnail"`

	CreatedAt time.Time `json:"created_at"`
}

// # Read Projections

// Summary is the list-view projection of a comic.
type Summary struct {
	Name      string  `json:"name"`
	Thumbnail *string `json:"thumbnail"` // Full /uploads URL, null when the comic has no pages
	PageCount int     `json:"pageCount"`
}

// View is the reader projection: the full ordered page URL sequence.
type View struct {
	Name  string   `json:"name"`
	Pages []string `json:"pages"`
}

// Details is the storage-footprint projection of a comic.
type Details struct {
	Name      string `json:"name"`
	PageCount int    `json:"pageCount"`
	TotalSize string `json:"totalSize"` // Mebibytes, e.g. "1.00 MB"
}

// # Ingestion Input

// PageUpload is one incoming page image within an upload batch.
//
// Open is called exactly once, by the service, so that only one page is held
// open at a time while the batch streams to disk.
type PageUpload struct {
	// Filename is the client-supplied name; only its extension is preserved.
	Filename string

	// Open returns the page bytes for streaming.
	Open func() (io.ReadCloser, error)
}

// # Field Identifiers

// Global field names for validation and dynamic query mapping.
const (
	FieldID        = "id"
	FieldName      = "name"
	FieldFolder    = "folder"
	FieldPages     = "pages"
	FieldThumbnail = "thumbnail"
	FieldPageIndex = "pageIndex"
)

// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

package comic

import "context"

// # Catalog Data Access

// CatalogRepository defines the data access contract for the comic catalog.
type CatalogRepository interface {

	/*
		Insert persists a new comic record.

		Parameters:
		  - context: context.Context
		  - comic: *Comic (ID, title, folder, ordered pages, optional thumbnail)

		Returns:
		  - error: Storage or constraint failures
	*/
	Insert(context context.Context, comic *Comic) error

	/*
		FindByTitle returns the comic with the given title.

		Description: Titles are not necessarily unique; when duplicates exist
		the oldest record wins, matching insertion-order lookup semantics.

		Parameters:
		  - context: context.Context
		  - title: string (Raw, unsanitized comic title)

		Returns:
		  - *Comic: The hydrated record
		  - error: apperr.NotFound if no record matches
	*/
	FindByTitle(context context.Context, title string) (*Comic, error)

	/*
		ExistsByTitle reports whether any record carries the given title.

		Parameters:
		  - context: context.Context
		  - title: string

		Returns:
		  - bool: True when at least one record matches
		  - error: Database retrieval failures
	*/
	ExistsByTitle(context context.Context, title string) (bool, error)

	/*
		ExistsByFolder reports whether any record still references the folder.

		Description: Duplicate titles map to the same sanitized folder, so a
		directory may back more than one record. Deletion consults this before
		removing the directory.

		Parameters:
		  - context: context.Context
		  - folder: string (Sanitized folder name)

		Returns:
		  - bool: True when at least one record references the folder
		  - error: Database retrieval failures
	*/
	ExistsByFolder(context context.Context, folder string) (bool, error)

	/*
		List returns comics ordered by creation time plus the total count.

		Description: A limit of zero or less disables pagination and returns
		the entire catalog.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []*Comic: Slice of records in creation order
		  - int: Total record count (for pagination metadata)
		  - error: Database retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]*Comic, int, error)

	/*
		SetThumbnail updates the designated thumbnail page of a record.

		Parameters:
		  - context: context.Context
		  - id: string (UUID primary key)
		  - filename: string (Must be an element of the record's pages)

		Returns:
		  - error: apperr.NotFound if the record vanished, or storage failures
	*/
	SetThumbnail(context context.Context, id, filename string) error

	/*
		DeleteByTitle removes the comic with the given title.

		Description: Returns the deleted record so the caller can clean up
		its backing directory. When duplicates exist the oldest record is
		deleted, mirroring FindByTitle.

		Parameters:
		  - context: context.Context
		  - title: string

		Returns:
		  - *Comic: The record as it existed before deletion
		  - error: apperr.NotFound if no record matches
	*/
	DeleteByTitle(context context.Context, title string) (*Comic, error)
}

// # Summary Caching

// SummaryCache is the volatile cache for the full list view.
//
// Implementations must be fail-soft: a cache outage degrades to catalog
// reads, it never fails a request.
type SummaryCache interface {

	/*
		Get returns the cached summary list.

		Returns:
		  - []Summary: The cached projection, nil on miss
		  - bool: True on cache hit
	*/
	Get(context context.Context) ([]Summary, bool)

	/*
		Set stores the summary list with the cache's TTL.
	*/
	Set(context context.Context, summaries []Summary)

	/*
		Invalidate drops the cached list after any catalog mutation.
	*/
	Invalidate(context context.Context)
}

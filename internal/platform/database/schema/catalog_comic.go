// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

// Package schema centralizes table and column identifiers so SQL builders
// never hardcode names.
package schema

import "github.com/linkaiwen/comicshelf/internal/platform/constants"

// CatalogComicTable represents the 'catalog.comic' table
type CatalogComicTable struct {
	Table     string
	ID        string
	Title     string
	Folder    string
	Pages     string
	Thumbnail string
	CreatedAt string
}

// CatalogComic is the schema definition for catalog.comic
var CatalogComic = CatalogComicTable{
	Table:     constants.SchemaCatalog + ".comic",
	ID:        "id",
	Title:     "title",
	Folder:    "folder",
	Pages:     "pages",
	Thumbnail: "thumbnail",
	CreatedAt: "createdat",
}

func (t CatalogComicTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Folder, t.Pages, t.Thumbnail, t.CreatedAt,
	}
}

// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

/*
PostgreSQL implementation of the catalog's data access.

Notes on the storage model:
  - Pages are stored as a text[] column in upload order; Postgres array
    semantics preserve element order, so no join table is needed for a
    projection this small.
  - List uses COUNT(*) OVER() so the total count rides along with the rows
    in a single round-trip.
  - Duplicate titles are permitted at the schema level; insertion-order
    tie-breaking is done on the UUIDv7 primary key, which is time-sortable.
*/
package comic

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linkaiwen/comicshelf/internal/platform/apperr"
	"github.com/linkaiwen/comicshelf/internal/platform/database/schema"
	"github.com/linkaiwen/comicshelf/internal/platform/dberr"
)

// # PostgreSQL Repository

// catalogRepository implements the [CatalogRepository] interface using pgx.
type catalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository constructs a PostgreSQL backed catalog store.
func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{pool: pool}
}

// columnList is the full catalog.comic column list, shared by every query
// that reads or returns whole records.
var columnList = strings.Join(schema.CatalogComic.Columns(), ", ")

/*
Insert persists a new comic record.

Parameters:
  - context: context.Context
  - comic: *Comic

Returns:
  - error: Database execution errors
*/
func (repository *catalogRepository) Insert(context context.Context, comic *Comic) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		schema.CatalogComic.Table,
		columnList,
	)

	_, err := repository.pool.Exec(context, query,
		comic.ID,
		comic.Title,
		comic.Folder,
		comic.Pages,
		comic.Thumbnail,
		comic.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("insert comic: %w", err), "Comic")
	}

	return nil
}

/*
FindByTitle returns the comic with the given title.

Description: Orders on the UUIDv7 primary key so that, when duplicate titles
exist, the oldest record is returned deterministically.

Parameters:
  - context: context.Context
  - title: string

Returns:
  - *Comic: The hydrated record
  - error: apperr.NotFound if no record matches
*/
func (repository *catalogRepository) FindByTitle(context context.Context, title string) (*Comic, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s
		LIMIT 1
	`,
		columnList,
		schema.CatalogComic.Table,
		schema.CatalogComic.Title,
		schema.CatalogComic.ID,
	)

	comic := &Comic{}
	err := repository.pool.QueryRow(context, query, title).Scan(
		&comic.ID,
		&comic.Title,
		&comic.Folder,
		&comic.Pages,
		&comic.Thumbnail,
		&comic.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("find comic by title: %w", err), "Comic")
	}

	return comic, nil
}

/*
ExistsByTitle reports whether any record carries the given title.

Parameters:
  - context: context.Context
  - title: string

Returns:
  - bool: True when at least one record matches
  - error: Database execution errors
*/
func (repository *catalogRepository) ExistsByTitle(context context.Context, title string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)
	`,
		schema.CatalogComic.Table,
		schema.CatalogComic.Title,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, title).Scan(&exists); err != nil {
		return false, dberr.Wrap(fmt.Errorf("check comic title: %w", err), "Comic")
	}

	return exists, nil
}

/*
ExistsByFolder reports whether any record still references the folder.

Parameters:
  - context: context.Context
  - folder: string

Returns:
  - bool: True when at least one record references the folder
  - error: Database execution errors
*/
func (repository *catalogRepository) ExistsByFolder(context context.Context, folder string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)
	`,
		schema.CatalogComic.Table,
		schema.CatalogComic.Folder,
	)

	var exists bool
	if err := repository.pool.QueryRow(context, query, folder).Scan(&exists); err != nil {
		return false, dberr.Wrap(fmt.Errorf("check comic folder: %w", err), "Comic")
	}

	return exists, nil
}

/*
List returns comics in creation order plus the total count.

Description: Uses the COUNT(*) OVER() window function to retrieve the total
record count without a second query. A non-positive limit returns the whole
catalog.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []*Comic: Records in creation order
  - int: Total record count
  - error: Database execution errors
*/
func (repository *catalogRepository) List(context context.Context, limit, offset int) ([]*Comic, int, error) {
	query := fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count
		FROM %s
		ORDER BY %s
	`,
		columnList,
		schema.CatalogComic.Table,
		schema.CatalogComic.ID,
	)

	args := []any{}
	if limit > 0 {
		query += " LIMIT $1 OFFSET $2"
		args = append(args, limit, offset)
	}

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("list comics: %w", err), "Comic")
	}
	defer rows.Close()

	var comics []*Comic
	var totalCount int

	for rows.Next() {
		comic := &Comic{}
		err := rows.Scan(
			&comic.ID,
			&comic.Title,
			&comic.Folder,
			&comic.Pages,
			&comic.Thumbnail,
			&comic.CreatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(fmt.Errorf("scan comic: %w", err), "Comic")
		}

		comics = append(comics, comic)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(fmt.Errorf("iterate comics: %w", err), "Comic")
	}

	return comics, totalCount, nil
}

/*
SetThumbnail updates the designated thumbnail page of a record.

Parameters:
  - context: context.Context
  - id: string (UUID primary key)
  - filename: string

Returns:
  - error: apperr.NotFound if the record vanished, or execution errors
*/
func (repository *catalogRepository) SetThumbnail(context context.Context, id, filename string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2 WHERE %s = $1
	`,
		schema.CatalogComic.Table,
		schema.CatalogComic.Thumbnail,
		schema.CatalogComic.ID,
	)

	tag, err := repository.pool.Exec(context, query, id, filename)
	if err != nil {
		return dberr.Wrap(fmt.Errorf("set thumbnail: %w", err), "Comic")
	}

	// The record was read moments ago; a zero row count means it was deleted
	// out from under us by a concurrent request.
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Comic")
	}

	return nil
}

/*
DeleteByTitle removes the comic with the given title.

Description: DELETE ... RETURNING hands back the full record in the same
round-trip, so the caller can remove the backing directory afterwards.

Parameters:
  - context: context.Context
  - title: string

Returns:
  - *Comic: The record as it existed before deletion
  - error: apperr.NotFound if no record matches
*/
func (repository *catalogRepository) DeleteByTitle(context context.Context, title string) (*Comic, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = (
			SELECT %s FROM %s WHERE %s = $1 ORDER BY %s LIMIT 1
		)
		RETURNING %s
	`,
		schema.CatalogComic.Table,
		schema.CatalogComic.ID,
		schema.CatalogComic.ID,
		schema.CatalogComic.Table,
		schema.CatalogComic.Title,
		schema.CatalogComic.ID,
		columnList,
	)

	comic := &Comic{}
	err := repository.pool.QueryRow(context, query, title).Scan(
		&comic.ID,
		&comic.Title,
		&comic.Folder,
		&comic.Pages,
		&comic.Thumbnail,
		&comic.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(fmt.Errorf("delete comic: %w", err), "Comic")
	}

	return comic, nil
}

// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

package comic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/linkaiwen/comicshelf/internal/pagestore"
	"github.com/linkaiwen/comicshelf/internal/platform/apperr"
	"github.com/linkaiwen/comicshelf/internal/platform/validate"
	"github.com/linkaiwen/comicshelf/pkg/pagination"
	"github.com/linkaiwen/comicshelf/pkg/pointer"
	"github.com/linkaiwen/comicshelf/pkg/safename"
	"github.com/linkaiwen/comicshelf/pkg/slice"
	"github.com/linkaiwen/comicshelf/pkg/uuid"
)

// # Service Definition

// Service implements the catalog business logic: ingestion, the three read
// projections, thumbnail selection, and deletion.
//
// # Consistency
//
// The catalog record and the comic's directory are mutated without a shared
// transaction. Upload compensates by removing its own files when the record
// cannot be persisted; Delete removes the record first and treats directory
// removal as best-effort, logging what it could not reclaim.
type Service struct {
	catalog      CatalogRepository
	pages        *pagestore.Store
	cache        SummaryCache
	uniqueTitles bool
	logger       *slog.Logger
}

// NewService wires the catalog service with its dependencies.
//
// uniqueTitles switches duplicate-title uploads from silent coexistence to a
// Conflict rejection.
func NewService(
	catalog CatalogRepository,
	pages *pagestore.Store,
	cache SummaryCache,
	uniqueTitles bool,
	logger *slog.Logger,
) *Service {
	return &Service{
		catalog:      catalog,
		pages:        pages,
		cache:        cache,
		uniqueTitles: uniqueTitles,
		logger:       logger,
	}
}

// pageURL builds the public URL of a stored page, served by the static
// /uploads file server.
func pageURL(folder, filename string) string {
	return "/uploads/" + folder + "/" + filename
}

// summarize builds the list-view projection of a record.
func (service *Service) summarize(comic *Comic) Summary {
	summary := Summary{
		Name:      comic.Title,
		PageCount: len(comic.Pages),
	}

	if comic.Thumbnail != nil {
		summary.Thumbnail = pointer.To(pageURL(comic.Folder, *comic.Thumbnail))
	}

	return summary
}

// asAppError passes AppErrors through untouched and hides everything else
// behind a generic 500.
func asAppError(err error) error {
	if apperr.IsAppError(err) {
		return err
	}
	return apperr.Internal(err)
}

// # Ingestion

/*
Upload ingests a new comic: validates the title, stores every page image, and
persists the catalog record.

Description: Pages are streamed to disk one at a time in upload order. If any
page write or the final record insert fails, the files already written by this
batch are removed so no orphan directory survives a failed upload. The first
page becomes the initial thumbnail.

Parameters:
  - context: context.Context
  - title: string (Raw client-supplied comic title)
  - uploads: []PageUpload (Page images in upload order; may be empty)

Returns:
  - *Comic: The persisted record
  - error: apperr.ValidationError, apperr.Conflict, or storage failures
*/
func (service *Service) Upload(context context.Context, title string, uploads []PageUpload) (*Comic, error) {

	// # Validation
	folder := safename.From(title)

	validator := &validate.Validator{}
	validator.Required(FieldName, title)
	validator.Custom(FieldName,
		strings.TrimSpace(title) != "" && folder == "",
		"Title contains no usable characters")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// # Duplicate Policy
	if service.uniqueTitles {
		exists, err := service.catalog.ExistsByTitle(context, title)
		if err != nil {
			return nil, asAppError(err)
		}
		if exists {
			return nil, apperr.Conflict("A comic with this title already exists")
		}
	}

	// # Page Placement
	if err := service.pages.EnsureDir(folder); err != nil {
		return nil, apperr.Internal(err)
	}

	written := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		filename, err := service.writePage(folder, upload)
		if err != nil {
			service.compensate(folder, written)
			return nil, apperr.Internal(err)
		}
		written = append(written, filename)
	}

	// # Record Persistence
	comic := &Comic{
		ID:        uuid.New(),
		Title:     title,
		Folder:    folder,
		Pages:     written,
		CreatedAt: time.Now().UTC(),
	}
	if len(written) > 0 {
		comic.Thumbnail = pointer.To(written[0])
	}

	if err := service.catalog.Insert(context, comic); err != nil {
		service.compensate(folder, written)
		return nil, asAppError(err)
	}

	service.cache.Invalidate(context)

	service.logger.Info("comic uploaded",
		slog.String("id", comic.ID),
		slog.String("title", comic.Title),
		slog.Int("pages", len(comic.Pages)),
	)

	return comic, nil
}

// writePage opens one upload and streams it into the comic's directory.
func (service *Service) writePage(folder string, upload PageUpload) (string, error) {
	reader, err := upload.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded page %q: %w", upload.Filename, err)
	}
	defer reader.Close()

	return service.pages.WritePage(folder, upload.Filename, reader)
}

// compensate removes the files written by an aborted ingestion batch.
// Failures are logged, not returned: the caller is already propagating the
// original error.
func (service *Service) compensate(folder string, written []string) {
	if err := service.pages.RemoveFiles(folder, written); err != nil {
		service.logger.Warn("upload compensation incomplete, orphan files remain",
			slog.String("folder", folder),
			slog.Int("files", len(written)),
			slog.Any("error", err),
		)
	}
}

// # Read Projections

/*
ListSummaries returns the list-view projection of the entire catalog.

Description: Serves from the summary cache when possible; otherwise reads the
catalog and repopulates the cache. Returns an empty slice, never nil, so the
JSON rendering is always an array.

Parameters:
  - context: context.Context

Returns:
  - []Summary: One entry per comic in creation order
  - error: Storage failures
*/
func (service *Service) ListSummaries(context context.Context) ([]Summary, error) {

	if summaries, ok := service.cache.Get(context); ok {
		return summaries, nil
	}

	comics, _, err := service.catalog.List(context, 0, 0)
	if err != nil {
		return nil, asAppError(err)
	}

	summaries := slice.Map(comics, service.summarize)
	if summaries == nil {
		summaries = []Summary{}
	}

	service.cache.Set(context, summaries)

	return summaries, nil
}

/*
ListSummariesPage returns one page of the list-view projection.

Description: Bypasses the summary cache, which only holds the full list.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []Summary: One page of entries in creation order
  - pagination.Meta: Page metadata including the total count
  - error: Storage failures
*/
func (service *Service) ListSummariesPage(context context.Context, params pagination.Params) ([]Summary, pagination.Meta, error) {

	comics, total, err := service.catalog.List(context, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, asAppError(err)
	}

	summaries := slice.Map(comics, service.summarize)
	if summaries == nil {
		summaries = []Summary{}
	}

	return summaries, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
GetComic returns the reader projection: the full ordered page URL sequence.

Parameters:
  - context: context.Context
  - title: string

Returns:
  - *View: Name plus page URLs in reading order
  - error: apperr.NotFound or storage failures
*/
func (service *Service) GetComic(context context.Context, title string) (*View, error) {

	comic, err := service.catalog.FindByTitle(context, title)
	if err != nil {
		return nil, asAppError(err)
	}

	pages := slice.Map(comic.Pages, func(filename string) string {
		return pageURL(comic.Folder, filename)
	})
	if pages == nil {
		pages = []string{}
	}

	return &View{Name: comic.Title, Pages: pages}, nil
}

/*
GetDetails returns the storage-footprint projection of a comic.

Description: The total size is measured from the live directory, not the
record, so it reflects what is actually on disk. A missing directory reports
"0.00 MB" rather than failing.

Parameters:
  - context: context.Context
  - title: string

Returns:
  - *Details: Name, page count, and formatted total size
  - error: apperr.NotFound or storage failures
*/
func (service *Service) GetDetails(context context.Context, title string) (*Details, error) {

	comic, err := service.catalog.FindByTitle(context, title)
	if err != nil {
		return nil, asAppError(err)
	}

	totalBytes, err := service.pages.TotalSize(comic.Folder)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &Details{
		Name:      comic.Title,
		PageCount: len(comic.Pages),
		TotalSize: fmt.Sprintf("%.2f MB", float64(totalBytes)/(1024*1024)),
	}, nil
}

// # Thumbnail Selection

/*
SetThumbnail designates one of a comic's pages as its list-view thumbnail.

Parameters:
  - context: context.Context
  - title: string
  - pageIndex: *int (Zero-based index into the page sequence; nil when the
    client omitted the field)

Returns:
  - string: The public URL of the new thumbnail page
  - error: apperr.ValidationError, apperr.NotFound, or storage failures
*/
func (service *Service) SetThumbnail(context context.Context, title string, pageIndex *int) (string, error) {

	if pageIndex == nil {
		return "", validate.RequiredError(FieldPageIndex, "This field is required")
	}

	comic, err := service.catalog.FindByTitle(context, title)
	if err != nil {
		return "", asAppError(err)
	}

	validator := &validate.Validator{}
	validator.Index(FieldPageIndex, *pageIndex, len(comic.Pages))
	if err := validator.Err(); err != nil {
		return "", err
	}

	filename := comic.Pages[*pageIndex]
	if err := service.catalog.SetThumbnail(context, comic.ID, filename); err != nil {
		return "", asAppError(err)
	}

	service.cache.Invalidate(context)

	return pageURL(comic.Folder, filename), nil
}

// # Deletion

/*
DeleteComic removes a comic's catalog record and its page directory.

Description: The record is deleted first so the comic disappears from the API
even if the filesystem cleanup fails. Duplicate titles share one folder, so
the directory is only removed once no surviving record references it. A
failed directory removal is logged and swallowed; the orphan directory is
unreachable once the last record is gone.

Parameters:
  - context: context.Context
  - title: string

Returns:
  - error: apperr.NotFound or storage failures
*/
func (service *Service) DeleteComic(context context.Context, title string) error {

	comic, err := service.catalog.DeleteByTitle(context, title)
	if err != nil {
		return asAppError(err)
	}

	// When the reference check itself fails, keep the directory: destroying a
	// survivor's pages is worse than leaving an orphan directory behind.
	stillReferenced, err := service.catalog.ExistsByFolder(context, comic.Folder)
	if err != nil {
		stillReferenced = true
		service.logger.Warn("folder reference check failed, directory retained",
			slog.String("folder", comic.Folder),
			slog.Any("error", err),
		)
	}

	if stillReferenced {
		service.logger.Info("comic directory retained, still referenced",
			slog.String("id", comic.ID),
			slog.String("folder", comic.Folder),
		)
	} else if err := service.pages.DeleteDir(comic.Folder); err != nil {
		service.logger.Warn("comic directory not removed, orphan files remain",
			slog.String("id", comic.ID),
			slog.String("folder", comic.Folder),
			slog.Any("error", err),
		)
	}

	service.cache.Invalidate(context)

	service.logger.Info("comic deleted",
		slog.String("id", comic.ID),
		slog.String("title", comic.Title),
	)

	return nil
}

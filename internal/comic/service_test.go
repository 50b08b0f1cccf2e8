// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

package comic_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkaiwen/comicshelf/internal/comic"
	"github.com/linkaiwen/comicshelf/internal/pagestore"
	"github.com/linkaiwen/comicshelf/internal/platform/apperr"
	"github.com/linkaiwen/comicshelf/pkg/pagination"
)

// # Test Fixtures

// fakeCatalog is an in-memory CatalogRepository preserving insertion order.
type fakeCatalog struct {
	mu        sync.Mutex
	comics    []*comic.Comic
	insertErr error
}

func (catalog *fakeCatalog) Insert(_ context.Context, record *comic.Comic) error {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	if catalog.insertErr != nil {
		return catalog.insertErr
	}

	clone := *record
	catalog.comics = append(catalog.comics, &clone)
	return nil
}

func (catalog *fakeCatalog) FindByTitle(_ context.Context, title string) (*comic.Comic, error) {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	for _, record := range catalog.comics {
		if record.Title == title {
			clone := *record
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Comic")
}

func (catalog *fakeCatalog) ExistsByTitle(_ context.Context, title string) (bool, error) {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	for _, record := range catalog.comics {
		if record.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (catalog *fakeCatalog) ExistsByFolder(_ context.Context, folder string) (bool, error) {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	for _, record := range catalog.comics {
		if record.Folder == folder {
			return true, nil
		}
	}
	return false, nil
}

func (catalog *fakeCatalog) List(_ context.Context, limit, offset int) ([]*comic.Comic, int, error) {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	total := len(catalog.comics)

	records := catalog.comics
	if limit > 0 {
		if offset > total {
			offset = total
		}
		end := offset + limit
		if end > total {
			end = total
		}
		records = records[offset:end]
	}

	out := make([]*comic.Comic, 0, len(records))
	for _, record := range records {
		clone := *record
		out = append(out, &clone)
	}
	return out, total, nil
}

func (catalog *fakeCatalog) SetThumbnail(_ context.Context, id, filename string) error {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	for _, record := range catalog.comics {
		if record.ID == id {
			record.Thumbnail = &filename
			return nil
		}
	}
	return apperr.NotFound("Comic")
}

func (catalog *fakeCatalog) DeleteByTitle(_ context.Context, title string) (*comic.Comic, error) {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	for i, record := range catalog.comics {
		if record.Title == title {
			catalog.comics = append(catalog.comics[:i], catalog.comics[i+1:]...)
			return record, nil
		}
	}
	return nil, apperr.NotFound("Comic")
}

type fixture struct {
	service *comic.Service
	catalog *fakeCatalog
	pages   *pagestore.Store
}

func newFixture(t *testing.T, uniqueTitles bool) *fixture {
	t.Helper()

	pages, err := pagestore.NewStore(t.TempDir())
	require.NoError(t, err)

	catalog := &fakeCatalog{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		service: comic.NewService(catalog, pages, comic.NewNoopSummaryCache(), uniqueTitles, logger),
		catalog: catalog,
		pages:   pages,
	}
}

func page(filename, content string) comic.PageUpload {
	return comic.PageUpload{
		Filename: filename,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

// # Ingestion

/*
TestUpload_RoundTrip uploads a comic and reads it back, verifying the page
URLs point into the sanitized folder in upload order.
*/
func TestUpload_RoundTrip(t *testing.T) {
	fx := newFixture(t, false)

	uploaded, err := fx.service.Upload(context.Background(), "My Comic/Vol 1", []comic.PageUpload{
		page("a.jpg", "first"),
		page("b.png", "second"),
	})
	require.NoError(t, err)
	assert.Equal(t, "My_Comic_Vol_1", uploaded.Folder)
	require.Len(t, uploaded.Pages, 2)
	require.NotNil(t, uploaded.Thumbnail)
	assert.Equal(t, uploaded.Pages[0], *uploaded.Thumbnail)

	view, err := fx.service.GetComic(context.Background(), "My Comic/Vol 1")
	require.NoError(t, err)
	assert.Equal(t, "My Comic/Vol 1", view.Name)
	require.Len(t, view.Pages, 2)

	assert.Equal(t, "/uploads/My_Comic_Vol_1/"+uploaded.Pages[0], view.Pages[0])
	assert.Equal(t, "/uploads/My_Comic_Vol_1/"+uploaded.Pages[1], view.Pages[1])
	assert.True(t, strings.HasSuffix(view.Pages[0], ".jpg"))
	assert.True(t, strings.HasSuffix(view.Pages[1], ".png"))
}

/*
TestUpload_InvalidTitle rejects empty titles and titles with no usable
characters.
*/
func TestUpload_InvalidTitle(t *testing.T) {
	fx := newFixture(t, false)

	for _, title := range []string{"", "   ", `\\//**`} {
		t.Run("title="+title, func(t *testing.T) {
			_, err := fx.service.Upload(context.Background(), title, nil)
			require.Error(t, err)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, http.StatusBadRequest, appError.HTTPStatus)
		})
	}
}

/*
TestUpload_NoPages accepts an upload without images: the record exists with
zero pages and no thumbnail.
*/
func TestUpload_NoPages(t *testing.T) {
	fx := newFixture(t, false)

	uploaded, err := fx.service.Upload(context.Background(), "Empty", nil)
	require.NoError(t, err)
	assert.Empty(t, uploaded.Pages)
	assert.Nil(t, uploaded.Thumbnail)
}

/*
TestUpload_DuplicateTitles verifies the configurable duplicate policy: silent
coexistence by default, Conflict when uniqueness is enforced.
*/
func TestUpload_DuplicateTitles(t *testing.T) {
	t.Run("coexistence by default", func(t *testing.T) {
		fx := newFixture(t, false)

		_, err := fx.service.Upload(context.Background(), "Dune", []comic.PageUpload{page("a.jpg", "a")})
		require.NoError(t, err)
		_, err = fx.service.Upload(context.Background(), "Dune", []comic.PageUpload{page("b.jpg", "b")})
		require.NoError(t, err)

		summaries, err := fx.service.ListSummaries(context.Background())
		require.NoError(t, err)
		assert.Len(t, summaries, 2)
	})

	t.Run("conflict when enforced", func(t *testing.T) {
		fx := newFixture(t, true)

		_, err := fx.service.Upload(context.Background(), "Dune", []comic.PageUpload{page("a.jpg", "a")})
		require.NoError(t, err)

		_, err = fx.service.Upload(context.Background(), "Dune", []comic.PageUpload{page("b.jpg", "b")})
		require.Error(t, err)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, http.StatusConflict, appError.HTTPStatus)
	})
}

/*
TestUpload_InsertFailureCompensates verifies that a failed record insert
removes the files the batch wrote, leaving no orphan directory.
*/
func TestUpload_InsertFailureCompensates(t *testing.T) {
	fx := newFixture(t, false)
	fx.catalog.insertErr = apperr.Internal(assert.AnError)

	_, err := fx.service.Upload(context.Background(), "Doomed", []comic.PageUpload{
		page("a.jpg", "a"),
		page("b.jpg", "b"),
	})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(fx.pages.Root(), "Doomed"))
	assert.True(t, os.IsNotExist(statErr), "failed upload should not leave a directory behind")
}

// # Read Projections

/*
TestListSummaries returns an empty array for an empty catalog, and thumbnail
URLs for populated ones.
*/
func TestListSummaries(t *testing.T) {
	fx := newFixture(t, false)

	summaries, err := fx.service.ListSummaries(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)

	_, err = fx.service.Upload(context.Background(), "One Piece", []comic.PageUpload{page("cover.jpg", "x")})
	require.NoError(t, err)
	_, err = fx.service.Upload(context.Background(), "Blank", nil)
	require.NoError(t, err)

	summaries, err = fx.service.ListSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "One Piece", summaries[0].Name)
	assert.Equal(t, 1, summaries[0].PageCount)
	require.NotNil(t, summaries[0].Thumbnail)
	assert.True(t, strings.HasPrefix(*summaries[0].Thumbnail, "/uploads/One_Piece/"))

	assert.Equal(t, "Blank", summaries[1].Name)
	assert.Zero(t, summaries[1].PageCount)
	assert.Nil(t, summaries[1].Thumbnail)
}

/*
TestListSummariesPage slices the catalog and reports the full total.
*/
func TestListSummariesPage(t *testing.T) {
	fx := newFixture(t, false)

	for _, title := range []string{"A", "B", "C"} {
		_, err := fx.service.Upload(context.Background(), title, nil)
		require.NoError(t, err)
	}

	summaries, meta, err := fx.service.ListSummariesPage(context.Background(), pagination.Params{
		Page:      2,
		Limit:     2,
		Requested: true,
	})
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, "C", summaries[0].Name)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}

/*
TestGetDetails formats the on-disk footprint in mebibytes with two decimals.
*/
func TestGetDetails(t *testing.T) {
	fx := newFixture(t, false)

	t.Run("zero pages", func(t *testing.T) {
		_, err := fx.service.Upload(context.Background(), "Empty", nil)
		require.NoError(t, err)

		details, err := fx.service.GetDetails(context.Background(), "Empty")
		require.NoError(t, err)
		assert.Zero(t, details.PageCount)
		assert.Equal(t, "0.00 MB", details.TotalSize)
	})

	t.Run("one mebibyte", func(t *testing.T) {
		_, err := fx.service.Upload(context.Background(), "Big", []comic.PageUpload{
			page("page.jpg", strings.Repeat("x", 1<<20)),
		})
		require.NoError(t, err)

		details, err := fx.service.GetDetails(context.Background(), "Big")
		require.NoError(t, err)
		assert.Equal(t, 1, details.PageCount)
		assert.Equal(t, "1.00 MB", details.TotalSize)
	})

	t.Run("unknown title", func(t *testing.T) {
		_, err := fx.service.GetDetails(context.Background(), "Ghost")
		require.Error(t, err)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, http.StatusNotFound, appError.HTTPStatus)
	})
}

// # Thumbnail Selection

/*
TestSetThumbnail covers the index boundaries: nil and out-of-range indices
are validation errors, index 0 succeeds.
*/
func TestSetThumbnail(t *testing.T) {
	fx := newFixture(t, false)

	uploaded, err := fx.service.Upload(context.Background(), "Akira", []comic.PageUpload{
		page("a.jpg", "a"),
		page("b.jpg", "b"),
	})
	require.NoError(t, err)

	index := func(i int) *int { return &i }

	t.Run("missing index", func(t *testing.T) {
		_, err := fx.service.SetThumbnail(context.Background(), "Akira", nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
	})

	t.Run("negative index", func(t *testing.T) {
		_, err := fx.service.SetThumbnail(context.Background(), "Akira", index(-1))
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
	})

	t.Run("index past the end", func(t *testing.T) {
		_, err := fx.service.SetThumbnail(context.Background(), "Akira", index(len(uploaded.Pages)))
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperr.As(err).HTTPStatus)
	})

	t.Run("valid index", func(t *testing.T) {
		thumbnail, err := fx.service.SetThumbnail(context.Background(), "Akira", index(1))
		require.NoError(t, err)
		assert.Equal(t, "/uploads/Akira/"+uploaded.Pages[1], thumbnail)

		record, err := fx.catalog.FindByTitle(context.Background(), "Akira")
		require.NoError(t, err)
		require.NotNil(t, record.Thumbnail)
		assert.Equal(t, uploaded.Pages[1], *record.Thumbnail)
	})

	t.Run("unknown title", func(t *testing.T) {
		_, err := fx.service.SetThumbnail(context.Background(), "Ghost", index(0))
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)
	})
}

// # Deletion

/*
TestDeleteComic removes the record and the directory, and stays NotFound on
repeat deletion.
*/
func TestDeleteComic(t *testing.T) {
	fx := newFixture(t, false)

	uploaded, err := fx.service.Upload(context.Background(), "Monster", []comic.PageUpload{page("a.jpg", "a")})
	require.NoError(t, err)

	require.NoError(t, fx.service.DeleteComic(context.Background(), "Monster"))

	_, err = fx.service.GetComic(context.Background(), "Monster")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)

	_, statErr := os.Stat(filepath.Join(fx.pages.Root(), uploaded.Folder))
	assert.True(t, os.IsNotExist(statErr))

	// Deleting again is NotFound, never a 500
	err = fx.service.DeleteComic(context.Background(), "Monster")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)
}

/*
TestDeleteComic_OldestWins deletes only the oldest of duplicate titles and
keeps the shared directory alive for the survivor's pages.
*/
func TestDeleteComic_OldestWins(t *testing.T) {
	fx := newFixture(t, false)

	first, err := fx.service.Upload(context.Background(), "Dune", []comic.PageUpload{page("a.jpg", "a")})
	require.NoError(t, err)
	second, err := fx.service.Upload(context.Background(), "Dune", []comic.PageUpload{page("b.jpg", "b")})
	require.NoError(t, err)

	require.NoError(t, fx.service.DeleteComic(context.Background(), "Dune"))

	record, err := fx.catalog.FindByTitle(context.Background(), "Dune")
	require.NoError(t, err)
	assert.Equal(t, second.ID, record.ID)
	assert.NotEqual(t, first.ID, record.ID)

	// The survivor shares the folder, so its pages must still be on disk
	require.Len(t, record.Pages, 1)
	_, statErr := os.Stat(filepath.Join(fx.pages.Root(), record.Folder, record.Pages[0]))
	assert.NoError(t, statErr, "surviving duplicate lost its pages")

	// Deleting the last record removes the now-unreferenced directory
	require.NoError(t, fx.service.DeleteComic(context.Background(), "Dune"))
	_, statErr = os.Stat(filepath.Join(fx.pages.Root(), record.Folder))
	assert.True(t, os.IsNotExist(statErr))
}

// Copyright (c) 2026 Comicshelf. All rights reserved.
// Author: lin.kaiwen.tw@gmail.com

package comic

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkaiwen/comicshelf/internal/platform/apperr"
	"github.com/linkaiwen/comicshelf/internal/platform/constants"
	requestutil "github.com/linkaiwen/comicshelf/internal/platform/request"
	"github.com/linkaiwen/comicshelf/internal/platform/respond"
	"github.com/linkaiwen/comicshelf/pkg/pagination"
	"github.com/linkaiwen/comicshelf/pkg/slice"
)

// Handler implements the HTTP layer for the comic catalog.
type Handler struct {
	comicService   *Service
	maxUploadBytes int64
}

// NewHandler constructs a new catalog [Handler].
//
// maxUploadBytes caps the total multipart body size of an upload request;
// zero or less falls back to the platform default.
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = constants.DefaultMaxUploadBytes
	}
	return &Handler{comicService: service, maxUploadBytes: maxUploadBytes}
}

// Routes returns a [chi.Router] configured with the catalog's endpoints.
//
// The paths are flat verbs rather than REST resources; existing readers are
// built against them and they are kept verbatim.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Ingestion
	router.Post("/uploadComic", handler.uploadComic)

	// Read Projections
	router.Get("/listComics", handler.listComics)
	router.Get("/getComic/{name}", handler.getComic)
	router.Get("/getComicDetails/{name}", handler.getComicDetails)

	// Mutations
	router.Post("/setThumbnailPage/{name}", handler.setThumbnailPage)
	router.Delete("/deleteComic/{name}", handler.deleteComic)

	return router
}

// # Ingestion Endpoints

/*
POST /uploadComic.

Description: Ingests a new comic from a multipart form. The "name" field
carries the title and every "images" part is one page, stored in form order.

Request:
  - name: string (text field)
  - images: file parts (zero or more)

Response:
  - 201: {message}: Comic uploaded successfully
  - 400: ErrValidation: Missing or unusable name
  - 409: ErrConflict: Duplicate title (when unique titles are enforced)
  - 413: ErrPayloadTooLarge: Body exceeds the upload limit
*/
func (handler *Handler) uploadComic(writer http.ResponseWriter, request *http.Request) {

	// Bound the whole body before the form parser touches it
	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxUploadBytes)

	if err := request.ParseMultipartForm(constants.MultipartMemoryLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(writer, request, apperr.PayloadTooLarge("Upload exceeds the size limit"))
			return
		}
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart form"))
		return
	}

	title := requestutil.FormValue(request, FieldName)

	var headers []*multipart.FileHeader
	if request.MultipartForm != nil {
		headers = request.MultipartForm.File["images"]
	}

	uploads := slice.Map(headers, func(header *multipart.FileHeader) PageUpload {
		return PageUpload{
			Filename: header.Filename,
			Open: func() (io.ReadCloser, error) {
				return header.Open()
			},
		}
	})

	if _, err := handler.comicService.Upload(request.Context(), title, uploads); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{
		constants.FieldMessage: "Comic uploaded successfully",
	})
}

// # Read Endpoints

/*
GET /listComics.

Description: Returns the list-view projection of the catalog. By default the
response is the bare array the original readers expect; supplying "page" or
"limit" query parameters switches to the paginated envelope.

Response:
  - 200: [{name, thumbnail, pageCount}] or {data, meta} when paginated
*/
func (handler *Handler) listComics(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	if params.Requested {
		summaries, meta, err := handler.comicService.ListSummariesPage(request.Context(), params)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.Paginated(writer, summaries, meta)
		return
	}

	summaries, err := handler.comicService.ListSummaries(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, summaries)
}

/*
GET /getComic/{name}.

Description: Returns the reader projection: every page URL in reading order.

Request:
  - name: string (URL-decoded comic title)

Response:
  - 200: {name, pages}: Page URLs in upload order
  - 404: ErrNotFound: No comic with that title
*/
func (handler *Handler) getComic(writer http.ResponseWriter, request *http.Request) {
	title := requestutil.Param(request, FieldName)

	view, err := handler.comicService.GetComic(request.Context(), title)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
GET /getComicDetails/{name}.

Description: Returns the storage-footprint projection of a comic.

Request:
  - name: string (URL-decoded comic title)

Response:
  - 200: {name, pageCount, totalSize}
  - 404: ErrNotFound: No comic with that title
*/
func (handler *Handler) getComicDetails(writer http.ResponseWriter, request *http.Request) {
	title := requestutil.Param(request, FieldName)

	details, err := handler.comicService.GetDetails(request.Context(), title)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, details)
}

// # Mutation Endpoints

// setThumbnailRequest defines the expected JSON payload for thumbnail selection.
//
// PageIndex is a pointer so an omitted field is distinguishable from index 0.
type setThumbnailRequest struct {
	PageIndex *int `json:"pageIndex"`
}

/*
POST /setThumbnailPage/{name}.

Description: Designates one of the comic's pages as its list-view thumbnail.

Request:
  - name: string (URL-decoded comic title)
  - body: setThumbnailRequest

Response:
  - 200: {message, thumbnail}: New thumbnail URL
  - 400: ErrValidation: Missing or out-of-range page index
  - 404: ErrNotFound: No comic with that title
*/
func (handler *Handler) setThumbnailPage(writer http.ResponseWriter, request *http.Request) {
	title := requestutil.Param(request, FieldName)

	var input setThumbnailRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	thumbnail, err := handler.comicService.SetThumbnail(request.Context(), title, input.PageIndex)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		constants.FieldMessage: "Thumbnail updated",
		FieldThumbnail:         thumbnail,
	})
}

/*
DELETE /deleteComic/{name}.

Description: Removes the comic's catalog record and its page directory.

Request:
  - name: string (URL-decoded comic title)

Response:
  - 200: {message}: Deletion confirmation
  - 404: ErrNotFound: No comic with that title
*/
func (handler *Handler) deleteComic(writer http.ResponseWriter, request *http.Request) {
	title := requestutil.Param(request, FieldName)

	if err := handler.comicService.DeleteComic(request.Context(), title); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		constants.FieldMessage: "Comic " + title + " deleted",
	})
}

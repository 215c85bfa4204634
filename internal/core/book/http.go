package book

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/libris/internal/platform/request"
	"github.com/taibuivan/libris/internal/platform/respond"
	"github.com/taibuivan/libris/internal/platform/validate"
	"github.com/taibuivan/libris/pkg/slice"
)

// # Handler Implementation

// Handler implements the HTTP layer of the catalog.
// It translates web requests into domain service calls.
type Handler struct {
	service *Service
}

// NewHandler constructs a new book [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the catalog endpoints, meant to be
// mounted at /book.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listBooks)
	router.Post("/", handler.createBook)
	router.Get("/{isbn}", handler.getBook)
	router.Patch("/{isbn}", handler.updateBook)
	router.Delete("/{isbn}", handler.deleteBook)

	return router
}

// # Lookups

func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	filter, err := filterFromQuery(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	books, err := handler.service.FindMany(request.Context(), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, toResponses(books))
}

func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	book, err := handler.service.FindByISBN(request.Context(), requestutil.Param(request, FieldISBN))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book.ToResponse())
}

// # Management

func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	var input CreateRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Create(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, location(book.ISBN), book.ToResponse())
}

func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	var patch Patch
	if err := requestutil.DecodeJSON(writer, request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Update(request.Context(), requestutil.Param(request, FieldISBN), patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book.ToResponse())
}

func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.Param(request, FieldISBN)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Empty(writer, http.StatusOK)
}

// # Helpers

// filterFromQuery reads the list filter. A range bound that is not an
// integer is a malformed parameter.
func filterFromQuery(request *http.Request) (Filter, error) {
	var filter Filter

	if name, ok := requestutil.Query(request, QueryAuthorName); ok {
		filter.AuthorName = &name
	}

	for key, target := range map[string]**int{QueryRangeStart: &filter.RangeStart, QueryRangeEnd: &filter.RangeEnd} {
		raw, ok := requestutil.Query(request, key)
		if !ok {
			continue
		}

		year, err := strconv.Atoi(raw)
		if err != nil {
			return Filter{}, validate.ErrInvalidJSON
		}
		*target = &year
	}

	return filter, nil
}

func toResponses(books []*Book) []Response {
	responses := slice.Map(books, func(b *Book) Response { return b.ToResponse() })
	if responses == nil {
		responses = []Response{}
	}
	return responses
}

func location(isbn string) string {
	return "/book/" + url.PathEscape(isbn)
}

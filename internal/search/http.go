// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package search

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/binderdex/internal/catalog"
	"github.com/taibuivan/binderdex/internal/platform/apperr"
	requestutil "github.com/taibuivan/binderdex/internal/platform/request"
	"github.com/taibuivan/binderdex/internal/platform/respond"
)

// Handler serves the ordered catalogs and name suggestions over HTTP.
type Handler struct {
	resolver *Resolver
}

// NewHandler constructs a catalog [Handler].
func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Routes returns a [chi.Router] configured with the catalog endpoints.
//
// # Endpoints
//   - GET /suggestions?q=&limit= : Autocomplete candidates.
//   - GET /{ordering}            : A full ordered catalog.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/suggestions", handler.suggestions)
	router.Get("/{ordering}", handler.ordered)

	return router
}

func (handler *Handler) ordered(writer http.ResponseWriter, request *http.Request) {
	mode, err := catalog.ParseOrderingMode(requestutil.Param(request, "ordering"))
	if err != nil {
		respond.Error(writer, request, apperr.NotFound("Catalog"))
		return
	}

	entries, err := handler.resolver.catalogs.OrderedCatalog(request.Context(), mode)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entries)
}

func (handler *Handler) suggestions(writer http.ResponseWriter, request *http.Request) {
	limit, err := requestutil.QueryInt(request, "limit", DefaultSuggestLimit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entries, err := handler.resolver.Suggest(request.Context(), request.URL.Query().Get("q"), limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, entries)
}

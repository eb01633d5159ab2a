// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tcg

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/binderdex/internal/platform/request"
	"github.com/taibuivan/binderdex/internal/platform/respond"
	"github.com/taibuivan/binderdex/pkg/pagination"
)

// # Handler Implementation

// Handler exposes the card picker endpoints. All of them are public.
type Handler struct {
	service *Service
	images  *ImageProxy
}

// NewHandler constructs a card picker [Handler].
func NewHandler(service *Service, images *ImageProxy) *Handler {
	return &Handler{service: service, images: images}
}

// Routes returns a [chi.Router] configured with the card endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listCards)
	router.Get("/sets", handler.listSets)
	router.Get("/languages", handler.listLanguages)
	router.Get("/{id}", handler.getCard)
	router.Get("/{id}/image", handler.getImage)

	return router
}

func (handler *Handler) listCards(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	params := pagination.FromRequest(request, DefaultPageSize)

	filter := CardFilter{
		Name:  query.Get("name"),
		SetID: query.Get("set"),
		Query: query.Get("q"),
	}

	cards, total, err := handler.service.CardsForSlot(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, cards, pagination.NewMeta(params.Page, params.Limit, total))
}

func (handler *Handler) listSets(writer http.ResponseWriter, request *http.Request) {
	var (
		sets []Set
		err  error
	)

	// Without a species name the whole set list is returned
	if name := request.URL.Query().Get("name"); name != "" {
		sets, err = handler.service.SetsForPokemon(request.Context(), name)
	} else {
		sets, err = handler.service.Sets(request.Context())
	}

	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, sets)
}

func (handler *Handler) listLanguages(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, Languages)
}

func (handler *Handler) getCard(writer http.ResponseWriter, request *http.Request) {
	card, err := handler.service.CardInLanguage(
		request.Context(),
		requestutil.Param(request, "id"),
		request.URL.Query().Get("lang"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, card)
}

func (handler *Handler) getImage(writer http.ResponseWriter, request *http.Request) {
	image, err := handler.images.Fetch(
		request.Context(),
		requestutil.Param(request, "id"),
		request.URL.Query().Get("size"),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Binary(writer, image.ContentType, image.Body, handler.images.MaxAgeSeconds())
}

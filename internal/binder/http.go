// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package binder

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/binderdex/internal/platform/request"
	"github.com/taibuivan/binderdex/internal/platform/respond"
	"github.com/taibuivan/binderdex/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for binders.
//
// Every route is reachable anonymously. Authentication, when present, only
// decides ownership; the service enforces the write gate.
type Handler struct {
	service *Service
}

// NewHandler constructs a binder [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the binder endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Binders
	router.Get("/", handler.list)
	router.Post("/", handler.create)
	router.Get("/{id}", handler.get)

	// ## Views
	router.Get("/{id}/pages/{page}", handler.page)
	router.Get("/{id}/search", handler.search)

	// ## State
	router.Put("/{id}/state", handler.commit)
	router.Post("/{id}/collected/{entryID}/toggle", handler.toggle)
	router.Put("/{id}/slots/{entryID}/card", handler.assignCard)
	router.Delete("/{id}/slots/{entryID}/card", handler.clearCard)

	return router
}

// # Binder Endpoints

func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	binders, err := handler.service.List(request.Context(), requestutil.CallerID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, binders)
}

func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	binder, err := handler.service.Create(request.Context(), requestutil.CallerID(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, binder)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	binder, err := handler.service.Get(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, binder)
}

// # View Endpoints

func (handler *Handler) page(writer http.ResponseWriter, request *http.Request) {

	// Out-of-range pages are clamped by the service, so any integer is accepted
	page, err := strconv.Atoi(requestutil.Param(request, "page"))
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("page", "Must be an integer"))
		return
	}

	highlight, err := requestutil.QueryInt(request, "highlight", 0)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Page(request.Context(), requestutil.ID(request, "id"), page, highlight)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query().Get(FieldQuery)

	result, err := handler.service.Search(request.Context(), requestutil.ID(request, "id"), query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// # State Endpoints

// commitRequest is the body of a full state commit. Fields narrows the write
// to a subset; empty means both.
type commitRequest struct {
	CollectedIDs []int      `json:"collected_ids"`
	SlotCards    []SlotCard `json:"slot_cards"`
	Fields       []Field    `json:"fields,omitempty"`
}

// commitResponse is returned after every field was written.
type commitResponse struct {
	Written []Field `json:"written"`
	State   State   `json:"state"`
}

func (handler *Handler) commit(writer http.ResponseWriter, request *http.Request) {
	var body commitRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	for _, field := range body.Fields {
		validator.OneOf("fields", string(field), string(FieldCollectedIDs), string(FieldSlotCards))
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	state := NewState(body.CollectedIDs, body.SlotCards)
	result, err := handler.service.Commit(
		request.Context(),
		requestutil.CallerID(request),
		requestutil.ID(request, "id"),
		state,
		body.Fields...,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, commitResponse{Written: result.Written, State: state})
}

func (handler *Handler) toggle(writer http.ResponseWriter, request *http.Request) {
	entryID, err := requestutil.IntParam(request, "entryID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	binder, err := handler.service.ToggleCollected(
		request.Context(),
		requestutil.CallerID(request),
		requestutil.ID(request, "id"),
		entryID,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, binder)
}

func (handler *Handler) assignCard(writer http.ResponseWriter, request *http.Request) {
	entryID, err := requestutil.IntParam(request, "entryID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var card CardRef
	if err := requestutil.DecodeJSON(request, &card); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.applyCard(writer, request, entryID, &card)
}

func (handler *Handler) clearCard(writer http.ResponseWriter, request *http.Request) {
	entryID, err := requestutil.IntParam(request, "entryID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.applyCard(writer, request, entryID, nil)
}

func (handler *Handler) applyCard(writer http.ResponseWriter, request *http.Request, entryID int, card *CardRef) {
	binder, err := handler.service.AssignCard(
		request.Context(),
		requestutil.CallerID(request),
		requestutil.ID(request, "id"),
		entryID,
		card,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, binder)
}

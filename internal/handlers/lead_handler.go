package handlers

import (
	"net/http"

	"github.com/iamvtyagi/99acres/internal/services"
	"github.com/iamvtyagi/99acres/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LeadHandler struct {
	Service *services.LeadService
}

func NewLeadHandler(service *services.LeadService) *LeadHandler {
	return &LeadHandler{Service: service}
}

// POST /api/leads. Anonymous visitors may submit; a signed-in caller is
// recorded as the submitter.
func (h *LeadHandler) CreateLeadHandler(w http.ResponseWriter, r *http.Request) {
	var in services.CreateLeadInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	var submitter *primitive.ObjectID
	if claims := middleware.GetUserFromContext(r.Context()); claims != nil {
		if id, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
			submitter = &id
		}
	}

	lead, err := h.Service.CreateLead(r.Context(), in, submitter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, lead)
}

// GET /api/leads
func (h *LeadHandler) GetUserLeadsHandler(w http.ResponseWriter, r *http.Request) {
	claims, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	leads, err := h.Service.ListForUser(r.Context(), userID, claims.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, leads, len(leads))
}

// GET /api/properties/{id}/leads
func (h *LeadHandler) GetPropertyLeadsHandler(w http.ResponseWriter, r *http.Request) {
	claims, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	leads, err := h.Service.ListForProperty(r.Context(), mux.Vars(r)["id"], userID, claims.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, leads, len(leads))
}

// PUT /api/leads/{id}
func (h *LeadHandler) UpdateLeadStatusHandler(w http.ResponseWriter, r *http.Request) {
	claims, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var in struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	lead, err := h.Service.UpdateStatus(r.Context(), mux.Vars(r)["id"], userID, claims.Role, in.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, lead)
}

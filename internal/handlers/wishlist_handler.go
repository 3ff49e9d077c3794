package handlers

import (
	"net/http"

	"github.com/iamvtyagi/99acres/internal/services"
	"github.com/gorilla/mux"
)

type WishlistHandler struct {
	Service *services.WishlistService
}

func NewWishlistHandler(service *services.WishlistService) *WishlistHandler {
	return &WishlistHandler{Service: service}
}

// GET /api/wishlist
func (h *WishlistHandler) GetWishlistHandler(w http.ResponseWriter, r *http.Request) {
	_, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	wishlist, err := h.Service.GetWishlist(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, wishlist)
}

// POST /api/wishlist/{propertyId}
func (h *WishlistHandler) AddToWishlistHandler(w http.ResponseWriter, r *http.Request) {
	_, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	wishlist, err := h.Service.AddProperty(r.Context(), userID, mux.Vars(r)["propertyId"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, wishlist)
}

// DELETE /api/wishlist/{propertyId}
func (h *WishlistHandler) RemoveFromWishlistHandler(w http.ResponseWriter, r *http.Request) {
	_, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	wishlist, err := h.Service.RemoveProperty(r.Context(), userID, mux.Vars(r)["propertyId"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, wishlist)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/internal/services"
	"github.com/gorilla/mux"
)

type PropertyHandler struct {
	Service *services.PropertyService
}

func NewPropertyHandler(service *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{Service: service}
}

// GET /api/properties
func (h *PropertyHandler) GetPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := propertyFilterFromQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	properties, err := h.Service.ListProperties(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, properties, len(properties))
}

// GET /api/properties/radius/{zipcode}/{distance}
// distance is in miles.
func (h *PropertyHandler) GetPropertiesInZipRadiusHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	distance, err := strconv.ParseFloat(vars["distance"], 64)
	if err != nil {
		respondFail(w, http.StatusBadRequest, "Distance must be a positive number")
		return
	}

	result, err := h.Service.ListWithinZipcode(r.Context(), vars["zipcode"], distance)
	if err != nil {
		respondError(w, r, err)
		return
	}

	payload := map[string]interface{}{
		"success": true,
		"count":   len(result.Properties),
		"data":    result.Properties,
	}
	if result.Fallback {
		payload["note"] = "Using text search instead of radius search: zipcode could not be located"
	}
	respondJSON(w, http.StatusOK, payload)
}

// GET /api/properties/radius?lat=&lng=&distance=
// distance is in miles.
func (h *PropertyHandler) GetPropertiesInRadiusHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	distance, errDist := strconv.ParseFloat(q.Get("distance"), 64)
	if errLat != nil || errLng != nil || errDist != nil {
		respondFail(w, http.StatusBadRequest, "lat, lng and distance are required numbers")
		return
	}

	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)
	properties, err := h.Service.ListWithinRadius(r.Context(), lat, lng, distance, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, properties, len(properties))
}

// GET /api/properties/{id}
func (h *PropertyHandler) GetPropertyHandler(w http.ResponseWriter, r *http.Request) {
	property, err := h.Service.GetProperty(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, property)
}

// POST /api/properties
func (h *PropertyHandler) CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	claims, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var property models.Property
	if err := decodeJSON(r, &property); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := h.Service.CreateProperty(r.Context(), userID, claims.Role, &property)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, created)
}

// PUT /api/properties/{id}
func (h *PropertyHandler) UpdatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	claims, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var in services.UpdatePropertyInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.Service.UpdateProperty(r.Context(), mux.Vars(r)["id"], userID, claims.Role, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, updated)
}

// DELETE /api/properties/{id}
func (h *PropertyHandler) DeletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	claims, userID, err := currentUser(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.Service.DeleteProperty(r.Context(), mux.Vars(r)["id"], userID, claims.Role); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, struct{}{})
}

func propertyFilterFromQuery(r *http.Request) (models.PropertyFilter, error) {
	q := r.URL.Query()
	filter := models.PropertyFilter{
		Type:   q.Get("type"),
		Status: q.Get("status"),
		City:   q.Get("city"),
	}

	if v := q.Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			return filter, &services.Error{Kind: services.ErrValidation, Msg: "featured must be true or false"}
		}
		filter.Featured = &featured
	}
	for key, dst := range map[string]*float64{"minPrice": &filter.MinPrice, "maxPrice": &filter.MaxPrice} {
		if v := q.Get(key); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return filter, &services.Error{Kind: services.ErrValidation, Msg: key + " must be a number"}
			}
			*dst = n
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return filter, &services.Error{Kind: services.ErrValidation, Msg: "limit must be a positive number"}
		}
		filter.Limit = n
	}
	return filter, nil
}

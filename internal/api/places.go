package api

import (
	"net/http"

	"github.com/mmynk/wanderlist/internal/models"
)

func (h *handler) listPlaces(w http.ResponseWriter, r *http.Request) {
	userID, err := formInt64(r, "userId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	places, err := h.svc.Places.ListPlaces(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlaceResponses(places))
}

func (h *handler) filterPlaces(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.writeError(w, r, err)
		return
	}
	userID, err := formInt64(r, "userId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	visited, err := optionalBool(r, "visited")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	filter := models.PlaceFilter{
		Visited:  visited,
		City:     optionalString(r, "city"),
		Country:  optionalString(r, "country"),
		Priority: optionalString(r, "priority"),
	}

	places, err := h.svc.Places.FilterPlaces(r.Context(), userID, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlaceResponses(places))
}

func (h *handler) searchPlaces(w http.ResponseWriter, r *http.Request) {
	places, err := h.svc.Places.SearchPlaces(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlaceResponses(places))
}

type countResponse struct {
	Count int64 `json:"count"`
}

// countPlaces counts visited (visited=true) or wishlist places across all users.
func (h *handler) countPlaces(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.writeError(w, r, err)
		return
	}
	visited, err := optionalBool(r, "visited")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if visited == nil {
		h.writeError(w, r, badRequest("visited is required"))
		return
	}

	n, err := h.svc.Places.CountPlacesByVisited(r.Context(), *visited)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *handler) countCountries(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Places.CountDistinctCountries(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: n})
}

func (h *handler) getPlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	place, err := h.svc.Places.GetPlace(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if place == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "place not found"})
		return
	}
	writeJSON(w, http.StatusOK, toPlaceResponse(place))
}

// createPlace reads the place from form fields. The image may be uploaded as an
// "imageFile" multipart part or sent as an already-encoded "image" field.
func (h *handler) createPlace(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.writeError(w, r, err)
		return
	}
	userID, err := requesterID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	visited, err := optionalBool(r, "visited")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	image, err := formImage(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	place := &models.Place{
		Name:     r.FormValue("name"),
		Country:  r.FormValue("country"),
		City:     r.FormValue("city"),
		Priority: r.FormValue("priority"),
		Note:     r.FormValue("note"),
		Visited:  visited != nil && *visited,
		UserID:   userID,
	}
	if image != "" {
		place.Image = &image
	}

	if err := h.svc.Places.CreatePlace(r.Context(), place); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, "Saved")
}

func (h *handler) updatePlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := parseForm(r); err != nil {
		h.writeError(w, r, err)
		return
	}
	userID, err := requesterID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	visited, err := optionalBool(r, "visited")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rating, err := optionalInt(r, "rating")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	image, err := formImage(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	update := models.PlaceUpdate{
		Name:     r.FormValue("name"),
		Country:  optionalString(r, "country"),
		City:     optionalString(r, "city"),
		Priority: optionalString(r, "priority"),
		Note:     optionalString(r, "note"),
		Visited:  visited,
		Image:    image,
		Rating:   rating,
	}

	if err := h.svc.Places.UpdatePlace(r.Context(), id, userID, update); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, "Place updated successfully")
}

func (h *handler) deletePlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	deleted, err := h.svc.Places.DeletePlace(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !deleted {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listPlaceReviews(w http.ResponseWriter, r *http.Request) {
	placeID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reviews, err := h.svc.Reviews.ListReviewsForPlace(r.Context(), placeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponses(reviews))
}

// addPlaceReview takes userId, text and rating as form or query parameters.
func (h *handler) addPlaceReview(w http.ResponseWriter, r *http.Request) {
	placeID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := parseForm(r); err != nil {
		h.writeError(w, r, err)
		return
	}
	userID, err := requesterID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rating, err := formInt(r, "rating")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.svc.Reviews.CreateReview(r.Context(), placeID, userID, r.FormValue("text"), rating); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, "Review added")
}

package api

import (
	"net/http"
)

type reviewRequest struct {
	ReviewText string `json:"reviewText"`
	RatedStars int    `json:"ratedStars"`
}

// createReview takes placeId and userId as query parameters and the review as a JSON body.
func (h *handler) createReview(w http.ResponseWriter, r *http.Request) {
	placeID, err := formInt64(r, "placeId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	userID, err := requesterID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	review, err := h.svc.Reviews.CreateReview(r.Context(), placeID, userID, req.ReviewText, req.RatedStars)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(review))
}

func (h *handler) getReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	review, err := h.svc.Reviews.GetReview(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if review == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "review not found"})
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(review))
}

func (h *handler) updateReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	review, err := h.svc.Reviews.UpdateReview(r.Context(), id, req.ReviewText, req.RatedStars)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(review))
}

func (h *handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	deleted, err := h.svc.Reviews.DeleteReview(r.Context(), id)
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

func (h *handler) listUserReviews(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reviews, err := h.svc.Reviews.ListReviewsByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponses(reviews))
}

func (h *handler) searchReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.Reviews.SearchReviewsByPlaceName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponses(reviews))
}

// reviewsByPlaceName matches the place name exactly, ignoring case.
func (h *handler) reviewsByPlaceName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		h.writeError(w, r, badRequest("name is required"))
		return
	}

	reviews, err := h.svc.Reviews.ReviewsByExactPlaceName(r.Context(), name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponses(reviews))
}

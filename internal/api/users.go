package api

import (
	"net/http"

	"github.com/mmynk/wanderlist/internal/models"
)

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (req userRequest) toModel() *models.User {
	return models.NewUser(req.Username, req.Password, req.Email)
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.Users.Register(r.Context(), req.toModel())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, token, err := h.svc.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{userResponse: toUserResponse(user), Token: token})
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.Users.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.svc.Users.UpdateUser(r.Context(), id, req.toModel())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	deleted, err := h.svc.Users.DeleteUser(r.Context(), id)
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

// userStats returns zero counts for users that do not exist.
func (h *handler) userStats(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	stats, err := h.svc.Stats.GetStats(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		WishlistCount:  stats.WishlistCount,
		TravelledCount: stats.TravelledCount,
		CountriesCount: stats.CountriesCount,
	})
}

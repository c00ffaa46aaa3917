package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/mmynk/wanderlist/internal/middleware"
	"github.com/mmynk/wanderlist/internal/models"
	"github.com/mmynk/wanderlist/internal/service"
)

// maxFormBytes bounds multipart bodies, which carry place images.
const maxFormBytes = 16 << 20

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginResponse struct {
	userResponse
	Token string `json:"token,omitempty"`
}

type placeResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	City     string  `json:"city"`
	Priority string  `json:"priority"`
	Note     string  `json:"note"`
	Visited  bool    `json:"visited"`
	Image    *string `json:"image"`
	UserID   int64   `json:"userId"`
}

type reviewResponse struct {
	ID         int64  `json:"id"`
	ReviewText string `json:"reviewText"`
	RatedStars int    `json:"ratedStars"`
	PlaceID    int64  `json:"placeId"`
	PlaceName  string `json:"placeName"`
	UserID     int64  `json:"userId"`
	Username   string `json:"username"`
}

type statsResponse struct {
	WishlistCount  int64 `json:"wishlistCount"`
	TravelledCount int64 `json:"travelledCount"`
	CountriesCount int64 `json:"countriesCount"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func toPlaceResponse(p *models.Place) placeResponse {
	return placeResponse{
		ID:       p.ID,
		Name:     p.Name,
		Country:  p.Country,
		City:     p.City,
		Priority: p.Priority,
		Note:     p.Note,
		Visited:  p.Visited,
		Image:    p.Image,
		UserID:   p.UserID,
	}
}

func toPlaceResponses(places []*models.Place) []placeResponse {
	out := make([]placeResponse, len(places))
	for i, p := range places {
		out[i] = toPlaceResponse(p)
	}
	return out
}

func toReviewResponse(r *models.Review) reviewResponse {
	return reviewResponse{
		ID:         r.ID,
		ReviewText: r.ReviewText,
		RatedStars: r.RatedStars,
		PlaceID:    r.PlaceID,
		PlaceName:  r.PlaceName,
		UserID:     r.UserID,
		Username:   r.Username,
	}
}

func toReviewResponses(reviews []*models.Review) []reviewResponse {
	out := make([]reviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = toReviewResponse(r)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "error", err)
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, msg)
}

// writeError maps service errors to status codes. Ownership violations are
// reported as 500 with their message.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, service.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		status, msg = http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, service.ErrUnauthorized):
		msg = err.Error()
	default:
		h.logger.ErrorContext(r.Context(), "Unhandled error", "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// parseForm populates r.Form from the query string and a urlencoded or multipart body.
func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return badRequest("malformed form: %v", err)
	}
	return nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("malformed JSON body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, badRequest("invalid %s %q", name, r.PathValue(name))
	}
	return id, nil
}

func formInt64(r *http.Request, key string) (int64, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, badRequest("%s is required", key)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, badRequest("invalid %s %q", key, v)
	}
	return n, nil
}

func formInt(r *http.Request, key string) (int, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, badRequest("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("invalid %s %q", key, v)
	}
	return n, nil
}

// optionalString returns nil when key is absent from the form.
func optionalString(r *http.Request, key string) *string {
	if !r.Form.Has(key) {
		return nil
	}
	v := r.Form.Get(key)
	return &v
}

func optionalBool(r *http.Request, key string) (*bool, error) {
	if !r.Form.Has(key) {
		return nil, nil
	}
	b, err := strconv.ParseBool(r.Form.Get(key))
	if err != nil {
		return nil, badRequest("invalid %s %q", key, r.Form.Get(key))
	}
	return &b, nil
}

func optionalInt(r *http.Request, key string) (*int, error) {
	if !r.Form.Has(key) || r.Form.Get(key) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(r.Form.Get(key))
	if err != nil {
		return nil, badRequest("invalid %s %q", key, r.Form.Get(key))
	}
	return &n, nil
}

// requesterID identifies the acting user: the bearer token's user when one was
// presented, otherwise the userId parameter.
func requesterID(r *http.Request) (int64, error) {
	if id, ok := middleware.GetUserID(r.Context()); ok {
		return id, nil
	}
	return formInt64(r, "userId")
}

// formImage returns the place image from an uploaded "imageFile" part, encoded as
// base64, or else the "image" field verbatim. Empty means no image was supplied.
func formImage(r *http.Request) (string, error) {
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["imageFile"]; len(files) > 0 {
			f, err := files[0].Open()
			if err != nil {
				return "", badRequest("unreadable image: %v", err)
			}
			defer f.Close()

			data, err := io.ReadAll(f)
			if err != nil {
				return "", badRequest("unreadable image: %v", err)
			}
			return base64.StdEncoding.EncodeToString(data), nil
		}
	}
	return r.FormValue("image"), nil
}

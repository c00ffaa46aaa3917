package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/wanderlist/internal/auth"
	"github.com/mmynk/wanderlist/internal/service"
	"github.com/mmynk/wanderlist/internal/storage/sqlite"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, opts ...func(*Dependencies)) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewJWTManager("api-test", time.Hour)
	services := service.New(store, service.Options{Tokens: tokens, StatsTTL: time.Minute}, logger)

	deps := &Dependencies{
		Services: services,
		DB:       store,
		Tokens:   tokens,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(deps)
	}
	return &testServer{t: t, handler: SetupRouter(deps)}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *testServer) sendJSON(method, path string, body any) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(s.t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *testServer) sendForm(method, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) login(username string) string {
	rec := s.sendJSON(http.MethodPost, "/api/users/login", userRequest{Username: username, Password: "pw"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[loginResponse](s.t, rec).Token
}

func (s *testServer) register(username string) userResponse {
	rec := s.sendJSON(http.MethodPost, "/api/users/register", userRequest{Username: username, Password: "pw", Email: username + "@example.com"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var user userResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

func (s *testServer) addPlace(userID int64, fields url.Values) placeResponse {
	fields.Set("userId", strconv.FormatInt(userID, 10))
	rec := s.sendForm(http.MethodPost, "/api/places", fields)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(s.t, "Saved", rec.Body.String())

	places := decode[[]placeResponse](s.t, s.get("/api/places?userId="+strconv.FormatInt(userID, 10)))
	require.NotEmpty(s.t, places)
	return places[len(places)-1]
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")

	t.Run("password is never exposed", func(t *testing.T) {
		rec := s.get("/api/users/" + strconv.FormatInt(alice.ID, 10))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
		assert.Equal(t, alice, decode[userResponse](t, rec))
	})

	t.Run("login", func(t *testing.T) {
		rec := s.sendJSON(http.MethodPost, "/api/users/login", userRequest{Username: "alice", Password: "pw"})
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[loginResponse](t, rec)
		assert.Equal(t, alice.ID, got.ID)
		assert.NotEmpty(t, got.Token)

		rec = s.sendJSON(http.MethodPost, "/api/users/login", userRequest{Username: "alice", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("update", func(t *testing.T) {
		rec := s.sendJSON(http.MethodPut, "/api/users/"+strconv.FormatInt(alice.ID, 10), userRequest{Username: "alicia", Password: "pw", Email: "a@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alicia", decode[userResponse](t, rec).Username)

		rec = s.sendJSON(http.MethodPut, "/api/users/999", userRequest{Username: "ghost"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad ids", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, s.get("/api/users/999").Code)
		assert.Equal(t, http.StatusBadRequest, s.get("/api/users/abc").Code)
		assert.Equal(t, http.StatusBadRequest, s.get("/api/users/stats/abc").Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader("{"))
		assert.Equal(t, http.StatusBadRequest, s.do(req).Code)
	})

	t.Run("delete", func(t *testing.T) {
		path := "/api/users/" + strconv.FormatInt(alice.ID, 10)
		assert.Equal(t, http.StatusNoContent, s.do(httptest.NewRequest(http.MethodDelete, path, nil)).Code)
		assert.Equal(t, http.StatusNotFound, s.do(httptest.NewRequest(http.MethodDelete, path, nil)).Code)
	})
}

func TestPlaceRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")

	paris := s.addPlace(alice.ID, url.Values{"name": {"Paris"}, "country": {"France"}, "city": {"Paris"}, "visited": {"true"}, "image": {"aW1n"}})
	nice := s.addPlace(alice.ID, url.Values{"name": {"Nice"}, "country": {"France"}, "city": {"Nice"}, "priority": {"High"}})
	s.addPlace(bob.ID, url.Values{"name": {"Kyoto"}, "country": {"Japan"}})

	assert.Equal(t, alice.ID, paris.UserID)
	require.NotNil(t, paris.Image)
	assert.Equal(t, "aW1n", *paris.Image)
	assert.Nil(t, nice.Image)
	assert.False(t, nice.Visited)

	t.Run("create with unknown user", func(t *testing.T) {
		rec := s.sendForm(http.MethodPost, "/api/places", url.Values{"userId": {"999"}, "name": {"X"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list requires numeric userId", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, s.get("/api/places").Code)
		assert.Equal(t, http.StatusBadRequest, s.get("/api/places?userId=x").Code)
	})

	t.Run("filter precedence", func(t *testing.T) {
		q := "/api/places/filter?userId=" + strconv.FormatInt(alice.ID, 10)

		places := decode[[]placeResponse](t, s.get(q+"&visited=true&country=France"))
		require.Len(t, places, 1)
		assert.Equal(t, paris.ID, places[0].ID)

		places = decode[[]placeResponse](t, s.get(q+"&city=Nice&priority=Low"))
		require.Len(t, places, 1)
		assert.Equal(t, nice.ID, places[0].ID)

		assert.Len(t, decode[[]placeResponse](t, s.get(q)), 2)
		assert.Equal(t, http.StatusBadRequest, s.get(q+"&visited=maybe").Code)
	})

	t.Run("search", func(t *testing.T) {
		places := decode[[]placeResponse](t, s.get("/api/places/search?name=kyo"))
		require.Len(t, places, 1)
		assert.Equal(t, bob.ID, places[0].UserID)
		assert.Equal(t, http.StatusBadRequest, s.get("/api/places/search?name=").Code)
	})

	t.Run("update by non-owner", func(t *testing.T) {
		rec := s.sendForm(http.MethodPut, "/api/places/"+strconv.FormatInt(paris.ID, 10),
			url.Values{"userId": {strconv.FormatInt(bob.ID, 10)}, "name": {"Stolen"}})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "someone else's place")

		got := decode[placeResponse](t, s.get("/api/places/"+strconv.FormatInt(paris.ID, 10)))
		assert.Equal(t, "Paris", got.Name)
	})

	t.Run("update by owner keeps image", func(t *testing.T) {
		rec := s.sendForm(http.MethodPut, "/api/places/"+strconv.FormatInt(paris.ID, 10),
			url.Values{"userId": {strconv.FormatInt(alice.ID, 10)}, "name": {"Paris"}, "note": {"again"}, "rating": {"5"}})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Place updated successfully", rec.Body.String())

		got := decode[placeResponse](t, s.get("/api/places/"+strconv.FormatInt(paris.ID, 10)))
		require.NotNil(t, got.Image)
		assert.Equal(t, "aW1n", *got.Image)
		assert.Equal(t, "again", got.Note)
		assert.False(t, got.Visited)
	})

	t.Run("update missing place", func(t *testing.T) {
		rec := s.sendForm(http.MethodPut, "/api/places/999", url.Values{"userId": {"1"}, "name": {"x"}})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bearer token overrides userId", func(t *testing.T) {
		login := decode[loginResponse](t, s.sendJSON(http.MethodPost, "/api/users/login", userRequest{Username: "bob", Password: "pw"}))

		req := httptest.NewRequest(http.MethodPut, "/api/places/"+strconv.FormatInt(nice.ID, 10),
			strings.NewReader(url.Values{"userId": {strconv.FormatInt(alice.ID, 10)}, "name": {"Bob's Nice"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+login.Token)
		assert.Equal(t, http.StatusInternalServerError, s.do(req).Code)
	})

	t.Run("delete", func(t *testing.T) {
		path := "/api/places/" + strconv.FormatInt(nice.ID, 10)
		assert.Equal(t, http.StatusNoContent, s.do(httptest.NewRequest(http.MethodDelete, path, nil)).Code)
		assert.Equal(t, http.StatusNotFound, s.do(httptest.NewRequest(http.MethodDelete, path, nil)).Code)
		assert.Equal(t, http.StatusNotFound, s.get(path).Code)
	})
}

func TestCreatePlaceWithUploadedImage(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("userId", strconv.FormatInt(alice.ID, 10)))
	require.NoError(t, mw.WriteField("name", "Cairo"))
	fw, err := mw.CreateFormFile("imageFile", "cairo.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/places", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	places := decode[[]placeResponse](t, s.get("/api/places?userId="+strconv.FormatInt(alice.ID, 10)))
	require.Len(t, places, 1)
	require.NotNil(t, places[0].Image)
	assert.Equal(t, "cG5n", *places[0].Image)
}

func TestReviewRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	sf := s.addPlace(alice.ID, url.Values{"name": {"San Francisco"}})
	aliceID := strconv.FormatInt(alice.ID, 10)
	sfID := strconv.FormatInt(sf.ID, 10)

	rec := s.sendJSON(http.MethodPost, "/api/reviews?placeId="+sfID+"&userId="+aliceID, reviewRequest{ReviewText: "Foggy", RatedStars: 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[reviewResponse](t, rec)
	assert.Equal(t, reviewResponse{ID: created.ID, ReviewText: "Foggy", RatedStars: 4, PlaceID: sf.ID, PlaceName: "San Francisco", UserID: alice.ID, Username: "alice"}, created)

	rec = s.sendForm(http.MethodPost, "/api/places/"+sfID+"/reviews", url.Values{"userId": {aliceID}, "text": {"Hilly"}, "rating": {"3"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Review added", rec.Body.String())

	t.Run("invalid references", func(t *testing.T) {
		rec := s.sendJSON(http.MethodPost, "/api/reviews?placeId=999&userId="+aliceID, reviewRequest{ReviewText: "x", RatedStars: 3})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.sendForm(http.MethodPost, "/api/places/"+sfID+"/reviews", url.Values{"userId": {"999"}, "text": {"x"}, "rating": {"3"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.sendJSON(http.MethodPost, "/api/reviews?placeId="+sfID+"&userId="+aliceID, reviewRequest{ReviewText: "x", RatedStars: 7})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "rating must be between 1 and 5")

		rec = s.sendForm(http.MethodPost, "/api/places/"+sfID+"/reviews", url.Values{"userId": {aliceID}, "text": {"x"}, "rating": {"0"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "rating must be between 1 and 5")

		rec = s.sendForm(http.MethodPost, "/api/places/"+sfID+"/reviews", url.Values{"userId": {aliceID}, "text": {"x"}, "rating": {"99999999999999999999"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid rating")
	})

	t.Run("listing", func(t *testing.T) {
		assert.Len(t, decode[[]reviewResponse](t, s.get("/api/places/"+sfID+"/reviews")), 2)
		assert.Len(t, decode[[]reviewResponse](t, s.get("/api/reviews/user/"+aliceID)), 2)
	})

	t.Run("search", func(t *testing.T) {
		assert.Len(t, decode[[]reviewResponse](t, s.get("/api/reviews/search?name=francisco")), 2)

		rec := s.get("/api/reviews/search?name=atlantis")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())

		assert.Equal(t, http.StatusBadRequest, s.get("/api/reviews/search?name=%20").Code)
		assert.Len(t, decode[[]reviewResponse](t, s.get("/api/reviews/place?name=san%20francisco")), 2)
	})

	t.Run("update and delete", func(t *testing.T) {
		path := "/api/reviews/" + strconv.FormatInt(created.ID, 10)
		rec := s.sendJSON(http.MethodPut, path, reviewRequest{ReviewText: "Foggy but fun", RatedStars: 5})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, decode[reviewResponse](t, rec).RatedStars)

		assert.Equal(t, http.StatusNoContent, s.do(httptest.NewRequest(http.MethodDelete, path, nil)).Code)
		assert.Equal(t, http.StatusNotFound, s.get(path).Code)
		assert.Equal(t, http.StatusNotFound, s.sendJSON(http.MethodPut, path, reviewRequest{ReviewText: "x", RatedStars: 3}).Code)
	})
}

func TestStatsRoute(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	s.addPlace(alice.ID, url.Values{"name": {"Paris"}, "country": {"France"}, "visited": {"true"}})
	s.addPlace(alice.ID, url.Values{"name": {"Lima"}, "country": {"Peru"}})

	rec := s.get("/api/users/stats/" + strconv.FormatInt(alice.ID, 10))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"wishlistCount":1,"travelledCount":1,"countriesCount":2}`, rec.Body.String())

	rec = s.get("/api/users/stats/999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"wishlistCount":0,"travelledCount":0,"countriesCount":2}`, rec.Body.String())
}

func TestCountRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.register("alice")
	bob := s.register("bob")
	s.addPlace(alice.ID, url.Values{"name": {"Paris"}, "country": {"France"}, "visited": {"true"}})
	s.addPlace(alice.ID, url.Values{"name": {"Nice"}, "country": {"France"}})
	s.addPlace(bob.ID, url.Values{"name": {"Kyoto"}, "country": {"Japan"}})

	rec := s.get("/api/places/count?visited=true")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
	assert.JSONEq(t, `{"count":2}`, s.get("/api/places/count?visited=false").Body.String())

	assert.Equal(t, http.StatusBadRequest, s.get("/api/places/count").Code)
	assert.Equal(t, http.StatusBadRequest, s.get("/api/places/count?visited=often").Code)

	rec = s.get("/api/places/countries/count")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2}`, rec.Body.String())
}

func TestRequiredAuthGuardsWrites(t *testing.T) {
	s := newTestServer(t, func(d *Dependencies) { d.RequireAuth = true })
	alice := s.register("alice")
	aliceID := strconv.FormatInt(alice.ID, 10)

	rec := s.sendForm(http.MethodPost, "/api/places", url.Values{"userId": {aliceID}, "name": {"Oslo"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/places", strings.NewReader(url.Values{"userId": {aliceID}, "name": {"Oslo"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, s.do(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/api/places", strings.NewReader(url.Values{"userId": {aliceID}, "name": {"Oslo"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.login("alice"))
	rec = s.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	places := decode[[]placeResponse](t, s.get("/api/places?userId="+aliceID))
	require.Len(t, places, 1)
	assert.Equal(t, "Oslo", places[0].Name)

	path := "/api/places/" + strconv.FormatInt(places[0].ID, 10)
	assert.Equal(t, http.StatusOK, s.get(path).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(httptest.NewRequest(http.MethodDelete, path, nil)).Code)
}

func TestRequestLogCarriesUserID(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(t, func(d *Dependencies) {
		d.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	})
	alice := s.register("alice")
	token := s.login("alice")
	logs.Reset()

	req := httptest.NewRequest(http.MethodGet, "/api/places?userId="+strconv.FormatInt(alice.ID, 10), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, s.do(req).Code)

	assert.Contains(t, logs.String(), "Request completed")
	assert.Contains(t, logs.String(), "user_id="+strconv.FormatInt(alice.ID, 10))
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("disk on fire") }

func TestUtilityRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	s.get("/api/places?userId=1")
	rec = s.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `wanderlist_http_requests_total{method="GET",route="GET /api/places",status="200"} 1`)

	unhealthy := SetupRouter(&Dependencies{DB: failingPinger{}, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	rec = httptest.NewRecorder()
	unhealthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDAndCORS(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := s.do(req)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bizreview-backend/internal/app/repository"
	"github.com/ikkim/bizreview-backend/internal/app/service"
	"github.com/ikkim/bizreview-backend/internal/datastore"
	apperrors "github.com/ikkim/bizreview-backend/internal/errors"
	"github.com/ikkim/bizreview-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const businessJSON = `{"owner_id":1,"name":"X","street_address":"A","city":"C","state":"OR","zip_code":97330}`

func setupControllerTest(t *testing.T) *gin.Engine {
	t.Helper()
	return setupControllerTestWithStore(t, datastore.NewMemoryStore())
}

func setupControllerTestWithStore(t *testing.T, store datastore.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	businessRepo := repository.NewBusinessRepository(store)
	reviewRepo := repository.NewReviewRepository(store)
	businessController := NewBusinessController(service.NewBusinessService(store, businessRepo, reviewRepo, nil))
	reviewController := NewReviewController(service.NewReviewService(businessRepo, reviewRepo, nil))
	systemController := NewSystemController(store, "memory")

	router := gin.New()
	router.GET("/", systemController.Index)
	router.GET("/health", systemController.Health)
	router.GET("/businesses", businessController.ListBusinesses)
	router.POST("/businesses", businessController.CreateBusiness)
	router.GET("/businesses/:id", businessController.GetBusiness)
	router.PUT("/businesses/:id", businessController.ReplaceBusiness)
	router.DELETE("/businesses/:id", businessController.DeleteBusiness)
	router.GET("/owners/:id/businesses", businessController.ListBusinessesByOwner)
	router.POST("/reviews", reviewController.CreateReview)
	router.GET("/reviews/:id", reviewController.GetReview)
	router.PUT("/reviews/:id", reviewController.UpdateReview)
	router.DELETE("/reviews/:id", reviewController.DeleteReview)
	router.GET("/users/:id/reviews", reviewController.ListReviewsByUser)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorBody(message string) string {
	data, _ := json.Marshal(apperrors.ErrorResponse{Error: message})
	return string(data)
}

func createdID(t *testing.T, w *httptest.ResponseRecorder) int64 {
	t.Helper()
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotZero(t, body.ID)
	return body.ID
}

func path(prefix string, id int64, suffix ...string) string {
	p := prefix + "/" + strconv.FormatInt(id, 10)
	for _, s := range suffix {
		p += s
	}
	return p
}

func TestSystemController_Index(t *testing.T) {
	router := setupControllerTest(t)

	w := doRequest(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, IndexMessage, w.Body.String())
}

type unreachableStore struct {
	datastore.Store
}

func (unreachableStore) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func TestSystemController_Health(t *testing.T) {
	w := doRequest(setupControllerTest(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","store":"memory"}`, w.Body.String())

	router := setupControllerTestWithStore(t, unreachableStore{datastore.NewMemoryStore()})
	w = doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBusinessController_Create(t *testing.T) {
	router := setupControllerTest(t)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{"missing attribute", `{"owner_id":1,"name":"X","street_address":"A","city":"C","state":"OR"}`, http.StatusBadRequest, errorBody(apperrors.MsgMissingAttributes)},
		{"empty object", `{}`, http.StatusBadRequest, errorBody(apperrors.MsgMissingAttributes)},
		{"not json", `name=X`, http.StatusBadRequest, errorBody(apperrors.MsgMissingAttributes)},
		{"array body", `[1,2]`, http.StatusBadRequest, errorBody(apperrors.MsgMissingAttributes)},
		{"null attribute", `{"owner_id":1,"name":null,"street_address":"A","city":"C","state":"OR","zip_code":1}`, http.StatusBadRequest, errorBody(apperrors.MsgMissingAttributes)},
		{"wrong type", `{"owner_id":1,"name":5,"street_address":"A","city":"C","state":"OR","zip_code":1}`, http.StatusBadRequest, errorBody(apperrors.MsgMissingAttributes)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/businesses", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}

	list := doRequest(router, http.MethodGet, "/businesses", "")
	assert.Equal(t, http.StatusOK, list.Code)
	assert.JSONEq(t, `[]`, list.Body.String(), "rejected bodies persist nothing")

	t.Run("created", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/businesses", businessJSON)
		id := createdID(t, w)
		assert.JSONEq(t, `{"id":`+strconv.FormatInt(id, 10)+`,"owner_id":1,"name":"X","street_address":"A","city":"C","state":"OR","zip_code":97330}`, w.Body.String())

		get := doRequest(router, http.MethodGet, path("/businesses", id), "")
		assert.Equal(t, http.StatusOK, get.Code)
		assert.JSONEq(t, w.Body.String(), get.Body.String())
	})
}

func TestBusinessController_NotFound(t *testing.T) {
	router := setupControllerTest(t)

	for _, p := range []string{"/businesses/999", "/businesses/abc", "/businesses/0", "/businesses/-3"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			w := doRequest(router, method, p, businessJSON)
			assert.Equal(t, http.StatusNotFound, w.Code, method+" "+p)
			assert.JSONEq(t, errorBody(apperrors.MsgBusinessNotFound), w.Body.String())
		}
	}
}

func TestBusinessController_Replace(t *testing.T) {
	router := setupControllerTest(t)
	id := createdID(t, doRequest(router, http.MethodPost, "/businesses", businessJSON))

	t.Run("not found beats invalid body", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, path("/businesses", id+1), `{"name":"Y"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doRequest(router, http.MethodPut, path("/businesses", id+1), `not json`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("partial body", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, path("/businesses", id), `{"name":"Y"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, errorBody(apperrors.MsgMissingAttributes), w.Body.String())

		w = doRequest(router, http.MethodPut, path("/businesses", id), `not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("full body", func(t *testing.T) {
		body := `{"owner_id":"2","name":"Y","street_address":"B","city":"D","state":"WA","zip_code":"98101"}`
		w := doRequest(router, http.MethodPut, path("/businesses", id), body)
		assert.Equal(t, http.StatusOK, w.Code)
		want := `{"id":` + strconv.FormatInt(id, 10) + `,"owner_id":"2","name":"Y","street_address":"B","city":"D","state":"WA","zip_code":"98101"}`
		assert.JSONEq(t, want, w.Body.String())

		get := doRequest(router, http.MethodGet, path("/businesses", id), "")
		assert.JSONEq(t, want, get.Body.String())
	})
}

func TestBusinessController_DeleteCascades(t *testing.T) {
	router := setupControllerTest(t)
	id := createdID(t, doRequest(router, http.MethodPost, "/businesses", businessJSON))
	other := createdID(t, doRequest(router, http.MethodPost, "/businesses", businessJSON))

	reviewOf := func(user string, business int64) string {
		return `{"user_id":"` + user + `","business_id":` + strconv.FormatInt(business, 10) + `,"stars":4}`
	}
	r1 := createdID(t, doRequest(router, http.MethodPost, "/reviews", reviewOf("u1", id)))
	r2 := createdID(t, doRequest(router, http.MethodPost, "/reviews", reviewOf("u2", id)))
	kept := createdID(t, doRequest(router, http.MethodPost, "/reviews", reviewOf("u1", other)))

	w := doRequest(router, http.MethodDelete, path("/businesses", id), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, path("/businesses", id), "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, path("/reviews", r1), "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, path("/reviews", r2), "").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, path("/reviews", kept), "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodDelete, path("/businesses", id), "").Code)
}

func TestBusinessController_ListByOwner(t *testing.T) {
	router := setupControllerTest(t)
	createdID(t, doRequest(router, http.MethodPost, "/businesses", businessJSON))
	createdID(t, doRequest(router, http.MethodPost, "/businesses",
		`{"owner_id":"1","name":"Z","street_address":"A","city":"C","state":"OR","zip_code":"97330"}`))
	createdID(t, doRequest(router, http.MethodPost, "/businesses",
		`{"owner_id":"7","name":"Q","street_address":"A","city":"C","state":"OR","zip_code":"97330"}`))

	var owned []map[string]interface{}
	w := doRequest(router, http.MethodGet, "/owners/1/businesses", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &owned))
	require.Len(t, owned, 2)
	assert.Equal(t, "X", owned[0]["name"])
	assert.Equal(t, "Z", owned[1]["name"])
	for _, b := range owned {
		assert.Contains(t, b, "id")
	}

	w = doRequest(router, http.MethodGet, "/owners/01/businesses", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &owned))
	assert.Len(t, owned, 2)

	for _, p := range []string{"/owners/99/businesses", "/owners/abc/businesses"} {
		w := doRequest(router, http.MethodGet, p, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	}
}

func TestReviewController_Create(t *testing.T) {
	router := setupControllerTest(t)
	id := createdID(t, doRequest(router, http.MethodPost, "/businesses", businessJSON))
	bid := strconv.FormatInt(id, 10)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{"missing stars", `{"user_id":"u1","business_id":` + bid + `}`, http.StatusBadRequest, errorBody(apperrors.MsgMissingAttributes)},
		{"stars as text", `{"user_id":"u1","business_id":` + bid + `,"stars":"five"}`, http.StatusBadRequest, errorBody(apperrors.MsgMissingAttributes)},
		{"unknown business", `{"user_id":"u1","business_id":999,"stars":5}`, http.StatusNotFound, errorBody(apperrors.MsgBusinessNotFound)},
		{"created", `{"user_id":"u1","business_id":` + bid + `,"stars":5,"review_text":"Great"}`, http.StatusCreated, ""},
		{"duplicate", `{"user_id":"u1","business_id":` + bid + `,"stars":1}`, http.StatusConflict, errorBody(apperrors.MsgDuplicateReview)},
		{"duplicate by string id", `{"user_id":"u1","business_id":"` + bid + `","stars":1}`, http.StatusConflict, errorBody(apperrors.MsgDuplicateReview)},
		{"falsy stars accepted", `{"user_id":"u2","business_id":` + bid + `,"stars":0}`, http.StatusCreated, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/reviews", tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestReviewController_UpdateAndDelete(t *testing.T) {
	router := setupControllerTest(t)
	bid := createdID(t, doRequest(router, http.MethodPost, "/businesses", businessJSON))
	rid := createdID(t, doRequest(router, http.MethodPost, "/reviews",
		`{"user_id":"u1","business_id":`+strconv.FormatInt(bid, 10)+`,"stars":5,"review_text":"Great"}`))

	t.Run("missing review", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, path("/reviews", rid+1), `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, errorBody(apperrors.MsgReviewNotFound), w.Body.String())
	})

	t.Run("stars required", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, path("/reviews", rid), `{"review_text":"Meh"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, path("/reviews", rid), `{"stars":3}`)
		require.Equal(t, http.StatusOK, w.Code)
		want := `{"id":` + strconv.FormatInt(rid, 10) + `,"user_id":"u1","business_id":` + strconv.FormatInt(bid, 10) + `,"stars":3,"review_text":"Great"}`
		assert.JSONEq(t, want, w.Body.String())

		w = doRequest(router, http.MethodPut, path("/reviews", rid), `{"stars":2,"review_text":"Meh"}`)
		require.Equal(t, http.StatusOK, w.Code)
		get := doRequest(router, http.MethodGet, path("/reviews", rid), "")
		assert.JSONEq(t, w.Body.String(), get.Body.String())
	})

	t.Run("null review_text clears it", func(t *testing.T) {
		w := doRequest(router, http.MethodPut, path("/reviews", rid), `{"stars":4,"review_text":null}`)
		require.Equal(t, http.StatusOK, w.Code)
		want := `{"id":` + strconv.FormatInt(rid, 10) + `,"user_id":"u1","business_id":` + strconv.FormatInt(bid, 10) + `,"stars":4}`
		assert.JSONEq(t, want, w.Body.String())

		get := doRequest(router, http.MethodGet, path("/reviews", rid), "")
		assert.JSONEq(t, want, get.Body.String())
	})

	t.Run("list by user", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/users/u1/reviews", "")
		require.Equal(t, http.StatusOK, w.Code)
		var reviews []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviews))
		require.Len(t, reviews, 1)
		assert.EqualValues(t, rid, reviews[0]["id"])

		w = doRequest(router, http.MethodGet, "/users/nobody/reviews", "")
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("delete", func(t *testing.T) {
		w := doRequest(router, http.MethodDelete, path("/reviews", rid), "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())

		w = doRequest(router, http.MethodDelete, path("/reviews", rid), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, errorBody(apperrors.MsgReviewNotFound), w.Body.String())
	})
}

func TestReviewController_ListByNumericUser(t *testing.T) {
	router := setupControllerTest(t)
	bid := strconv.FormatInt(createdID(t, doRequest(router, http.MethodPost, "/businesses", businessJSON)), 10)
	createdID(t, doRequest(router, http.MethodPost, "/reviews", `{"user_id":42,"business_id":`+bid+`,"stars":5}`))

	for _, p := range []string{"/users/42/reviews", "/users/042/reviews"} {
		w := doRequest(router, http.MethodGet, p, "")
		require.Equal(t, http.StatusOK, w.Code)
		var reviews []map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviews))
		assert.Len(t, reviews, 1, p)
	}
}

func TestParseID_LogsInvalidIDCode(t *testing.T) {
	var buf bytes.Buffer
	logger.Initialize(logger.Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() {
		logger.Initialize(logger.Config{Level: "info", Format: "console"})
	})

	router := setupControllerTest(t)
	w := doRequest(router, http.MethodGet, "/businesses/abc", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, errorBody(apperrors.MsgBusinessNotFound), w.Body.String())
	assert.Contains(t, buf.String(), apperrors.ValidationInvalidID)
}

package records

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/yowenter/recordstore/pkg/store"
	"github.com/yowenter/recordstore/pkg/store/jsonfile"
	"github.com/yowenter/recordstore/pkg/types"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st, err := jsonfile.Open(filepath.Join(t.TempDir(), "records.json"))
	require.NoError(t, err)
	rc := NewRecordController(st)
	r := gin.New()
	rc.RegisterRoutes(r)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecordLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/api/data", `{"key":"greeting","value":"hello"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	body := w.Body.String()
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "greeting", gjson.Get(body, "data.key").String())
	assert.Equal(t, "hello", gjson.Get(body, "data.value").String())
	assert.False(t, gjson.Get(body, "data.lastModified").Exists())
	id := gjson.Get(body, "data.id").String()
	createdAt := gjson.Get(body, "data.timestamp").String()
	assert.NotEmpty(t, id)
	assert.NotEmpty(t, createdAt)

	w = doRequest(r, http.MethodGet, "/api/data", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Equal(t, int64(1), gjson.Get(body, "count").Int())
	assert.Equal(t, "greeting", gjson.Get(body, "data.0.key").String())

	w = doRequest(r, http.MethodPut, "/api/data/greeting", `{"value":"hello again"}`)
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Equal(t, id, gjson.Get(body, "data.id").String())
	assert.Equal(t, createdAt, gjson.Get(body, "data.timestamp").String())
	assert.Equal(t, "hello again", gjson.Get(body, "data.value").String())
	assert.True(t, gjson.Get(body, "data.lastModified").Exists())

	w = doRequest(r, http.MethodDelete, "/api/data/greeting", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "success").Bool())

	w = doRequest(r, http.MethodGet, "/api/data", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Equal(t, int64(0), gjson.Get(body, "count").Int())
	assert.Equal(t, "[]", gjson.Get(body, "data").Raw)
}

func TestCreateRejectsBadRequests(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing value", `{"key":"greeting"}`},
		{"missing key", `{"value":"hello"}`},
		{"long key", `{"key":"` + strings.Repeat("k", 51) + `","value":"hello"}`},
		{"slash in key", `{"key":"a/b","value":"hello"}`},
		{"malformed json", `{"key":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/api/data", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := w.Body.String()
			assert.False(t, gjson.Get(body, "success").Bool())
			assert.NotEmpty(t, gjson.Get(body, "error").String())
		})
	}

	w := doRequest(r, http.MethodGet, "/api/data", "")
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "count").Int())
}

func TestUpdateMissingRecord(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodPut, "/api/data/absent", `{"value":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
}

func TestDeleteMissingRecord(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodDelete, "/api/data/absent", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
}

func TestUpdateRejectsEmptyValue(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodPost, "/api/data", `{"key":"greeting","value":"hello"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, http.MethodPut, "/api/data/greeting", `{"value":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClearEndpoint(t *testing.T) {
	r := newTestRouter(t)
	doRequest(r, http.MethodPost, "/api/data", `{"key":"a","value":"1"}`)
	doRequest(r, http.MethodPost, "/api/data", `{"key":"b","value":"2"}`)

	w := doRequest(r, http.MethodDelete, "/api/data", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gjson.Get(w.Body.String(), "success").Bool())

	w = doRequest(r, http.MethodGet, "/api/data", "")
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "count").Int())
}

func TestStatsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, int64(0), gjson.Get(body, "stats.count").Int())
	assert.Equal(t, int64(0), gjson.Get(body, "stats.storageSize").Int())
	assert.Equal(t, "0 Bytes", gjson.Get(body, "stats.storageSizeFormatted").String())

	doRequest(r, http.MethodPost, "/api/data", `{"key":"greeting","value":"hello"}`)

	w = doRequest(r, http.MethodGet, "/api/stats", "")
	body = w.Body.String()
	assert.Equal(t, int64(1), gjson.Get(body, "stats.count").Int())
	assert.Greater(t, gjson.Get(body, "stats.storageSize").Int(), int64(0))
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "Server is running", gjson.Get(body, "message").String())
	_, err := time.Parse("2006-01-02T15:04:05.000Z", gjson.Get(body, "timestamp").String())
	assert.NoError(t, err)
}

func TestListSorted(t *testing.T) {
	r := newTestRouter(t)
	for _, key := range []string{"cherry", "apple", "banana"} {
		w := doRequest(r, http.MethodPost, "/api/data", `{"key":"`+key+`","value":"x"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(r, http.MethodGet, "/api/data", "")
	body := w.Body.String()
	assert.Equal(t, "apple", gjson.Get(body, "data.0.key").String())
	assert.Equal(t, "banana", gjson.Get(body, "data.1.key").String())
	assert.Equal(t, "cherry", gjson.Get(body, "data.2.key").String())
}

func TestKeysWithSpaces(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(r, http.MethodPost, "/api/data", `{"key":"my key","value":"hello"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(r, http.MethodPut, "/api/data/my%20key", `{"value":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "my key", gjson.Get(w.Body.String(), "data.key").String())

	w = doRequest(r, http.MethodDelete, "/api/data/my%20key", "")
	require.Equal(t, http.StatusOK, w.Code)
}

// brokenStore fails every operation with a plain backend error.
type brokenStore struct {
	store.Store
}

func (brokenStore) List(context.Context) ([]*types.Record, error) {
	return nil, errors.New("backend unavailable")
}

func (brokenStore) Delete(context.Context, string) error {
	return errors.New("backend unavailable")
}

func TestStoreFailuresReturn500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rc := NewRecordController(brokenStore{})
	r := gin.New()
	rc.RegisterRoutes(r)

	w := doRequest(r, http.MethodGet, "/api/data", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := w.Body.String()
	assert.False(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "failed to retrieve records", gjson.Get(body, "error").String())

	w = doRequest(r, http.MethodDelete, "/api/data/greeting", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body = w.Body.String()
	assert.False(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "failed to delete record", gjson.Get(body, "error").String())

	w = doRequest(r, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
}

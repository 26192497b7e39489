package cocktail

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mixologist/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSearcher struct {
	results  []common.CocktailProfile
	err      error
	progress []string
	gotQuery string
	gotMode  common.SearchMode
}

func (f *fakeSearcher) Search(_ context.Context, query string, mode common.SearchMode, progress common.ProgressFunc) ([]common.CocktailProfile, error) {
	f.gotQuery = query
	f.gotMode = mode
	for _, p := range f.progress {
		progress(p)
	}
	return f.results, f.err
}

type fakeImages struct {
	url   string
	calls int
}

func (f *fakeImages) Resolve(_ context.Context, _, _, _, _ string) string {
	f.calls++
	return f.url
}

func profile(name, image string) common.CocktailProfile {
	return common.CocktailProfile{
		Name:        name,
		ImageURL:    image,
		Ingredients: []common.Ingredient{{Name: "Gin", Amount: "30 ml"}},
	}
}

func newRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.GET("/search", h.HandleSearch)
	r.GET("/search/stream", h.HandleSearchStream)
	r.POST("/image", h.HandleImage)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) SearchResponse {
	t.Helper()
	var resp SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSearchMultipleResults(t *testing.T) {
	s := &fakeSearcher{results: []common.CocktailProfile{profile("Negroni", ""), profile("Boulevardier", "")}}
	images := &fakeImages{url: "https://img/x.jpg"}
	r := newRouter(NewHandler(s, images))

	w := get(r, "/search?q=campari&mode=ingredient")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, 2, resp.Count)
	assert.False(t, resp.Single)
	assert.Equal(t, common.SearchByIngredient, s.gotMode)
	assert.Equal(t, "campari", s.gotQuery)
	assert.Equal(t, 0, images.calls)
}

func TestSearchSingleResultGetsImage(t *testing.T) {
	s := &fakeSearcher{results: []common.CocktailProfile{profile("Smoky Sunset", "")}}
	images := &fakeImages{url: "data:image/jpeg;base64,AAAA"}
	r := newRouter(NewHandler(s, images))

	resp := decode(t, get(r, "/search?q=smoky+sunset"))
	require.Len(t, resp.Results, 1)
	assert.True(t, resp.Single)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", resp.Results[0].ImageURL)
	assert.Equal(t, common.SearchByName, s.gotMode)
}

func TestSearchSingleResultKeepsExistingImage(t *testing.T) {
	s := &fakeSearcher{results: []common.CocktailProfile{profile("Negroni", "https://img/negroni.jpg")}}
	images := &fakeImages{url: "other"}
	r := newRouter(NewHandler(s, images))

	resp := decode(t, get(r, "/search?q=negroni"))
	assert.Equal(t, "https://img/negroni.jpg", resp.Results[0].ImageURL)
	assert.Equal(t, 0, images.calls)
}

func TestSearchNotFound(t *testing.T) {
	r := newRouter(NewHandler(&fakeSearcher{}, nil))

	w := get(r, "/search?q=zzzznonexistentdrink")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, StatusNotFound, resp.Status)
	assert.Equal(t, 0, resp.Count)
	assert.NotNil(t, resp.Results)
	assert.Contains(t, w.Body.String(), `"results":[]`)
}

func TestSearchValidation(t *testing.T) {
	r := newRouter(NewHandler(&fakeSearcher{}, nil))

	assert.Equal(t, http.StatusBadRequest, get(r, "/search?q=%20%20").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/search?q=gin&mode=colour").Code)
}

func TestSearchFailure(t *testing.T) {
	r := newRouter(NewHandler(&fakeSearcher{err: errors.New("context canceled")}, nil))

	w := get(r, "/search?q=negroni")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, common.ErrCodeInternalError, body["code"])
	assert.Equal(t, "context canceled", body["error"])
}

func TestSearchStream(t *testing.T) {
	s := &fakeSearcher{
		results:  []common.CocktailProfile{profile("Negroni", "https://img/negroni.jpg")},
		progress: []string{"local", "external"},
	}
	srv := httptest.NewServer(newRouter(NewHandler(s, nil)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/search/stream?q=negroni")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)

	first := strings.Index(body, `"status":"local"`)
	second := strings.Index(body, `"status":"external"`)
	result := strings.Index(body, "event:result")
	require.True(t, first >= 0 && second > first && result > second, body)
	assert.Contains(t, body, `"count":1`)
}

func TestSearchStreamFailure(t *testing.T) {
	srv := httptest.NewServer(newRouter(NewHandler(&fakeSearcher{err: errors.New("boom")}, nil)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/search/stream?q=negroni")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "event:error")
	assert.NotContains(t, string(raw), "event:result")
}

func TestSearchStreamValidation(t *testing.T) {
	r := newRouter(NewHandler(&fakeSearcher{}, nil))
	assert.Equal(t, http.StatusBadRequest, get(r, "/search/stream").Code)
}

func postImage(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/image", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestImage(t *testing.T) {
	images := &fakeImages{url: "https://img/mojito.jpg"}
	r := newRouter(NewHandler(&fakeSearcher{}, images))

	w := postImage(r, `{"name":"Mojito","glassware":"Highball","garnish":"Mint","color":"#FFFFFF"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"image_url":"https://img/mojito.jpg"}`, w.Body.String())
}

func TestImageNotFoundIsNull(t *testing.T) {
	r := newRouter(NewHandler(&fakeSearcher{}, &fakeImages{}))

	w := postImage(r, `{"name":"Nothing"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"image_url":null}`, w.Body.String())
}

func TestImageRequiresName(t *testing.T) {
	r := newRouter(NewHandler(&fakeSearcher{}, &fakeImages{}))
	assert.Equal(t, http.StatusBadRequest, postImage(r, `{"glassware":"Coupe"}`).Code)
	assert.Equal(t, http.StatusBadRequest, postImage(r, `not json`).Code)
}

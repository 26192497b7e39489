package favorites

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	favoritesSvc "mixologist/internal/core/favorites"
	"mixologist/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const negroni = `{"name":"Negroni","ingredients":[{"name":"Gin","amount":"30 ml"},{"name":"Campari","amount":"30 ml"}]}`

func newRouter() *gin.Engine {
	h := NewHandler(favoritesSvc.NewService(favoritesSvc.NewMemoryStore(), 0))
	r := gin.New()
	r.GET("/favorites", h.HandleList)
	r.GET("/favorites/:name", h.HandleGet)
	r.GET("/favorites/:name/exists", h.HandleExists)
	r.PUT("/favorites", h.HandlePut)
	r.DELETE("/favorites/:name", h.HandleDelete)
	r.POST("/favorites/toggle", h.HandleToggle)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestToggleAddsThenRemoves(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodPost, "/favorites/toggle", negroni)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Negroni","favorite":true}`, w.Body.String())

	w = do(r, http.MethodGet, "/favorites/negroni", "")
	require.Equal(t, http.StatusOK, w.Code)
	var p common.CocktailProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Negroni", p.Name)
	assert.Len(t, p.Ingredients, 2)

	w = do(r, http.MethodPost, "/favorites/toggle", negroni)
	assert.JSONEq(t, `{"name":"Negroni","favorite":false}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/favorites/Negroni", "").Code)
}

func TestExists(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodGet, "/favorites/Negroni/exists", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Negroni","favorite":false}`, w.Body.String())

	require.Equal(t, http.StatusOK, do(r, http.MethodPut, "/favorites", negroni).Code)

	w = do(r, http.MethodGet, "/favorites/NEGRONI/exists", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"NEGRONI","favorite":true}`, w.Body.String())
}

func TestPutListDelete(t *testing.T) {
	r := newRouter()

	require.Equal(t, http.StatusOK, do(r, http.MethodPut, "/favorites", negroni).Code)
	require.Equal(t, http.StatusOK, do(r, http.MethodPut, "/favorites", `{"name":"Mojito"}`).Code)

	w := do(r, http.MethodGet, "/favorites", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Count     int                      `json:"count"`
		Favorites []common.CocktailProfile `json:"favorites"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "Mojito", list.Favorites[0].Name)

	require.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/favorites/mojito", "").Code)
	// 不存在的收藏刪除不視為錯誤
	assert.Equal(t, http.StatusOK, do(r, http.MethodDelete, "/favorites/mojito", "").Code)
}

func TestValidation(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/favorites/toggle", `{"name":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/favorites", `{"name":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/favorites/toggle", `nope`).Code)
}

func TestNotFoundCode(t *testing.T) {
	w := do(newRouter(), http.MethodGet, "/favorites/unknown", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FAVORITE_NOT_FOUND", body["code"])
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-openapi-service/internal/openapi"
)

func setupDocs(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	doc := openapi.NewBuilder("3.0.0", openapi.Info{Title: "My API", Version: "1.0.0"}).Build()
	h, err := NewDocsHandler(doc)
	require.NoError(t, err)

	r := gin.New()
	h.Register(r)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestDocsHandler_JSON(t *testing.T) {
	w := get(setupDocs(t), DocPath)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"openapi":"3.0.0","info":{"title":"My API","version":"1.0.0"},"paths":{}}`, w.Body.String())
}

func TestDocsHandler_YAML(t *testing.T) {
	w := get(setupDocs(t), DocYAMLPath)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/yaml")
	assert.Contains(t, w.Body.String(), "openapi: 3.0.0")
	assert.Contains(t, w.Body.String(), "title: My API")
}

func TestDocsHandler_UI(t *testing.T) {
	r := setupDocs(t)

	for _, path := range []string{UIPath, UIPath + "/", UIPath + "/index.html"} {
		w := get(r, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html", path)
		assert.Contains(t, w.Body.String(), "SwaggerUIBundle", path)
		assert.Contains(t, w.Body.String(), `<base href="/ui/">`, path)
		assert.Regexp(t, `url: "\\?/doc"`, w.Body.String(), path)
	}
}

func TestDocsHandler_UIAssets(t *testing.T) {
	r := setupDocs(t)

	w := get(r, UIPath+"/swagger-ui.css")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")

	w = get(r, UIPath+"/swagger-ui-bundle.js")
	assert.Equal(t, http.StatusOK, w.Code)
}

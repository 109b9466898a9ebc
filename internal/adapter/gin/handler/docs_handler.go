package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"user-openapi-service/internal/openapi"
)

// Documentation paths
const (
	DocPath     = "/doc"
	DocYAMLPath = "/doc.yaml"
	UIPath      = "/ui"
)

// DocsHandler serves the OpenAPI document and the Swagger UI page
type DocsHandler struct {
	json  []byte
	yaml  []byte
	index []byte
	ui    http.Handler
}

// NewDocsHandler encodes doc once; it never changes while the process runs
func NewDocsHandler(doc *openapi.Document) (*DocsHandler, error) {
	j, err := doc.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document as JSON: %w", err)
	}
	y, err := doc.YAML()
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document as YAML: %w", err)
	}

	ui := httpSwagger.Handler(httpSwagger.URL(DocPath))
	index, err := renderIndex(ui)
	if err != nil {
		return nil, err
	}

	return &DocsHandler{
		json:  j,
		yaml:  y,
		index: index,
		ui:    ui,
	}, nil
}

// renderIndex renders the Swagger UI page once. The page links its assets
// relative to itself, so a base element keeps them under /ui/ when it is served at /ui.
func renderIndex(ui http.Handler) ([]byte, error) {
	w := httptest.NewRecorder()
	ui.ServeHTTP(w, httptest.NewRequest(http.MethodGet, UIPath+"/index.html", nil))
	if w.Code != http.StatusOK {
		return nil, fmt.Errorf("failed to render Swagger UI page: status %d", w.Code)
	}
	return bytes.Replace(w.Body.Bytes(), []byte("<head>"), []byte(`<head>
  <base href="`+UIPath+`/">`), 1), nil
}

// Register mounts /doc, /doc.yaml and /ui on r
func (h *DocsHandler) Register(r gin.IRoutes) {
	r.GET(DocPath, h.JSON)
	r.GET(DocYAMLPath, h.YAML)
	r.GET(UIPath, h.Index)
	r.GET(UIPath+"/*any", h.UI)
}

// JSON handles GET /doc
func (h *DocsHandler) JSON(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", h.json)
}

// YAML handles GET /doc.yaml
func (h *DocsHandler) YAML(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", h.yaml)
}

// Index handles GET /ui with the Swagger UI page pointed at /doc
func (h *DocsHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.index)
}

// UI handles GET /ui/* with the Swagger UI assets
func (h *DocsHandler) UI(c *gin.Context) {
	switch c.Param("any") {
	case "/", "/index.html":
		h.Index(c)
	default:
		h.ui.ServeHTTP(c.Writer, c.Request)
	}
}

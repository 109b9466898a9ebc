package openapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleRoutes() []Route {
	return []Route{
		{
			Method:      http.MethodGet,
			Path:        "/items/{itemId}",
			OperationID: "getItem",
			Tags:        []string{"items"},
			Parameters: []Parameter{{
				Name:     "itemId",
				In:       InPath,
				Required: true,
				Schema:   &Schema{Type: "string", MinLength: 3, Example: "abc"},
			}},
			Responses: map[string]Response{
				"200": {Description: "Retrieve the item", Content: JSONContent(RefSchema("Item"))},
			},
		},
		{
			Method:      http.MethodPost,
			Path:        "/items",
			OperationID: "createItem",
			Tags:        []string{"items"},
			RequestBody: &RequestBody{Content: JSONContent(&Schema{Type: "object"})},
			Responses: map[string]Response{
				"200": {Description: "Create the item", Content: JSONContent(RefSchema("Item"))},
			},
		},
	}
}

func TestRoute_GinPath(t *testing.T) {
	assert.Equal(t, "/items/:itemId", Route{Path: "/items/{itemId}"}.GinPath())
	assert.Equal(t, "/items", Route{Path: "/items"}.GinPath())
	assert.Equal(t, "/a/:b/c/:d", Route{Path: "/a/{b}/c/{d}"}.GinPath())
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder("3.0.0", Info{Title: "My API", Version: "1.0.0"})
	b.AddSchema("Item", &Schema{Type: "object"})
	for _, r := range sampleRoutes() {
		require.NoError(t, b.AddRoute(r))
	}

	doc := b.Build()
	assert.Equal(t, "3.0.0", doc.OpenAPI)
	require.Len(t, doc.Paths, 2)
	require.NotNil(t, doc.Paths["/items/{itemId}"].Get)
	assert.Nil(t, doc.Paths["/items/{itemId}"].Post)
	require.NotNil(t, doc.Paths["/items"].Post)
	assert.Equal(t, []Tag{{Name: "items"}}, doc.Tags)
	assert.Contains(t, doc.Components.Schemas, "Item")
}

func TestBuilder_Errors(t *testing.T) {
	b := NewBuilder("3.0.0", Info{Title: "t", Version: "v"})
	route := sampleRoutes()[0]

	require.NoError(t, b.AddRoute(route))
	assert.ErrorContains(t, b.AddRoute(route), "duplicate route")

	route.Method = "TRACE"
	assert.ErrorContains(t, b.AddRoute(route), "unsupported method")
}

func TestBuilder_NoComponents(t *testing.T) {
	doc := NewBuilder("3.0.0", Info{Title: "t", Version: "v"}).Build()
	assert.Nil(t, doc.Components)
}

func TestDocument_Encoding(t *testing.T) {
	b := NewBuilder("3.0.0", Info{Title: "My API", Version: "1.0.0"})
	b.AddSchema("Item", &Schema{Type: "object"})
	for _, r := range sampleRoutes() {
		require.NoError(t, b.AddRoute(r))
	}
	doc := b.Build()

	raw, err := doc.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "3.0.0", decoded["openapi"])

	keys := make([]string, 0, len(decoded))
	for k := range decoded {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"openapi", "info", "paths", "components", "tags"}, keys)

	param := decoded["paths"].(map[string]any)["/items/{itemId}"].(map[string]any)["get"].(map[string]any)["parameters"].([]any)[0].(map[string]any)
	assert.Equal(t, "path", param["in"])
	assert.Equal(t, true, param["required"])
	assert.Equal(t, float64(3), param["schema"].(map[string]any)["minLength"])

	raw, err = doc.YAML()
	require.NoError(t, err)

	var fromYAML Document
	require.NoError(t, yaml.Unmarshal(raw, &fromYAML))
	assert.Equal(t, "My API", fromYAML.Info.Title)
	assert.Equal(t, "#/components/schemas/Item", fromYAML.Paths["/items"].Post.Responses["200"].Content[ContentTypeJSON].Schema.Ref)
}

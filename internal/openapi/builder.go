package openapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Route declares one HTTP operation. Path uses the OpenAPI template form, e.g. /users/{id}.
type Route struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   map[string]Response
}

var pathParam = regexp.MustCompile(`\{([^}/]+)\}`)

// GinPath converts the OpenAPI path template into gin's :param form.
func (r Route) GinPath() string {
	return pathParam.ReplaceAllString(r.Path, ":$1")
}

// Operation returns the OpenAPI operation described by the route.
func (r Route) Operation() *Operation {
	return &Operation{
		Tags:        r.Tags,
		Summary:     r.Summary,
		OperationID: r.OperationID,
		Parameters:  r.Parameters,
		RequestBody: r.RequestBody,
		Responses:   r.Responses,
	}
}

// Builder assembles a Document from routes and component schemas.
type Builder struct {
	doc Document
}

// NewBuilder creates a builder for a document of the given OpenAPI version.
func NewBuilder(openapiVersion string, info Info) *Builder {
	return &Builder{
		doc: Document{
			OpenAPI: openapiVersion,
			Info:    info,
			Paths:   make(map[string]*PathItem),
			Components: &Components{
				Schemas: make(map[string]*Schema),
			},
		},
	}
}

// AddSchema registers a reusable component schema.
func (b *Builder) AddSchema(name string, s *Schema) *Builder {
	b.doc.Components.Schemas[name] = s
	return b
}

// AddRoute adds the route's operation to its path item.
func (b *Builder) AddRoute(r Route) error {
	item, ok := b.doc.Paths[r.Path]
	if !ok {
		item = &PathItem{}
		b.doc.Paths[r.Path] = item
	}

	var slot **Operation
	switch strings.ToUpper(r.Method) {
	case http.MethodGet:
		slot = &item.Get
	case http.MethodPost:
		slot = &item.Post
	case http.MethodPut:
		slot = &item.Put
	case http.MethodDelete:
		slot = &item.Delete
	case http.MethodPatch:
		slot = &item.Patch
	default:
		return fmt.Errorf("unsupported method %q for %s", r.Method, r.Path)
	}

	if *slot != nil {
		return fmt.Errorf("duplicate route %s %s", r.Method, r.Path)
	}
	*slot = r.Operation()

	for _, t := range r.Tags {
		b.addTag(t)
	}
	return nil
}

func (b *Builder) addTag(name string) {
	for _, t := range b.doc.Tags {
		if t.Name == name {
			return
		}
	}
	b.doc.Tags = append(b.doc.Tags, Tag{Name: name})
	sort.Slice(b.doc.Tags, func(i, j int) bool { return b.doc.Tags[i].Name < b.doc.Tags[j].Name })
}

// Build returns the assembled document.
func (b *Builder) Build() *Document {
	doc := b.doc
	if len(doc.Components.Schemas) == 0 {
		doc.Components = nil
	}
	return &doc
}

// JSON encodes the document as indented JSON.
func (d *Document) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// YAML encodes the document as YAML.
func (d *Document) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}

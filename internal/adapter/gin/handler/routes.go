package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "user-openapi-service/internal/domain/user"
	"user-openapi-service/internal/openapi"
)

// UserSchemaName is the component name of the user schema
const UserSchemaName = "User"

// Examples shown in the published document
const (
	exampleID    = "123"
	exampleName  = "John Doe"
	exampleAge   = 42
	exampleParam = "1212121"
)

// Route pairs a documented operation with its gin handler
type Route struct {
	Spec    openapi.Route
	Handler gin.HandlerFunc
}

// Routes returns the user routes for the handler's field style
func (h *UserHandler) Routes() []Route {
	specs := UserRouteSpecs(h.style)
	return []Route{
		{Spec: specs[0], Handler: h.GetUser},
		{Spec: specs[1], Handler: h.CreateUser},
	}
}

// UserRouteSpecs declares GET /users/{id} and POST /users for style
func UserRouteSpecs(style domain.FieldStyle) []openapi.Route {
	names := style.Names()

	return []openapi.Route{
		{
			Method:      http.MethodGet,
			Path:        "/users/{" + names.ID + "}",
			OperationID: "getUser",
			Tags:        []string{"users"},
			Parameters: []openapi.Parameter{
				{
					Name:     names.ID,
					In:       openapi.InPath,
					Required: true,
					Schema: &openapi.Schema{
						Type:      "string",
						MinLength: 3,
						Example:   exampleParam,
					},
				},
			},
			Responses: map[string]openapi.Response{
				"200": {
					Description: "Retrieve the user",
					Content:     openapi.JSONContent(openapi.RefSchema(UserSchemaName)),
				},
			},
		},
		{
			Method:      http.MethodPost,
			Path:        "/users",
			OperationID: "createUser",
			Tags:        []string{"users"},
			RequestBody: &openapi.RequestBody{
				Required: true,
				Content:  openapi.JSONContent(UserBodySchema(style)),
			},
			Responses: map[string]openapi.Response{
				"200": {
					Description: "Retrieve the user",
					Content:     openapi.JSONContent(openapi.RefSchema(UserSchemaName)),
				},
			},
		},
	}
}

// UserSchema is the component schema of a user in style
func UserSchema(style domain.FieldStyle) *openapi.Schema {
	names := style.Names()

	return &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			names.ID:   {Type: "string", Example: exampleID},
			names.Name: {Type: "string", Example: exampleName},
			names.Age:  {Type: "number", Example: exampleAge},
		},
		Required: []string{names.ID, names.Name, names.Age},
	}
}

// UserBodySchema is the request body schema of POST /users in style
func UserBodySchema(style domain.FieldStyle) *openapi.Schema {
	names := style.Names()

	return &openapi.Schema{
		Type: "object",
		Properties: map[string]*openapi.Schema{
			names.Name: {Type: "string", Example: exampleName},
			names.Age:  {Type: "number", Example: exampleAge},
		},
		Required: []string{names.Name, names.Age},
	}
}

// Schemas returns the component schemas referenced by Routes
func (h *UserHandler) Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		UserSchemaName: UserSchema(h.style),
	}
}
